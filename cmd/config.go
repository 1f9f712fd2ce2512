package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "solseed"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName    = "output"
	contractsFlagName = "contracts"
	reportsFlagName   = "reports"
	verboseFlagName   = "verbose"

	catalogConfigKey = "catalog"

	injectParallelConfigKey = "inject.parallel"
	injectCountConfigKey    = "inject.per_contract"
	injectValidateConfigKey = "inject.validate"

	solcBinaryConfigKey  = "solc.binary"
	solcTimeoutConfigKey = "solc.timeout"

	evalToolsConfigKey    = "eval.tools"
	evalLLMConfigKey      = "eval.llm"
	evalParallelConfigKey = "eval.parallel"
	evalTimeoutConfigKey  = "eval.tool_timeout"

	llmURLConfigKey        = "llm.url"
	llmModelConfigKey      = "llm.model"
	llmTimeoutConfigKey    = "llm.timeout"
	llmRetriesConfigKey    = "llm.retries"
	llmRetryDelayConfigKey = "llm.retry_delay"

	scoreToolsConfigKey     = "score.tools"
	scoreToleranceConfigKey = "score.tolerance"
	scoreOutputConfigKey    = "score.output"

	defaultContractsDir = "contracts"
	defaultBuggyDir     = "buggy"
	defaultReportsDir   = "reports"
	defaultScoresDir    = "scores"

	defaultInjectParallel = 1
	defaultInjectCount    = 1
	defaultInjectValidate = false

	defaultSolcBinary  = "solc"
	defaultSolcTimeout = 30 * time.Second

	defaultEvalParallel = 2
	defaultToolTimeout  = 3 * time.Minute

	defaultLLMURL        = "http://localhost:11434"
	defaultLLMModel      = "qwen2.5-coder"
	defaultLLMTimeout    = 3 * time.Minute
	defaultLLMRetries    = 3
	defaultLLMRetryDelay = 2 * time.Second

	defaultTolerance = 2

	envPrefix = "SOLSEED"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".solseed.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// defaultScoreTools covers every normalizer shipped with the benchmark.
var defaultScoreTools = []string{"slither", "mythril", "oyente", "smartcheck", "securify", "llm"}

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(contractsFlagName, defaultContractsDir)
	viper.SetDefault(outputFlagName, defaultBuggyDir)
	viper.SetDefault(reportsFlagName, defaultReportsDir)
	viper.SetDefault(catalogConfigKey, "")

	viper.SetDefault(injectParallelConfigKey, defaultInjectParallel)
	viper.SetDefault(injectCountConfigKey, defaultInjectCount)
	viper.SetDefault(injectValidateConfigKey, defaultInjectValidate)

	viper.SetDefault(solcBinaryConfigKey, defaultSolcBinary)
	viper.SetDefault(solcTimeoutConfigKey, int64(defaultSolcTimeout.Seconds()))

	viper.SetDefault(evalToolsConfigKey, []string{})
	viper.SetDefault(evalLLMConfigKey, true)
	viper.SetDefault(evalParallelConfigKey, defaultEvalParallel)
	viper.SetDefault(evalTimeoutConfigKey, int64(defaultToolTimeout.Seconds()))

	viper.SetDefault(llmURLConfigKey, defaultLLMURL)
	viper.SetDefault(llmModelConfigKey, defaultLLMModel)
	viper.SetDefault(llmTimeoutConfigKey, int64(defaultLLMTimeout.Seconds()))
	viper.SetDefault(llmRetriesConfigKey, defaultLLMRetries)
	viper.SetDefault(llmRetryDelayConfigKey, int64(defaultLLMRetryDelay.Seconds()))

	viper.SetDefault(scoreToolsConfigKey, defaultScoreTools)
	viper.SetDefault(scoreToleranceConfigKey, defaultTolerance)
	viper.SetDefault(scoreOutputConfigKey, defaultScoresDir)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

func configDuration(key string) time.Duration {
	return time.Duration(viper.GetInt64(key)) * time.Second
}
