// Package cmd provides the root command and CLI setup for solseed.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"solseed.dev/pkg/solseed/internal/adapter"
	"solseed.dev/pkg/solseed/internal/catalog"
	"solseed.dev/pkg/solseed/internal/controller"
	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

var fsAdapter adapter.ContractFSAdapter
var truthStore adapter.GroundTruthStore
var scoreStore adapter.ScoreStore
var analyzerRunner adapter.AnalyzerRunner

// newWorkflow builds the workflow for a command invocation. Tests swap it
// for a factory returning a mock.
var newWorkflow = buildWorkflow

// outputDirFlag is a root-level flag shared by commands that read/write the
// mutated corpus.
var outputDirFlag string

// reportsDirFlag is a root-level flag shared by commands that read/write
// analyzer reports.
var reportsDirFlag string

// verboseFlag switches file logging to debug level.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalContractFSAdapter()
	truthStore = adapter.NewCSVTruthStore()
	scoreStore = adapter.NewCSVScoreStore()
	analyzerRunner = adapter.NewLocalAnalyzerRunner()
}

const rootLongDescription = `Solseed seeds known vulnerability snippets into Solidity contracts with
line-accurate ground truth, then scores security analyzers (static tools
and LLM detectors) against what was actually planted.

Typical flow:
  solseed inject -c contracts -o buggy
  solseed eval   -o buggy --reports reports
  solseed score  --reports reports --truth buggy/merged_bug_logs.csv`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solseed",
		Short: "Solidity vulnerability injection benchmark",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a fresh root command carrying the persistent flags,
// used by tests that execute subcommands in isolation.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"directory holding the mutated (buggy) contracts",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().
		StringVarP(
			&reportsDirFlag, reportsFlagName, "r",
			viper.GetString(reportsFlagName),
			"directory holding per-tool analyzer reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(reportsFlagName), reportsFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// buildWorkflow assembles the production workflow from configuration. The
// catalog path and solc/llm settings are read at call time so flags and
// config files both apply.
func buildWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	ui := controller.NewUI(cmd, controller.IsTTY(os.Stdout))

	validator := adapter.NewSolcAdapter(
		viper.GetString(solcBinaryConfigKey),
		configDuration(solcTimeoutConfigKey),
	)

	var llm adapter.LLMAdapter
	if url := viper.GetString(llmURLConfigKey); url != "" {
		llm = adapter.NewOllamaAdapter(
			url,
			viper.GetString(llmModelConfigKey),
			configDuration(llmTimeoutConfigKey),
			adapter.RetryPolicy{
				MaxAttempts: viper.GetInt(llmRetriesConfigKey),
				Delay:       configDuration(llmRetryDelayConfigKey),
			},
		)
	}

	return domain.NewWorkflow(
		fsAdapter,
		truthStore,
		scoreStore,
		analyzerRunner,
		llm,
		ui,
		cat,
		validator,
	), nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if path := viper.GetString(catalogConfigKey); path != "" {
		cat, err := catalog.Load(m.Path(path))
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", path, err)
		}

		return cat, nil
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}

	return cat, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// parseBugTypes resolves flag values against the catalog's declared bug
// types, so a catalog extending the built-in set stays selectable.
func parseBugTypes(names []string, known []m.BugType) ([]m.BugType, error) {
	out := make([]m.BugType, 0, len(names))

	for _, name := range names {
		found := false

		for _, bt := range known {
			if string(bt) == name {
				out = append(out, bt)
				found = true

				break
			}
		}

		if !found {
			return nil, fmt.Errorf("unknown bug type %q: catalog declares %v", name, known)
		}
	}

	return out, nil
}
