package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

var evalToolsFlag []string
var evalLLMFlag bool
var evalParallelFlag int

// evalCmd represents the eval command.
var evalCmd = newEvalCmd()

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run analyzers over the mutated corpus",
		Long: `Run the configured static analyzers and/or the LLM detector against
every contract under --output, storing raw reports under --reports.
Timeouts and unreachable tools are recorded per invocation so a missing
report is never mistaken for a clean one.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			runs, err := wf.Eval(cmd.Context(), domain.EvalArgs{
				BuggyDir:    m.Path(viper.GetString(outputFlagName)),
				ReportsDir:  m.Path(viper.GetString(reportsFlagName)),
				Tools:       viper.GetStringSlice(evalToolsConfigKey),
				LLM:         viper.GetBool(evalLLMConfigKey),
				Threads:     viper.GetInt(evalParallelConfigKey),
				ToolTimeout: configDuration(evalTimeoutConfigKey),
			})
			if err != nil {
				return err
			}

			completed := 0

			for _, run := range runs {
				if run.Status == m.ToolCompleted {
					completed++
				}
			}

			cmd.Printf("%d/%d invocation(s) completed\n", completed, len(runs))

			return nil
		},
	}

	configureEvalFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func configureEvalFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&evalToolsFlag, "tools", "t", viper.GetStringSlice(evalToolsConfigKey), "static analyzer binaries to run (e.g. slither,mythril)")
	bindFlagToConfig(cmd.Flags().Lookup("tools"), evalToolsConfigKey)

	cmd.Flags().BoolVar(&evalLLMFlag, "llm", viper.GetBool(evalLLMConfigKey), "query the configured LLM detector")
	bindFlagToConfig(cmd.Flags().Lookup("llm"), evalLLMConfigKey)

	cmd.Flags().IntVarP(&evalParallelFlag, "parallel", "p", viper.GetInt(evalParallelConfigKey), "number of parallel analyzer invocations")
	bindFlagToConfig(cmd.Flags().Lookup("parallel"), evalParallelConfigKey)
}
