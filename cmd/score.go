package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

var scoreTruthFlag string
var scoreToolsFlag []string
var scoreToleranceFlag int
var scoreOutputFlag string

// scoreCmd represents the score command.
var scoreCmd = newScoreCmd()

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score analyzer reports against ground truth",
		Long: `Normalize every stored report under --reports, match it against the
merged ground-truth table, and write per-bug-type metric CSVs plus
TP/FP/FN detail CSVs for each tool.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			truth := scoreTruthFlag
			if truth == "" {
				truth = filepath.Join(viper.GetString(outputFlagName), "merged_bug_logs.csv")
			}

			wf, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = wf.Score(cmd.Context(), domain.ScoreArgs{
				TruthCSV:   m.Path(truth),
				ReportsDir: m.Path(viper.GetString(reportsFlagName)),
				Tools:      viper.GetStringSlice(scoreToolsConfigKey),
				Tolerance:  viper.GetInt(scoreToleranceConfigKey),
				OutputDir:  m.Path(viper.GetString(scoreOutputConfigKey)),
			})

			return err
		},
	}

	configureScoreFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func configureScoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scoreTruthFlag, "truth", "", "merged ground-truth CSV (default: <output>/merged_bug_logs.csv)")

	cmd.Flags().StringSliceVarP(&scoreToolsFlag, "tools", "t", viper.GetStringSlice(scoreToolsConfigKey), "tools whose reports should be scored")
	bindFlagToConfig(cmd.Flags().Lookup("tools"), scoreToolsConfigKey)

	cmd.Flags().IntVar(&scoreToleranceFlag, "tolerance", viper.GetInt(scoreToleranceConfigKey), "line distance still counted as a match (0 = exact)")
	bindFlagToConfig(cmd.Flags().Lookup("tolerance"), scoreToleranceConfigKey)

	cmd.Flags().StringVar(&scoreOutputFlag, "scores", viper.GetString(scoreOutputConfigKey), "directory for metric and detail CSVs")
	bindFlagToConfig(cmd.Flags().Lookup("scores"), scoreOutputConfigKey)
}
