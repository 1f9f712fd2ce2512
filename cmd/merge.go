package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

var mergeOutputFlag string

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge per-contract bug logs into one ground-truth table",
		Long: `Collect every BugLog_*.csv under the buggy corpus and merge them into a
single merged_bug_logs.csv with globally unique bug ids. Useful when the
corpus was produced in pieces or the merged table was lost.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			buggyDir := viper.GetString(outputFlagName)

			output := mergeOutputFlag
			if output == "" {
				output = filepath.Join(buggyDir, "merged_bug_logs.csv")
			}

			wf, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			gt, err := wf.Merge(cmd.Context(), domain.MergeArgs{
				BuggyDir: m.Path(buggyDir),
				Output:   m.Path(output),
			})
			if err != nil {
				return err
			}

			cmd.Printf("merged %d injection(s) across %d contract(s) into %s\n",
				gt.Count(), len(gt), output)

			return nil
		},
	}

	cmd.Flags().StringVar(&mergeOutputFlag, "merged", "", "path of the merged CSV (default: <output>/merged_bug_logs.csv)")

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
