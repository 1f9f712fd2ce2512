package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"solseed.dev/pkg/solseed/internal/domain"
	m "solseed.dev/pkg/solseed/internal/model"
)

var injectContractsFlag string
var injectBugTypesFlag []string
var injectCountFlag int
var injectParallelFlag int
var injectValidateFlag bool

// injectCmd represents the inject command.
var injectCmd = newInjectCmd()

func newInjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Seed vulnerabilities into a contract corpus",
		Long: `Mutate every contract under --contracts once per bug type, writing the
buggy sources, per-contract bug logs, and the merged ground-truth table
under --output. Contracts with no usable injection site for a bug type
are skipped and reported, not failed.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			bugTypes, err := parseBugTypes(injectBugTypesFlag, cat.BugTypes())
			if err != nil {
				return err
			}

			wf, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			summary, err := wf.Inject(cmd.Context(), domain.InjectArgs{
				ContractsDir: m.Path(viper.GetString(contractsFlagName)),
				OutputDir:    m.Path(viper.GetString(outputFlagName)),
				BugTypes:     bugTypes,
				PerContract:  viper.GetInt(injectCountConfigKey),
				Threads:      viper.GetInt(injectParallelConfigKey),
				Validate:     viper.GetBool(injectValidateConfigKey),
			})
			if err != nil {
				return err
			}

			cmd.Printf("%d contract(s): %d mutated output(s), %d injection(s), %d pair(s) skipped\n",
				summary.Contracts, summary.Mutated, summary.Injected, summary.Skipped)

			return nil
		},
	}

	configureInjectFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(injectCmd)
}

func configureInjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&injectContractsFlag, contractsFlagName, "c", viper.GetString(contractsFlagName), "directory of clean .sol contracts to mutate")
	bindFlagToConfig(cmd.Flags().Lookup(contractsFlagName), contractsFlagName)

	cmd.Flags().StringSliceVarP(&injectBugTypesFlag, "bug-types", "b", nil, "bug types to inject (default: every catalog type)")

	cmd.Flags().IntVarP(&injectCountFlag, "count", "n", viper.GetInt(injectCountConfigKey), "injections per contract and bug type")
	bindFlagToConfig(cmd.Flags().Lookup("count"), injectCountConfigKey)

	cmd.Flags().IntVarP(&injectParallelFlag, "parallel", "p", viper.GetInt(injectParallelConfigKey), "number of parallel injection workers")
	bindFlagToConfig(cmd.Flags().Lookup("parallel"), injectParallelConfigKey)

	cmd.Flags().BoolVar(&injectValidateFlag, "validate", viper.GetBool(injectValidateConfigKey), "compile-check every mutation with solc and roll back rejects")
	bindFlagToConfig(cmd.Flags().Lookup("validate"), injectValidateConfigKey)
}
