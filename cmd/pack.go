package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guimove/binfit/internal/orchestrator"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack tasks into bins with one algorithm",
	Long: `Loads tasks from the configured source, resolves the bin capacity, and
packs them with a single algorithm (first-fit-decreasing by default).

The command fails without output when any task is heavier than the capacity.`,
	Example: `  binfit pack -i tasks.csv --capacity 1000
  binfit pack --source kubernetes --dimension cpu --instance-type m6i.xlarge -a first-fit`,
	RunE: runPack,
}

func init() {
	f := packCmd.Flags()
	f.StringP("algorithm", "a", "", "first-fit, next-fit, or first-fit-decreasing")
	addOutputFlags(packCmd)

	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	if alg, _ := cmd.Flags().GetString("algorithm"); alg != "" {
		cfg.Packing.Algorithm = alg
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateCapacity(); err != nil {
		return err
	}

	w, closeOut, err := applyOutputFlags(cmd)
	if err != nil {
		return err
	}
	defer closeOutput(closeOut, &err)

	src, err := resolveSource(ctx)
	if err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	resolver, err := resolveCapacity(ctx, noCache)
	if err != nil {
		return err
	}
	metrics, err := newMetrics(false)
	if err != nil {
		return err
	}
	defer writeMetrics(metrics)

	orch := orchestrator.New(src, resolver, cfg, metrics, logger)
	orch.Writer = w

	_, err = orch.Pack(ctx)
	return err
}
