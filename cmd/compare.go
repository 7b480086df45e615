package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guimove/binfit/internal/orchestrator"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Pack tasks with every algorithm and rank the plans",
	Long: `Runs the same workload through each packing algorithm and ranks the
plans by bin efficiency, fill balance, and fragmentation. Useful for
deciding whether sorting the input is worth it for a given workload.`,
	Example: `  binfit compare -i tasks.yaml --capacity 64
  binfit compare --source prometheus --prometheus-url http://localhost:9090 --dimension memory --instance-type r6i.large`,
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.StringSlice("algorithms", nil, "algorithms to compare (default: all)")
	addOutputFlags(compareCmd)

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	if algs, _ := cmd.Flags().GetStringSlice("algorithms"); len(algs) > 0 {
		cfg.Packing.Algorithms = algs
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

	_, err = orch.Compare(ctx)
	return err
}
