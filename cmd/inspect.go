package cmd

import (
	"github.com/spf13/cobra"

	"github.com/guimove/binfit/internal/orchestrator"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load tasks and show their totals without packing",
	Long: `Loads tasks from the configured source and displays the task count, the
total and largest weights, and the heaviest tasks. When a capacity is known
it also shows the lower bound on bins and any task too large to fit.
Useful for debugging a source before packing.`,
	RunE: runInspect,
}

func init() {
	addOutputFlags(inspectCmd)
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

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

	orch := orchestrator.New(src, resolver, cfg, nil, logger)
	orch.Writer = w

	_, err = orch.Inspect(ctx)
	return err
}
