package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	awspkg "github.com/guimove/binfit/internal/aws"
	"github.com/guimove/binfit/internal/model"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing INSTANCE_TYPE...",
	Short: "Show the bin capacity and price of EC2 instance types",
	Long: `Resolves each instance type to its allocatable CPU and memory after the
EKS kubelet reservation, and its on-demand hourly price. These are the
capacities pack and compare use with --instance-type.`,
	Example: `  binfit pricing m6i.large m6i.xlarge c7g.large --sort-by cpu`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runPricing,
}

func init() {
	f := pricingCmd.Flags()
	f.String("sort-by", "price", "sort by: price, cpu, memory, type")
	f.Bool("no-cache", false, "disable the instance type cache")

	rootCmd.AddCommand(pricingCmd)
}

func runPricing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	noCache, _ := cmd.Flags().GetBool("no-cache")
	provider, err := newProvider(ctx, noCache)
	if err != nil {
		return err
	}

	capacities := make([]model.InstanceCapacity, 0, len(args))
	for _, it := range args {
		ic, err := provider.Resolve(ctx, it, model.DimensionCPU)
		if err != nil {
			if errors.Is(err, awspkg.ErrUnknownInstanceType) {
				logger.Warn("skipping instance type", zap.String("instance_type", it), zap.Error(err))
				continue
			}
			return err
		}
		capacities = append(capacities, *ic)
	}

	sortBy, _ := cmd.Flags().GetString("sort-by")
	sortCapacities(capacities, sortBy)

	fmt.Fprintf(os.Stdout, "%-20s %5s %8s %7s %10s %12s %10s\n",
		"INSTANCE TYPE", "vCPU", "MEM(GiB)", "MAXPOD", "ALLOC CPU", "ALLOC MEM", "$/HOUR(OD)")
	fmt.Fprintf(os.Stdout, "%s\n", strings.Repeat("-", 80))

	for _, c := range capacities {
		price := "N/A"
		if c.PricePerHour > 0 {
			price = fmt.Sprintf("%.4f", c.PricePerHour)
		}
		fmt.Printf("%-20s %5d %8.1f %7d %9dm %8d MiB %10s\n",
			c.InstanceType,
			c.VCPUs,
			float64(c.MemoryMiB)/1024.0,
			c.MaxPods,
			c.AllocatableCPUMillis,
			c.AllocatableMemoryMiB,
			price,
		)
	}

	fmt.Fprintf(os.Stdout, "\n%d instance types in %s\n", len(capacities), provider.Region())
	return nil
}

func sortCapacities(capacities []model.InstanceCapacity, by string) {
	switch by {
	case "cpu":
		sort.SliceStable(capacities, func(i, j int) bool {
			return capacities[i].AllocatableCPUMillis < capacities[j].AllocatableCPUMillis
		})
	case "memory":
		sort.SliceStable(capacities, func(i, j int) bool {
			return capacities[i].AllocatableMemoryMiB < capacities[j].AllocatableMemoryMiB
		})
	case "type":
		sort.SliceStable(capacities, func(i, j int) bool {
			return capacities[i].InstanceType < capacities[j].InstanceType
		})
	default: // price
		sort.SliceStable(capacities, func(i, j int) bool {
			return capacities[i].PricePerHour < capacities[j].PricePerHour
		})
	}
}
