package simulation

import (
	"math"

	"github.com/guimove/binfit/internal/model"
)

// UnderfilledThreshold is the fill ratio below which a bin counts as underfilled.
const UnderfilledThreshold = 0.50

// AnalyzeFragmentation computes fragmentation metrics for a set of bins.
func AnalyzeFragmentation(bins []model.Bin) model.FragmentationReport {
	if len(bins) == 0 {
		return model.FragmentationReport{BalanceScore: 1.0}
	}

	var (
		report      model.FragmentationReport
		underfilled int
		sum         float64
	)
	fills := make([]float64, len(bins))
	for i := range bins {
		fills[i] = bins[i].Fill()
		sum += fills[i]
		if fills[i] < UnderfilledThreshold {
			underfilled++
			report.StrandedCapacity += bins[i].Free()
		}
	}

	n := float64(len(bins))
	mean := sum / n
	var variance float64
	for _, f := range fills {
		variance += (f - mean) * (f - mean)
	}
	stddev := math.Sqrt(variance / n)

	report.UnderfilledBinFraction = float64(underfilled) / n
	report.BalanceScore = math.Max(0, 1.0-stddev)
	return report
}
