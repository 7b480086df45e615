package model

import (
	"time"
)

// Bin is one filled bin of a plan.
type Bin struct {
	Index    int    `json:"index"`
	Capacity uint64 `json:"capacity"`
	Load     uint64 `json:"load"`
	Tasks    []Task `json:"tasks"`
}

// Fill returns load / capacity (0.0 - 1.0). A zero-capacity bin is full.
func (b Bin) Fill() float64 {
	if b.Capacity == 0 {
		return 1.0
	}
	return float64(b.Load) / float64(b.Capacity)
}

// Free returns the unused capacity of the bin.
func (b Bin) Free() uint64 {
	return b.Capacity - b.Load
}

// FragmentationReport details capacity waste patterns across bins.
type FragmentationReport struct {
	// Free capacity sitting in underfilled bins
	StrandedCapacity uint64 `json:"stranded_capacity"`

	// Fraction of bins below 50% fill
	UnderfilledBinFraction float64 `json:"underfilled_bin_fraction"`

	// 1.0 = every bin equally full
	BalanceScore float64 `json:"balance_score"`
}

// Plan captures the outcome of a single packing run.
type Plan struct {
	Algorithm string    `json:"algorithm"`
	Capacity  uint64    `json:"capacity"`
	Dimension Dimension `json:"dimension"`

	Bins []Bin `json:"bins"`

	// Aggregate metrics
	TotalBins   int    `json:"total_bins"`
	TotalTasks  int    `json:"total_tasks"`
	TotalLoad   uint64 `json:"total_load"`
	LowerBound  int    `json:"lower_bound"`
	ExcessBins  int    `json:"excess_bins"`
	WastedSpace uint64 `json:"wasted_capacity"`

	// Efficiency
	AvgFill       float64             `json:"avg_fill"`
	MinFill       float64             `json:"min_fill"`
	Fragmentation FragmentationReport `json:"fragmentation"`

	// Cost, set when the capacity came from a priced instance type
	Instance    *InstanceCapacity `json:"instance,omitempty"`
	MonthlyCost float64           `json:"monthly_cost,omitempty"`

	Duration time.Duration `json:"duration"`
}

// ScoringWeights configures the relative importance of scoring dimensions.
type ScoringWeights struct {
	Efficiency    float64 `yaml:"efficiency" json:"efficiency"`
	Balance       float64 `yaml:"balance" json:"balance"`
	Fragmentation float64 `yaml:"fragmentation" json:"fragmentation"`
}

// DefaultScoringWeights returns the default scoring weights.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Efficiency:    0.70,
		Balance:       0.15,
		Fragmentation: 0.15,
	}
}

// Ranking is a scored plan, ordered best first.
type Ranking struct {
	Rank int  `json:"rank"`
	Plan Plan `json:"plan"`

	// Scores (0-100)
	OverallScore       float64 `json:"overall_score"`
	EfficiencyScore    float64 `json:"efficiency_score"`
	BalanceScore       float64 `json:"balance_score"`
	FragmentationScore float64 `json:"fragmentation_score"`

	// Bins saved compared to the worst plan
	BinsSaved int `json:"bins_saved"`

	Rationale string   `json:"rationale"`
	Warnings  []string `json:"warnings,omitempty"`
}
