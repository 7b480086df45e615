package simulation

import (
	"fmt"
	"sort"

	"github.com/guimove/binfit/internal/model"
)

// Scorer computes composite scores for plans and ranks them.
type Scorer struct {
	Weights model.ScoringWeights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights model.ScoringWeights) *Scorer {
	return &Scorer{Weights: weights}
}

// Rank scores plans and orders them best first. Plans with equal scores
// keep their input order.
func (s *Scorer) Rank(plans []model.Plan) []model.Ranking {
	if len(plans) == 0 {
		return nil
	}

	worst := plans[0].TotalBins
	for _, p := range plans[1:] {
		worst = max(worst, p.TotalBins)
	}

	rankings := make([]model.Ranking, len(plans))
	for i, p := range plans {
		rankings[i] = s.score(p)
		rankings[i].BinsSaved = worst - p.TotalBins
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].OverallScore > rankings[j].OverallScore
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}

func (s *Scorer) score(p model.Plan) model.Ranking {
	r := model.Ranking{Plan: p}

	// Efficiency: 100 when the plan reaches the lower bound
	if p.TotalBins > 0 {
		r.EfficiencyScore = float64(p.LowerBound) / float64(p.TotalBins) * 100
	} else {
		r.EfficiencyScore = 100
	}

	r.BalanceScore = p.Fragmentation.BalanceScore * 100
	r.FragmentationScore = (1.0 - p.Fragmentation.UnderfilledBinFraction) * 100

	r.OverallScore = s.Weights.Efficiency*r.EfficiencyScore +
		s.Weights.Balance*r.BalanceScore +
		s.Weights.Fragmentation*r.FragmentationScore

	r.Rationale = rationale(p)
	r.Warnings = warnings(p)
	return r
}

func rationale(p model.Plan) string {
	text := fmt.Sprintf("%s: %d bins (lower bound %d), avg fill %.0f%%",
		p.Algorithm, p.TotalBins, p.LowerBound, p.AvgFill*100)
	if p.MonthlyCost > 0 {
		text += fmt.Sprintf(", $%.0f/mo", p.MonthlyCost)
	}
	return text
}

func warnings(p model.Plan) []string {
	var out []string

	if p.ExcessBins > 0 {
		out = append(out, fmt.Sprintf("%d bins above the lower bound of %d", p.ExcessBins, p.LowerBound))
	}

	if p.Fragmentation.UnderfilledBinFraction > 0 {
		under := int(p.Fragmentation.UnderfilledBinFraction*float64(p.TotalBins) + 0.5)
		out = append(out, fmt.Sprintf("%d of %d bins are under %d%% full",
			under, p.TotalBins, int(UnderfilledThreshold*100)))
	}

	return out
}
