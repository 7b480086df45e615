package simulation

import (
	"strings"
	"testing"

	"github.com/guimove/binfit/internal/model"
)

func makePlan(algorithm string, capacity uint64, loads ...uint64) model.Plan {
	p := model.Plan{Algorithm: algorithm, Capacity: capacity}
	var total uint64
	for i, l := range loads {
		p.Bins = append(p.Bins, model.Bin{Index: i, Capacity: capacity, Load: l})
		total += l
	}
	p.TotalBins = len(loads)
	p.TotalLoad = total
	p.LowerBound = model.LowerBound(total, capacity)
	p.ExcessBins = p.TotalBins - p.LowerBound
	p.Fragmentation = AnalyzeFragmentation(p.Bins)
	return p
}

func TestScorer_RanksFewerBinsFirst(t *testing.T) {
	scorer := NewScorer(model.DefaultScoringWeights())
	rankings := scorer.Rank([]model.Plan{
		makePlan("next-fit", 10, 6, 7, 3, 4),
		makePlan("first-fit-decreasing", 10, 10, 10),
	})

	if rankings[0].Plan.Algorithm != "first-fit-decreasing" {
		t.Fatalf("expected first-fit-decreasing first, got %s", rankings[0].Plan.Algorithm)
	}
	if rankings[0].Rank != 1 || rankings[1].Rank != 2 {
		t.Errorf("expected ranks 1,2, got %d,%d", rankings[0].Rank, rankings[1].Rank)
	}
	if rankings[0].EfficiencyScore != 100 {
		t.Errorf("expected efficiency 100 at the lower bound, got %v", rankings[0].EfficiencyScore)
	}
	if rankings[0].BinsSaved != 2 || rankings[1].BinsSaved != 0 {
		t.Errorf("unexpected bins saved %d, %d", rankings[0].BinsSaved, rankings[1].BinsSaved)
	}
}

func TestScorer_TiesKeepInputOrder(t *testing.T) {
	scorer := NewScorer(model.DefaultScoringWeights())
	rankings := scorer.Rank([]model.Plan{
		makePlan("first-fit", 10, 8, 8),
		makePlan("next-fit", 10, 8, 8),
		makePlan("first-fit-decreasing", 10, 8, 8),
	})

	want := []string{"first-fit", "next-fit", "first-fit-decreasing"}
	for i, r := range rankings {
		if r.Plan.Algorithm != want[i] {
			t.Errorf("rank %d: got %s, want %s", i+1, r.Plan.Algorithm, want[i])
		}
	}
}

func TestScorer_Warnings(t *testing.T) {
	scorer := NewScorer(model.DefaultScoringWeights())
	rankings := scorer.Rank([]model.Plan{makePlan("next-fit", 10, 9, 2, 9)})

	w := strings.Join(rankings[0].Warnings, "; ")
	if !strings.Contains(w, "1 bins above the lower bound of 2") {
		t.Errorf("expected excess-bin warning, got %q", w)
	}
	if !strings.Contains(w, "1 of 3 bins are under 50% full") {
		t.Errorf("expected underfilled warning, got %q", w)
	}
}

func TestScorer_RationaleIncludesCost(t *testing.T) {
	p := makePlan("first-fit", 10, 10)
	p.MonthlyCost = 70.08
	rankings := NewScorer(model.DefaultScoringWeights()).Rank([]model.Plan{p})

	if !strings.Contains(rankings[0].Rationale, "$70/mo") {
		t.Errorf("expected cost in rationale, got %q", rankings[0].Rationale)
	}
}

func TestScorer_Empty(t *testing.T) {
	if got := NewScorer(model.DefaultScoringWeights()).Rank(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
