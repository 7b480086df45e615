package model

import (
	"math"
	"math/bits"
	"sort"
	"time"
)

// Workset is a point-in-time collection of tasks, serving as input to the
// simulation engine.
type Workset struct {
	CollectedAt time.Time `json:"collected_at"`
	Source      string    `json:"source"`
	Dimension   Dimension `json:"dimension"`
	Tasks       []Task    `json:"tasks"`
}

// TotalWeight returns the sum of all task weights, saturating at
// math.MaxUint64.
func (w Workset) TotalWeight() uint64 {
	var total uint64
	for i := range w.Tasks {
		total = AddWeight(total, w.Tasks[i].Weight)
	}
	return total
}

// AddWeight returns a + b, saturating at math.MaxUint64.
func AddWeight(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// TaskCount returns the number of tasks.
func (w Workset) TaskCount() int {
	return len(w.Tasks)
}

// MaxWeight returns the heaviest task weight, or 0 for an empty set.
func (w Workset) MaxWeight() uint64 {
	var heaviest uint64
	for i := range w.Tasks {
		if w.Tasks[i].Weight > heaviest {
			heaviest = w.Tasks[i].Weight
		}
	}
	return heaviest
}

// Largest returns up to n tasks ordered by descending weight.
// Ties keep their original order.
func (w Workset) Largest(n int) []Task {
	sorted := make([]Task, len(w.Tasks))
	copy(sorted, w.Tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// LowerBound returns the minimum number of bins any packing needs:
// ceil(total / capacity), and at least one bin when there are tasks.
// The total is summed in 128 bits so large weights cannot wrap.
func (w Workset) LowerBound(capacity uint64) int {
	if len(w.Tasks) == 0 {
		return 0
	}
	if capacity == 0 {
		return 1
	}

	var hi, lo uint64
	for i := range w.Tasks {
		var carry uint64
		lo, carry = bits.Add64(lo, w.Tasks[i].Weight, 0)
		hi += carry
	}
	if hi >= capacity {
		return math.MaxInt
	}
	q, r := bits.Div64(hi, lo, capacity)
	return max(ceilBins(q, r != 0), 1)
}

// LowerBound returns ceil(total / capacity), or 0 when capacity is 0.
func LowerBound(total, capacity uint64) int {
	if capacity == 0 {
		return 0
	}
	return ceilBins(total/capacity, total%capacity != 0)
}

func ceilBins(q uint64, partial bool) int {
	if partial && q < math.MaxUint64 {
		q++
	}
	if q > math.MaxInt {
		return math.MaxInt
	}
	return int(q)
}
