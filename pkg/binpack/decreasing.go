package binpack

import "sort"

// FirstFitDecreasing sorts items by descending weight and runs FirstFit.
// Equal weights keep their input order. The caller's slice is left untouched.
func FirstFitDecreasing[T any](capacity Weight, items []Item[T]) ([][]*T, error) {
	// Validate in input order so the reported index matches the caller's slice.
	for i := range items {
		if err := checkWeight(capacity, i, items[i].weight); err != nil {
			return nil, err
		}
	}

	sorted := make([]Item[T], len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].weight > sorted[j].weight
	})

	return FirstFit(capacity, sorted)
}
