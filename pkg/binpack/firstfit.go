package binpack

import (
	"iter"
	"slices"
)

// FirstFit places each item, in input order, into the first bin with room,
// opening a new bin at the end when none has. Bins are never closed.
func FirstFit[T any](capacity Weight, items []Item[T]) ([][]*T, error) {
	return FirstFitSeq(capacity, slices.Values(items))
}

// FirstFitSeq is FirstFit over a single-pass sequence.
func FirstFitSeq[T any](capacity Weight, items iter.Seq[Item[T]]) ([][]*T, error) {
	var bins []*bin[T]
	idx := 0
	for it := range items {
		if err := checkWeight(capacity, idx, it.weight); err != nil {
			return nil, err
		}
		idx++

		placed := false
		for _, b := range bins {
			if b.hasRoomFor(it.weight) {
				b.add(it)
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, newBinWith(capacity, it))
		}
	}
	return contentsOf(bins), nil
}
