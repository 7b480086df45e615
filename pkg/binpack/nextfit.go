package binpack

import (
	"iter"
	"slices"
)

// NextFit keeps a single bin open. An item that does not fit closes it and
// starts the next one. It runs in O(n) but usually opens more bins than
// FirstFit.
func NextFit[T any](capacity Weight, items []Item[T]) ([][]*T, error) {
	return NextFitSeq(capacity, slices.Values(items))
}

// NextFitSeq is NextFit over a single-pass sequence.
func NextFitSeq[T any](capacity Weight, items iter.Seq[Item[T]]) ([][]*T, error) {
	var closed []*bin[T]
	current := newBin[T](capacity)
	idx := 0
	for it := range items {
		if err := checkWeight(capacity, idx, it.weight); err != nil {
			return nil, err
		}
		idx++

		if current.hasRoomFor(it.weight) {
			current.add(it)
			continue
		}
		if !current.empty() {
			closed = append(closed, current)
		}
		current = newBinWith(capacity, it)
	}
	// The initial placeholder never reaches the output.
	if !current.empty() {
		closed = append(closed, current)
	}
	return contentsOf(closed), nil
}
