package binpack

import "fmt"

// bin accumulates item references up to a fixed capacity.
type bin[T any] struct {
	capacity Weight
	load     Weight
	contents []*T
}

func newBin[T any](capacity Weight) *bin[T] {
	return &bin[T]{capacity: capacity}
}

// newBinWith opens a bin already holding it.
func newBinWith[T any](capacity Weight, it Item[T]) *bin[T] {
	b := newBin[T](capacity)
	b.add(it)
	return b
}

// hasRoomFor reports whether load + w <= capacity without overflowing.
func (b *bin[T]) hasRoomFor(w Weight) bool {
	return w <= b.capacity-b.load
}

func (b *bin[T]) add(it Item[T]) {
	if !b.hasRoomFor(it.weight) {
		panic(fmt.Sprintf("binpack: adding weight %d to bin with load %d/%d", it.weight, b.load, b.capacity))
	}
	b.load += it.weight
	b.contents = append(b.contents, it.ref)
}

func (b *bin[T]) empty() bool { return len(b.contents) == 0 }

// contentsOf strips the accounting and returns only the references.
func contentsOf[T any](bins []*bin[T]) [][]*T {
	out := make([][]*T, len(bins))
	for i, b := range bins {
		out[i] = b.contents
	}
	return out
}
