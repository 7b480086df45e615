// Package binpack packs weighted items into fixed-capacity bins.
//
// Bins hold pointers to the caller's items; nothing is copied or mutated.
// Every call is synchronous and keeps no state between calls, so the
// algorithms are safe to use from concurrent goroutines.
package binpack

// Weight is the unit shared by item weights and bin capacity.
type Weight uint64

// Unsigned is satisfied by the integer types that can weigh themselves.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Kind tells how an Item got its weight.
type Kind uint8

const (
	// KindDirect items weigh their own numeric value.
	KindDirect Kind = iota + 1
	// KindWrapped items carry a weight computed by the caller.
	KindWrapped
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// Item pairs a reference to a caller-owned value with its weight.
// The weight is captured at construction and never re-read.
type Item[T any] struct {
	weight Weight
	ref    *T
	kind   Kind
}

// Direct builds an item whose weight is the value ref points to.
func Direct[N Unsigned](ref *N) Item[N] {
	return Item[N]{weight: Weight(*ref), ref: ref, kind: KindDirect}
}

// Wrap builds an item for an arbitrary value with a precomputed weight.
func Wrap[T any](ref *T, weight Weight) Item[T] {
	return Item[T]{weight: weight, ref: ref, kind: KindWrapped}
}

// Weight returns the item's weight.
func (it Item[T]) Weight() Weight { return it.weight }

// Ref returns the pointer to the original value.
func (it Item[T]) Ref() *T { return it.ref }

// Kind reports which constructor built the item.
func (it Item[T]) Kind() Kind { return it.kind }

// Weigh wraps every element of items using fn to compute its weight.
// The returned items point into items, so the slice must not be
// reallocated while the result is in use.
func Weigh[T any](items []T, fn func(*T) Weight) []Item[T] {
	out := make([]Item[T], len(items))
	for i := range items {
		out[i] = Wrap(&items[i], fn(&items[i]))
	}
	return out
}

// Directs converts a slice of unsigned integers into directly weighted items.
func Directs[N Unsigned](values []N) []Item[N] {
	out := make([]Item[N], len(values))
	for i := range values {
		out[i] = Direct(&values[i])
	}
	return out
}
