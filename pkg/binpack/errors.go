package binpack

import (
	"errors"
	"fmt"
)

// ErrItemTooLarge is returned when an item weighs more than the bin capacity.
var ErrItemTooLarge = errors.New("item larger than capacity")

// ItemTooLargeError identifies the first item that could not fit in an empty bin.
type ItemTooLargeError struct {
	Index    int // position in the caller's input
	Weight   Weight
	Capacity Weight
}

func (e *ItemTooLargeError) Error() string {
	return fmt.Sprintf("item %d: weight %d exceeds bin capacity %d", e.Index, e.Weight, e.Capacity)
}

func (e *ItemTooLargeError) Unwrap() error { return ErrItemTooLarge }

func checkWeight(capacity Weight, index int, w Weight) error {
	if w > capacity {
		return &ItemTooLargeError{Index: index, Weight: w, Capacity: capacity}
	}
	return nil
}
