package binpack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for unrecognized names.
var ErrUnknownAlgorithm = errors.New("unknown packing algorithm")

// Algorithm names a packing strategy.
type Algorithm string

const (
	FirstFitAlgorithm           Algorithm = "first-fit"
	NextFitAlgorithm            Algorithm = "next-fit"
	FirstFitDecreasingAlgorithm Algorithm = "first-fit-decreasing"
)

// Algorithms returns every supported algorithm in a fixed order.
func Algorithms() []Algorithm {
	return []Algorithm{FirstFitAlgorithm, NextFitAlgorithm, FirstFitDecreasingAlgorithm}
}

var aliases = map[string]Algorithm{
	"ff":                   FirstFitAlgorithm,
	"first-fit":            FirstFitAlgorithm,
	"firstfit":             FirstFitAlgorithm,
	"nf":                   NextFitAlgorithm,
	"next-fit":             NextFitAlgorithm,
	"nextfit":              NextFitAlgorithm,
	"ffd":                  FirstFitDecreasingAlgorithm,
	"first-fit-decreasing": FirstFitDecreasingAlgorithm,
	"firstfitdecreasing":   FirstFitDecreasingAlgorithm,
}

// ParseAlgorithm resolves a name or short alias (ff, nf, ffd).
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "_", "-")))
	if alg, ok := aliases[key]; ok {
		return alg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Pack dispatches to the named algorithm.
func Pack[T any](alg Algorithm, capacity Weight, items []Item[T]) ([][]*T, error) {
	switch alg {
	case FirstFitAlgorithm:
		return FirstFit(capacity, items)
	case NextFitAlgorithm:
		return NextFit(capacity, items)
	case FirstFitDecreasingAlgorithm:
		return FirstFitDecreasing(capacity, items)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}
}
