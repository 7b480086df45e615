package binpack

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

// values dereferences packed bins back to their weights.
func values[N Unsigned](bins [][]*N) [][]N {
	out := make([][]N, len(bins))
	for i, b := range bins {
		out[i] = make([]N, len(b))
		for j, p := range b {
			out[i][j] = *p
		}
	}
	return out
}

func equalBins[N Unsigned](got, want [][]N) bool {
	return slices.EqualFunc(got, want, func(a, b []N) bool { return slices.Equal(a, b) })
}

type packFunc func(Weight, []Item[uint]) ([][]*uint, error)

var algorithms = map[Algorithm]packFunc{
	FirstFitAlgorithm:           FirstFit[uint],
	NextFitAlgorithm:            NextFit[uint],
	FirstFitDecreasingAlgorithm: FirstFitDecreasing[uint],
}

func TestAlgorithms_Examples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		alg      Algorithm
		capacity Weight
		input    []uint
		want     [][]uint
	}{
		{"FirstFitOrdered", FirstFitAlgorithm, 5, []uint{1, 2, 3, 4}, [][]uint{{1, 2}, {3}, {4}}},
		{"NextFitOrdered", NextFitAlgorithm, 5, []uint{1, 2, 3, 4}, [][]uint{{1, 2}, {3}, {4}}},
		{"DecreasingOrdered", FirstFitDecreasingAlgorithm, 5, []uint{1, 2, 3, 4}, [][]uint{{4, 1}, {3, 2}}},
		{"NextFitClosesFullBin", NextFitAlgorithm, 4, []uint{2, 2, 1, 2}, [][]uint{{2, 2}, {1, 2}}},
		{"FirstFitSameAsNextFit", FirstFitAlgorithm, 4, []uint{2, 2, 1, 2}, [][]uint{{2, 2}, {1, 2}}},
		{"FirstFitRevisitsEarlierBin", FirstFitAlgorithm, 4, []uint{3, 3, 1}, [][]uint{{3, 1}, {3}}},
		{"NextFitNeverRevisits", NextFitAlgorithm, 4, []uint{3, 3, 1}, [][]uint{{3}, {3, 1}}},
		{"FirstFitFillsGaps", FirstFitAlgorithm, 10, []uint{6, 7, 3, 4, 2}, [][]uint{{6, 3}, {7, 2}, {4}}},
		{"NextFitOneBinPerSpill", NextFitAlgorithm, 10, []uint{6, 7, 3, 4, 2}, [][]uint{{6}, {7, 3}, {4, 2}}},
		{"ExactCapacity", FirstFitAlgorithm, 3, []uint{3, 3}, [][]uint{{3}, {3}}},
		{"ZeroWeights", NextFitAlgorithm, 1, []uint{0, 1, 0}, [][]uint{{0, 1, 0}}},
		{"ZeroCapacityZeroWeights", FirstFitAlgorithm, 0, []uint{0, 0}, [][]uint{{0, 0}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := slices.Clone(tc.input)
			bins, err := algorithms[tc.alg](tc.capacity, Directs(input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := values(bins); !equalBins(got, tc.want) {
				t.Fatalf("%s(%d, %v) = %v, want %v", tc.alg, tc.capacity, tc.input, got, tc.want)
			}
		})
	}
}

func TestAlgorithms_Empty(t *testing.T) {
	t.Parallel()

	for alg, fn := range algorithms {
		bins, err := fn(1, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", alg, err)
		}
		if bins == nil || len(bins) != 0 {
			t.Errorf("%s: expected empty bin list, got %v", alg, bins)
		}
	}
}

func TestAlgorithms_ItemTooLarge(t *testing.T) {
	t.Parallel()

	for alg, fn := range algorithms {
		input := []uint{1, 2, 9, 1}
		bins, err := fn(5, Directs(input))
		if !errors.Is(err, ErrItemTooLarge) {
			t.Fatalf("%s: expected ErrItemTooLarge, got %v", alg, err)
		}
		if bins != nil {
			t.Errorf("%s: expected no bins on failure, got %v", alg, bins)
		}

		var tooLarge *ItemTooLargeError
		if !errors.As(err, &tooLarge) {
			t.Fatalf("%s: expected *ItemTooLargeError, got %T", alg, err)
		}
		if tooLarge.Index != 2 || tooLarge.Weight != 9 || tooLarge.Capacity != 5 {
			t.Errorf("%s: unexpected error detail %+v", alg, tooLarge)
		}
	}
}

func TestAlgorithms_ItemTooLargeSingle(t *testing.T) {
	t.Parallel()

	for alg, fn := range algorithms {
		input := []uint{2}
		if _, err := fn(1, Directs(input)); !errors.Is(err, ErrItemTooLarge) {
			t.Errorf("%s: expected ErrItemTooLarge, got %v", alg, err)
		}
	}
}

func TestAlgorithms_ConservationAndCapacity(t *testing.T) {
	t.Parallel()

	input := make([]uint, 200)
	for i := range input {
		input[i] = uint((i*37)%23 + 1)
	}
	const capacity = 30

	for alg, fn := range algorithms {
		items := Directs(input)
		bins, err := fn(capacity, items)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}

		seen := make(map[*uint]int, len(input))
		for i, b := range bins {
			if len(b) == 0 {
				t.Errorf("%s: bin %d is empty", alg, i)
			}
			var load uint
			for _, p := range b {
				seen[p]++
				load += *p
			}
			if load > capacity {
				t.Errorf("%s: bin %d load %d exceeds capacity %d", alg, i, load, capacity)
			}
		}

		if len(seen) != len(input) {
			t.Fatalf("%s: expected %d distinct items, got %d", alg, len(input), len(seen))
		}
		for i := range input {
			if seen[&input[i]] != 1 {
				t.Errorf("%s: item %d placed %d times", alg, i, seen[&input[i]])
			}
		}
	}
}

func TestAlgorithms_DoNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []uint{1, 5, 3, 5, 2}
	want := slices.Clone(input)
	items := Directs(input)
	before := slices.Clone(items)

	for alg, fn := range algorithms {
		if _, err := fn(6, items); err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if !slices.Equal(input, want) {
			t.Fatalf("%s: input values changed to %v", alg, input)
		}
		if !slices.Equal(items, before) {
			t.Fatalf("%s: item order changed", alg)
		}
	}
}

type tagged struct {
	tag    string
	weight Weight
}

func TestFirstFitDecreasing_StableTies(t *testing.T) {
	t.Parallel()

	input := []tagged{
		{"a", 2}, {"b", 3}, {"c", 2}, {"d", 3}, {"e", 1}, {"f", 2},
	}
	items := Weigh(input, func(t *tagged) Weight { return t.weight })

	bins, err := FirstFitDecreasing(3, items)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, b := range bins {
		label := ""
		for _, p := range b {
			label += p.tag
		}
		got = append(got, label)
	}
	// Sorted order: b d a c f e; each 3 fills a bin, 2s pair with 1 only once.
	want := []string{"b", "d", "ae", "c", "f"}
	if !slices.Equal(got, want) {
		t.Fatalf("got bins %v, want %v", got, want)
	}
}

func TestFirstFitDecreasing_ReportsInputIndex(t *testing.T) {
	t.Parallel()

	input := []uint{1, 2, 3, 8, 9}
	_, err := FirstFitDecreasing(5, Directs(input))

	var tooLarge *ItemTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected *ItemTooLargeError, got %v", err)
	}
	if tooLarge.Index != 3 {
		t.Errorf("expected index 3, got %d", tooLarge.Index)
	}
}

func TestSeqVariants(t *testing.T) {
	t.Parallel()

	input := []uint{3, 3, 1}
	seq := func(yield func(Item[uint]) bool) {
		for i := range input {
			if !yield(Direct(&input[i])) {
				return
			}
		}
	}

	ff, err := FirstFitSeq(4, seq)
	if err != nil {
		t.Fatal(err)
	}
	if got := values(ff); !equalBins(got, [][]uint{{3, 1}, {3}}) {
		t.Errorf("FirstFitSeq = %v", got)
	}

	nf, err := NextFitSeq(4, seq)
	if err != nil {
		t.Fatal(err)
	}
	if got := values(nf); !equalBins(got, [][]uint{{3}, {3, 1}}) {
		t.Errorf("NextFitSeq = %v", got)
	}
}

func TestPack_Dispatch(t *testing.T) {
	t.Parallel()

	for _, alg := range Algorithms() {
		input := []uint{3, 3, 1}
		got, err := Pack(alg, 4, Directs(input))
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		want, _ := algorithms[alg](4, Directs(input))
		if !equalBins(values(got), values(want)) {
			t.Errorf("%s: Pack = %v, direct call = %v", alg, values(got), values(want))
		}
	}

	if _, err := Pack[uint]("best-fit", 4, nil); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	tests := map[string]Algorithm{
		"ff":                   FirstFitAlgorithm,
		"First-Fit":            FirstFitAlgorithm,
		"next_fit":             NextFitAlgorithm,
		" nf ":                 NextFitAlgorithm,
		"ffd":                  FirstFitDecreasingAlgorithm,
		"first-fit-decreasing": FirstFitDecreasingAlgorithm,
	}
	for in, want := range tests {
		got, err := ParseAlgorithm(in)
		if err != nil {
			t.Errorf("ParseAlgorithm(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAlgorithm(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseAlgorithm("worst-fit"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func BenchmarkAlgorithms(b *testing.B) {
	input := make([]uint, 10_000)
	for i := range input {
		input[i] = uint((i*7919)%97 + 1)
	}
	items := Directs(input)

	for _, alg := range Algorithms() {
		b.Run(fmt.Sprint(alg), func(b *testing.B) {
			for b.Loop() {
				if _, err := Pack(alg, 100, items); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
