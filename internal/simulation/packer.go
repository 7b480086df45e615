package simulation

import (
	"context"

	"github.com/guimove/binfit/internal/model"
	"github.com/guimove/binfit/pkg/binpack"
)

// Packer defines a strategy for placing tasks into bins.
type Packer interface {
	// Pack places every task into bins of the given capacity.
	Pack(ctx context.Context, input PackInput) (*PackResult, error)

	// Name returns the strategy name.
	Name() string
}

// PackInput is the input to a packing run.
type PackInput struct {
	Tasks    []model.Task
	Capacity uint64
}

// PackResult is the output of a packing run. Bins reference the tasks of
// the input slice.
type PackResult struct {
	Bins [][]*model.Task
}

// AlgorithmPacker packs with one of the binpack algorithms.
type AlgorithmPacker struct {
	Algorithm binpack.Algorithm
}

// NewPacker returns a packer for alg.
func NewPacker(alg binpack.Algorithm) *AlgorithmPacker {
	return &AlgorithmPacker{Algorithm: alg}
}

// Name returns the algorithm name.
func (p *AlgorithmPacker) Name() string { return string(p.Algorithm) }

// Pack weighs each task by its Weight field and runs the algorithm.
func (p *AlgorithmPacker) Pack(ctx context.Context, input PackInput) (*PackResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := binpack.Weigh(input.Tasks, taskWeight)
	bins, err := binpack.Pack(p.Algorithm, binpack.Weight(input.Capacity), items)
	if err != nil {
		return nil, err
	}
	return &PackResult{Bins: bins}, nil
}

func taskWeight(t *model.Task) binpack.Weight {
	return binpack.Weight(t.Weight)
}
