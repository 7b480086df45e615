package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/guimove/binfit/internal/logging"
	"github.com/guimove/binfit/internal/model"
	"github.com/guimove/binfit/internal/telemetry"
	"github.com/guimove/binfit/pkg/binpack"
)

// Target is the bin shape plans are computed for.
type Target struct {
	Capacity uint64
	Instance *model.InstanceCapacity // optional, adds cost to plans
}

// Engine runs packers over a workset and turns their output into plans.
type Engine struct {
	Scorer      *Scorer
	Parallelism int
	Metrics     *telemetry.Metrics // optional
	Logger      *zap.Logger
}

// NewEngine creates a simulation engine.
func NewEngine(scorer *Scorer) *Engine {
	return &Engine{
		Scorer:      scorer,
		Parallelism: runtime.NumCPU(),
		Logger:      zap.NewNop(),
	}
}

// Run packs the workset with a single algorithm.
func (e *Engine) Run(ctx context.Context, alg binpack.Algorithm, ws model.Workset, target Target) (*model.Plan, error) {
	plan, err := e.runOne(ctx, NewPacker(alg), ws, target)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// RunAll packs the workset with every algorithm and returns ranked plans.
// An oversize task fails every algorithm alike, so it aborts the whole run.
func (e *Engine) RunAll(
	ctx context.Context,
	algorithms []binpack.Algorithm,
	ws model.Workset,
	target Target,
) ([]model.Ranking, error) {
	if len(algorithms) == 0 {
		return nil, fmt.Errorf("no algorithms to compare")
	}

	plans := make([]model.Plan, len(algorithms))
	errs := make([]error, len(algorithms))

	sem := make(chan struct{}, max(e.Parallelism, 1))
	var wg sync.WaitGroup

	for i, alg := range algorithms {
		wg.Add(1)
		go func(idx int, packer Packer) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			plans[idx], errs[idx] = e.runOne(ctx, packer, ws, target)
		}(i, NewPacker(alg))
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var successful []model.Plan
	for i, err := range errs {
		if errors.Is(err, binpack.ErrItemTooLarge) {
			return nil, err
		}
		if err != nil {
			e.logger().Warn("algorithm failed", zap.String("algorithm", string(algorithms[i])), zap.Error(err))
			continue
		}
		successful = append(successful, plans[i])
	}

	if len(successful) == 0 {
		return nil, fmt.Errorf("all algorithms failed")
	}

	return e.Scorer.Rank(successful), nil
}

func (e *Engine) runOne(ctx context.Context, packer Packer, ws model.Workset, target Target) (model.Plan, error) {
	start := time.Now()

	result, err := packer.Pack(ctx, PackInput{Tasks: ws.Tasks, Capacity: target.Capacity})
	if err != nil {
		outcome := telemetry.OutcomeError
		if errors.Is(err, binpack.ErrItemTooLarge) {
			outcome = telemetry.OutcomeItemTooLarge
		}
		e.Metrics.ObserveFailure(packer.Name(), outcome)
		return model.Plan{}, fmt.Errorf("packing with %s: %w", packer.Name(), err)
	}

	duration := time.Since(start)
	plan := buildPlan(packer.Name(), result, ws, target, duration)

	e.Metrics.ObservePack(plan.Algorithm, plan.TotalBins, plan.TotalTasks, plan.AvgFill, duration)
	e.logger().Debug("packed",
		zap.String("algorithm", plan.Algorithm),
		zap.Int("tasks", plan.TotalTasks),
		zap.Int("bins", plan.TotalBins),
		zap.Int("lower_bound", plan.LowerBound),
		zap.Duration("duration", duration))
	return plan, nil
}

func (e *Engine) logger() *zap.Logger {
	return logging.OrNop(e.Logger)
}

// buildPlan computes aggregate metrics from a pack result.
func buildPlan(
	algorithm string,
	pr *PackResult,
	ws model.Workset,
	target Target,
	duration time.Duration,
) model.Plan {
	plan := model.Plan{
		Algorithm:  algorithm,
		Capacity:   target.Capacity,
		Dimension:  ws.Dimension,
		Bins:       make([]model.Bin, len(pr.Bins)),
		TotalBins:  len(pr.Bins),
		LowerBound: ws.LowerBound(target.Capacity),
		Instance:   target.Instance,
		Duration:   duration,
	}

	for i, contents := range pr.Bins {
		b := model.Bin{Index: i, Capacity: target.Capacity, Tasks: make([]model.Task, len(contents))}
		for j, t := range contents {
			b.Tasks[j] = *t
			b.Load += t.Weight
		}
		plan.Bins[i] = b
		plan.TotalTasks += len(contents)
		plan.TotalLoad = model.AddWeight(plan.TotalLoad, b.Load)
		plan.WastedSpace = model.AddWeight(plan.WastedSpace, b.Free())
	}
	plan.ExcessBins = plan.TotalBins - plan.LowerBound

	if target.Instance != nil {
		plan.MonthlyCost = float64(plan.TotalBins) * target.Instance.MonthlyCost()
	}

	if len(plan.Bins) == 0 {
		plan.Fragmentation = AnalyzeFragmentation(nil)
		return plan
	}

	plan.MinFill = plan.Bins[0].Fill()
	var fillSum float64
	for i := range plan.Bins {
		f := plan.Bins[i].Fill()
		fillSum += f
		plan.MinFill = min(plan.MinFill, f)
	}
	plan.AvgFill = fillSum / float64(len(plan.Bins))
	plan.Fragmentation = AnalyzeFragmentation(plan.Bins)

	return plan
}
