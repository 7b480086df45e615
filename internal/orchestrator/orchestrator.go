package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/guimove/binfit/internal/aws"
	"github.com/guimove/binfit/internal/config"
	"github.com/guimove/binfit/internal/logging"
	"github.com/guimove/binfit/internal/model"
	"github.com/guimove/binfit/internal/report"
	"github.com/guimove/binfit/internal/simulation"
	"github.com/guimove/binfit/internal/source"
	"github.com/guimove/binfit/internal/telemetry"
	"github.com/guimove/binfit/pkg/binpack"
)

// Orchestrator coordinates the load → resolve → pack → report pipeline.
type Orchestrator struct {
	Source   source.Source
	Resolver aws.CapacityResolver // nil when the capacity is explicit
	Config   config.Config
	Engine   *simulation.Engine
	Writer   io.Writer
	Logger   *zap.Logger
}

// New creates an orchestrator with the given dependencies.
func New(src source.Source, resolver aws.CapacityResolver, cfg config.Config, metrics *telemetry.Metrics, logger *zap.Logger) *Orchestrator {
	logger = logging.OrNop(logger)

	engine := simulation.NewEngine(simulation.NewScorer(cfg.ScoringWeights()))
	engine.Metrics = metrics
	engine.Logger = logger

	return &Orchestrator{
		Source:   src,
		Resolver: resolver,
		Config:   cfg,
		Engine:   engine,
		Writer:   os.Stdout,
		Logger:   logger,
	}
}

// Load reads the workset from the source and tags it with the configured dimension.
func (o *Orchestrator) Load(ctx context.Context) (*model.Workset, error) {
	o.Logger.Info("loading tasks", zap.String("source", o.Source.Name()))

	ws, err := o.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if ws.Dimension == "" {
		ws.Dimension = o.Config.Dimension()
	}

	o.Logger.Info("loaded tasks",
		zap.Int("tasks", ws.TaskCount()),
		zap.Uint64("total_weight", ws.TotalWeight()),
		zap.String("dimension", string(ws.Dimension)))
	return ws, nil
}

// Target resolves the bin capacity. An explicit capacity wins; an instance
// type still contributes its price when both are set.
func (o *Orchestrator) Target(ctx context.Context) (simulation.Target, error) {
	cfg := o.Config
	target := simulation.Target{Capacity: cfg.Packing.Capacity}

	if cfg.AWS.InstanceType == "" || o.Resolver == nil {
		if target.Capacity == 0 && cfg.AWS.InstanceType != "" {
			return target, fmt.Errorf("instance type %s given but no AWS provider configured", cfg.AWS.InstanceType)
		}
		return target, nil
	}

	o.Logger.Info("resolving instance capacity",
		zap.String("instance_type", cfg.AWS.InstanceType),
		zap.String("region", cfg.AWS.Region))

	ic, err := o.Resolver.Resolve(ctx, cfg.AWS.InstanceType, cfg.Dimension())
	if err != nil {
		if target.Capacity > 0 {
			o.Logger.Warn("instance lookup failed; using explicit capacity without cost", zap.Error(err))
			return target, nil
		}
		return target, fmt.Errorf("resolving capacity: %w", err)
	}

	target.Instance = ic
	if target.Capacity == 0 {
		target.Capacity = ic.Capacity()
	}
	return target, nil
}

// Algorithms returns the configured comparison set, or every algorithm.
func (o *Orchestrator) Algorithms() ([]binpack.Algorithm, error) {
	if len(o.Config.Packing.Algorithms) == 0 {
		return binpack.Algorithms(), nil
	}
	algs := make([]binpack.Algorithm, 0, len(o.Config.Packing.Algorithms))
	for _, name := range o.Config.Packing.Algorithms {
		alg, err := binpack.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return algs, nil
}

// Pack runs the configured algorithm and reports the plan.
func (o *Orchestrator) Pack(ctx context.Context) (*model.Plan, error) {
	alg, err := binpack.ParseAlgorithm(o.Config.Packing.Algorithm)
	if err != nil {
		return nil, err
	}
	ws, target, err := o.prepare(ctx)
	if err != nil {
		return nil, err
	}

	plan, err := o.Engine.Run(ctx, alg, *ws, target)
	if err != nil {
		return nil, err
	}

	if err := o.reporter().Plan(ctx, *plan, o.meta(*ws, target)); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}
	return plan, nil
}

// Compare runs every configured algorithm and reports the ranking.
func (o *Orchestrator) Compare(ctx context.Context) ([]model.Ranking, error) {
	algs, err := o.Algorithms()
	if err != nil {
		return nil, err
	}
	ws, target, err := o.prepare(ctx)
	if err != nil {
		return nil, err
	}

	o.Logger.Info("comparing algorithms", zap.Int("algorithms", len(algs)), zap.Uint64("capacity", target.Capacity))

	rankings, err := o.Engine.RunAll(ctx, algs, *ws, target)
	if err != nil {
		return nil, err
	}

	if err := o.reporter().Comparison(ctx, rankings, o.meta(*ws, target)); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}
	return rankings, nil
}

// Inspect loads tasks and reports totals without packing. The capacity is
// optional here.
func (o *Orchestrator) Inspect(ctx context.Context) (*report.Summary, error) {
	ws, err := o.Load(ctx)
	if err != nil {
		return nil, err
	}

	target, err := o.Target(ctx)
	if err != nil {
		o.Logger.Warn("capacity unavailable; skipping bounds", zap.Error(err))
		target = simulation.Target{}
	}

	summary := report.Summarize(*ws, target.Capacity, o.Config.Output.TopN)
	if err := o.reporter().Summary(ctx, summary, o.meta(*ws, target)); err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}
	return &summary, nil
}

func (o *Orchestrator) prepare(ctx context.Context) (*model.Workset, simulation.Target, error) {
	if err := o.Config.ValidateCapacity(); err != nil {
		return nil, simulation.Target{}, err
	}
	ws, err := o.Load(ctx)
	if err != nil {
		return nil, simulation.Target{}, err
	}
	target, err := o.Target(ctx)
	if err != nil {
		return nil, simulation.Target{}, err
	}
	return ws, target, nil
}

func (o *Orchestrator) reporter() report.Reporter {
	r, err := report.NewReporter(o.Config.Output.Format, o.Writer)
	if err != nil {
		// Validate rejects unknown formats before we get here.
		r, _ = report.NewReporter("table", o.Writer)
	}
	return r
}

func (o *Orchestrator) meta(ws model.Workset, target simulation.Target) report.Meta {
	m := report.NewMeta(ws, target.Capacity, target.Instance)
	m.ShowTasks = o.Config.Output.ShowTasks
	m.TopN = o.Config.Output.TopN
	return m
}
