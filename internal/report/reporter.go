package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/guimove/binfit/internal/model"
)

// Reporter formats packing results and writes them to an output destination.
type Reporter interface {
	// Plan reports the outcome of a single algorithm.
	Plan(ctx context.Context, plan model.Plan, meta Meta) error

	// Comparison reports ranked plans, best first.
	Comparison(ctx context.Context, rankings []model.Ranking, meta Meta) error

	// Summary reports a workset without packing it.
	Summary(ctx context.Context, summary Summary, meta Meta) error
}

// Meta contains contextual metadata for the report.
type Meta struct {
	Source      string                  `json:"source"`
	Dimension   model.Dimension         `json:"dimension"`
	Capacity    uint64                  `json:"capacity,omitempty"`
	Instance    *model.InstanceCapacity `json:"instance,omitempty"`
	CollectedAt time.Time               `json:"collected_at"`
	TaskCount   int                     `json:"task_count"`
	TotalWeight uint64                  `json:"total_weight"`

	// Presentation options, not serialized
	ShowTasks bool `json:"-"`
	TopN      int  `json:"-"`
}

// NewMeta fills the workset-derived fields of a Meta.
func NewMeta(ws model.Workset, capacity uint64, instance *model.InstanceCapacity) Meta {
	return Meta{
		Source:      ws.Source,
		Dimension:   ws.Dimension,
		Capacity:    capacity,
		Instance:    instance,
		CollectedAt: ws.CollectedAt,
		TaskCount:   ws.TaskCount(),
		TotalWeight: ws.TotalWeight(),
	}
}

// Summary describes a workset for the inspect command.
type Summary struct {
	TaskCount   int          `json:"task_count"`
	TotalWeight uint64       `json:"total_weight"`
	MaxWeight   uint64       `json:"max_weight"`
	LowerBound  int          `json:"lower_bound,omitempty"` // 0 when no capacity is known
	Oversize    int          `json:"oversize,omitempty"`    // tasks heavier than the capacity
	Largest     []model.Task `json:"largest"`
}

// Summarize computes a Summary. capacity may be 0 when unknown.
func Summarize(ws model.Workset, capacity uint64, topN int) Summary {
	s := Summary{
		TaskCount:   ws.TaskCount(),
		TotalWeight: ws.TotalWeight(),
		MaxWeight:   ws.MaxWeight(),
		Largest:     ws.Largest(topN),
	}
	if capacity > 0 {
		s.LowerBound = ws.LowerBound(capacity)
		for i := range ws.Tasks {
			if ws.Tasks[i].Weight > capacity {
				s.Oversize++
			}
		}
	}
	return s
}

// Formats lists the supported output formats.
var Formats = []string{"table", "json", "markdown", "csv"}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) (Reporter, error) {
	switch format {
	case "", "table":
		return &TableReporter{w: w}, nil
	case "json":
		return &JSONReporter{w: w}, nil
	case "markdown":
		return &MarkdownReporter{w: w}, nil
	case "csv":
		return &CSVReporter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// quantity renders v in the dimension's unit: 1930m, 7518 MiB, 42.
func quantity(v uint64, d model.Dimension) string {
	switch d {
	case model.DimensionCPU:
		return fmt.Sprintf("%d%s", v, d.Unit())
	case model.DimensionMemory:
		return fmt.Sprintf("%d %s", v, d.Unit())
	default:
		return fmt.Sprintf("%d", v)
	}
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
