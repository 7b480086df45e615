package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/guimove/binfit/internal/model"
)

// CSVReporter outputs one row per task, per plan, or per listed task.
type CSVReporter struct {
	w io.Writer
}

func (r *CSVReporter) write(header []string, rows [][]string) error {
	cw := csv.NewWriter(r.w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}

func u(v uint64) string  { return strconv.FormatUint(v, 10) }
func f(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func (r *CSVReporter) Plan(ctx context.Context, plan model.Plan, meta Meta) error {
	var rows [][]string
	for _, b := range plan.Bins {
		for _, t := range b.Tasks {
			rows = append(rows, []string{
				plan.Algorithm, strconv.Itoa(b.Index + 1), t.Name, t.Namespace, u(t.Weight), u(b.Load), u(b.Capacity),
			})
		}
	}
	return r.write([]string{"algorithm", "bin", "task", "namespace", "weight", "bin_load", "bin_capacity"}, rows)
}

func (r *CSVReporter) Comparison(ctx context.Context, rankings []model.Ranking, meta Meta) error {
	rows := make([][]string, len(rankings))
	for i, rk := range rankings {
		rows[i] = []string{
			strconv.Itoa(rk.Rank),
			rk.Plan.Algorithm,
			strconv.Itoa(rk.Plan.TotalBins),
			strconv.Itoa(rk.Plan.LowerBound),
			strconv.Itoa(rk.Plan.ExcessBins),
			f(rk.Plan.AvgFill),
			f(rk.Plan.MinFill),
			f(rk.OverallScore),
			f(rk.Plan.MonthlyCost),
		}
	}
	return r.write([]string{
		"rank", "algorithm", "bins", "lower_bound", "excess_bins", "avg_fill", "min_fill", "score", "monthly_cost",
	}, rows)
}

func (r *CSVReporter) Summary(ctx context.Context, s Summary, meta Meta) error {
	rows := make([][]string, len(s.Largest))
	for i, t := range s.Largest {
		rows[i] = []string{t.Name, t.Namespace, u(t.Weight)}
	}
	return r.write([]string{"task", "namespace", "weight"}, rows)
}
