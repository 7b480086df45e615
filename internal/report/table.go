package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/guimove/binfit/internal/model"
)

const maxTaskList = 60

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// TableReporter outputs results as formatted terminal tables.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) header(title string, meta Meta) {
	fmt.Fprintf(r.w, "\n%s\n", titleStyle.Render(title))
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.w, "Source:      %s\n", meta.Source)
	fmt.Fprintf(r.w, "Dimension:   %s\n", meta.Dimension)
	fmt.Fprintf(r.w, "Tasks:       %d (total %s)\n", meta.TaskCount, quantity(meta.TotalWeight, meta.Dimension))
	if meta.Capacity > 0 {
		fmt.Fprintf(r.w, "Capacity:    %s\n", quantity(meta.Capacity, meta.Dimension))
	}
	if meta.Instance != nil {
		fmt.Fprintf(r.w, "Instance:    %s (%s, %d vCPU, %d MiB)\n",
			meta.Instance.InstanceType, meta.Instance.Region, meta.Instance.VCPUs, meta.Instance.MemoryMiB)
	}
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (r *TableReporter) Plan(ctx context.Context, plan model.Plan, meta Meta) error {
	r.header("binfit plan: "+plan.Algorithm, meta)

	headers := []string{"Bin", "Load", "Fill", "Free", "Tasks"}
	t := newTable(headers...)
	for _, b := range plan.Bins {
		tasks := fmt.Sprintf("%d", len(b.Tasks))
		if meta.ShowTasks {
			tasks = taskList(b.Tasks)
		}
		t.Row(
			fmt.Sprintf("#%d", b.Index+1),
			quantity(b.Load, plan.Dimension),
			pct(b.Fill()),
			quantity(b.Free(), plan.Dimension),
			tasks,
		)
	}
	if len(plan.Bins) > 0 {
		fmt.Fprintln(r.w, t.Render())
	}

	r.planSummary(plan)
	return nil
}

func (r *TableReporter) planSummary(plan model.Plan) {
	fmt.Fprintf(r.w, "\n  Bins:           %d (lower bound %d)\n", plan.TotalBins, plan.LowerBound)
	fmt.Fprintf(r.w, "  Average fill:   %s\n", pct(plan.AvgFill))
	fmt.Fprintf(r.w, "  Minimum fill:   %s\n", pct(plan.MinFill))
	fmt.Fprintf(r.w, "  Wasted:         %s\n", quantity(plan.WastedSpace, plan.Dimension))
	fmt.Fprintf(r.w, "  Balance score:  %.2f\n", plan.Fragmentation.BalanceScore)
	if plan.MonthlyCost > 0 {
		fmt.Fprintf(r.w, "  Monthly cost:   $%.0f\n", plan.MonthlyCost)
	}
	fmt.Fprintf(r.w, "  Duration:       %s\n", plan.Duration)
}

func (r *TableReporter) Comparison(ctx context.Context, rankings []model.Ranking, meta Meta) error {
	r.header("binfit comparison", meta)

	if len(rankings) == 0 {
		fmt.Fprintf(r.w, "No plans available.\n")
		return nil
	}

	t := newTable("Rank", "Algorithm", "Bins", "Excess", "Avg fill", "Min fill", "Score", "$/month")
	for _, rk := range rankings {
		cost := "-"
		if rk.Plan.MonthlyCost > 0 {
			cost = fmt.Sprintf("%.0f", rk.Plan.MonthlyCost)
		}
		t.Row(
			fmt.Sprintf("#%d", rk.Rank),
			rk.Plan.Algorithm,
			fmt.Sprintf("%d", rk.Plan.TotalBins),
			fmt.Sprintf("%d", rk.Plan.ExcessBins),
			pct(rk.Plan.AvgFill),
			pct(rk.Plan.MinFill),
			fmt.Sprintf("%.1f", rk.OverallScore),
			cost,
		)
	}
	fmt.Fprintln(r.w, t.Render())

	top := rankings[0]
	fmt.Fprintf(r.w, "\nRecommended: %s\n", top.Plan.Algorithm)
	fmt.Fprintf(r.w, "  %s\n", top.Rationale)
	if top.BinsSaved > 0 {
		fmt.Fprintf(r.w, "  Saves %d bins over the worst plan\n", top.BinsSaved)
	}
	for _, w := range top.Warnings {
		fmt.Fprintf(r.w, "  %s\n", warnStyle.Render("! "+w))
	}

	n := meta.TopN
	if meta.ShowTasks && n > 0 {
		for _, rk := range rankings[:min(n, len(rankings))] {
			fmt.Fprintf(r.w, "\n%s\n", titleStyle.Render(rk.Plan.Algorithm))
			for _, b := range rk.Plan.Bins {
				fmt.Fprintf(r.w, "  #%-4d %6s  %s\n", b.Index+1, pct(b.Fill()), taskList(b.Tasks))
			}
		}
	}
	return nil
}

func (r *TableReporter) Summary(ctx context.Context, s Summary, meta Meta) error {
	r.header("binfit inspect", meta)

	fmt.Fprintf(r.w, "  Heaviest task:  %s\n", quantity(s.MaxWeight, meta.Dimension))
	if s.LowerBound > 0 {
		fmt.Fprintf(r.w, "  Lower bound:    %d bins\n", s.LowerBound)
	}
	if s.Oversize > 0 {
		fmt.Fprintf(r.w, "  %s\n", warnStyle.Render(fmt.Sprintf("! %d tasks exceed the bin capacity", s.Oversize)))
	}

	if len(s.Largest) == 0 {
		return nil
	}
	t := newTable("Task", "Weight")
	for _, task := range s.Largest {
		t.Row(task.Key(), quantity(task.Weight, meta.Dimension))
	}
	fmt.Fprintf(r.w, "\nLargest tasks:\n%s\n", t.Render())
	return nil
}

func taskList(tasks []model.Task) string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Key()
	}
	s := strings.Join(names, ", ")
	if len(s) > maxTaskList {
		s = s[:maxTaskList-3] + "..."
	}
	return s
}
