package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/guimove/binfit/internal/model"
)

// MarkdownReporter outputs results as GitHub-flavored markdown.
type MarkdownReporter struct {
	w io.Writer
}

func (r *MarkdownReporter) meta(title string, meta Meta) {
	fmt.Fprintf(r.w, "## %s\n\n", title)
	fmt.Fprintf(r.w, "- **Source:** %s\n", meta.Source)
	fmt.Fprintf(r.w, "- **Dimension:** %s\n", meta.Dimension)
	fmt.Fprintf(r.w, "- **Tasks:** %d (total %s)\n", meta.TaskCount, quantity(meta.TotalWeight, meta.Dimension))
	if meta.Capacity > 0 {
		fmt.Fprintf(r.w, "- **Capacity:** %s\n", quantity(meta.Capacity, meta.Dimension))
	}
	if meta.Instance != nil {
		fmt.Fprintf(r.w, "- **Instance:** `%s` (%s)\n", meta.Instance.InstanceType, meta.Instance.Region)
	}
	fmt.Fprintln(r.w)
}

func (r *MarkdownReporter) Plan(ctx context.Context, plan model.Plan, meta Meta) error {
	r.meta("Plan: "+plan.Algorithm, meta)

	fmt.Fprintf(r.w, "| Bin | Load | Fill | Free | Tasks |\n")
	fmt.Fprintf(r.w, "|----:|-----:|-----:|-----:|-------|\n")
	for _, b := range plan.Bins {
		tasks := fmt.Sprintf("%d", len(b.Tasks))
		if meta.ShowTasks {
			tasks = escapePipes(taskList(b.Tasks))
		}
		fmt.Fprintf(r.w, "| %d | %s | %s | %s | %s |\n",
			b.Index+1, quantity(b.Load, plan.Dimension), pct(b.Fill()), quantity(b.Free(), plan.Dimension), tasks)
	}

	fmt.Fprintf(r.w, "\n**%d bins** (lower bound %d), average fill %s", plan.TotalBins, plan.LowerBound, pct(plan.AvgFill))
	if plan.MonthlyCost > 0 {
		fmt.Fprintf(r.w, ", $%.0f/month", plan.MonthlyCost)
	}
	fmt.Fprintln(r.w)
	return nil
}

func (r *MarkdownReporter) Comparison(ctx context.Context, rankings []model.Ranking, meta Meta) error {
	r.meta("Algorithm comparison", meta)

	if len(rankings) == 0 {
		fmt.Fprintln(r.w, "_No plans available._")
		return nil
	}

	fmt.Fprintf(r.w, "| Rank | Algorithm | Bins | Excess | Avg fill | Score | $/month |\n")
	fmt.Fprintf(r.w, "|-----:|-----------|-----:|-------:|---------:|------:|--------:|\n")
	for _, rk := range rankings {
		cost := "-"
		if rk.Plan.MonthlyCost > 0 {
			cost = fmt.Sprintf("%.0f", rk.Plan.MonthlyCost)
		}
		fmt.Fprintf(r.w, "| %d | %s | %d | %d | %s | %.1f | %s |\n",
			rk.Rank, rk.Plan.Algorithm, rk.Plan.TotalBins, rk.Plan.ExcessBins,
			pct(rk.Plan.AvgFill), rk.OverallScore, cost)
	}

	top := rankings[0]
	fmt.Fprintf(r.w, "\n**Recommended:** `%s`. %s\n", top.Plan.Algorithm, top.Rationale)
	if len(top.Warnings) > 0 {
		fmt.Fprintln(r.w)
		for _, w := range top.Warnings {
			fmt.Fprintf(r.w, "> :warning: %s\n", w)
		}
	}
	return nil
}

func (r *MarkdownReporter) Summary(ctx context.Context, s Summary, meta Meta) error {
	r.meta("Workset", meta)

	fmt.Fprintf(r.w, "- **Heaviest task:** %s\n", quantity(s.MaxWeight, meta.Dimension))
	if s.LowerBound > 0 {
		fmt.Fprintf(r.w, "- **Lower bound:** %d bins\n", s.LowerBound)
	}
	if s.Oversize > 0 {
		fmt.Fprintf(r.w, "- **Oversize tasks:** %d\n", s.Oversize)
	}

	if len(s.Largest) > 0 {
		fmt.Fprintf(r.w, "\n| Task | Weight |\n|------|-------:|\n")
		for _, t := range s.Largest {
			fmt.Fprintf(r.w, "| %s | %s |\n", escapePipes(t.Key()), quantity(t.Weight, meta.Dimension))
		}
	}
	return nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
