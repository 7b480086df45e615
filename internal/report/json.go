package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guimove/binfit/internal/model"
)

// JSONReporter outputs results as indented JSON.
type JSONReporter struct {
	w io.Writer
}

type planOutput struct {
	Meta Meta       `json:"meta"`
	Plan model.Plan `json:"plan"`
}

type comparisonOutput struct {
	Meta     Meta            `json:"meta"`
	Rankings []model.Ranking `json:"rankings"`
}

type summaryOutput struct {
	Meta    Meta    `json:"meta"`
	Summary Summary `json:"summary"`
}

func (r *JSONReporter) Plan(ctx context.Context, plan model.Plan, meta Meta) error {
	return r.encode(planOutput{Meta: meta, Plan: plan})
}

func (r *JSONReporter) Comparison(ctx context.Context, rankings []model.Ranking, meta Meta) error {
	if rankings == nil {
		rankings = []model.Ranking{}
	}
	return r.encode(comparisonOutput{Meta: meta, Rankings: rankings})
}

func (r *JSONReporter) Summary(ctx context.Context, s Summary, meta Meta) error {
	return r.encode(summaryOutput{Meta: meta, Summary: s})
}

func (r *JSONReporter) encode(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
