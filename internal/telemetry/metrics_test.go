package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObservePack(t *testing.T) {
	m, err := New(false)
	if err != nil {
		t.Fatal(err)
	}

	m.ObservePack("first-fit", 3, 10, 0.8, time.Millisecond)
	m.ObservePack("first-fit", 2, 5, 0.9, time.Millisecond)
	m.ObserveFailure("next-fit", OutcomeItemTooLarge)

	if got := testutil.ToFloat64(m.packRuns.WithLabelValues("first-fit", OutcomeSuccess)); got != 2 {
		t.Errorf("expected 2 successful runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.packRuns.WithLabelValues("next-fit", OutcomeItemTooLarge)); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(m.tasksPacked.WithLabelValues("first-fit")); got != 15 {
		t.Errorf("expected 15 tasks packed, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastFill.WithLabelValues("first-fit")); got != 0.9 {
		t.Errorf("expected last fill 0.9, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObservePack("first-fit", 1, 1, 1, time.Second)
	m.ObserveFailure("first-fit", OutcomeError)
	if err := m.WriteTextfile("/nonexistent/path"); err != nil {
		t.Errorf("expected nil error from nil metrics, got %v", err)
	}
	if m.Registry() != nil {
		t.Error("expected nil registry")
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m, err := New(false)
	if err != nil {
		t.Fatal(err)
	}
	m.ObservePack("next-fit", 4, 8, 0.5, time.Millisecond)

	path := filepath.Join(t.TempDir(), "binfit.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `binfit_pack_runs_total{algorithm="next-fit",outcome="success"} 1`) {
		t.Errorf("textfile missing pack run counter:\n%s", data)
	}
}
