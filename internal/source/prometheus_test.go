package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guimove/binfit/internal/model"
)

// fakePrometheus answers every query with the given result payload.
func fakePrometheus(t *testing.T, resultType, result string) (*httptest.Server, *string) {
	t.Helper()
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if !strings.HasSuffix(r.URL.Path, "/api/v1/query") {
			http.NotFound(w, r)
			return
		}
		lastQuery = r.Form.Get("query")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"success","data":{"resultType":%q,"result":%s}}`, resultType, result)
	}))
	t.Cleanup(srv.Close)
	return srv, &lastQuery
}

func TestPrometheusSourceLoad(t *testing.T) {
	srv, lastQuery := fakePrometheus(t, "vector", `[
  {"metric":{"namespace":"prod","pod":"web-1"},"value":[1700000000,"250"]},
  {"metric":{"namespace":"dev","pod":"job-1"},"value":[1700000000,"0.2"]}
]`)

	src, err := NewPrometheusSource(srv.URL, model.DimensionCPU, WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ws, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(*lastQuery, `resource="cpu"`) {
		t.Errorf("expected default cpu query, got %q", *lastQuery)
	}
	if ws.TaskCount() != 2 || ws.Dimension != model.DimensionCPU {
		t.Fatalf("unexpected workset %+v", ws)
	}
	// Sorted by key: dev/job-1 before prod/web-1.
	if ws.Tasks[0].Key() != "dev/job-1" || ws.Tasks[0].Weight != 1 {
		t.Errorf("expected dev/job-1 rounded up to 1, got %s=%d", ws.Tasks[0].Key(), ws.Tasks[0].Weight)
	}
	if ws.Tasks[1].Key() != "prod/web-1" || ws.Tasks[1].Weight != 250 {
		t.Errorf("expected prod/web-1=250, got %s=%d", ws.Tasks[1].Key(), ws.Tasks[1].Weight)
	}
	if ws.Tasks[1].Labels["pod"] != "web-1" {
		t.Errorf("labels not carried: %v", ws.Tasks[1].Labels)
	}
}

func TestPrometheusSourceCustomQueryAndScale(t *testing.T) {
	srv, lastQuery := fakePrometheus(t, "vector", `[
  {"metric":{"job":"encoder","instance":"i-1"},"value":[1700000000,"1.5"]}
]`)

	src, err := NewPrometheusSource(srv.URL, model.DimensionCustom,
		WithQuery("encoder_queue_depth"),
		WithNameLabels("job", "instance"),
		WithScale(10),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ws, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *lastQuery != "encoder_queue_depth" {
		t.Errorf("expected custom query, got %q", *lastQuery)
	}
	if ws.Tasks[0].Name != "encoder/i-1" || ws.Tasks[0].Weight != 15 {
		t.Errorf("unexpected task %+v", ws.Tasks[0])
	}
}

func TestPrometheusSourceCustomDimensionNeedsQuery(t *testing.T) {
	if _, err := NewPrometheusSource("http://localhost:9090", model.DimensionCustom); err == nil {
		t.Fatal("expected error without a query for the custom dimension")
	}
}

func TestPrometheusSourceRejectsNegativeSample(t *testing.T) {
	srv, _ := fakePrometheus(t, "vector", `[
  {"metric":{"namespace":"a","pod":"p"},"value":[1700000000,"-2"]}
]`)
	src, err := NewPrometheusSource(srv.URL, model.DimensionMemory)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := src.Load(context.Background()); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
}

func TestPrometheusSourceRejectsNaN(t *testing.T) {
	srv, _ := fakePrometheus(t, "vector", `[
  {"metric":{"namespace":"a","pod":"p"},"value":[1700000000,"NaN"]}
]`)
	src, _ := NewPrometheusSource(srv.URL, model.DimensionMemory)
	if _, err := src.Load(context.Background()); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
}

func TestPrometheusSourceRejectsScalar(t *testing.T) {
	srv, _ := fakePrometheus(t, "scalar", `[1700000000,"3"]`)
	src, _ := NewPrometheusSource(srv.URL, model.DimensionCPU)
	_, err := src.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "expected vector") {
		t.Fatalf("expected non-vector error, got %v", err)
	}
}

func TestPrometheusSourceEmptyResult(t *testing.T) {
	srv, _ := fakePrometheus(t, "vector", `[]`)
	src, _ := NewPrometheusSource(srv.URL, model.DimensionCPU)
	if _, err := src.Load(context.Background()); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}

func TestPrometheusSourcePing(t *testing.T) {
	srv, _ := fakePrometheus(t, "vector", `[]`)
	src, _ := NewPrometheusSource(srv.URL, model.DimensionCPU)
	if err := src.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	srv.Close()
	if err := src.Ping(context.Background()); !errors.Is(err, ErrPrometheusUnreachable) {
		t.Errorf("expected ErrPrometheusUnreachable, got %v", err)
	}
}

func TestDefaultQueryUnits(t *testing.T) {
	cpu, _ := defaultQuery(model.DimensionCPU)
	if !strings.Contains(cpu, "* 1000") {
		t.Errorf("cpu query should convert cores to millicores: %s", cpu)
	}
	mem, _ := defaultQuery(model.DimensionMemory)
	if !strings.Contains(mem, "/ 1048576") {
		t.Errorf("memory query should convert bytes to MiB: %s", mem)
	}
}
