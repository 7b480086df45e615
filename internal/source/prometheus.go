package source

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	prommodel "github.com/prometheus/common/model"

	"github.com/guimove/binfit/internal/model"
)

// PrometheusSource turns the samples of an instant PromQL query into tasks.
// Works against Prometheus, Thanos, Cortex or any compatible query API.
type PrometheusSource struct {
	api        promv1.API
	endpoint   string
	dimension  model.Dimension
	query      string
	nameLabels []string
	scale      float64
	timeout    time.Duration
	now        func() time.Time
}

// PrometheusOption configures the Prometheus source.
type PrometheusOption func(*PrometheusSource)

// WithTimeout sets the query timeout.
func WithTimeout(d time.Duration) PrometheusOption {
	return func(s *PrometheusSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithQuery replaces the default per-dimension query.
func WithQuery(q string) PrometheusOption {
	return func(s *PrometheusSource) {
		if q != "" {
			s.query = q
		}
	}
}

// WithNameLabels sets the labels used to name a task. A "namespace" label
// becomes the task namespace; the others are joined with "/".
func WithNameLabels(labels ...string) PrometheusOption {
	return func(s *PrometheusSource) {
		if len(labels) > 0 {
			s.nameLabels = labels
		}
	}
}

// WithScale multiplies every sample value before rounding up.
func WithScale(f float64) PrometheusOption {
	return func(s *PrometheusSource) {
		if f > 0 {
			s.scale = f
		}
	}
}

// NewPrometheusSource creates a source connected to the given endpoint.
func NewPrometheusSource(endpoint string, dim model.Dimension, opts ...PrometheusOption) (*PrometheusSource, error) {
	client, err := promapi.NewClient(promapi.Config{
		Address: endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating prometheus client: %w", err)
	}

	s := &PrometheusSource{
		api:        promv1.NewAPI(client),
		endpoint:   endpoint,
		dimension:  dim,
		nameLabels: []string{"namespace", "pod"},
		scale:      1.0,
		timeout:    60 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.query == "" {
		q, err := defaultQuery(dim)
		if err != nil {
			return nil, err
		}
		s.query = q
	}
	return s, nil
}

// Name returns "prometheus".
func (s *PrometheusSource) Name() string { return "prometheus" }

// Query returns the PromQL expression evaluated by Load.
func (s *PrometheusSource) Query() string { return s.query }

// Ping checks connectivity with a trivial query.
func (s *PrometheusSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, _, err := s.api.Query(ctx, "1", s.now()); err != nil {
		return fmt.Errorf("%w: %v", ErrPrometheusUnreachable, err)
	}
	return nil
}

// Load evaluates the query and converts each sample to a task.
func (s *PrometheusSource) Load(ctx context.Context) (*model.Workset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	at := s.now()
	result, _, err := s.api.Query(ctx, s.query, at)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.endpoint, err)
	}

	vec, ok := result.(prommodel.Vector)
	if !ok {
		return nil, fmt.Errorf("query returned %s, expected vector", result.Type())
	}
	if len(vec) == 0 {
		return nil, ErrNoTasks
	}

	tasks, err := s.tasksFromVector(vec)
	if err != nil {
		return nil, err
	}
	return &model.Workset{
		CollectedAt: at,
		Source:      s.Name(),
		Dimension:   s.dimension,
		Tasks:       tasks,
	}, nil
}

func (s *PrometheusSource) tasksFromVector(vec prommodel.Vector) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(vec))
	for _, sample := range vec {
		w, err := s.weigh(float64(sample.Value))
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", sample.Metric, err)
		}
		ns, name := s.taskName(sample.Metric)
		tasks = append(tasks, model.Task{
			Name:      name,
			Namespace: ns,
			Weight:    w,
			Labels:    labelMap(sample.Metric),
			Source:    s.Name(),
		})
	}

	// Query results have no guaranteed order.
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Key() < tasks[j].Key()
	})
	return tasks, nil
}

func (s *PrometheusSource) weigh(v float64) (uint64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWeight, v)
	}
	scaled := math.Ceil(v * s.scale)
	if scaled >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %v overflows", ErrInvalidWeight, v)
	}
	return uint64(scaled), nil
}

func (s *PrometheusSource) taskName(m prommodel.Metric) (namespace, name string) {
	var parts []string
	for _, l := range s.nameLabels {
		v := string(m[prommodel.LabelName(l)])
		if v == "" {
			continue
		}
		if l == "namespace" {
			namespace = v
			continue
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return namespace, m.String()
	}
	return namespace, strings.Join(parts, "/")
}

func labelMap(m prommodel.Metric) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[string(k)] = string(v)
	}
	return out
}
