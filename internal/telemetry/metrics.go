package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "binfit"

// Outcome labels for pack runs.
const (
	OutcomeSuccess      = "success"
	OutcomeItemTooLarge = "item_too_large"
	OutcomeError        = "error"
)

// Metrics holds the packing collectors, registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	packRuns     *prometheus.CounterVec
	binsOpened   *prometheus.HistogramVec
	tasksPacked  *prometheus.CounterVec
	packDuration *prometheus.HistogramVec
	lastFill     *prometheus.GaugeVec
}

// New creates and registers the collectors. withRuntime also registers the
// Go runtime and process collectors, which long-running servers want.
func New(withRuntime bool) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		packRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pack_runs_total",
			Help:      "Packing runs by algorithm and outcome.",
		}, []string{"algorithm", "outcome"}),
		binsOpened: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bins_opened",
			Help:      "Bins produced per successful packing run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"algorithm"}),
		tasksPacked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_packed_total",
			Help:      "Tasks placed into bins.",
		}, []string{"algorithm"}),
		packDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pack_duration_seconds",
			Help:      "Wall time of a packing run.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"algorithm"}),
		lastFill: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_avg_fill_ratio",
			Help:      "Average bin fill of the most recent successful run.",
		}, []string{"algorithm"}),
	}

	cs := []prometheus.Collector{m.packRuns, m.binsOpened, m.tasksPacked, m.packDuration, m.lastFill}
	if withRuntime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// PackRuns exposes the run counter, labelled by algorithm and outcome.
func (m *Metrics) PackRuns() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.packRuns
}

// ObservePack records a successful run.
func (m *Metrics) ObservePack(algorithm string, bins, tasks int, avgFill float64, d time.Duration) {
	if m == nil {
		return
	}
	m.packRuns.WithLabelValues(algorithm, OutcomeSuccess).Inc()
	m.binsOpened.WithLabelValues(algorithm).Observe(float64(bins))
	m.tasksPacked.WithLabelValues(algorithm).Add(float64(tasks))
	m.packDuration.WithLabelValues(algorithm).Observe(d.Seconds())
	m.lastFill.WithLabelValues(algorithm).Set(avgFill)
}

// ObserveFailure records a failed run.
func (m *Metrics) ObserveFailure(algorithm, outcome string) {
	if m == nil {
		return
	}
	m.packRuns.WithLabelValues(algorithm, outcome).Inc()
}

// WriteTextfile writes the current metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
