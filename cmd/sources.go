package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	awspkg "github.com/guimove/binfit/internal/aws"
	"github.com/guimove/binfit/internal/kube"
	"github.com/guimove/binfit/internal/source"
	"github.com/guimove/binfit/internal/telemetry"
)

// resolveSource builds the configured task source and checks that it is
// reachable.
func resolveSource(ctx context.Context) (source.Source, error) {
	src, err := newSource()
	if err != nil {
		return nil, err
	}
	if err := src.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connecting to %s source: %w", src.Name(), err)
	}
	return src, nil
}

func newSource() (source.Source, error) {
	dim := cfg.Dimension()

	switch cfg.Source.Type {
	case "prometheus":
		src, err := source.NewPrometheusSource(cfg.Prometheus.URL, dim,
			source.WithTimeout(cfg.Prometheus.Timeout),
			source.WithQuery(cfg.Prometheus.Query),
			source.WithNameLabels(cfg.Prometheus.NameLabels...),
			source.WithScale(cfg.Prometheus.Scale))
		if err != nil {
			return nil, err
		}
		logger.Debug("using PromQL query",
			zap.String("url", cfg.Prometheus.URL),
			zap.String("query", src.Query()))
		return src, nil

	case "kubernetes":
		client, err := kube.NewClient(cfg.Kubernetes.Kubeconfig, cfg.Kubernetes.Context)
		if err != nil {
			return nil, fmt.Errorf("connecting to Kubernetes: %w", err)
		}
		logger.Debug("using Kubernetes context", zap.String("context", client.Context))
		return source.NewKubernetesSource(client, dim, kube.ListOptions{
			Namespace:         cfg.Kubernetes.Namespace,
			LabelSelector:     cfg.Kubernetes.LabelSelector,
			ExcludeNamespaces: cfg.Kubernetes.ExcludeNamespaces,
		})

	default:
		if cfg.Source.Path == "" || cfg.Source.Path == "-" {
			return source.NewReaderSource(os.Stdin, cfg.Source.Format)
		}
		return source.NewFileSource(cfg.Source.Path, cfg.Source.Format), nil
	}
}

// resolveCapacity returns an AWS provider when an instance type is
// configured. It returns nil when the capacity is explicit and AWS is not
// needed, or when AWS is unavailable but an explicit capacity can be used.
func resolveCapacity(ctx context.Context, noCache bool) (awspkg.CapacityResolver, error) {
	if cfg.AWS.InstanceType == "" {
		return nil, nil
	}

	provider, err := newProvider(ctx, noCache)
	if err != nil {
		if cfg.Packing.Capacity > 0 {
			logger.Warn("AWS unavailable; packing without instance cost", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	return provider, nil
}

func newProvider(ctx context.Context, noCache bool) (*awspkg.Provider, error) {
	cacheDir := cfg.AWS.CacheDir
	if noCache {
		cacheDir = ""
	}
	provider, err := awspkg.NewProvider(ctx, awspkg.Options{
		Region:   cfg.AWS.Region,
		CacheDir: cacheDir,
		CacheTTL: cfg.AWS.CacheTTL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating AWS provider: %w", err)
	}
	return provider, nil
}

// newMetrics creates the run metrics when a textfile is requested.
func newMetrics(withRuntime bool) (*telemetry.Metrics, error) {
	if cfg.Output.MetricsTextfile == "" && !withRuntime {
		return nil, nil
	}
	return telemetry.New(withRuntime)
}

func writeMetrics(m *telemetry.Metrics) {
	if err := m.WriteTextfile(cfg.Output.MetricsTextfile); err != nil {
		logger.Warn("could not write metrics textfile", zap.Error(err))
	}
}
