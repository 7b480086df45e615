package source

import (
	"context"
	"fmt"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/guimove/binfit/internal/kube"
	"github.com/guimove/binfit/internal/model"
)

const mebibyte = 1024 * 1024

// KubernetesSource reads pod requests straight from the API server.
type KubernetesSource struct {
	client    kubernetes.Interface
	dimension model.Dimension
	opts      kube.ListOptions
}

// NewKubernetesSource creates a source for the cpu or memory dimension.
func NewKubernetesSource(client kubernetes.Interface, dim model.Dimension, opts kube.ListOptions) (*KubernetesSource, error) {
	if dim != model.DimensionCPU && dim != model.DimensionMemory {
		return nil, fmt.Errorf("kubernetes source supports cpu or memory, got %q", dim)
	}
	return &KubernetesSource{client: client, dimension: dim, opts: opts}, nil
}

// Name returns "kubernetes".
func (s *KubernetesSource) Name() string { return "kubernetes" }

// Ping asks the API server for its version.
func (s *KubernetesSource) Ping(ctx context.Context) error {
	if _, err := s.client.Discovery().ServerVersion(); err != nil {
		return fmt.Errorf("kubernetes api unreachable: %w", err)
	}
	return nil
}

// Load lists pods and weighs each by its requests in the source dimension.
func (s *KubernetesSource) Load(ctx context.Context) (*model.Workset, error) {
	pods, err := kube.ListPodRequests(ctx, s.client, s.opts)
	if err != nil {
		return nil, err
	}
	if len(pods) == 0 {
		return nil, ErrNoTasks
	}

	tasks := make([]model.Task, len(pods))
	for i, p := range pods {
		tasks[i] = model.Task{
			Name:      p.Name,
			Namespace: p.Namespace,
			Weight:    s.weigh(p),
			Labels:    p.Labels,
			Source:    s.Name(),
		}
	}
	return &model.Workset{
		CollectedAt: time.Now(),
		Source:      s.Name(),
		Dimension:   s.dimension,
		Tasks:       tasks,
	}, nil
}

func (s *KubernetesSource) weigh(p kube.PodRequest) uint64 {
	if s.dimension == model.DimensionCPU {
		return uint64(max(p.CPUMillis, 0))
	}
	mem := max(p.MemoryBytes, 0)
	return uint64((mem + mebibyte - 1) / mebibyte)
}
