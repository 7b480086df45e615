package kube

import (
	"context"
	"fmt"
	"slices"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const pageSize = 500

// PodRequest is the scheduling footprint of one pod.
type PodRequest struct {
	Namespace   string
	Name        string
	Node        string
	Labels      map[string]string
	CPUMillis   int64
	MemoryBytes int64
}

// ListOptions narrows which pods are listed.
type ListOptions struct {
	Namespace         string // empty = all namespaces
	LabelSelector     string
	ExcludeNamespaces []string
}

// ListPodRequests returns the effective requests of every non-terminal pod.
// Results follow the API server's order (namespace, then name).
func ListPodRequests(ctx context.Context, client kubernetes.Interface, opts ListOptions) ([]PodRequest, error) {
	var (
		out  []PodRequest
		next string
	)
	for {
		list, err := client.CoreV1().Pods(opts.Namespace).List(ctx, metav1.ListOptions{
			LabelSelector: opts.LabelSelector,
			Limit:         pageSize,
			Continue:      next,
		})
		if err != nil {
			return nil, fmt.Errorf("listing pods: %w", err)
		}

		for i := range list.Items {
			pod := &list.Items[i]
			if slices.Contains(opts.ExcludeNamespaces, pod.Namespace) || terminal(pod) {
				continue
			}
			cpu, mem := EffectiveRequests(pod)
			out = append(out, PodRequest{
				Namespace:   pod.Namespace,
				Name:        pod.Name,
				Node:        pod.Spec.NodeName,
				Labels:      pod.Labels,
				CPUMillis:   cpu,
				MemoryBytes: mem,
			})
		}

		next = list.Continue
		if next == "" {
			return out, nil
		}
	}
}

func terminal(pod *corev1.Pod) bool {
	return pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed
}

// EffectiveRequests computes what the scheduler reserves for a pod: the
// larger of the summed app containers and the largest init container, plus
// pod overhead.
func EffectiveRequests(pod *corev1.Pod) (cpuMillis, memoryBytes int64) {
	for _, c := range pod.Spec.Containers {
		cpuMillis += quantity(c.Resources.Requests, corev1.ResourceCPU, true)
		memoryBytes += quantity(c.Resources.Requests, corev1.ResourceMemory, false)
	}
	for _, c := range pod.Spec.InitContainers {
		cpuMillis = max(cpuMillis, quantity(c.Resources.Requests, corev1.ResourceCPU, true))
		memoryBytes = max(memoryBytes, quantity(c.Resources.Requests, corev1.ResourceMemory, false))
	}
	cpuMillis += quantity(pod.Spec.Overhead, corev1.ResourceCPU, true)
	memoryBytes += quantity(pod.Spec.Overhead, corev1.ResourceMemory, false)
	return cpuMillis, memoryBytes
}

func quantity(list corev1.ResourceList, name corev1.ResourceName, milli bool) int64 {
	q, ok := list[name]
	if !ok {
		return 0
	}
	if milli {
		return q.MilliValue()
	}
	return q.Value()
}
