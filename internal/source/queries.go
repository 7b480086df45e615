package source

import (
	"fmt"

	"github.com/guimove/binfit/internal/model"
)

// Default PromQL per dimension. The results are already expressed in the
// dimension's unit: CPU requests in millicores, memory requests in MiB.
// They rely on kube-state-metrics (kube_pod_container_resource_requests) and
// only count pods that are currently running.

func queryPodRequests(resource string, multiplier string) string {
	return fmt.Sprintf(`sum by (namespace, pod) (
  kube_pod_container_resource_requests{resource="%s"}
  * on (namespace, pod) group_left()
  (max by (namespace, pod) (kube_pod_status_phase{phase="Running"}) == 1)
) %s`, resource, multiplier)
}

// defaultQuery returns the query used when none is configured.
func defaultQuery(dim model.Dimension) (string, error) {
	switch dim {
	case model.DimensionCPU:
		return queryPodRequests("cpu", "* 1000"), nil
	case model.DimensionMemory:
		return queryPodRequests("memory", "/ 1048576"), nil
	default:
		return "", fmt.Errorf("no default query for dimension %q; set prometheus.query", dim)
	}
}
