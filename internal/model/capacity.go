package model

// InstanceCapacity is a bin size derived from an EC2 instance type.
type InstanceCapacity struct {
	InstanceType string    `json:"instance_type"`
	Region       string    `json:"region"`
	Dimension    Dimension `json:"dimension"`

	// Hardware capacity (raw)
	VCPUs     int32 `json:"vcpus"`
	MemoryMiB int64 `json:"memory_mib"`
	MaxPods   int32 `json:"max_pods"`

	// Kubernetes-adjusted capacity (after kubelet reservation)
	AllocatableCPUMillis int64 `json:"allocatable_cpu_millis"`
	AllocatableMemoryMiB int64 `json:"allocatable_memory_mib"`

	// Pricing (hourly, on-demand). Zero when unknown.
	PricePerHour float64 `json:"price_per_hour"`
}

// Capacity returns the bin capacity in the configured dimension.
func (c InstanceCapacity) Capacity() uint64 {
	var v int64
	switch c.Dimension {
	case DimensionMemory:
		v = c.AllocatableMemoryMiB
	default:
		v = c.AllocatableCPUMillis
	}
	if v < 0 {
		return 0
	}
	return uint64(v)
}

// MonthlyCost returns the estimated monthly cost of one bin.
func (c InstanceCapacity) MonthlyCost() float64 {
	return c.PricePerHour * HoursPerMonth
}

// HoursPerMonth is the standard number of hours used for monthly cost estimates.
const HoursPerMonth = 730.0
