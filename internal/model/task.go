package model

import (
	"fmt"
	"strings"
)

// Dimension is the resource a task weight and a bin capacity are measured in.
type Dimension string

const (
	DimensionCPU    Dimension = "cpu"    // millicores
	DimensionMemory Dimension = "memory" // MiB
	DimensionCustom Dimension = "custom" // caller-defined unit
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case DimensionCPU, DimensionMemory, DimensionCustom:
		return d, nil
	case "":
		return DimensionCustom, nil
	default:
		return "", fmt.Errorf("unknown dimension %q (want cpu, memory, or custom)", s)
	}
}

// Unit returns the human-readable unit of the dimension.
func (d Dimension) Unit() string {
	switch d {
	case DimensionCPU:
		return "m"
	case DimensionMemory:
		return "MiB"
	default:
		return ""
	}
}

// Task is one unit of work to be placed in a bin.
type Task struct {
	Name      string            `json:"name" yaml:"name"`
	Namespace string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Weight    uint64            `json:"weight" yaml:"weight"`
	Labels    map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Source records where the task was loaded from (file, prometheus, kubernetes).
	Source string `json:"source,omitempty" yaml:"-"`
}

// Key returns namespace/name, or just the name when there is no namespace.
func (t Task) Key() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "/" + t.Name
}
