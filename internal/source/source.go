package source

import (
	"context"
	"errors"

	"github.com/guimove/binfit/internal/model"
)

var (
	ErrNoTasks               = errors.New("no tasks found for the specified criteria")
	ErrPrometheusUnreachable = errors.New("prometheus endpoint unreachable")
	ErrInvalidWeight         = errors.New("invalid task weight")
)

// Source abstracts where tasks come from.
type Source interface {
	// Load gathers the tasks to pack.
	Load(ctx context.Context) (*model.Workset, error)

	// Ping validates that the backend is reachable.
	Ping(ctx context.Context) error

	// Name returns the source type.
	Name() string
}
