package runner

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRunnerNotFound is returned when a runner record is not found.
var ErrRunnerNotFound = errors.New("runner not found")

// Repository provides CRUD operations on the runners table.
type Repository interface {
	Create(ctx context.Context, r *Runner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Runner, error)
	List(ctx context.Context) ([]Runner, error)
	Count(ctx context.Context) (int, error)
}
