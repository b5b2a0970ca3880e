package kit

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrKitNotFound is returned when a race kit record is not found.
var ErrKitNotFound = errors.New("race kit not found")

// StatusCounts holds per-status kit totals.
type StatusCounts struct {
	Pending   int
	Collected int
}

// Repository provides operations on the race_kits table.
type Repository interface {
	// CreateBatch inserts all given kits in a single batch. It fails as a
	// whole on the first error.
	CreateBatch(ctx context.Context, kits []RaceKit) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*RaceKit, error)
	// ListWithRunners returns all kits joined with their runner, ordered
	// by kit number.
	ListWithRunners(ctx context.Context) ([]KitWithRunner, error)
	CountByStatus(ctx context.Context) (*StatusCounts, error)
}
