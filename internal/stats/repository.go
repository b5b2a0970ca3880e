package stats

import "context"

// Repository reads dashboard aggregates.
type Repository interface {
	// Summary returns runner and kit counts from one query so the numbers
	// are mutually consistent.
	Summary(ctx context.Context) (*Summary, error)
}
