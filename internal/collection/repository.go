package collection

import (
	"context"
	"errors"
)

// ErrAlreadyCollected is returned when the target kit is not in pending status.
var ErrAlreadyCollected = errors.New("race kit already collected")

// ErrKitNotFound is returned when the target kit does not exist.
var ErrKitNotFound = errors.New("race kit not found")

// Repository records kit handovers and reads the collection log.
type Repository interface {
	// Collect records a kit handover in a single transaction: the optional
	// representative insert, the collection event insert, and the explicit
	// pending -> collected status flip all commit or roll back together.
	Collect(ctx context.Context, req *CollectRequest) (*KitCollection, error)
	// ListRecords returns the full collection log joined with kit, runner,
	// collector, and representative details, newest first.
	ListRecords(ctx context.Context) ([]Record, error)
}
