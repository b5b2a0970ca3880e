package kit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kit status values. A kit moves from pending to collected exactly once;
// there is no reverse transition.
const (
	StatusPending   = "pending"
	StatusCollected = "collected"
)

// RaceKit represents a row in the race_kits table.
type RaceKit struct {
	ID        uuid.UUID
	KitNumber string
	Status    string
	RunnerID  uuid.UUID
	Contents  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RunnerInfo is the slice of the runner record carried alongside a kit
// when listing.
type RunnerInfo struct {
	ID            uuid.UUID
	ParticipantID *string
	FullName      string
	BibNumber     string
	Category      *string
	RaceDistance  *string
}

// KitWithRunner joins a race kit with its runner.
type KitWithRunner struct {
	RaceKit
	Runner RunnerInfo
}
