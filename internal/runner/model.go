package runner

import (
	"time"

	"github.com/google/uuid"
)

// Runner represents a row in the runners table.
type Runner struct {
	ID               uuid.UUID
	ParticipantID    *string
	BibNumber        string
	FullName         string
	Email            *string
	Phone            *string
	Category         *string
	RaceDistance     *string
	RegistrationDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
