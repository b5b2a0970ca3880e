package collection

import (
	"time"

	"github.com/google/uuid"
)

// Collection types.
const (
	TypeSelf           = "self"
	TypeRepresentative = "representative"
)

// Representative ID document types.
const (
	IDTypeIC             = "ic"
	IDTypePassport       = "passport"
	IDTypeDrivingLicense = "driving_license"
)

// Representative represents a row in the representatives table. A fresh
// row is created for every representative collection; representatives are
// never reused across collections.
type Representative struct {
	ID           uuid.UUID
	FullName     string
	IDNumber     string
	IDType       string
	Phone        *string
	Relationship *string
	CreatedAt    time.Time
}

// KitCollection is an append-only audit record of a kit handover.
type KitCollection struct {
	ID                uuid.UUID
	RaceKitID         uuid.UUID
	CollectedByUserID uuid.UUID
	RepresentativeID  *uuid.UUID
	CollectionType    string
	Notes             *string
	CollectedAt       time.Time
	CreatedAt         time.Time
}

// CollectRequest carries everything needed to record a kit handover.
// Representative is nil for self collections.
type CollectRequest struct {
	RaceKitID         uuid.UUID
	CollectedByUserID uuid.UUID
	CollectionType    string
	Representative    *Representative
	Notes             *string
}

// Record is a collection event joined with its kit, runner, and
// representative details, as used by the export report.
type Record struct {
	KitNumber          string
	RunnerName         string
	RunnerBibNumber    string
	CollectorEmail     string
	CollectionType     string
	RepresentativeName *string
	RepresentativeID   *string
	Relationship       *string
	Notes              *string
	CollectedAt        time.Time
}
