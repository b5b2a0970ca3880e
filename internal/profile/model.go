package profile

import (
	"time"

	"github.com/google/uuid"
)

// Roles, lowest to highest privilege.
const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// Statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Profile is the application-level identity record layered over an account.
// Role and Status may be NULL in legacy rows; readers apply the defaults
// via EffectiveRole and EffectiveStatus.
type Profile struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Email     string
	FullName  string
	Phone     *string
	Role      *string
	Status    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveRole returns the profile's role, defaulting to "user".
func (p *Profile) EffectiveRole() string {
	if p.Role == nil || *p.Role == "" {
		return RoleUser
	}
	return *p.Role
}

// EffectiveStatus returns the profile's status, defaulting to "active".
func (p *Profile) EffectiveStatus() string {
	if p.Status == nil || *p.Status == "" {
		return StatusActive
	}
	return *p.Status
}
