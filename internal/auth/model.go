package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a row in the accounts table. An account is the
// authentication identity; the application-level role and status live on
// the 1:1 profile row layered over it.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents a row in the sessions table. The raw token is never
// stored; only its prefix (for lookup) and bcrypt hash (for comparison).
type Session struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	TokenPrefix string
	TokenHash   string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	AccountID uuid.UUID
	SessionID uuid.UUID
	Email     string
	Role      string
	Status    string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == "admin"
}
