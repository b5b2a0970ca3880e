package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when an account record is not found.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when an account with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrSessionNotFound is returned when a session record is not found.
var ErrSessionNotFound = errors.New("session not found")

// AccountRepository provides operations on the accounts table.
type AccountRepository interface {
	// CreateWithProfile inserts the account and its 1:1 profile row in one
	// transaction so a signup can never leave an account without a profile.
	CreateWithProfile(ctx context.Context, a *Account, fullName string, phone *string, role string) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	CountAll(ctx context.Context) (int, error)
	// Delete removes the account row; sessions cascade via FK.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository provides operations on the sessions table.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// FindByPrefix returns live (unrevoked, unexpired) sessions whose
	// token prefix matches.
	FindByPrefix(ctx context.Context, prefix string) ([]Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	// RevokeAllForAccount revokes every live session of the account except
	// the one given; pass uuid.Nil to revoke them all.
	RevokeAllForAccount(ctx context.Context, accountID, exceptID uuid.UUID) error
}
