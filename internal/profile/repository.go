package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when a profile record is not found.
var ErrProfileNotFound = errors.New("profile not found")

// ErrSetupRequired is returned when the profiles table is missing the
// status column, meaning the documented schema migration has not been
// applied yet.
var ErrSetupRequired = errors.New("profiles table requires setup")

// SetupInstructions is the manual migration an operator must apply when
// List reports ErrSetupRequired.
const SetupInstructions = `-- Add status field to profiles table
ALTER TABLE profiles
ADD COLUMN IF NOT EXISTS status TEXT DEFAULT 'active' CHECK (status IN ('active', 'inactive'));

-- Update existing profiles to have 'active' status
UPDATE profiles SET status = 'active' WHERE status IS NULL;

-- Create index on status
CREATE INDEX IF NOT EXISTS idx_profiles_status ON profiles(status);`

// Repository provides operations on the profiles table.
type Repository interface {
	// List returns all profiles ordered by creation time, newest first.
	// It probes the status column first and returns ErrSetupRequired when
	// the column is absent, so an empty table and a missing migration can
	// be told apart.
	List(ctx context.Context) ([]Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status string) error
	// Delete hard-deletes the profile row. Runners, kits, and collections
	// are never cascaded.
	Delete(ctx context.Context, userID uuid.UUID) error
}
