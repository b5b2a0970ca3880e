package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// List retrieves all profiles ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Profile, error) {
	// One-row probe so a missing status column surfaces as a setup error
	// instead of a generic query failure on the full fetch.
	var probe *string
	err := r.pool.QueryRow(ctx, `SELECT status FROM profiles LIMIT 1`).Scan(&probe)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42703" {
			return nil, ErrSetupRequired
		}
		return nil, fmt.Errorf("probing profiles table: %w", err)
	}

	query := `
		SELECT p.id, p.user_id, a.email, p.full_name, p.phone, p.role, p.status, p.created_at, p.updated_at
		FROM profiles p
		JOIN accounts a ON a.id = p.user_id
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		err := rows.Scan(&p.ID, &p.UserID, &p.Email, &p.FullName, &p.Phone, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	if profiles == nil {
		profiles = []Profile{}
	}

	return profiles, nil
}

// GetByUserID retrieves the profile owned by the given account.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `
		SELECT p.id, p.user_id, a.email, p.full_name, p.phone, p.role, p.status, p.created_at, p.updated_at
		FROM profiles p
		JOIN accounts a ON a.id = p.user_id
		WHERE p.user_id = $1`

	var p Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Email, &p.FullName, &p.Phone, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	return &p, nil
}

// SetStatus updates the status of the profile owned by the given account.
func (r *PostgresRepository) SetStatus(ctx context.Context, userID uuid.UUID, status string) error {
	query := `
		UPDATE profiles
		SET status = $2, updated_at = now()
		WHERE user_id = $1`

	result, err := r.pool.Exec(ctx, query, userID, status)
	if err != nil {
		return fmt.Errorf("updating profile status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// Delete removes the profile row permanently.
func (r *PostgresRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
