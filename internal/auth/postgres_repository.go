package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAccountRepository implements AccountRepository using pgxpool.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository backed by the given pool.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// CreateWithProfile inserts an account and its profile row in one transaction.
func (r *PostgresAccountRepository) CreateWithProfile(ctx context.Context, a *Account, fullName string, phone *string, role string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	accountQuery := `
		INSERT INTO accounts (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err = tx.QueryRow(ctx, accountQuery, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	profileQuery := `
		INSERT INTO profiles (user_id, full_name, phone, role, status)
		VALUES ($1, $2, $3, $4, 'active')`

	if _, err := tx.Exec(ctx, profileQuery, a.ID, fullName, phone, role); err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing signup: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by its (lowercased) email.
func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE email = $1`

	var a Account
	err := r.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying account: %w", err)
	}

	return &a, nil
}

// GetByID retrieves an account by its UUID.
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM accounts
		WHERE id = $1`

	var a Account
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying account: %w", err)
	}

	return &a, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *PostgresAccountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result, err := r.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("updating password hash: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// CountAll returns the total number of accounts.
func (r *PostgresAccountRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

// Delete removes an account by its UUID.
func (r *PostgresAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// PostgresSessionRepository implements SessionRepository using pgxpool.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository backed by the given pool.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create inserts a new session record.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (account_id, token_prefix, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, s.AccountID, s.TokenPrefix, s.TokenHash, s.ExpiresAt).
		Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// FindByPrefix returns live sessions whose token prefix matches.
func (r *PostgresSessionRepository) FindByPrefix(ctx context.Context, prefix string) ([]Session, error) {
	query := `
		SELECT id, account_id, token_prefix, token_hash, expires_at, created_at, revoked_at
		FROM sessions
		WHERE token_prefix = $1 AND revoked_at IS NULL AND expires_at > now()`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("querying sessions by prefix: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		err := rows.Scan(&s.ID, &s.AccountID, &s.TokenPrefix, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt, &s.RevokedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}

	return sessions, nil
}

// Revoke marks a single session revoked.
func (r *PostgresSessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sessions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// RevokeAllForAccount revokes every live session of the account except the
// one given.
func (r *PostgresSessionRepository) RevokeAllForAccount(ctx context.Context, accountID, exceptID uuid.UUID) error {
	query := `
		UPDATE sessions
		SET revoked_at = now()
		WHERE account_id = $1 AND id <> $2 AND revoked_at IS NULL`

	if _, err := r.pool.Exec(ctx, query, accountID, exceptID); err != nil {
		return fmt.Errorf("revoking account sessions: %w", err)
	}

	return nil
}
