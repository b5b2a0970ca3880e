package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// Create inserts a new runner record. The registration date defaults to now
// when the caller leaves it zero.
func (r *PostgresRepository) Create(ctx context.Context, rn *Runner) error {
	query := `
		INSERT INTO runners (participant_id, bib_number, full_name, email, phone, category, race_distance, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE(NULLIF($8::timestamptz, '0001-01-01T00:00:00Z'::timestamptz), now()))
		RETURNING id, registration_date, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		rn.ParticipantID,
		rn.BibNumber,
		rn.FullName,
		rn.Email,
		rn.Phone,
		rn.Category,
		rn.RaceDistance,
		rn.RegistrationDate,
	).Scan(&rn.ID, &rn.RegistrationDate, &rn.CreatedAt, &rn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting runner: %w", err)
	}

	return nil
}

// GetByID retrieves a single runner by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Runner, error) {
	query := `
		SELECT id, participant_id, bib_number, full_name, email, phone, category, race_distance, registration_date, created_at, updated_at
		FROM runners
		WHERE id = $1`

	var rn Runner
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rn.ID, &rn.ParticipantID, &rn.BibNumber, &rn.FullName, &rn.Email,
		&rn.Phone, &rn.Category, &rn.RaceDistance, &rn.RegistrationDate,
		&rn.CreatedAt, &rn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunnerNotFound
		}
		return nil, fmt.Errorf("querying runner: %w", err)
	}

	return &rn, nil
}

// List retrieves all runners ordered by registration date, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Runner, error) {
	query := `
		SELECT id, participant_id, bib_number, full_name, email, phone, category, race_distance, registration_date, created_at, updated_at
		FROM runners
		ORDER BY registration_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing runners: %w", err)
	}
	defer rows.Close()

	var runners []Runner
	for rows.Next() {
		var rn Runner
		err := rows.Scan(
			&rn.ID, &rn.ParticipantID, &rn.BibNumber, &rn.FullName, &rn.Email,
			&rn.Phone, &rn.Category, &rn.RaceDistance, &rn.RegistrationDate,
			&rn.CreatedAt, &rn.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning runner row: %w", err)
		}
		runners = append(runners, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runner rows: %w", err)
	}

	if runners == nil {
		runners = []Runner{}
	}

	return runners, nil
}

// Count returns the total number of registered runners.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM runners`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting runners: %w", err)
	}
	return count, nil
}
