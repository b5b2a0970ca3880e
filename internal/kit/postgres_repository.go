package kit

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

// CreateBatch inserts all given kits inside one transaction using a pgx
// batch. A failure on any row rolls back the whole batch and returns the
// first error; on success it returns the number of kits created.
func (r *PostgresRepository) CreateBatch(ctx context.Context, kits []RaceKit) (int, error) {
	if len(kits) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO race_kits (kit_number, runner_id, status, contents)
		VALUES ($1, $2, $3, COALESCE($4, '[]'::jsonb))`

	batch := &pgx.Batch{}
	for i := range kits {
		k := &kits[i]
		if k.Status == "" {
			k.Status = StatusPending
		}
		batch.Queue(query, k.KitNumber, k.RunnerID, k.Status, k.Contents)
	}

	results := tx.SendBatch(ctx, batch)
	for range kits {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("inserting race kit: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}

	return len(kits), nil
}

// GetByID retrieves a single race kit by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*RaceKit, error) {
	query := `
		SELECT id, kit_number, status, runner_id, contents, created_at, updated_at
		FROM race_kits
		WHERE id = $1`

	var k RaceKit
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&k.ID, &k.KitNumber, &k.Status, &k.RunnerID, &k.Contents,
		&k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKitNotFound
		}
		return nil, fmt.Errorf("querying race kit: %w", err)
	}

	return &k, nil
}

// ListWithRunners retrieves all race kits joined with their runner,
// ordered by kit number.
func (r *PostgresRepository) ListWithRunners(ctx context.Context) ([]KitWithRunner, error) {
	query := `
		SELECT k.id, k.kit_number, k.status, k.runner_id, k.contents, k.created_at, k.updated_at,
		       r.id, r.participant_id, r.full_name, r.bib_number, r.category, r.race_distance
		FROM race_kits k
		JOIN runners r ON r.id = k.runner_id
		ORDER BY k.kit_number`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing race kits: %w", err)
	}
	defer rows.Close()

	var kits []KitWithRunner
	for rows.Next() {
		var kw KitWithRunner
		err := rows.Scan(
			&kw.ID, &kw.KitNumber, &kw.Status, &kw.RunnerID, &kw.Contents,
			&kw.CreatedAt, &kw.UpdatedAt,
			&kw.Runner.ID, &kw.Runner.ParticipantID, &kw.Runner.FullName,
			&kw.Runner.BibNumber, &kw.Runner.Category, &kw.Runner.RaceDistance,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning race kit row: %w", err)
		}
		kits = append(kits, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating race kit rows: %w", err)
	}

	if kits == nil {
		kits = []KitWithRunner{}
	}

	return kits, nil
}

// CountByStatus returns pending and collected kit totals in one query.
func (r *PostgresRepository) CountByStatus(ctx context.Context) (*StatusCounts, error) {
	query := `
		SELECT count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'collected')
		FROM race_kits`

	var counts StatusCounts
	if err := r.pool.QueryRow(ctx, query).Scan(&counts.Pending, &counts.Collected); err != nil {
		return nil, fmt.Errorf("counting race kits: %w", err)
	}

	return &counts, nil
}
