package stats

import (
	"context"
	"fmt"

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

// Summary returns all dashboard counts in a single statement.
func (r *PostgresRepository) Summary(ctx context.Context) (*Summary, error) {
	query := `
		SELECT (SELECT count(*) FROM runners),
		       (SELECT count(*) FROM race_kits WHERE status = 'pending'),
		       (SELECT count(*) FROM race_kits WHERE status = 'collected')`

	var s Summary
	if err := r.pool.QueryRow(ctx, query).Scan(&s.TotalRunners, &s.PendingKits, &s.CollectedKits); err != nil {
		return nil, fmt.Errorf("querying dashboard summary: %w", err)
	}

	return &s, nil
}
