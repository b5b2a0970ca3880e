package collection

import (
	"context"
	"errors"
	"fmt"

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

// Collect records a kit handover. The status flip is conditional on the kit
// still being pending, so a second collection of the same kit rolls back
// without leaving an orphaned representative or audit row.
func (r *PostgresRepository) Collect(ctx context.Context, req *CollectRequest) (*KitCollection, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var kc KitCollection
	kc.RaceKitID = req.RaceKitID
	kc.CollectedByUserID = req.CollectedByUserID
	kc.CollectionType = req.CollectionType
	kc.Notes = req.Notes

	if req.Representative != nil {
		rep := req.Representative
		if rep.IDType == "" {
			rep.IDType = IDTypeIC
		}

		repQuery := `
			INSERT INTO representatives (full_name, id_number, id_type, phone, relationship)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`

		err := tx.QueryRow(ctx, repQuery,
			rep.FullName, rep.IDNumber, rep.IDType, rep.Phone, rep.Relationship,
		).Scan(&rep.ID, &rep.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting representative: %w", err)
		}

		kc.RepresentativeID = &rep.ID
	}

	collQuery := `
		INSERT INTO kit_collections (race_kit_id, collected_by_user_id, representative_id, collection_type, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, collected_at, created_at`

	err = tx.QueryRow(ctx, collQuery,
		kc.RaceKitID, kc.CollectedByUserID, kc.RepresentativeID, kc.CollectionType, kc.Notes,
	).Scan(&kc.ID, &kc.CollectedAt, &kc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrKitNotFound
		}
		return nil, fmt.Errorf("inserting kit collection: %w", err)
	}

	statusQuery := `
		UPDATE race_kits
		SET status = 'collected', updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	result, err := tx.Exec(ctx, statusQuery, kc.RaceKitID)
	if err != nil {
		return nil, fmt.Errorf("updating kit status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrAlreadyCollected
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing collection: %w", err)
	}

	return &kc, nil
}

// ListRecords returns the collection log joined with kit, runner, collector,
// and representative details, newest first.
func (r *PostgresRepository) ListRecords(ctx context.Context) ([]Record, error) {
	query := `
		SELECT k.kit_number, rn.full_name, rn.bib_number, a.email,
		       c.collection_type, rep.full_name, rep.id_number, rep.relationship,
		       c.notes, c.collected_at
		FROM kit_collections c
		JOIN race_kits k ON k.id = c.race_kit_id
		JOIN runners rn ON rn.id = k.runner_id
		JOIN accounts a ON a.id = c.collected_by_user_id
		LEFT JOIN representatives rep ON rep.id = c.representative_id
		ORDER BY c.collected_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing collection records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.KitNumber, &rec.RunnerName, &rec.RunnerBibNumber, &rec.CollectorEmail,
			&rec.CollectionType, &rec.RepresentativeName, &rec.RepresentativeID,
			&rec.Relationship, &rec.Notes, &rec.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning collection record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection records: %w", err)
	}

	if records == nil {
		records = []Record{}
	}

	return records, nil
}
