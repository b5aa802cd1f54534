package postgres

import (
	"context"
	"fmt"

	"github.com/astrolark/natal-chart-service/internal/storage"
)

// ChartRecordStore implements storage.ChartRecordStore using PostgreSQL.
type ChartRecordStore struct {
	pool *Pool
}

// NewChartRecordStore creates a new ChartRecordStore.
func NewChartRecordStore(pool *Pool) *ChartRecordStore {
	return &ChartRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChartRecordStore = (*ChartRecordStore)(nil)

// Upsert inserts the record or replaces the row with the same fingerprint.
func (s *ChartRecordStore) Upsert(ctx context.Context, rec storage.ChartRecord) error {
	if rec.Fingerprint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO chart_records (fingerprint, payload, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (fingerprint) DO UPDATE
		SET payload = EXCLUDED.payload, generated_at = EXCLUDED.generated_at
	`

	_, err := s.pool.Exec(ctx, query, rec.Fingerprint, rec.Payload, rec.GeneratedAt)
	if err != nil {
		return fmt.Errorf("upsert chart record: %w", err)
	}
	return nil
}

// Get retrieves a record by fingerprint. Returns ErrNotFound if absent.
func (s *ChartRecordStore) Get(ctx context.Context, fingerprint string) (storage.ChartRecord, error) {
	query := `
		SELECT fingerprint, payload, generated_at
		FROM chart_records
		WHERE fingerprint = $1
	`

	var rec storage.ChartRecord
	row := s.pool.QueryRow(ctx, query, fingerprint)
	if err := row.Scan(&rec.Fingerprint, &rec.Payload, &rec.GeneratedAt); err != nil {
		if isNotFoundError(err) {
			return storage.ChartRecord{}, storage.ErrNotFound
		}
		return storage.ChartRecord{}, fmt.Errorf("get chart record: %w", err)
	}
	return rec, nil
}

// FetchAll returns every record, newest generation first.
func (s *ChartRecordStore) FetchAll(ctx context.Context) ([]storage.ChartRecord, error) {
	query := `
		SELECT fingerprint, payload, generated_at
		FROM chart_records
		ORDER BY generated_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch chart records: %w", err)
	}
	defer rows.Close()

	var records []storage.ChartRecord
	for rows.Next() {
		var rec storage.ChartRecord
		if err := rows.Scan(&rec.Fingerprint, &rec.Payload, &rec.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan chart record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chart records: %w", err)
	}
	return records, nil
}

// Delete removes a record; deleting an absent fingerprint is a no-op.
func (s *ChartRecordStore) Delete(ctx context.Context, fingerprint string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chart_records WHERE fingerprint = $1`, fingerprint)
	if err != nil {
		return fmt.Errorf("delete chart record: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *ChartRecordStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
