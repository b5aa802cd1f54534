// Package storage defines the persistent record store the chart cache writes
// through. The cache does not assume any particular engine: writes are
// durable once acknowledged and FetchAll reflects the latest acknowledged
// writes.
package storage

import (
	"context"
	"time"
)

// ChartRecord is one persisted cache entry: an encoded chart plus the
// metadata the cache needs without decoding the payload.
type ChartRecord struct {
	// Fingerprint is the canonical subject key; at most one record per
	// fingerprint exists.
	Fingerprint string

	// Payload is the codec-encoded chart record.
	Payload []byte

	// GeneratedAt is when the chart was computed, used for staleness checks.
	GeneratedAt time.Time
}

// ChartRecordStore provides access to chart_records storage.
type ChartRecordStore interface {
	// Upsert inserts the record or replaces the existing record with the
	// same fingerprint.
	Upsert(ctx context.Context, rec ChartRecord) error

	// Get retrieves the record with the given fingerprint.
	// Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, fingerprint string) (ChartRecord, error)

	// FetchAll retrieves every record, newest generation first.
	FetchAll(ctx context.Context) ([]ChartRecord, error)

	// Delete removes the record with the given fingerprint. Deleting an
	// absent record is not an error.
	Delete(ctx context.Context, fingerprint string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
