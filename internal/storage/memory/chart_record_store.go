// Package memory provides an in-memory ChartRecordStore for tests and
// single-process deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/astrolark/natal-chart-service/internal/storage"
)

// ChartRecordStore is an in-memory implementation of storage.ChartRecordStore.
type ChartRecordStore struct {
	mu      sync.RWMutex
	records map[string]storage.ChartRecord
}

// NewChartRecordStore creates an empty in-memory store.
func NewChartRecordStore() *ChartRecordStore {
	return &ChartRecordStore{records: make(map[string]storage.ChartRecord)}
}

var _ storage.ChartRecordStore = (*ChartRecordStore)(nil)

// Upsert inserts or replaces the record under its fingerprint.
func (s *ChartRecordStore) Upsert(_ context.Context, rec storage.ChartRecord) error {
	if rec.Fingerprint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Payload = append([]byte(nil), rec.Payload...)
	s.records[rec.Fingerprint] = rec
	return nil
}

// Get retrieves a record by fingerprint. Returns ErrNotFound if absent.
func (s *ChartRecordStore) Get(_ context.Context, fingerprint string) (storage.ChartRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[fingerprint]
	if !ok {
		return storage.ChartRecord{}, storage.ErrNotFound
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return rec, nil
}

// FetchAll returns every record, newest generation first.
func (s *ChartRecordStore) FetchAll(_ context.Context) ([]storage.ChartRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.ChartRecord, 0, len(s.records))
	for _, rec := range s.records {
		rec.Payload = append([]byte(nil), rec.Payload...)
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

// Delete removes a record; deleting an absent fingerprint is a no-op.
func (s *ChartRecordStore) Delete(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, fingerprint)
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *ChartRecordStore) Ping(_ context.Context) error { return nil }
