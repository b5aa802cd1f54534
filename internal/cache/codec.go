package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/astrolark/natal-chart-service/internal/domain"
)

// Record is the cache-owned persisted form of one chart: the chart itself,
// the birth-data snapshot it was computed from, and the generation timestamp
// driving staleness.
type Record struct {
	Fingerprint string            `json:"fingerprint"`
	Birth       domain.BirthData  `json:"birth"`
	Chart       domain.NatalChart `json:"chart"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// EncodeRecord serializes a record. A chart without its full body set or
// without exactly 12 houses is invalid and refuses to encode; an empty aspect
// list is valid.
func EncodeRecord(rec Record) ([]byte, error) {
	if err := validateChart(rec.Chart); err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode chart record: %w", err)
	}
	return data, nil
}

// DecodeRecord deserializes a record and re-validates the chart invariants,
// so a corrupted row can never surface as a cache hit.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode chart record: %w", err)
	}
	if err := validateChart(rec.Chart); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func validateChart(chart domain.NatalChart) error {
	if len(chart.Bodies) == 0 {
		return errors.New("chart record: no celestial bodies")
	}
	if len(chart.Houses) != 12 {
		return fmt.Errorf("chart record: %d houses, want 12", len(chart.Houses))
	}
	return nil
}
