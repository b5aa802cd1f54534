package cache

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/astrolark/natal-chart-service/internal/domain"
	"github.com/astrolark/natal-chart-service/internal/storage"
)

const (
	// DefaultRetention is how long a cached chart stays servable before it is
	// considered stale and eligible for eviction.
	DefaultRetention = 30 * 24 * time.Hour

	// coordinateEpsilon is the per-axis tolerance, in degrees, under which two
	// birth coordinates identify the same subject.
	coordinateEpsilon = 1e-4
)

// ChartCache stores computed natal charts keyed by subject fingerprint and
// answers lookups with tolerant matching, so near-identical birth data reuses
// the same chart instead of recomputing it.
type ChartCache struct {
	store     storage.ChartRecordStore
	retention time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewChartCache creates a cache backed by the given record store. A
// non-positive retention falls back to DefaultRetention.
func NewChartCache(store storage.ChartRecordStore, retention time.Duration, clock clockwork.Clock, logger *slog.Logger) *ChartCache {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ChartCache{
		store:     store,
		retention: retention,
		clock:     clock,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// subjectLock serializes writes for one fingerprint so concurrent saves of
// the same subject cannot interleave their delete-then-upsert sequences.
func (c *ChartCache) subjectLock(fingerprint string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[fingerprint]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[fingerprint] = lock
	}
	return lock
}

// Save persists a chart for the given subject, replacing any existing record
// that matches the subject tolerantly, even one stored under a different
// canonical key. Failures are reported as *domain.PersistenceError.
func (c *ChartCache) Save(ctx context.Context, chart domain.NatalChart, birth domain.BirthData) error {
	fingerprint := Fingerprint(birth, chart.HouseSystem)

	lock := c.subjectLock(fingerprint)
	lock.Lock()
	defer lock.Unlock()

	rec := Record{
		Fingerprint: fingerprint,
		Birth:       birth,
		Chart:       chart,
		GeneratedAt: c.clock.Now().UTC(),
	}
	payload, err := EncodeRecord(rec)
	if err != nil {
		return &domain.PersistenceError{Op: "encode chart record", Err: err}
	}

	c.removeMatching(ctx, fingerprint, birth, chart.HouseSystem)

	if err := c.store.Upsert(ctx, storage.ChartRecord{
		Fingerprint: fingerprint,
		Payload:     payload,
		GeneratedAt: rec.GeneratedAt,
	}); err != nil {
		return &domain.PersistenceError{Op: "store chart record", Err: err}
	}

	c.logger.Debug("chart cached", "fingerprint", fingerprint, "chart_id", chart.ID)
	return nil
}

// removeMatching deletes records for the same subject stored under other
// fingerprints, keeping at most one record per subject. Failures here only
// risk an orphan that eviction will collect, so they are logged, not fatal.
func (c *ChartCache) removeMatching(ctx context.Context, fingerprint string, birth domain.BirthData, houseSystem domain.HouseSystem) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("failed to scan cache for duplicates", "error", err)
		return
	}
	for _, stored := range records {
		if stored.Fingerprint == fingerprint {
			continue
		}
		rec, err := DecodeRecord(stored.Payload)
		if err != nil {
			continue
		}
		if rec.Chart.HouseSystem != houseSystem || !sameSubject(rec.Birth, birth) {
			continue
		}
		if err := c.store.Delete(ctx, stored.Fingerprint); err != nil {
			c.logger.Warn("failed to delete superseded chart record",
				"fingerprint", stored.Fingerprint, "error", err)
		}
	}
}

// Find returns a cached chart for the subject, or false on a miss. Stale
// records, corrupt payloads, and storage failures all degrade to a miss; the
// cache never fails a lookup hard.
func (c *ChartCache) Find(ctx context.Context, birth domain.BirthData, houseSystem domain.HouseSystem) (domain.NatalChart, bool) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		c.logger.Warn("cache lookup failed, treating as miss", "error", err)
		return domain.NatalChart{}, false
	}

	now := c.clock.Now()
	for _, stored := range records {
		if c.IsStale(stored, now) {
			continue
		}
		rec, err := DecodeRecord(stored.Payload)
		if err != nil {
			c.logger.Warn("skipping corrupt chart record",
				"fingerprint", stored.Fingerprint, "error", err)
			continue
		}
		if rec.Chart.HouseSystem != houseSystem {
			continue
		}
		if sameSubject(rec.Birth, birth) {
			c.logger.Debug("cache hit", "fingerprint", stored.Fingerprint, "chart_id", rec.Chart.ID)
			return rec.Chart, true
		}
	}
	return domain.NatalChart{}, false
}

// IsStale reports whether a record's age exceeds the retention window
// relative to the reference time.
func (c *ChartCache) IsStale(rec storage.ChartRecord, ref time.Time) bool {
	return ref.Sub(rec.GeneratedAt) > c.retention
}

// EvictStale deletes every record older than the retention window and
// returns how many were removed.
func (c *ChartCache) EvictStale(ctx context.Context, ref time.Time) (int, error) {
	records, err := c.store.FetchAll(ctx)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "scan cache for eviction", Err: err}
	}

	evicted := 0
	for _, stored := range records {
		if !c.IsStale(stored, ref) {
			continue
		}
		if err := c.store.Delete(ctx, stored.Fingerprint); err != nil {
			c.logger.Warn("failed to evict stale chart record",
				"fingerprint", stored.Fingerprint, "error", err)
			continue
		}
		evicted++
	}
	if evicted > 0 {
		c.logger.Info("evicted stale chart records", "count", evicted)
	}
	return evicted, nil
}

// RunEvictionLoop evicts stale records on a fixed interval until the context
// is cancelled.
func (c *ChartCache) RunEvictionLoop(ctx context.Context, interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if _, err := c.EvictStale(ctx, c.clock.Now()); err != nil {
				c.logger.Error("stale chart eviction failed", "error", err)
			}
		}
	}
}

// AttachRenderedImage adds a rendered-image reference to the cached chart for
// the subject. The record's generation timestamp is preserved: attaching an
// image does not refresh staleness. Returns storage.ErrNotFound when no
// matching record exists.
func (c *ChartCache) AttachRenderedImage(ctx context.Context, birth domain.BirthData, houseSystem domain.HouseSystem, image domain.RenderedImage) error {
	fingerprint := Fingerprint(birth, houseSystem)

	lock := c.subjectLock(fingerprint)
	lock.Lock()
	defer lock.Unlock()

	stored, err := c.store.Get(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return &domain.PersistenceError{Op: "load chart record", Err: err}
	}

	rec, err := DecodeRecord(stored.Payload)
	if err != nil {
		return &domain.PersistenceError{Op: "decode chart record", Err: err}
	}

	rec.Chart.Image = &image
	payload, err := EncodeRecord(rec)
	if err != nil {
		return &domain.PersistenceError{Op: "encode chart record", Err: err}
	}

	if err := c.store.Upsert(ctx, storage.ChartRecord{
		Fingerprint: fingerprint,
		Payload:     payload,
		GeneratedAt: stored.GeneratedAt,
	}); err != nil {
		return &domain.PersistenceError{Op: "store chart record", Err: err}
	}
	return nil
}

// sameSubject reports whether two birth-data values identify the same chart
// subject under the tolerant matching rule: calendar date and clock time to
// the second, location case-insensitively, timezone exactly, and coordinates
// within coordinateEpsilon per axis or both absent.
func sameSubject(a, b domain.BirthData) bool {
	at, bt := a.BirthTime, b.BirthTime
	if at.Year() != bt.Year() || at.Month() != bt.Month() || at.Day() != bt.Day() {
		return false
	}
	if at.Hour() != bt.Hour() || at.Minute() != bt.Minute() || at.Second() != bt.Second() {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(a.Location), strings.TrimSpace(b.Location)) {
		return false
	}
	if a.Timezone != b.Timezone {
		return false
	}
	return sameCoordinate(a.Coordinate, b.Coordinate)
}

func sameCoordinate(a, b *domain.Coordinate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return math.Abs(a.Lat-b.Lat) <= coordinateEpsilon &&
		math.Abs(a.Lon-b.Lon) <= coordinateEpsilon
}
