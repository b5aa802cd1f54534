// Package service orchestrates the chart lifecycle: normalize birth data,
// reuse a cached chart when one matches, otherwise fetch from the ephemeris
// provider, map, cache, and publish.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/astrolark/natal-chart-service/internal/cache"
	"github.com/astrolark/natal-chart-service/internal/domain"
	"github.com/astrolark/natal-chart-service/internal/observability"
)

// FetchMode controls whether a request may be answered from the cache.
type FetchMode int

const (
	// ComputeOrReuse answers from the cache when a fresh matching chart
	// exists, computing only on a miss.
	ComputeOrReuse FetchMode = iota
	// ComputeFresh always recomputes, superseding any cached chart for the
	// subject.
	ComputeFresh
)

// ChartPublisher delivers completed charts to downstream consumers.
type ChartPublisher interface {
	Publish(ctx context.Context, chart domain.NatalChart) error
}

// ChartService is the inbound API of the chart core.
type ChartService struct {
	provider  domain.Provider
	cache     *cache.ChartCache
	publisher ChartPublisher
	scheme    domain.RulershipScheme
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a chart service. Publisher may be nil when no downstream
// consumers are configured.
func New(provider domain.Provider, chartCache *cache.ChartCache, publisher ChartPublisher, scheme domain.RulershipScheme, logger *slog.Logger, metrics *observability.Metrics) *ChartService {
	return &ChartService{
		provider:  provider,
		cache:     chartCache,
		publisher: publisher,
		scheme:    scheme,
		logger:    logger,
		metrics:   metrics,
	}
}

// GetChart returns the natal chart for the subject, honoring the fetch mode.
// Validation failures surface as the typed errors of the domain package;
// provider transport failures are wrapped and reported as computation errors.
func (s *ChartService) GetChart(ctx context.Context, birth domain.BirthData, houseSystem domain.HouseSystem, mode FetchMode) (domain.NatalChart, error) {
	if mode == ComputeOrReuse {
		if chart, ok := s.cache.Find(ctx, birth, houseSystem); ok {
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			s.metrics.ChartRequests.WithLabelValues("cache_hit").Inc()
			s.logger.Debug("serving cached chart", "chart_id", chart.ID)
			return chart, nil
		}
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	chart, err := s.compute(ctx, birth, houseSystem)
	if err != nil {
		s.metrics.ChartRequests.WithLabelValues("error").Inc()
		return domain.NatalChart{}, err
	}
	s.metrics.ChartRequests.WithLabelValues("computed").Inc()

	// A cache failure loses reuse, not the computed chart.
	if err := s.cache.Save(ctx, chart, birth); err != nil {
		s.logger.Warn("failed to cache chart", "chart_id", chart.ID, "error", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, chart); err != nil {
			s.logger.Error("failed to publish chart", "chart_id", chart.ID, "error", err)
		} else {
			s.metrics.ChartsPublished.Inc()
		}
	}

	return chart, nil
}

func (s *ChartService) compute(ctx context.Context, birth domain.BirthData, houseSystem domain.HouseSystem) (domain.NatalChart, error) {
	req, err := domain.NewProviderRequest(birth, houseSystem)
	if err != nil {
		return domain.NatalChart{}, err
	}

	start := time.Now()
	raw, err := s.provider.FetchChart(ctx, req)
	s.metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ProviderRequests.WithLabelValues("error").Inc()
		var mcErr *domain.MissingCoordinateError
		if errors.As(err, &mcErr) {
			return domain.NatalChart{}, err
		}
		return domain.NatalChart{}, fmt.Errorf("fetch chart data: %w", err)
	}
	s.metrics.ProviderRequests.WithLabelValues("success").Inc()

	chart, err := domain.MapChart(raw, birth, houseSystem, s.scheme, s.logger)
	if err != nil {
		s.metrics.MappingErrors.Inc()
		return domain.NatalChart{}, err
	}
	return chart, nil
}

// AttachRenderedImage records a rendered-image reference against the cached
// chart for the subject.
func (s *ChartService) AttachRenderedImage(ctx context.Context, birth domain.BirthData, houseSystem domain.HouseSystem, image domain.RenderedImage) error {
	return s.cache.AttachRenderedImage(ctx, birth, houseSystem, image)
}

// EvictStale removes cached charts older than the retention window.
func (s *ChartService) EvictStale(ctx context.Context) (int, error) {
	evicted, err := s.cache.EvictStale(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	s.metrics.StaleEvictions.Add(float64(evicted))
	return evicted, nil
}

// Pinger is the slice of the record store the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecker verifies the service's persistent dependency.
type ReadinessChecker struct {
	store   Pinger
	metrics *observability.Metrics
}

// NewReadinessChecker wraps the record store for the /readyz probe.
func NewReadinessChecker(store Pinger, metrics *observability.Metrics) *ReadinessChecker {
	return &ReadinessChecker{store: store, metrics: metrics}
}

// CheckReadiness pings the record store and mirrors the result into the
// readiness gauge.
func (r *ReadinessChecker) CheckReadiness(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		r.metrics.ServiceReady.Set(0)
		return fmt.Errorf("record store not reachable: %w", err)
	}
	r.metrics.ServiceReady.Set(1)
	return nil
}
