package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the chart
// service.
type Metrics struct {
	ChartRequests   *prometheus.CounterVec // labels: outcome={cache_hit,computed,error}
	ChartsPublished prometheus.Counter
	MappingErrors   prometheus.Counter
	ServiceReady    prometheus.Gauge

	// Cache metrics.
	CacheLookups   *prometheus.CounterVec // labels: result={hit,miss}
	StaleEvictions prometheus.Counter

	// Provider metrics.
	ProviderRequests *prometheus.CounterVec // labels: outcome={success,error}
	ProviderDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ChartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "natal_chart",
			Name:      "chart_requests_total",
			Help:      "Chart requests by outcome.",
		}, []string{"outcome"}),
		ChartsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "natal_chart",
			Name:      "charts_published_total",
			Help:      "Completed charts written to the sink topic.",
		}),
		MappingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "natal_chart",
			Name:      "mapping_errors_total",
			Help:      "Provider responses that failed to map into a chart.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "natal_chart",
			Name:      "service_ready",
			Help:      "1 when the service has verified its dependencies, 0 otherwise.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "natal_chart",
			Name:      "cache_lookups_total",
			Help:      "Chart cache lookups by result.",
		}, []string{"result"}),
		StaleEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "natal_chart",
			Name:      "stale_evictions_total",
			Help:      "Cached charts removed after exceeding the retention window.",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "natal_chart",
			Name:      "provider_requests_total",
			Help:      "Ephemeris provider requests by outcome.",
		}, []string{"outcome"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "natal_chart",
			Name:      "provider_request_duration_seconds",
			Help:      "Ephemeris provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.ChartRequests,
		m.ChartsPublished,
		m.MappingErrors,
		m.ServiceReady,
		m.CacheLookups,
		m.StaleEvictions,
		m.ProviderRequests,
		m.ProviderDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ChartRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "natal_chart", Name: "chart_requests_total"}, []string{"outcome"}),
		ChartsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "natal_chart", Name: "charts_published_total"}),
		MappingErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "natal_chart", Name: "mapping_errors_total"}),
		ServiceReady:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "natal_chart", Name: "service_ready"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "natal_chart", Name: "cache_lookups_total"}, []string{"result"}),
		StaleEvictions:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "natal_chart", Name: "stale_evictions_total"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "natal_chart", Name: "provider_requests_total"}, []string{"outcome"}),
		ProviderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "natal_chart", Name: "provider_request_duration_seconds"}),
	}
}
