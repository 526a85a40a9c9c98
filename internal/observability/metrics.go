package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// atlas service.
type Metrics struct {
	DatasetsLoaded      prometheus.Gauge
	LoadFailures        prometheus.Counter
	RowsAccepted        prometheus.Counter
	RowsRejected        prometheus.Counter
	UnknownRegionTokens prometheus.Counter

	AggregationRequests prometheus.Counter
	AggregationDuration prometheus.Histogram

	// Boundary fetch metrics.
	BoundaryFetches *prometheus.CounterVec // labels: outcome={success,error}
	BoundaryCache   *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cat_atlas",
			Name:      "datasets_loaded",
			Help:      "Number of datasets currently loaded in the store.",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "load_failures_total",
			Help:      "Total dataset loads that failed before validation completed.",
		}),
		RowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "rows_accepted_total",
			Help:      "Total rows accepted into datasets.",
		}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "rows_rejected_total",
			Help:      "Total rows excluded for structural errors.",
		}),
		UnknownRegionTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "unknown_region_tokens_total",
			Help:      "Total province-label tokens that matched no catalog entry.",
		}),
		AggregationRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "aggregation_requests_total",
			Help:      "Total aggregation computations served.",
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cat_atlas",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one merge-filter-group aggregation pass.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		BoundaryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "boundary_fetches_total",
			Help:      "Boundary GeoJSON fetches by outcome.",
		}, []string{"outcome"}),
		BoundaryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cat_atlas",
			Name:      "boundary_cache_total",
			Help:      "Boundary cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.DatasetsLoaded,
		m.LoadFailures,
		m.RowsAccepted,
		m.RowsRejected,
		m.UnknownRegionTokens,
		m.AggregationRequests,
		m.AggregationDuration,
		m.BoundaryFetches,
		m.BoundaryCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct fresh instances without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetsLoaded:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cat_atlas", Name: "datasets_loaded"}),
		LoadFailures:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "load_failures_total"}),
		RowsAccepted:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "rows_accepted_total"}),
		RowsRejected:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "rows_rejected_total"}),
		UnknownRegionTokens: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "unknown_region_tokens_total"}),
		AggregationRequests: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "aggregation_requests_total"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cat_atlas", Name: "aggregation_duration_seconds"}),
		BoundaryFetches:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "boundary_fetches_total"}, []string{"outcome"}),
		BoundaryCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cat_atlas", Name: "boundary_cache_total"}, []string{"result"}),
	}
}
