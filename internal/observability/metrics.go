package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "epw_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the scrape pipeline.
type Metrics struct {
	FeaturesTotal   prometheus.Counter
	FeaturesSkipped prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Header fetch metrics.
	FetchAttempts  *prometheus.CounterVec // labels: outcome={partial,full,error}
	FetchFailures  prometheus.Counter
	FetchDuration  prometheus.Histogram
	HeaderEncoding *prometheus.CounterVec // labels: encoding={utf-8,iso-8859-1,lossy}

	// Parse and dedup metrics.
	ParseErrors     *prometheus.CounterVec // labels: reason
	LocationUpserts *prometheus.CounterVec // labels: outcome={inserted,replaced,kept}
	UniqueLocations prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeaturesTotal,
		m.FeaturesSkipped,
		m.PipelineRunning,
		m.FetchAttempts,
		m.FetchFailures,
		m.FetchDuration,
		m.HeaderEncoding,
		m.ParseErrors,
		m.LocationUpserts,
		m.UniqueLocations,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeaturesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_total",
			Help:      "Total index features visited.",
		}),
		FeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "features_skipped_total",
			Help:      "Index features without a usable weather file URL.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while the scrape is in progress, 0 otherwise.",
		}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "header_fetch_attempts_total",
			Help:      "Header fetch attempts by outcome (partial, full, error).",
		}, []string{"outcome"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "header_fetch_failures_total",
			Help:      "Weather files whose header could not be fetched after all retries.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "header_fetch_duration_seconds",
			Help:      "Duration of a single header fetch attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}),
		HeaderEncoding: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "header_encoding_total",
			Help:      "Decoded headers by the encoding that accepted them.",
		}, []string{"encoding"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "LOCATION line parse failures by reason.",
		}, []string{"reason"}),
		LocationUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_upserts_total",
			Help:      "Parsed locations by store outcome (inserted, replaced, kept).",
		}, []string{"outcome"}),
		UniqueLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unique_locations",
			Help:      "Distinct WMO indexes currently retained.",
		}),
	}
}
