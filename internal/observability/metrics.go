package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "metar_sync"

// Metrics holds the Prometheus counters, histograms, and gauges for the sync loop.
type Metrics struct {
	CyclesTotal        *prometheus.CounterVec // labels: outcome={ok,fetch_error,unexpected}
	EntitiesPublished  prometheus.Counter
	PublishErrors      prometheus.Counter
	ObservationErrors  prometheus.Counter
	MirrorErrors       *prometheus.CounterVec // labels: sink
	StationsByCategory *prometheus.GaugeVec   // labels: category
	LoopRunning        prometheus.Gauge
	LastCycleSuccess   prometheus.Gauge

	CycleDuration prometheus.Histogram

	// Upstream observation API metrics.
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,error}
	UpstreamDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Reconciliation cycles by outcome.",
		}, []string{"outcome"}),
		EntitiesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_published_total",
			Help:      "Total station entities accepted by the entity directory.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed entity publishes.",
		}),
		ObservationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observation_errors_total",
			Help:      "Stations skipped because their observation was missing or malformed.",
		}),
		MirrorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_errors_total",
			Help:      "Failed entity copies to mirror sinks.",
		}, []string{"sink"}),
		StationsByCategory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_by_category",
			Help:      "Stations in each flight category as of the last cycle.",
		}, []string{"category"}),
		LoopRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_running",
			Help:      "1 when the reconciliation loop is active, 0 when shut down.",
		}),
		LastCycleSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that published at least one entity.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-synthesize-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Observation API requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Observation API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CyclesTotal,
		m.EntitiesPublished,
		m.PublishErrors,
		m.ObservationErrors,
		m.MirrorErrors,
		m.StationsByCategory,
		m.LoopRunning,
		m.LastCycleSuccess,
		m.CycleDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
	}
}
