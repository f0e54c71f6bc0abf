package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by
// the loader and the query service.
type Metrics struct {
	// Ingestion metrics.
	PlacemarksSeen    prometheus.Counter
	RecordsExtracted  prometheus.Counter
	PlacemarksSkipped prometheus.Counter
	IngestDuration    prometheus.Histogram

	// Query service metrics.
	TrackQueries  *prometheus.CounterVec // labels: kind={nearest,range,full}, outcome={success,client_error,server_error}
	QueryDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PlacemarksSeen,
		m.RecordsExtracted,
		m.PlacemarksSkipped,
		m.IngestDuration,
		m.TrackQueries,
		m.QueryDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PlacemarksSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stormsight",
			Name:      "placemarks_seen_total",
			Help:      "Total Placemark elements found in ingested KML documents.",
		}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stormsight",
			Name:      "records_extracted_total",
			Help:      "Total track points admitted for storage.",
		}),
		PlacemarksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stormsight",
			Name:      "placemarks_skipped_total",
			Help:      "Total placemarks dropped for missing coordinates or timestamp.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stormsight",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete ingestion run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		TrackQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stormsight",
			Name:      "track_queries_total",
			Help:      "Track data requests by query kind and outcome.",
		}, []string{"kind", "outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stormsight",
			Name:      "query_duration_seconds",
			Help:      "Duration of track data request handling.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
	}
}
