package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Asset population metrics, refreshed by the stats exporter
	AssetsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trackd_assets_total",
			Help: "Total number of active assets",
		},
	)

	AssetsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trackd_assets_by_status",
			Help: "Number of active assets by operational status",
		},
		[]string{"status"},
	)

	AssetsByType = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trackd_assets_by_type",
			Help: "Number of active assets by type",
		},
		[]string{"type"},
	)

	// Write path metrics
	AssetWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackd_asset_writes_total",
			Help: "Total number of asset write operations",
		},
		[]string{"operation", "outcome"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackd_status_transitions_total",
			Help: "Total number of derived status transitions",
		},
		[]string{"from", "to"},
	)

	HeartbeatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackd_heartbeats_total",
			Help: "Total number of heartbeats (location and battery reports)",
		},
		[]string{"source"},
	)

	// Record store metrics
	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackd_store_queries_total",
			Help: "Total number of record store operations",
		},
		[]string{"operation"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackd_store_query_duration_seconds",
			Help:    "Record store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackd_errors_total",
			Help: "Total number of errors",
		},
		[]string{"service", "type", "operation"},
	)
)

// RecordStoreQuery records one record store operation.
func RecordStoreQuery(operation string, duration float64) {
	StoreQueriesTotal.WithLabelValues(operation).Inc()
	StoreQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordWrite records the outcome of a coordinator write operation.
func RecordWrite(operation, outcome string) {
	AssetWritesTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordHeartbeat records a liveness signal by source (location, battery).
func RecordHeartbeat(source string) {
	HeartbeatsTotal.WithLabelValues(source).Inc()
}

// RecordStatusTransition records a derived status change.
func RecordStatusTransition(from, to string) {
	StatusTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordError records error metrics.
func RecordError(service, errType, operation string) {
	ErrorsTotal.WithLabelValues(service, errType, operation).Inc()
}
