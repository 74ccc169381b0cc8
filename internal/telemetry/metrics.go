// Package telemetry provides application-level observability for the log dashboard.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by cmd/server:
//
//	GET http://<host>:<LDB_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not part of the Gin router so that the
// scrape path stays off the public ingress and is never rate limited.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/searches/:id)
// rather than the raw URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Search backend metrics. Every query issued to the full-text index is timed
// and failures are counted, mirroring what the ingestion side records for
// indexing so both halves of the pipeline can be graphed together.
var (
	SearchQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opensearch_query_duration_seconds",
			Help:    "The duration of search requests to OpenSearch.",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchQueryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opensearch_query_errors_total",
			Help: "The total number of failed search requests.",
		},
	)
)

// Export metrics — labelled by output format (csv / json).
var ExportRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "log_export_requests_total",
		Help: "Total number of log export downloads served, by format.",
	},
	[]string{"format"},
)

// Database pool gauges, polled periodically by StartDBStatsCollector.
var (
	DBOpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open connections in the database pool.",
	})

	DBInUseConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_in_use_connections",
		Help: "Current number of database connections in use.",
	})

	DBIdleConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_idle_connections",
		Help: "Current number of idle database connections.",
	})
)

// StartDBStatsCollector polls db.Stats() every 30 seconds and exports the pool
// gauges. The goroutine runs for the life of the process; it holds no
// resources beyond the ticker so there is nothing to stop on shutdown.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBInUseConnections.Set(float64(stats.InUse))
			DBIdleConnections.Set(float64(stats.Idle))
		}
	}()
	slog.Debug("database pool stats collector started")
}
