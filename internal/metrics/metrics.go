// Package metrics provides Prometheus instrumentation for the AI module.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vindex_ai",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ReputationRequestsTotal counts reputation assessments by outcome.
	ReputationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "reputation_requests_total",
			Help:      "Total reputation assessments by outcome.",
		},
		[]string{"outcome"},
	)

	// ReputationScoreDuration observes end-to-end assessment latency.
	ReputationScoreDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vindex_ai",
		Name:      "reputation_score_duration_seconds",
		Help:      "Time to produce a reputation assessment in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// ReputationTierTotal counts assessments by resulting risk tier.
	ReputationTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "reputation_tier_total",
			Help:      "Total assessments by resulting risk tier.",
		},
		[]string{"tier"},
	)

	// CacheHitsTotal counts cache hits by cache name.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "cache_hits_total",
			Help:      "Total cache hits by cache name.",
		},
		[]string{"cache"},
	)

	// CacheMissesTotal counts cache misses by cache name.
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "cache_misses_total",
			Help:      "Total cache misses by cache name.",
		},
		[]string{"cache"},
	)

	// CacheWriteFailuresTotal counts failed cache write-backs by cache name.
	CacheWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "cache_write_failures_total",
			Help:      "Total failed cache write-backs by cache name.",
		},
		[]string{"cache"},
	)

	// SignalCheckFailuresTotal counts signal checker failures and timeouts.
	SignalCheckFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "signal_check_failures_total",
			Help:      "Total signal checker failures by signal name.",
		},
		[]string{"signal"},
	)

	// PredictionRequestsTotal counts market predictions by outcome.
	PredictionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "prediction_requests_total",
			Help:      "Total market prediction requests by outcome.",
		},
		[]string{"outcome"},
	)

	// PredictionDuration tracks forecast latency in seconds.
	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vindex_ai",
			Name:      "prediction_duration_seconds",
			Help:      "Market prediction latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ChatRequestsTotal counts chat requests by language.
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "chat_requests_total",
			Help:      "Total chat requests by language.",
		},
		[]string{"language"},
	)

	// SnapshotRunsTotal counts snapshot worker runs by result.
	SnapshotRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vindex_ai",
			Name:      "snapshot_runs_total",
			Help:      "Total snapshot worker runs by result.",
		},
		[]string{"result"},
	)

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vindex_ai",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vindex_ai", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vindex_ai", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vindex_ai", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// DBWaitCount tracks the total number of connections waited for.
	DBWaitCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vindex_ai", Name: "db_wait_count_total",
		Help: "Total number of connections waited for.",
	})
	// DBWaitDuration tracks total time waited for connections.
	DBWaitDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vindex_ai", Name: "db_wait_duration_seconds_total",
		Help: "Total time waited for connections in seconds.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vindex_ai", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ReputationRequestsTotal,
		ReputationScoreDuration,
		ReputationTierTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheWriteFailuresTotal,
		SignalCheckFailuresTotal,
		PredictionRequestsTotal,
		PredictionDuration,
		ChatRequestsTotal,
		SnapshotRunsTotal,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		DBWaitCount,
		DBWaitDuration,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			DBWaitCount.Set(float64(stats.WaitCount))
			DBWaitDuration.Set(stats.WaitDuration.Seconds())
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
