package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	SettlementOutcomes *prometheus.CounterVec
	SettlementDuration prometheus.Histogram
	SettlementAmount   prometheus.Histogram
	SettlementErrors   *prometheus.CounterVec
	SettlementQueue    prometheus.Gauge
	SettlementDropped  prometheus.Counter

	// Ad metrics
	AdsCreated   prometheus.Counter
	AdsDeleted   prometheus.Counter
	AdsExhausted prometheus.Counter

	// Viewer metrics
	ViewerCredits prometheus.Counter

	// View gateway metrics
	ViewRedirects *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Settlement metrics
		SettlementOutcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_settlement_outcomes_total",
				Help: "Total settlement attempts by outcome",
			},
			[]string{"outcome"},
		),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adledger_settlement_duration_seconds",
			Help:    "Duration of view settlement operations",
			Buckets: prometheus.DefBuckets,
		}),
		SettlementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "adledger_settlement_amount",
			Help:    "Per-view amounts settled",
			Buckets: []float64{0.01, 0.1, 1, 10, 100, 1000},
		}),
		SettlementErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_settlement_errors_total",
				Help: "Total settlement errors by type",
			},
			[]string{"error_type"},
		),
		SettlementQueue: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "adledger_settlement_queue_depth",
			Help: "Current number of queued settlement jobs",
		}),
		SettlementDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_settlement_dropped_total",
			Help: "Total settlement jobs dropped due to a full queue",
		}),

		// Ad metrics
		AdsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_ads_created_total",
			Help: "Total number of ads created",
		}),
		AdsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_ads_deleted_total",
			Help: "Total number of ads deleted",
		}),
		AdsExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_ads_exhausted_total",
			Help: "Total number of ads deactivated after running out of budget",
		}),

		// Viewer metrics
		ViewerCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_viewer_credits_total",
			Help: "Total number of viewer earnings credits",
		}),

		// View gateway metrics
		ViewRedirects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_view_redirects_total",
				Help: "Total view redirects by target",
			},
			[]string{"target"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "adledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adledger_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "adledger_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),
	}
}
