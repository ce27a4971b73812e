// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Swap metrics
	SwapsExecuted      prometheus.Counter
	SwapsFailed        *prometheus.CounterVec
	SwapDuration       prometheus.Histogram
	ReentrancyRejected prometheus.Counter
	PausedRejected     prometheus.Counter

	// Rate metrics
	RateUpdates   *prometheus.CounterVec
	OracleSyncs   *prometheus.CounterVec
	OracleUpdates prometheus.Counter

	// Liquidity metrics
	LiquidityOps *prometheus.CounterVec

	// Collaborator metrics
	TokenCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	Paused        prometheus.Gauge
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pegswap"
	}

	return &Metrics{
		// Swap metrics
		SwapsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "swaps_executed_total",
			Help:      "Total number of swaps that passed balance reconciliation",
		}),
		SwapsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "swaps_failed_total",
			Help:      "Total number of rejected swaps by failure reason",
		}, []string{"reason"}),
		SwapDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "swap_duration_seconds",
			Help:      "End-to-end swap execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ReentrancyRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "reentrancy_rejected_total",
			Help:      "Total number of nested calls rejected by the reentrancy lock",
		}),
		PausedRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "paused_rejected_total",
			Help:      "Total number of swaps rejected while paused",
		}),

		// Rate metrics
		RateUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rates",
			Name:      "updates_total",
			Help:      "Total number of rate writes by source",
		}, []string{"source"}),
		OracleSyncs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rates",
			Name:      "oracle_syncs_total",
			Help:      "Total number of oracle sync attempts by status",
		}, []string{"status"}),
		OracleUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rates",
			Name:      "oracle_reference_updates_total",
			Help:      "Total number of oracle reference changes",
		}),

		// Liquidity metrics
		LiquidityOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "operations_total",
			Help:      "Total number of treasury liquidity operations by direction",
		}, []string{"direction"}),

		// Collaborator metrics
		TokenCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "call_latency_seconds",
			Help:      "Token RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		Paused: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "paused",
			Help:      "1 when the swap circuit breaker is engaged",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSwapExecuted records a completed swap and its duration.
func RecordSwapExecuted(seconds float64) {
	DefaultMetrics.SwapsExecuted.Inc()
	DefaultMetrics.SwapDuration.Observe(seconds)
}

// RecordSwapFailed records a rejected swap by failure reason.
func RecordSwapFailed(reason string) {
	DefaultMetrics.SwapsFailed.WithLabelValues(reason).Inc()
}

// RecordReentrancyRejected records a nested call rejection.
func RecordReentrancyRejected() {
	DefaultMetrics.ReentrancyRejected.Inc()
}

// RecordPausedRejected records a swap rejected by the circuit breaker.
func RecordPausedRejected() {
	DefaultMetrics.PausedRejected.Inc()
}

// RecordRateUpdate records a rate write by source.
func RecordRateUpdate(source string) {
	DefaultMetrics.RateUpdates.WithLabelValues(source).Inc()
}

// RecordOracleSync records an oracle sync attempt.
func RecordOracleSync(status string) {
	DefaultMetrics.OracleSyncs.WithLabelValues(status).Inc()
}

// RecordOracleUpdate records an oracle reference change.
func RecordOracleUpdate() {
	DefaultMetrics.OracleUpdates.Inc()
}

// RecordLiquidityOp records a treasury liquidity operation.
func RecordLiquidityOp(direction string) {
	DefaultMetrics.LiquidityOps.WithLabelValues(direction).Inc()
}

// RecordTokenCall records token RPC call latency.
func RecordTokenCall(method string, seconds float64) {
	DefaultMetrics.TokenCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// SetPaused updates the pause gauge.
func SetPaused(paused bool) {
	if paused {
		DefaultMetrics.Paused.Set(1)
	} else {
		DefaultMetrics.Paused.Set(0)
	}
}
