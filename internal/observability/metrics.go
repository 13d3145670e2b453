// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the reclaimer.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Discovery metrics
	AccountsScanned prometheus.Counter
	CandidatesFound prometheus.Counter
	SkippedAccounts *prometheus.CounterVec

	// Execution metrics
	AccountsClosed    prometheus.Counter
	LamportsReclaimed prometheus.Counter
	SubmissionErrors  prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rent_reclaimer"
	}

	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "total",
			Help:      "Total number of reclaim runs by outcome",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Duration of reclaim runs",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		AccountsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "accounts_scanned_total",
			Help:      "Total number of token accounts scanned",
		}),
		CandidatesFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_found_total",
			Help:      "Total number of close candidates found",
		}),
		SkippedAccounts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "skipped_accounts_total",
			Help:      "Total number of skipped accounts by reason",
		}, []string{"reason"}),
		AccountsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "accounts_closed_total",
			Help:      "Total number of token accounts closed",
		}),
		LamportsReclaimed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "lamports_reclaimed_total",
			Help:      "Total lamports reclaimed by closing accounts",
		}),
		SubmissionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "submission_errors_total",
			Help:      "Total number of failed close submissions",
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful run",
		}),
	}
}

// Handler returns HTTP handler for /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
