// Package metrics holds the Prometheus collectors exported on GET /api/admin/metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckInsCreated counts stored check-ins by mood.
	CheckInsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_checkins_created_total",
			Help: "Total number of check-ins created",
		},
		[]string{"mood"},
	)

	// CheckInConflicts counts rejected same-day or locked check-in writes.
	CheckInConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_checkin_conflicts_total",
			Help: "Total number of check-in writes rejected with a conflict",
		},
		[]string{"reason"},
	)

	// JournalEntries counts journal writes by operation.
	JournalEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_journal_operations_total",
			Help: "Total number of journal entry writes",
		},
		[]string{"operation"},
	)

	// AIRequests counts AI calls by task, provider and outcome (ok, error, fallback).
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_ai_requests_total",
			Help: "Total number of AI text generation requests",
		},
		[]string{"task", "provider", "outcome"},
	)

	// AIRequestDuration tracks provider latency.
	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindful_ai_request_duration_seconds",
			Help:    "Duration of AI provider calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"provider"},
	)

	// CacheOperations counts cache reads and writes by result.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)
)

// ObserveAI records one provider call.
func ObserveAI(task, provider string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	AIRequests.WithLabelValues(task, provider, outcome).Inc()
	AIRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// AIFallback records that a task answered with its local default.
func AIFallback(task string) {
	AIRequests.WithLabelValues(task, "none", "fallback").Inc()
}
