// Package observability provides Prometheus metrics instrumentation for the
// task router.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// TURN METRICS
// =============================================================================

var (
	turnExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportcore_turn_executions_total",
			Help: "Total number of chat turns processed",
		},
		[]string{"category", "status"}, // status: success, error
	)

	turnDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supportcore_turn_duration_seconds",
			Help:    "Chat turn duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"category"},
	)
)

// =============================================================================
// SPECIALIST METRICS
// =============================================================================

var (
	specialistExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportcore_specialist_executions_total",
			Help: "Total number of specialist dispatches",
		},
		[]string{"category", "status"}, // status: success, fallback, apology
	)

	confirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportcore_confirmations_total",
			Help: "Total number of confirmation turns resolved",
		},
		[]string{"kind", "action"}, // action: approve, edit, cancel, send_email, google_calendar, unmatched
	)
)

// =============================================================================
// LLM METRICS
// =============================================================================

var (
	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportcore_llm_calls_total",
			Help: "Total number of text model API calls",
		},
		[]string{"model", "status"}, // status: success, error
	)

	llmDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supportcore_llm_duration_seconds",
			Help:    "Text model call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)
)

// =============================================================================
// HTTP METRICS
// =============================================================================

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supportcore_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supportcore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 30},
		},
		[]string{"route"},
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordTurn records one processed chat turn.
// This should be called after the orchestrator finishes the turn.
func RecordTurn(category string, status string, seconds float64) {
	turnExecutionsTotal.WithLabelValues(category, status).Inc()
	turnDurationSeconds.WithLabelValues(category).Observe(seconds)
}

// RecordSpecialist records one specialist dispatch outcome.
func RecordSpecialist(category string, status string) {
	specialistExecutionsTotal.WithLabelValues(category, status).Inc()
}

// RecordConfirmation records one resolved confirmation turn.
func RecordConfirmation(kind string, action string) {
	confirmationsTotal.WithLabelValues(kind, action).Inc()
}

// RecordLLMCall records a text model call.
// This should be called after generation completes.
func RecordLLMCall(model string, status string, seconds float64) {
	llmCallsTotal.WithLabelValues(model, status).Inc()
	llmDurationSeconds.WithLabelValues(model).Observe(seconds)
}

// RecordHTTPRequest records an HTTP request.
// This should be called from router middleware.
func RecordHTTPRequest(route string, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(route, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(route).Observe(seconds)
}
