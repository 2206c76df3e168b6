package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// METRICS TESTS
// =============================================================================

func TestRecordTurn(t *testing.T) {
	tests := []struct {
		name     string
		category string
		status   string
		seconds  float64
	}{
		{"qna turn", "qna", "success", 1.2},
		{"failed turn", "general", "error", 0.5},
		{"zero duration", "calendar", "success", 0},
		{"long turn", "search", "success", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordTurn(tt.category, tt.status, tt.seconds)

			count := testutil.ToFloat64(turnExecutionsTotal.WithLabelValues(tt.category, tt.status))
			assert.Greater(t, count, 0.0)
		})
	}
}

func TestRecordSpecialist(t *testing.T) {
	RecordSpecialist("ticket", "success")
	RecordSpecialist("ticket", "fallback")
	RecordSpecialist("search", "apology")

	success := testutil.ToFloat64(specialistExecutionsTotal.WithLabelValues("ticket", "success"))
	fallback := testutil.ToFloat64(specialistExecutionsTotal.WithLabelValues("ticket", "fallback"))
	apology := testutil.ToFloat64(specialistExecutionsTotal.WithLabelValues("search", "apology"))

	assert.Greater(t, success, 0.0)
	assert.Greater(t, fallback, 0.0)
	assert.Greater(t, apology, 0.0)
}

func TestRecordConfirmation(t *testing.T) {
	RecordConfirmation("email_send", "approve")
	RecordConfirmation("calendar_approve", "artifact")

	count := testutil.ToFloat64(confirmationsTotal.WithLabelValues("email_send", "approve"))
	assert.Greater(t, count, 0.0)
}

func TestRecordLLMCall(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		status  string
		seconds float64
	}{
		{"successful call", "gemini-2.0-flash", "success", 2.1},
		{"failed call", "gemini-2.0-flash", "error", 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordLLMCall(tt.model, tt.status, tt.seconds)

			count := testutil.ToFloat64(llmCallsTotal.WithLabelValues(tt.model, tt.status))
			assert.Greater(t, count, 0.0)
		})
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	RecordHTTPRequest("/api/chat", "200", 0.8)
	RecordHTTPRequest("/api/chat", "400", 0.01)

	ok := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/chat", "200"))
	bad := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/chat", "400"))
	assert.Greater(t, ok, 0.0)
	assert.Greater(t, bad, 0.0)
}

func TestMetricsConcurrent(t *testing.T) {
	const goroutines = 10
	const iterations = 100

	done := make(chan bool, goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < iterations; j++ {
				RecordTurn("concurrent-test", "success", 0.1)
				RecordSpecialist("concurrent-test", "success")
				RecordLLMCall("test-model", "success", 1)
			}
			done <- true
		}()
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}

	count := testutil.ToFloat64(turnExecutionsTotal.WithLabelValues("concurrent-test", "success"))
	assert.Equal(t, float64(goroutines*iterations), count)
}

func TestMetricsDifferentLabels(t *testing.T) {
	RecordTurn("label-a", "success", 0.1)
	RecordTurn("label-a", "error", 0.2)
	RecordTurn("label-b", "success", 0.3)

	assert.Greater(t, testutil.ToFloat64(turnExecutionsTotal.WithLabelValues("label-a", "success")), 0.0)
	assert.Greater(t, testutil.ToFloat64(turnExecutionsTotal.WithLabelValues("label-a", "error")), 0.0)
	assert.Greater(t, testutil.ToFloat64(turnExecutionsTotal.WithLabelValues("label-b", "success")), 0.0)
}

// =============================================================================
// TRACING TESTS
// =============================================================================

func TestInitTracerInvalidEndpoint(t *testing.T) {
	shutdown, err := InitTracer("test-service", "")

	// Empty endpoint should fail
	require.Error(t, err)
	assert.Nil(t, shutdown)
	assert.Contains(t, err.Error(), "failed to create trace exporter")
}
