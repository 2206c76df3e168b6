package faults

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "dial tcp: connection refused" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Kind("")},
		{"backend_down", fmt.Errorf("redis append: %w", ErrBackendDown), KindTransient},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"canceled", context.Canceled, KindTransient},
		{"net_error", fakeNetError{}, KindTransient},
		{"wrapped_net_error", fmt.Errorf("search: %w", fakeNetError{}), KindTransient},
		{"specialist_disabled", fmt.Errorf("ticket: %w", ErrSpecialistDisabled), KindUnavailable},
		{"model_failure", fmt.Errorf("generate: %w", ErrModelFailure), KindClassification},
		{"unknown", errors.New("nil map write"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(ErrBackendDown))
	assert.True(t, Recoverable(ErrSpecialistDisabled))
	assert.True(t, Recoverable(ErrModelFailure))
	assert.False(t, Recoverable(errors.New("boom")))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", Redact(nil))
	assert.Equal(t, "line one", Redact(errors.New("line one\nline two\nline three")))
	assert.Equal(t, "plain", Redact(errors.New("plain")))
}
