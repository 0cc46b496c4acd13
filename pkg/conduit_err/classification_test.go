// pkg/conduit_err/classification_test.go

package conduit_err

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil is success", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "validation", err: NewValidationError("domain must not be empty"), want: 2},
		{name: "user cancelled", err: NewUserCancelledError("tunnel login"), want: 130},
		{name: "internal", err: NewInternalError("impossible state", nil), want: 3},
		{name: "network", err: NewNetworkError("apt update failed", errors.New("timeout")), want: 1},
		{name: "expected user error", err: NewUserError("already installed"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestClassifiedErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewValidationError("tunnel name must not be empty",
		"Pass --name or answer the prompt")

	msg := err.Error()
	assert.Contains(t, msg, "tunnel name must not be empty")
	assert.Contains(t, msg, "How to fix:")
	assert.Contains(t, msg, "1. Pass --name or answer the prompt")
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("no such file or directory")))
	assert.True(t, IsRetryable(errors.New("connection refused")))
	assert.True(t, IsRetryable(errors.New("Could not get lock /var/lib/apt/lists/lock")))
	assert.True(t, IsRetryable(errors.New("Temporary failure resolving 'pkg.cloudflare.com'")))
}
