// pkg/execute/retry.go

package execute

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy bounds a retried external operation. Delay is fixed between
// attempts, not exponential. A policy applies to exactly one operation.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy matches the historical installer behaviour for flaky
// package-manager calls.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 5 * time.Second}

// RetryFailure is the terminal result after a policy is exhausted.
type RetryFailure struct {
	LastErr  error
	Attempts int
}

func (f *RetryFailure) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", f.Attempts, f.LastErr)
}

func (f *RetryFailure) Unwrap() error {
	return f.LastErr
}

// Retry invokes fn up to policy.MaxAttempts times, sleeping policy.Delay
// between attempts. The first success returns immediately. Intended only for
// genuinely flaky network-bound operations, never for local filesystem
// writes.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	log := DefaultLogger
	if log == nil {
		log = zap.NewNop()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for i := 1; i <= policy.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if i > 1 {
				log.Info("Retried operation succeeded", zap.Int("attempt", i))
			}
			return nil
		}

		log.Warn("Attempt failed",
			zap.Int("attempt", i),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Error(lastErr))

		if i < policy.MaxAttempts {
			select {
			case <-time.After(policy.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return &RetryFailure{LastErr: lastErr, Attempts: policy.MaxAttempts}
}

// RetryCommand retries a command under the given policy and returns the last
// captured output.
func RetryCommand(ctx context.Context, policy RetryPolicy, name string, args ...string) (string, error) {
	var out string
	err := Retry(ctx, policy, func(ctx context.Context) error {
		var runErr error
		out, runErr = Run(ctx, Options{
			Command: name,
			Args:    args,
			Capture: true,
			Timeout: 5 * time.Minute,
		})
		return runErr
	})
	return out, err
}
