// Package retry wraps avast/retry-go with the policy shape shared by the
// outbound HTTP clients: a retry cap, a backoff function that can look at the
// failure, and a predicate deciding which failures are worth retrying.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// ErrExhausted matches every error returned after the retry cap was reached.
var ErrExhausted = errors.New("retries exhausted")

// ExhaustedError carries the last failure and the number of attempts made.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error { return []error{ErrExhausted, e.Err} }

// Timer is the wait primitive; tests swap it to avoid sleeping.
type Timer = retrygo.Timer

// Policy describes how a call is retried.
type Policy struct {
	// MaxRetries is the number of attempts made after the first one.
	MaxRetries int
	// Backoff returns the wait before the next attempt. attempt is the number
	// of attempts made so far (1 after the first failure).
	Backoff func(attempt int, err error) time.Duration
	// Retryable reports whether err may succeed on a later attempt. A nil
	// predicate retries everything.
	Retryable func(err error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
	// Timer overrides the wait primitive.
	Timer Timer
}

// Constant returns a backoff that always waits d.
func Constant(d time.Duration) func(int, error) time.Duration {
	return func(int, error) time.Duration { return d }
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do runs fn until it succeeds, fails with a non-retryable error, the retry cap
// is reached, or ctx is done. Attempts run strictly one after another.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}

	var (
		attempts int
		lastErr  error
	)
	opts := []retrygo.Option{
		retrygo.Context(ctx),
		retrygo.Attempts(uint(p.MaxRetries) + 1),
		retrygo.LastErrorOnly(true),
		retrygo.RetryIf(p.retryable),
		retrygo.DelayType(func(_ uint, err error, _ *retrygo.Config) time.Duration {
			var wait time.Duration
			if p.Backoff != nil {
				wait = p.Backoff(attempts, err)
			}
			if p.OnRetry != nil {
				p.OnRetry(attempts, err, wait)
			}
			return wait
		}),
	}
	if p.Timer != nil {
		opts = append(opts, retrygo.WithTimer(p.Timer))
	}

	err := retrygo.Do(func() error {
		attempts++
		lastErr = fn(ctx)
		return lastErr
	}, opts...)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if lastErr != nil {
			return fmt.Errorf("%w (last error: %v)", ctxErr, lastErr)
		}
		return ctxErr
	}
	if lastErr == nil {
		return err
	}
	if !p.retryable(lastErr) {
		return lastErr
	}
	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}
