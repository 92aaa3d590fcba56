package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer records requested waits and fires immediately.
type instantTimer struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (t *instantTimer) After(d time.Duration) <-chan time.Time {
	t.mu.Lock()
	t.waits = append(t.waits, d)
	t.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

var errPermanent = errors.New("permanent")

func testPolicy(timer *instantTimer) Policy {
	return Policy{
		MaxRetries: 3,
		Backoff:    Constant(time.Second),
		Retryable:  func(err error) bool { return !errors.Is(err, errPermanent) },
		Timer:      timer,
	}
}

func TestDo(t *testing.T) {
	t.Run("success_on_first_attempt", func(t *testing.T) {
		timer := &instantTimer{}
		calls := 0
		err := Do(context.Background(), testPolicy(timer), func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, timer.waits)
	})

	t.Run("two_failures_then_success", func(t *testing.T) {
		timer := &instantTimer{}
		calls := 0
		err := Do(context.Background(), testPolicy(timer), func(context.Context) error {
			calls++
			if calls <= 2 {
				return fmt.Errorf("transport failure %d", calls)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, timer.waits)
	})

	t.Run("exhausted_wraps_last_error", func(t *testing.T) {
		timer := &instantTimer{}
		calls := 0
		err := Do(context.Background(), testPolicy(timer), func(context.Context) error {
			calls++
			return fmt.Errorf("transport failure %d", calls)
		})
		require.Error(t, err)
		assert.Equal(t, 4, calls)
		assert.ErrorIs(t, err, ErrExhausted)
		assert.Contains(t, err.Error(), "transport failure 4")
		assert.Contains(t, err.Error(), "4 attempts")

		var exhausted *ExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 4, exhausted.Attempts)
		assert.Len(t, timer.waits, 3, "no wait after the final attempt")
	})

	t.Run("non_retryable_returned_unchanged", func(t *testing.T) {
		timer := &instantTimer{}
		calls := 0
		err := Do(context.Background(), testPolicy(timer), func(context.Context) error {
			calls++
			return errPermanent
		})
		assert.Equal(t, errPermanent, err)
		assert.Equal(t, 1, calls)
		assert.NotErrorIs(t, err, ErrExhausted)
	})

	t.Run("backoff_sees_failure", func(t *testing.T) {
		timer := &instantTimer{}
		errSlow := errors.New("slow down")
		p := testPolicy(timer)
		p.Backoff = func(_ int, err error) time.Duration {
			if errors.Is(err, errSlow) {
				return 2 * time.Second
			}
			return time.Second
		}
		calls := 0
		err := Do(context.Background(), p, func(context.Context) error {
			calls++
			switch calls {
			case 1:
				return errSlow
			case 2:
				return errors.New("reset")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{2 * time.Second, time.Second}, timer.waits)
	})

	t.Run("on_retry_reports_attempts", func(t *testing.T) {
		timer := &instantTimer{}
		p := testPolicy(timer)
		var seen []int
		p.OnRetry = func(attempt int, _ error, _ time.Duration) { seen = append(seen, attempt) }
		_ = Do(context.Background(), p, func(context.Context) error { return errors.New("x") })
		assert.Equal(t, []int{1, 2, 3}, seen)
	})

	t.Run("context_cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := Policy{MaxRetries: 5, Backoff: Constant(10 * time.Millisecond)}
		err := Do(ctx, p, func(context.Context) error { return errors.New("failed") })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
