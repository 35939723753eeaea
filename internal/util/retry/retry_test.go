package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOpts(extra ...Option) []Option {
	return append([]Option{WithInitialDelay(time.Millisecond), WithMaxDelay(5 * time.Millisecond)}, extra...)
}

func TestDo_Success(t *testing.T) {
	t.Parallel()
	attempts := 0

	got, err := Do(context.Background(), func() (string, error) {
		attempts++
		return "ok", nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, attempts)
}

func TestDo_FailsTwiceThenSucceeds(t *testing.T) {
	t.Parallel()
	attempts := 0

	got, err := Do(context.Background(), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("not visible yet")
		}
		return 42, nil
	}, fastOpts(WithMaxAttempts(3))...)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttemptsAndReturnsLastErrorUnchanged(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("attempts=%d", n), func(t *testing.T) {
			t.Parallel()
			attempts := 0
			var last error

			_, err := Do(context.Background(), func() (struct{}, error) {
				attempts++
				last = fmt.Errorf("failure %d", attempts)
				return struct{}{}, last
			}, fastOpts(WithMaxAttempts(n))...)

			require.Error(t, err)
			assert.Equal(t, n, attempts)
			assert.Same(t, last, err)
		})
	}
}

func TestDo_FatalErrorStopsImmediately(t *testing.T) {
	t.Parallel()
	attempts := 0
	cause := errors.New("invalid input")

	_, err := Do(context.Background(), func() (int, error) {
		attempts++
		return 0, Fatal(cause)
	}, fastOpts(WithMaxAttempts(5))...)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, attempts)
}

func TestDo_RetryablePredicate(t *testing.T) {
	t.Parallel()
	errTransient := errors.New("transient")
	errTerminal := errors.New("terminal")
	attempts := 0

	_, err := Do(context.Background(), func() (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errTransient
		}
		return 0, errTerminal
	}, fastOpts(
		WithMaxAttempts(5),
		WithRetryable(func(err error) bool { return errors.Is(err, errTransient) }),
	)...)

	assert.ErrorIs(t, err, errTerminal)
	assert.Equal(t, 2, attempts)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	t.Parallel()
	attempts := 0

	_, err := Do(context.Background(), func() (int, error) {
		attempts++
		return 0, errors.New("boom")
	}, fastOpts(WithMaxAttempts(0))...)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	attempts := 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, func() (int, error) {
		attempts++
		return 0, errors.New("error")
	}, WithInitialDelay(time.Second), WithMaxAttempts(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDo_OnRetryHookAndDelayBounds(t *testing.T) {
	t.Parallel()
	var delays []time.Duration

	_, _ = Do(context.Background(), func() (int, error) {
		return 0, errors.New("error")
	},
		WithMaxAttempts(5),
		WithInitialDelay(2*time.Millisecond),
		WithMaxDelay(5*time.Millisecond),
		WithMultiplier(2),
		WithOnRetry(func(_ int, _ error, d time.Duration) { delays = append(delays, d) }),
	)

	require.Len(t, delays, 4)
	assert.Equal(t, []time.Duration{
		2 * time.Millisecond,
		4 * time.Millisecond,
		5 * time.Millisecond,
		5 * time.Millisecond,
	}, delays)
}

func TestWithExponentialBackoff(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("temporary")
		}
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestFatal(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Fatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", Fatal(errors.New("inner")))
	assert.True(t, IsFatal(wrapped))
	assert.Equal(t, "context: inner", wrapped.Error())
}
