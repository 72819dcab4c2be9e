package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errThrottled = errors.New("throttled")

func isThrottled(err error) bool {
	return errors.Is(err, errThrottled)
}

// newTestInvoker returns an invoker that records sleeps instead of performing them.
func newTestInvoker(cfg Config) (*Invoker, *[]time.Duration) {
	inv := New(cfg)
	var slept []time.Duration
	inv.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	inv.jitter = func(time.Duration) time.Duration { return 0 }
	return inv, &slept
}

func TestInvokeSucceedsFirstTry(t *testing.T) {
	inv, slept := newTestInvoker(Config{MaxRetries: 10, BaseDelay: time.Second, MaxJitter: time.Second})

	calls := 0
	result, err := Invoke(context.Background(), inv, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}, isThrottled)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestInvokeRetriesThrottlingUntilSuccess(t *testing.T) {
	const failures = 4
	inv, slept := newTestInvoker(Config{MaxRetries: 10, BaseDelay: time.Second, MaxJitter: time.Second})

	calls := 0
	result, err := Invoke(context.Background(), inv, func(context.Context) (int, error) {
		calls++
		if calls <= failures {
			return 0, errThrottled
		}
		return 42, nil
	}, isThrottled)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, failures+1, calls)
	require.Len(t, *slept, failures)

	// Exponential growth: delays never shrink.
	for i := 1; i < len(*slept); i++ {
		assert.GreaterOrEqual(t, (*slept)[i], (*slept)[i-1])
	}
	assert.Equal(t, 1*time.Second, (*slept)[0])
	assert.Equal(t, 8*time.Second, (*slept)[3])
}

func TestInvokeExhaustsRetries(t *testing.T) {
	inv, slept := newTestInvoker(Config{MaxRetries: 3, BaseDelay: time.Second, MaxJitter: time.Second})

	calls := 0
	_, err := Invoke(context.Background(), inv, func(context.Context) (string, error) {
		calls++
		return "", errThrottled
	}, isThrottled)

	assert.ErrorIs(t, err, errThrottled)
	assert.Equal(t, 3, calls)
	// No sleep after the final attempt.
	assert.Len(t, *slept, 2)
}

func TestInvokeNonRetryableFailsFast(t *testing.T) {
	inv, slept := newTestInvoker(Config{MaxRetries: 10, BaseDelay: time.Second, MaxJitter: time.Second})

	permanent := errors.New("validation error")
	calls := 0
	_, err := Invoke(context.Background(), inv, func(context.Context) (string, error) {
		calls++
		return "", permanent
	}, isThrottled)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestInvokeJitterIsAdditive(t *testing.T) {
	inv, slept := newTestInvoker(Config{MaxRetries: 2, BaseDelay: time.Second, MaxJitter: time.Second})
	inv.jitter = func(time.Duration) time.Duration { return 250 * time.Millisecond }

	calls := 0
	_, err := Invoke(context.Background(), inv, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errThrottled
		}
		return "ok", nil
	}, isThrottled)

	require.NoError(t, err)
	require.Len(t, *slept, 1)
	assert.Equal(t, 1250*time.Millisecond, (*slept)[0])
}

func TestInvokeHonorsContextDuringSleep(t *testing.T) {
	inv := New(Config{MaxRetries: 5, BaseDelay: 50 * time.Millisecond, MaxJitter: 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Invoke(ctx, inv, func(context.Context) (string, error) {
		calls++
		return "", errThrottled
	}, isThrottled)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
