package backoff

import (
	"context"
	"math/rand"
	"time"
)

// Config controls the retry behavior of an Invoker.
type Config struct {
	MaxRetries int           // total attempts, including the first call
	BaseDelay  time.Duration // delay before the first retry; doubles each attempt
	MaxJitter  time.Duration // uniform random addition to every delay
}

// DefaultConfig matches the provider throttling windows we see in practice.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 10,
		BaseDelay:  1 * time.Second,
		MaxJitter:  1 * time.Second,
	}
}

// Invoker retries a call with exponential backoff and jitter as long as the
// error is classified retryable. Non-retryable errors propagate immediately:
// permanent misconfiguration should surface fast, not hide behind a retry loop.
type Invoker struct {
	cfg Config

	// Injection points for tests.
	sleep  func(context.Context, time.Duration) error
	jitter func(max time.Duration) time.Duration
}

func New(cfg Config) *Invoker {
	def := DefaultConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxJitter < 0 {
		cfg.MaxJitter = def.MaxJitter
	}
	return &Invoker{
		cfg:    cfg,
		sleep:  sleepCtx,
		jitter: randomJitter,
	}
}

// Invoke runs call until it succeeds, fails with a non-retryable error, or
// exhausts the attempt budget. The delay before retry N (0-based) is
// BaseDelay*2^N plus uniform jitter. No sleep happens after the last attempt.
func Invoke[T any](ctx context.Context, inv *Invoker, call func(context.Context) (T, error), retryable func(error) bool) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < inv.cfg.MaxRetries; attempt++ {
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		if retryable == nil || !retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == inv.cfg.MaxRetries-1 {
			break
		}

		delay := inv.cfg.BaseDelay*(1<<uint(attempt)) + inv.jitter(inv.cfg.MaxJitter)
		if sleepErr := inv.sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}

	return zero, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
