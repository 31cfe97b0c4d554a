package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 1 * time.Second
)

// Policy retries an operation a bounded number of times with a fixed delay
// between attempts. Only errors accepted by Retryable are retried.
type Policy struct {
	MaxAttempts int // total attempts, including the first
	Delay       time.Duration
	Retryable   func(error) bool
	Sleep       func(ctx context.Context, d time.Duration) error
	Logger      *slog.Logger
}

// NewPolicy returns a policy that retries timeouts only.
// Non-positive values fall back to the defaults.
func NewPolicy(maxAttempts int, delay time.Duration, logger *slog.Logger) Policy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	return Policy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Retryable:   IsTimeout,
		Sleep:       sleepContext,
		Logger:      logger,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the attempt
// budget is spent. The delay is never applied after the final attempt.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTimeout
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		// The caller giving up is never a reason to try again.
		if ctx.Err() != nil {
			return lastErr
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		if p.Logger != nil {
			p.Logger.Warn("retrying after timeout",
				"attempt", attempt,
				"max_attempts", attempts,
				"delay", p.Delay,
				"error", lastErr,
			)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

// IsTimeout reports whether err is an attempt deadline or a network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
