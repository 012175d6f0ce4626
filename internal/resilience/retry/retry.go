// Package retry provides bounded retry with exponential backoff and jitter for
// transient upstream failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"

	"nycasp-bot/internal/domain/entity"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries
	MaxDelay time.Duration

	// Multiplier is the multiplier for exponential backoff
	Multiplier float64

	// JitterFraction is the fraction of delay to add as random jitter (0.0 to 1.0)
	JitterFraction float64
}

// CalendarFetchConfig returns the configuration used for calendar lookups:
// one retry after a short pause. The run is scheduled, so a second failure is
// left to the scheduler's own alerting.
func CalendarFetchConfig() Config {
	return Config{
		MaxAttempts:    2,
		InitialDelay:   2 * time.Second,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// NoRetry returns a configuration that runs the operation exactly once.
func NoRetry() Config {
	return Config{MaxAttempts: 1, Multiplier: 1.0}
}

// WithBackoff executes fn with retry logic and exponential backoff.
//
// Parameters:
//   - ctx: cancels the wait between attempts. fn is expected to honor it too.
//   - cfg: attempt budget and delay curve; MaxAttempts below 1 means 1
//   - fn: the operation; only errors accepted by IsRetryable are retried
//
// Returns:
//   - nil if an attempt succeeds
//   - the error itself if it is not retryable, or if cfg allows one attempt
//   - "max retry attempts (N) exceeded" wrapping the last error once the
//     budget is spent
//   - "retry aborted" wrapping both ctx.Err() and the last error if ctx ends
//     during a wait, so errors.As still finds the *entity.TransportError
//
// Example:
//
//	err := retry.WithBackoff(ctx, retry.CalendarFetchConfig(), func() error {
//	    body, err = get(ctx)
//	    return err
//	})
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()

		if lastErr == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry",
					slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(lastErr) {
			if cfg.MaxAttempts > 1 {
				slog.Warn("non-retryable error, aborting",
					slog.Int("attempt", attempt),
					slog.Any("error", lastErr))
			}
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w: %w", ctx.Err(), lastErr)
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		delay = addJitter(delay, cfg.JitterFraction)
	}

	if cfg.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}

// IsRetryable determines if an error is worth retrying. Only transport
// failures qualify: 5xx, 408 and 429 responses, timeouts and connection
// resets. Decode failures, missing entries and configuration errors never do.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var parseErr *entity.ParseError
	if errors.As(err, &parseErr) {
		return false
	}

	var transportErr *entity.TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		code := transportErr.StatusCode
		return (code >= 500 && code < 600) ||
			code == http.StatusTooManyRequests ||
			code == http.StatusRequestTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	return false
}

// addJitter adds random jitter to a duration.
func addJitter(duration time.Duration, jitterFraction float64) time.Duration {
	if jitterFraction <= 0 {
		return duration
	}
	if jitterFraction > 1.0 {
		jitterFraction = 1.0
	}
	// #nosec G404 -- math/rand is fine for backoff jitter.
	jitter := time.Duration(rand.Float64() * float64(duration) * jitterFraction)
	return duration + jitter
}
