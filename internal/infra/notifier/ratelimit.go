package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by all posts of one publisher. It
// matters in worker mode, where the process outlives a single post.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token bucket rate limiter.
//
// Parameters:
//   - requestsPerSecond: refill rate in tokens per second (0.1 = one every 10s)
//   - burst: tokens available immediately and the bucket capacity
//
// Returns:
//   - *RateLimiter: ready to use; safe for concurrent calls to Allow
//
// Example:
//
//	limiter := NewRateLimiter(0.5, 3) // 30 req/min, burst of 3
//	if err := limiter.Allow(ctx); err != nil {
//	    return err
//	}
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or ctx is done.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
