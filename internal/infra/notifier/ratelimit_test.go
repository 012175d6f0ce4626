package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstIsImmediate(t *testing.T) {
	limiter := NewRateLimiter(2.0, 3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_BlocksPastBurst(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)
	require.NoError(t, limiter.Allow(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Allow(ctx))
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)
	require.NoError(t, limiter.Allow(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, limiter.Allow(ctx))
}

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.5, 3)
	require.NotNil(t, limiter.limiter)
	assert.InDelta(t, 0.5, float64(limiter.limiter.Limit()), 1e-9)
	assert.Equal(t, 3, limiter.limiter.Burst())
}

func TestPublisherRateLimits(t *testing.T) {
	bluesky, err := NewBlueskyPublisher(BlueskyConfig{
		Host:       "https://bsky.social",
		Identifier: "nycasp.bsky.social",
		Password:   "app-password",
	}, nil)
	require.NoError(t, err)
	discord := NewDiscordPublisher(DiscordConfig{WebhookURL: "https://discord.com/api/webhooks/1/abc"})
	slack := NewSlackPublisher(SlackConfig{WebhookURL: "https://hooks.slack.com/services/T/B/X"})

	tests := []struct {
		name    string
		limiter *RateLimiter
		perSec  float64
		burst   int
	}{
		{"bluesky", bluesky.rateLimiter, 0.1, 2},
		{"discord", discord.rateLimiter, 0.5, 3},
		{"slack", slack.rateLimiter, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.perSec, float64(tt.limiter.limiter.Limit()), 1e-9)
			assert.Equal(t, tt.burst, tt.limiter.limiter.Burst())
		})
	}
}
