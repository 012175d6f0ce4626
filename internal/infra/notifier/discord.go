package notifier

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/observability/logging"
	"nycasp-bot/internal/observability/metrics"
)

const discordService = "discord"

// DiscordConfig contains configuration for the Discord webhook mirror.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

// DiscordPublisher mirrors status messages to a Discord channel.
type DiscordPublisher struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordPublisher creates a DiscordPublisher. The rate limiter allows
// 0.5 requests/second with a burst of 3 (Discord: 30 requests per minute).
func NewDiscordPublisher(config DiscordConfig) *DiscordPublisher {
	return &DiscordPublisher{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	discordEmbedTitle    = "NYC Alternate Side Parking"
	discordFooter        = "nycasp-bot"
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// NYC DOT orange (#F58220)
	discordEmbedColor = 16089632
)

func (d *DiscordPublisher) buildEmbedPayload(msg entity.StatusMessage, now time.Time) DiscordWebhookPayload {
	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:       discordEmbedTitle,
			Description: truncate(msg.String(), maxDescriptionLength, truncationSuffix),
			Color:       discordEmbedColor,
			Footer:      DiscordEmbedFooter{Text: discordFooter},
			Timestamp:   now.UTC().Format(time.RFC3339),
		}},
	}
}

// Publish sends msg as a single embed. Discord webhooks return no record,
// so the PostRef carries only the service name.
func (d *DiscordPublisher) Publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	start := time.Now()

	if err := d.rateLimiter.Allow(ctx); err != nil {
		return entity.PostRef{}, &entity.TransportError{Service: discordService, Op: "rate limit", Err: err}
	}

	err := postJSON(ctx, d.httpClient, discordService, "post webhook", d.config.WebhookURL, nil,
		d.buildEmbedPayload(msg, start), nil)
	metrics.RecordPost(discordService, time.Since(start), err)
	if err != nil {
		if rl, ok := IsRateLimited(err); ok {
			logging.FromContext(ctx).Warn("Discord rate limit hit",
				slog.String("request_id", requestID),
				slog.Duration("retry_after", rl.RetryAfter))
		}
		return entity.PostRef{}, err
	}

	logging.FromContext(ctx).Info("Discord mirror posted", slog.String("request_id", requestID))
	return entity.PostRef{Service: discordService}, nil
}
