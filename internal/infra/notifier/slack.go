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

const slackService = "slack"

// SlackConfig contains configuration for the Slack webhook mirror.
type SlackConfig struct {
	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration
}

// SlackPublisher mirrors status messages to Slack via Incoming Webhook.
type SlackPublisher struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackPublisher creates a SlackPublisher limited to 1 request/second
// (Slack Webhook limit: 1 message per second).
func NewSlackPublisher(config SlackConfig) *SlackPublisher {
	return &SlackPublisher{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
)

func (s *SlackPublisher) buildBlockKitPayload(msg entity.StatusMessage, now time.Time) SlackWebhookPayload {
	text := msg.String()
	return SlackWebhookPayload{
		Text: truncate(text, maxFallbackLength, truncationSuffix),
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "plain_text", Text: truncate(text, maxSectionTextLength, truncationSuffix)},
			},
			{
				Type: "context",
				Elements: []SlackTextObject{
					{Type: "mrkdwn", Text: "NYC Alternate Side Parking • " + now.Format(time.RFC3339)},
				},
			},
		},
	}
}

// Publish posts msg to the webhook.
func (s *SlackPublisher) Publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	start := time.Now()

	if err := s.rateLimiter.Allow(ctx); err != nil {
		return entity.PostRef{}, &entity.TransportError{Service: slackService, Op: "rate limit", Err: err}
	}

	err := postJSON(ctx, s.httpClient, slackService, "post webhook", s.config.WebhookURL, nil,
		s.buildBlockKitPayload(msg, start), nil)
	metrics.RecordPost(slackService, time.Since(start), err)
	if err != nil {
		return entity.PostRef{}, err
	}

	logging.FromContext(ctx).Info("Slack mirror posted", slog.String("request_id", requestID))
	return entity.PostRef{Service: slackService}, nil
}
