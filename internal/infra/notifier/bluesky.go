package notifier

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/observability/logging"
	"nycasp-bot/internal/observability/metrics"
)

const (
	blueskyService = "bluesky"

	createSessionPath = "/xrpc/com.atproto.server.createSession"
	createRecordPath  = "/xrpc/com.atproto.repo.createRecord"

	postCollection = "app.bsky.feed.post"
)

// BlueskyConfig contains the account settings for posting to Bluesky.
type BlueskyConfig struct {
	// Host is the PDS base URL, e.g. https://bsky.social
	Host string

	// Identifier is the account handle or DID.
	Identifier string

	// Password is an app password.
	Password string

	// Timeout is the HTTP timeout used when no client is supplied.
	Timeout time.Duration
}

// BlueskyPublisher logs in and creates one app.bsky.feed.post record per
// Publish call.
type BlueskyPublisher struct {
	config      BlueskyConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewBlueskyPublisher validates the credentials and returns a publisher.
// A nil client gets a client with config.Timeout.
//
// Posting is limited to one every 10 seconds with a burst of 2, far below the
// PDS write limits; the bot posts twice a day.
func NewBlueskyPublisher(config BlueskyConfig, client *http.Client) (*BlueskyPublisher, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	config.Host = strings.TrimRight(config.Host, "/")

	return &BlueskyPublisher{
		config:      config,
		httpClient:  client,
		rateLimiter: NewRateLimiter(0.1, 2),
	}, nil
}

func (c BlueskyConfig) validate() error {
	var missing []string
	if c.Identifier == "" {
		missing = append(missing, "BSKY_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "BSKY_PASSWORD")
	}
	if len(missing) > 0 {
		return &entity.ConfigurationError{
			Fields:  missing,
			Message: "the environment variables BSKY_USERNAME and BSKY_PASSWORD must be set",
		}
	}
	if c.Host == "" {
		return &entity.ConfigurationError{Fields: []string{"BSKY_HOST"}, Message: "bluesky host is required"}
	}
	return nil
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type createSessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	DID       string `json:"did"`
	Handle    string `json:"handle"`
}

type feedPost struct {
	Type      string `json:"$type"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

type createRecordRequest struct {
	Repo       string   `json:"repo"`
	Collection string   `json:"collection"`
	Record     feedPost `json:"record"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Publish authenticates and posts msg. Credentials are checked again before
// any request so that a zero-value publisher never reaches the network.
func (b *BlueskyPublisher) Publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	if b == nil {
		return entity.PostRef{}, &entity.ConfigurationError{Message: "bluesky publisher is not configured"}
	}
	if err := b.config.validate(); err != nil {
		return entity.PostRef{}, err
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	start := time.Now()
	logger := logging.FromContext(ctx)

	logger.Info("Starting Bluesky post",
		slog.String("request_id", requestID),
		slog.String("identifier", b.config.Identifier),
		slog.Int("length", len(msg)))

	if err := b.rateLimiter.Allow(ctx); err != nil {
		return entity.PostRef{}, &entity.TransportError{Service: blueskyService, Op: "rate limit", Err: err}
	}

	ref, err := b.post(ctx, msg)
	metrics.RecordPost(blueskyService, time.Since(start), err)
	if err != nil {
		logger.Error("Bluesky post failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return entity.PostRef{}, err
	}

	logger.Info("Bluesky post created",
		slog.String("request_id", requestID),
		slog.String("uri", ref.URI),
		slog.Duration("duration", time.Since(start)))
	return ref, nil
}

func (b *BlueskyPublisher) post(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	var session createSessionResponse
	err := postJSON(ctx, b.httpClient, blueskyService, "create session",
		b.config.Host+createSessionPath, nil,
		createSessionRequest{Identifier: b.config.Identifier, Password: b.config.Password},
		&session)
	if err != nil {
		return entity.PostRef{}, err
	}
	if session.AccessJwt == "" || session.DID == "" {
		return entity.PostRef{}, &entity.TransportError{
			Service: blueskyService,
			Op:      "create session",
			Err:     errors.New("session response missing accessJwt or did"),
		}
	}

	logging.FromContext(ctx).Debug("Bluesky session created",
		slog.String("request_id", requestIDFrom(ctx)),
		slog.String("did", session.DID))

	var record createRecordResponse
	err = postJSON(ctx, b.httpClient, blueskyService, "create record",
		b.config.Host+createRecordPath,
		map[string]string{"Authorization": "Bearer " + session.AccessJwt},
		createRecordRequest{
			Repo:       session.DID,
			Collection: postCollection,
			Record: feedPost{
				Type:      postCollection,
				Text:      msg.String(),
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			},
		},
		&record)
	if err != nil {
		return entity.PostRef{}, err
	}

	return entity.PostRef{Service: blueskyService, URI: record.URI, CID: record.CID}, nil
}
