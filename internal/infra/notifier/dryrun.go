package notifier

import (
	"context"
	"log/slog"

	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/observability/logging"
)

// DryRunPublisher logs the message instead of posting it.
type DryRunPublisher struct{}

// NewDryRunPublisher creates a DryRunPublisher.
func NewDryRunPublisher() *DryRunPublisher {
	return &DryRunPublisher{}
}

// Publish logs msg and returns a PostRef with Service "dry-run".
func (p *DryRunPublisher) Publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	logging.FromContext(ctx).Info("Dry run, not publishing", slog.String("message", msg.String()))
	return entity.PostRef{Service: "dry-run"}, nil
}
