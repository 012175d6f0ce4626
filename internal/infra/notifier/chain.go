package notifier

import (
	"context"
	"log/slog"

	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/observability/logging"
	"nycasp-bot/internal/usecase/status"
)

// Mirror is a secondary destination in a ChainPublisher.
type Mirror struct {
	Name      string
	Publisher status.Publisher
}

// ChainPublisher posts to a primary publisher, then to each mirror in order.
// A primary failure is returned before any mirror is tried. Mirror failures
// are logged and otherwise ignored: the primary post is already out.
type ChainPublisher struct {
	primary status.Publisher
	mirrors []Mirror
}

// NewChainPublisher creates a ChainPublisher. Mirrors with a nil publisher
// are skipped.
func NewChainPublisher(primary status.Publisher, mirrors ...Mirror) *ChainPublisher {
	kept := make([]Mirror, 0, len(mirrors))
	for _, m := range mirrors {
		if m.Publisher != nil {
			kept = append(kept, m)
		}
	}
	return &ChainPublisher{primary: primary, mirrors: kept}
}

// Mirrors returns the names of the configured mirrors.
func (c *ChainPublisher) Mirrors() []string {
	names := make([]string, 0, len(c.mirrors))
	for _, m := range c.mirrors {
		names = append(names, m.Name)
	}
	return names
}

// Publish returns the primary's PostRef.
func (c *ChainPublisher) Publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	ref, err := c.primary.Publish(ctx, msg)
	if err != nil {
		return entity.PostRef{}, err
	}

	logger := logging.FromContext(ctx)
	for _, m := range c.mirrors {
		if ctx.Err() != nil {
			logger.Warn("Skipping remaining mirrors, context done",
				slog.String("mirror", m.Name),
				slog.Any("error", ctx.Err()))
			break
		}
		if _, err := m.Publisher.Publish(ctx, msg); err != nil {
			logger.Warn("Mirror publish failed",
				slog.String("mirror", m.Name),
				slog.Any("error", err))
		}
	}

	return ref, nil
}
