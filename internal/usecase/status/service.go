package status

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/observability/logging"
	"nycasp-bot/internal/observability/tracing"
)

// Service wires a calendar source to a publisher.
type Service struct {
	Source    CalendarSource
	Publisher Publisher

	// Category is the calendar label identifying the ASP entry.
	Category string

	// Out receives the "Message: <msg>" line before publishing.
	Out io.Writer
}

// NewService creates a Service. An empty category selects
// entity.DefaultCategory and a nil writer selects stdout.
func NewService(source CalendarSource, publisher Publisher, category string, out io.Writer) *Service {
	if category == "" {
		category = entity.DefaultCategory
	}
	if out == nil {
		out = os.Stdout
	}
	return &Service{
		Source:    source,
		Publisher: publisher,
		Category:  category,
		Out:       out,
	}
}

// Result describes a completed run.
type Result struct {
	Target   entity.TargetDate
	Entry    entity.AspEntry
	Message  entity.StatusMessage
	Post     entity.PostRef
	Duration time.Duration
}

// Run executes Fetch, Select, Format, print and Publish in order. Any failure
// aborts the run before publishing; nothing partial is ever posted.
func (s *Service) Run(ctx context.Context, target entity.TargetDate) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("source", s.Source.Name()),
		slog.String("mode", target.Mode()),
		slog.String("date", target.ISO()))

	ctx, span := tracing.GetTracer().Start(ctx, "status.Run", trace.WithAttributes(
		attribute.String("asp.source", s.Source.Name()),
		attribute.String("asp.mode", target.Mode()),
		attribute.String("asp.date", target.ISO()),
	))
	defer span.End()

	entries, err := s.fetch(ctx, target)
	if err != nil {
		return nil, s.fail(span, logger, "fetch calendar failed", err)
	}

	entry, err := entity.SelectASPEntry(entries, s.Category, s.Source.Name(), target)
	if err != nil {
		return nil, s.fail(span, logger, "asp entry not found", err)
	}

	_, formatSpan := tracing.GetTracer().Start(ctx, "status.format")
	msg := Format(s.Source.Variant(), entry, target)
	formatSpan.SetAttributes(attribute.Int("asp.message_length", len(msg)))
	formatSpan.End()

	if _, err := fmt.Fprintf(s.Out, "Message: %s\n", msg); err != nil {
		return nil, s.fail(span, logger, "write message failed", fmt.Errorf("write message: %w", err))
	}

	post, err := s.publish(ctx, msg)
	if err != nil {
		return nil, s.fail(span, logger, "publish failed", err)
	}

	res := &Result{
		Target:   target,
		Entry:    entry,
		Message:  msg,
		Post:     post,
		Duration: time.Since(start),
	}
	logger.Info("status published",
		slog.String("service", post.Service),
		slog.String("uri", post.URI),
		slog.Duration("duration", res.Duration))

	return res, nil
}

func (s *Service) fetch(ctx context.Context, target entity.TargetDate) ([]entity.CalendarEntry, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "status.fetch")
	defer span.End()

	entries, err := s.Source.Fetch(ctx, target.Date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("asp.entries", len(entries)))
	return entries, nil
}

func (s *Service) publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "status.publish")
	defer span.End()

	post, err := s.Publisher.Publish(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return entity.PostRef{}, err
	}
	span.SetAttributes(attribute.String("asp.post_uri", post.URI))
	return post, nil
}

func (s *Service) fail(span trace.Span, logger *slog.Logger, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	logger.Error(msg, slog.Any("error", err))
	return err
}
