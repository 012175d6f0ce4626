// Package status runs one ASP status report: fetch the day's calendar, select
// the ASP entry, rewrite it into a message and publish it.
package status

import (
	"context"
	"time"

	"nycasp-bot/internal/domain/entity"
)

// CalendarSource fetches the calendar entries for one date from an upstream feed.
type CalendarSource interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Variant selects the formatting rules applied to the source's entries.
	Variant() entity.SourceVariant

	// Fetch returns the entries for date. Failures are entity.TransportError
	// or entity.ParseError.
	Fetch(ctx context.Context, date time.Time) ([]entity.CalendarEntry, error)
}

// Publisher posts a status message.
type Publisher interface {
	Publish(ctx context.Context, msg entity.StatusMessage) (entity.PostRef, error)
}
