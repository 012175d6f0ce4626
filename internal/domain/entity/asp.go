// Package entity holds the request-scoped values that flow through a single
// status run: the target date, the raw calendar entries, and the error
// taxonomy shared by every stage.
package entity

import (
	"strings"
	"time"
)

// DefaultCategory is the calendar category label identifying ASP entries in
// both upstream feeds.
const DefaultCategory = "Alternate Side Parking"

// SourceVariant identifies which upstream calendar feed produced an entry.
// Each variant carries its own text rewriting rules.
type SourceVariant string

const (
	// VariantSubscription is the city's subscription API (api.nyc.gov).
	VariantSubscription SourceVariant = "subscription"

	// VariantPortal is the public 311 portal calendar feed.
	VariantPortal SourceVariant = "portal"
)

// ParseSourceVariant maps a configuration value to a SourceVariant.
func ParseSourceVariant(s string) (SourceVariant, bool) {
	switch SourceVariant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantSubscription:
		return VariantSubscription, true
	case VariantPortal:
		return VariantPortal, true
	default:
		return "", false
	}
}

// TargetDate is the calendar date being reported on.
type TargetDate struct {
	Date    time.Time
	IsToday bool
}

// NewTargetDate computes the target date from now. When tomorrow is set the
// date is advanced by one calendar day in now's location.
func NewTargetDate(now time.Time, tomorrow bool) TargetDate {
	if tomorrow {
		return TargetDate{Date: now.AddDate(0, 0, 1), IsToday: false}
	}
	return TargetDate{Date: now, IsToday: true}
}

// Human renders the date the way it appears in posted messages:
// "March 3" for today and "Wednesday, March 4" for tomorrow.
func (t TargetDate) Human() string {
	if t.IsToday {
		return t.Date.Format("January 2")
	}
	return t.Date.Format("Monday, January 2")
}

// ISO renders the date as YYYY-MM-DD.
func (t TargetDate) ISO() string {
	return t.Date.Format("2006-01-02")
}

// Mode returns "today" or "tomorrow".
func (t TargetDate) Mode() string {
	if t.IsToday {
		return "today"
	}
	return "tomorrow"
}

// CalendarEntry is one record of an upstream daily schedule.
// Status is only populated by the subscription feed.
type CalendarEntry struct {
	Category string
	Details  string
	Status   string
}

// AspEntry is the calendar entry selected as the ASP record for a day.
type AspEntry = CalendarEntry

// StatusMessage is the final text handed to a publisher.
type StatusMessage string

// String returns the message text.
func (m StatusMessage) String() string {
	return string(m)
}

// SelectASPEntry returns the first entry whose category matches category,
// ignoring case and surrounding whitespace. A response without a match is a
// failure, not an empty result.
func SelectASPEntry(entries []CalendarEntry, category, source string, date TargetDate) (AspEntry, error) {
	want := strings.TrimSpace(category)
	for _, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Category), want) {
			return e, nil
		}
	}
	return AspEntry{}, &NotFoundError{Source: source, Category: want, Date: date.ISO()}
}

// PostRef identifies a published post. Publishers that do not create a
// durable record leave URI empty.
type PostRef struct {
	Service string
	URI     string
	CID     string
}
