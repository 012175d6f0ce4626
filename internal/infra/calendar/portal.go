package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"nycasp-bot/internal/domain/entity"
)

// PortalOptions configures PortalSource.
type PortalOptions struct {
	Options
}

// PortalSource reads the public 311 portal calendar feed:
//
//	GET {url}?today=MM/DD/YYYY
//	{"results": [{"CalendarName": ..., "CalendarDetailMessage": ...}]}
type PortalSource struct {
	*fetcher
}

// NewPortalSource builds the source. No credential is required.
func NewPortalSource(client *http.Client, opts PortalOptions) (*PortalSource, error) {
	f, err := newFetcher(string(entity.VariantPortal), client, opts.Options)
	if err != nil {
		return nil, err
	}
	return &PortalSource{fetcher: f}, nil
}

// Name returns the source name used in logs and errors.
func (s *PortalSource) Name() string {
	return s.name
}

// Variant reports VariantPortal.
func (s *PortalSource) Variant() entity.SourceVariant {
	return entity.VariantPortal
}

// Fetch returns the calendar entries for date.
func (s *PortalSource) Fetch(ctx context.Context, date time.Time) ([]entity.CalendarEntry, error) {
	query := url.Values{}
	query.Set("today", date.Format("01/02/2006"))

	return s.fetch(ctx, query, nil, func(body []byte) ([]entity.CalendarEntry, error) {
		return decodePortal(s.name, body)
	})
}

type portalResponse struct {
	Results *[]portalResult `json:"results"`
}

type portalResult struct {
	CalendarName          string `json:"CalendarName"`
	CalendarDetailMessage string `json:"CalendarDetailMessage"`
}

func decodePortal(source string, body []byte) ([]entity.CalendarEntry, error) {
	var resp portalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &entity.ParseError{Source: source, Err: err}
	}
	if resp.Results == nil {
		return nil, &entity.ParseError{Source: source, Err: errors.New(`missing "results" array`)}
	}

	entries := make([]entity.CalendarEntry, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		entries = append(entries, entity.CalendarEntry{
			Category: r.CalendarName,
			Details:  plainText(r.CalendarDetailMessage),
		})
	}

	return entries, nil
}
