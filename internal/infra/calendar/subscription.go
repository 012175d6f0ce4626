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

// SubscriptionKeyHeader carries the api.nyc.gov subscription key.
const SubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// SubscriptionOptions configures SubscriptionSource.
type SubscriptionOptions struct {
	Options

	// Key is the subscription key. Required.
	Key string
}

// SubscriptionSource reads the city's GetCalendar subscription API:
//
//	GET {url}?fromdate=YYYY-MM-DD&todate=YYYY-MM-DD
//	{"days": [{"today_id": "20250303", "items": [{"type": ..., "details": ..., "status": ...}]}]}
type SubscriptionSource struct {
	*fetcher
	key string
}

// NewSubscriptionSource validates opts and builds the source.
func NewSubscriptionSource(client *http.Client, opts SubscriptionOptions) (*SubscriptionSource, error) {
	if opts.Key == "" {
		return nil, &entity.ConfigurationError{
			Fields:  []string{"API_KEY_311"},
			Message: "subscription key is required",
		}
	}

	f, err := newFetcher(string(entity.VariantSubscription), client, opts.Options)
	if err != nil {
		return nil, err
	}

	return &SubscriptionSource{fetcher: f, key: opts.Key}, nil
}

// Name returns the source name used in logs and errors.
func (s *SubscriptionSource) Name() string {
	return s.name
}

// Variant reports VariantSubscription.
func (s *SubscriptionSource) Variant() entity.SourceVariant {
	return entity.VariantSubscription
}

// Fetch returns the calendar entries for date.
func (s *SubscriptionSource) Fetch(ctx context.Context, date time.Time) ([]entity.CalendarEntry, error) {
	day := date.Format("2006-01-02")
	query := url.Values{}
	query.Set("fromdate", day)
	query.Set("todate", day)

	return s.fetch(ctx, query, map[string]string{SubscriptionKeyHeader: s.key}, func(body []byte) ([]entity.CalendarEntry, error) {
		return decodeSubscription(s.name, body, date.Format("20060102"))
	})
}

type subscriptionResponse struct {
	Days *[]subscriptionDay `json:"days"`
}

type subscriptionDay struct {
	TodayID string             `json:"today_id"`
	Items   []subscriptionItem `json:"items"`
}

type subscriptionItem struct {
	Details string `json:"details"`
	Status  string `json:"status"`
	Type    string `json:"type"`
}

// decodeSubscription picks the day whose today_id matches todayID, falling
// back to the first day. A body without a "days" array is a ParseError; an
// empty array yields no entries.
func decodeSubscription(source string, body []byte, todayID string) ([]entity.CalendarEntry, error) {
	var resp subscriptionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &entity.ParseError{Source: source, Err: err}
	}
	if resp.Days == nil {
		return nil, &entity.ParseError{Source: source, Err: errors.New(`missing "days" array`)}
	}

	days := *resp.Days
	if len(days) == 0 {
		return []entity.CalendarEntry{}, nil
	}

	day := days[0]
	for _, d := range days {
		if d.TodayID == todayID {
			day = d
			break
		}
	}

	entries := make([]entity.CalendarEntry, 0, len(day.Items))
	for _, it := range day.Items {
		entries = append(entries, entity.CalendarEntry{
			Category: it.Type,
			Details:  plainText(it.Details),
			Status:   it.Status,
		})
	}

	return entries, nil
}
