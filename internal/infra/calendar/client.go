// Package calendar implements the two upstream NYC calendar feeds. Both return
// the day's schedule as category-labeled entries; decoding is feed specific.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/observability/metrics"
	"nycasp-bot/internal/resilience/circuitbreaker"
	"nycasp-bot/internal/resilience/retry"
)

const (
	maxBodySize     = 1 << 20 // 1MB
	maxErrorSnippet = 256
)

// Options holds the settings shared by both feeds.
type Options struct {
	// URL is the feed endpoint without query parameters.
	URL string

	// UserAgent is sent with every request.
	UserAgent string

	// Retry controls retries of transient failures.
	// Zero value means retry.CalendarFetchConfig().
	Retry retry.Config
}

// fetcher carries the HTTP plumbing shared by the feeds: one GET per attempt,
// run through a circuit breaker and a bounded retry.
type fetcher struct {
	name           string
	endpoint       *url.URL
	userAgent      string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func newFetcher(name string, client *http.Client, opts Options) (*fetcher, error) {
	if err := entity.ValidateURL(name+".url", opts.URL); err != nil {
		return nil, err
	}
	endpoint, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", name, err)
	}

	retryConfig := opts.Retry
	if retryConfig.MaxAttempts == 0 {
		retryConfig = retry.CalendarFetchConfig()
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &fetcher{
		name:           name,
		endpoint:       endpoint,
		userAgent:      opts.UserAgent,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.CalendarSourceConfig(name)),
		retryConfig:    retryConfig,
	}, nil
}

// fetch performs the GET with the given query and headers and hands the body
// to decode. Transport failures are retried; decode failures are not.
func (f *fetcher) fetch(
	ctx context.Context,
	query url.Values,
	headers map[string]string,
	decode func([]byte) ([]entity.CalendarEntry, error),
) ([]entity.CalendarEntry, error) {
	var entries []entity.CalendarEntry
	start := time.Now()

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			body, err := f.get(ctx, query, headers)
			if err != nil {
				return nil, err
			}
			return decode(body)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				slog.Warn("calendar circuit breaker open, request rejected",
					slog.String("source", f.name),
					slog.String("state", f.circuitBreaker.State().String()))
				return &entity.TransportError{Service: f.name, Op: "GET calendar", Err: err}
			}
			return err
		}

		entries = cbResult.([]entity.CalendarEntry)
		return nil
	})

	metrics.RecordCalendarFetch(f.name, time.Since(start), retryErr)
	if retryErr != nil {
		return nil, retryErr
	}

	return entries, nil
}

// get performs a single GET and returns the body of a 2xx response.
func (f *fetcher) get(ctx context.Context, query url.Values, headers map[string]string) ([]byte, error) {
	u := *f.endpoint
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &entity.TransportError{Service: f.name, Op: "GET calendar", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &entity.TransportError{Service: f.name, Op: "GET calendar", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &entity.TransportError{Service: f.name, Op: "read calendar", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &entity.TransportError{
			Service:    f.name,
			Op:         "GET calendar",
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(body)),
		}
	}

	slog.Debug("calendar response received",
		slog.String("source", f.name),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)))

	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	return s
}

// plainText reduces detail text that carries HTML markup or entities to
// single-spaced plain text. Text without markup is only trimmed.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, div, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " ")
}
