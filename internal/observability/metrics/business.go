package metrics

import (
	"errors"
	"time"

	"nycasp-bot/internal/domain/entity"
)

// RecordCalendarFetch records one calendar fetch, retries included.
func RecordCalendarFetch(source string, duration time.Duration, err error) {
	CalendarFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		CalendarFetchesTotal.WithLabelValues(source, OutcomeFailure).Inc()
		CalendarFetchErrors.WithLabelValues(source, ErrorType(err)).Inc()
		return
	}
	CalendarFetchesTotal.WithLabelValues(source, OutcomeSuccess).Inc()
}

// RecordPost records one publish attempt to service.
func RecordPost(service string, duration time.Duration, err error) {
	PostDuration.WithLabelValues(service).Observe(duration.Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	PostsTotal.WithLabelValues(service, outcome).Inc()
}

// RecordMessageLength records the length of a formatted message in runes.
func RecordMessageLength(msg entity.StatusMessage) {
	MessageLength.Observe(float64(len([]rune(string(msg)))))
}

// ErrorType maps err onto a low-cardinality label value.
func ErrorType(err error) string {
	var (
		transportErr *entity.TransportError
		parseErr     *entity.ParseError
	)
	switch {
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.Is(err, entity.ErrNotFound):
		return "not_found"
	case errors.Is(err, entity.ErrInvalidConfig):
		return "configuration"
	default:
		return "other"
	}
}
