package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransportError
		expected string
	}{
		{
			name:     "with status code",
			err:      &TransportError{Service: "subscription", Op: "GET calendar", StatusCode: 503, Err: errors.New("unavailable")},
			expected: "subscription GET calendar: HTTP 503: unavailable",
		},
		{
			name:     "network failure",
			err:      &TransportError{Service: "bluesky", Op: "createSession", Err: errors.New("connection refused")},
			expected: "bluesky createSession: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("fetch: %w", &TransportError{Service: "portal", Op: "GET", Err: cause})
	assert.ErrorIs(t, err, cause)

	var te *TransportError
	assert.True(t, errors.As(err, &te))
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &ParseError{Source: "portal", Err: cause}
	assert.Equal(t, "portal: decode response: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Fields: []string{"BSKY_USERNAME", "BSKY_PASSWORD"}, Message: "must be set"}
	assert.Equal(t, "configuration error [BSKY_USERNAME, BSKY_PASSWORD]: must be set", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bare := &ConfigurationError{Message: "unknown source"}
	assert.Equal(t, "configuration error: unknown source", bare.Error())
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://api.nyc.gov/public/api/GetCalendar", false},
		{"http localhost", "http://127.0.0.1:8080/cal", false},
		{"empty", "", true},
		{"ftp scheme", "ftp://example.com", true},
		{"missing host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL("NYCASP_PORTAL_URL", tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
