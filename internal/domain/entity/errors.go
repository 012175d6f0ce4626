package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that no calendar entry matched the ASP category.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidConfig indicates that required configuration is missing or invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TransportError reports a failed network exchange with an upstream calendar
// service or the downstream posting service. StatusCode is zero when the
// request never produced a response.
type TransportError struct {
	Service    string
	Op         string
	StatusCode int
	Err        error
}

// Error returns a formatted error message for the transport error.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that could not be decoded into the
// shape expected from Source.
type ParseError struct {
	Source string
	Err    error
}

// Error returns a formatted error message for the parse error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a successful calendar response that carried no
// entry for Category.
type NotFoundError struct {
	Source   string
	Category string
	Date     string
}

// Error returns a formatted error message for the not found error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no %q entry for %s", e.Source, e.Category, e.Date)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConfigurationError reports missing or invalid settings. Fields lists the
// offending setting names; values are never included.
type ConfigurationError struct {
	Fields  []string
	Message string
}

// Error returns a formatted error message for the configuration error.
func (e *ConfigurationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error [%s]: %s", strings.Join(e.Fields, ", "), e.Message)
}

// Is makes errors.Is(err, ErrInvalidConfig) hold.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfig
}
