// Package config provides environment loaders with validation and fail-open
// fallback. A value that is present but invalid is replaced by its default and
// reported as a warning; loading itself never fails.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one setting.
//
// Fields:
//   - Value: the loaded value (the default when a fallback was applied)
//   - Warnings: one message per fallback applied
//   - FallbackApplied: true if the default replaced an invalid value
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

func fallback[T any](envKey, raw string, reason error, defaultValue T) LoadResult[T] {
	return LoadResult[T]{
		Value: defaultValue,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, raw, reason, defaultValue,
		)},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the environment value for envKey, or defaultValue when
// unset or empty. Surrounding whitespace is trimmed. No validation is applied,
// which makes it the loader for secrets: their values never reach a warning.
func LoadEnvString(envKey, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string value from an environment variable
// with validation and automatic fallback to default on validation failure.
//
// Loading behavior:
//  1. Read the environment variable, trimming surrounding whitespace
//  2. If not set or empty: use the default value (no warning)
//  3. If set: validate it with validator (nil accepts anything)
//  4. If validation fails: use the default value and add a warning
//
// It never returns an error; a bad value is a warning, not a startup failure.
//
// Parameters:
//   - envKey: environment variable name to read
//   - defaultValue: value used when the variable is unset or invalid
//   - validator: returns an error describing why a value is rejected
//
// Returns:
//   - LoadResult[string]: the value, any warnings, and whether the
//     fallback was applied
//
// Example:
//
//	result := LoadEnvWithFallback("TODAY_CRON", "0 7 * * *", ValidateCronSchedule)
//	for _, warning := range result.Warnings {
//	    logger.Warn("Configuration fallback applied", slog.String("warning", warning))
//	}
//	schedule := result.Value
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	value := strings.TrimSpace(os.Getenv(envKey))
	if value == "" {
		return LoadResult[string]{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, err, defaultValue)
		}
	}

	return LoadResult[string]{Value: value}
}

// LoadEnvDuration loads a Go duration string ("30s", "1m30s") and validates it.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult[time.Duration] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return LoadResult[time.Duration]{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}

	return LoadResult[time.Duration]{Value: parsed}
}

// LoadEnvInt loads a base-10 integer and validates it.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult[int] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return LoadResult[int]{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(envKey, raw, fmt.Errorf("invalid integer format"), defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}

	return LoadResult[int]{Value: parsed}
}
