package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nycasp-bot/internal/domain/entity"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nycasp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadBotConfig_Defaults(t *testing.T) {
	t.Setenv(EnvSubscriptionKey, "sub-key")

	cfg, err := LoadBotConfig("", testLogger(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, entity.VariantSubscription, cfg.Variant())
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultSubscriptionURL, cfg.Subscription.URL)
	assert.Equal(t, DefaultPortalURL, cfg.Portal.URL)
	assert.Equal(t, DefaultBlueskyHost, cfg.Bluesky.Host)
	assert.Equal(t, entity.DefaultCategory, cfg.Category)
	assert.Equal(t, "sub-key", cfg.Subscription.Key)
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestLoadBotConfig_SubscriptionRequiresKey(t *testing.T) {
	t.Setenv(EnvSubscriptionKey, "")

	_, err := LoadBotConfig("", testLogger(&bytes.Buffer{}))
	require.Error(t, err)

	var cfgErr *entity.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{EnvSubscriptionKey}, cfgErr.Fields)
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)
}

func TestLoadBotConfig_PortalNeedsNoKey(t *testing.T) {
	t.Setenv(EnvSubscriptionKey, "")
	t.Setenv(EnvSource, "portal")

	cfg, err := LoadBotConfig("", testLogger(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, entity.VariantPortal, cfg.Variant())
}

func TestLoadBotConfig_CredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvSource, "portal")
	t.Setenv(EnvBlueskyUsername, "nycasp.bsky.social")
	t.Setenv(EnvBlueskyPassword, "app-password")

	cfg, err := LoadBotConfig("", testLogger(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, "nycasp.bsky.social", cfg.Bluesky.Identifier)
	assert.Equal(t, "app-password", cfg.Bluesky.Password)
}

func TestLoadBotConfig_File(t *testing.T) {
	path := writeConfigFile(t, `
source: portal
timezone: America/Chicago
http_timeout: 10s
user_agent: test-agent/2.0
portal:
  url: https://example.com/cal
bluesky:
  host: https://pds.example.com
mirrors:
  discord_webhook_url: https://discord.com/api/webhooks/1/abc
`)

	cfg, err := LoadBotConfig(path, testLogger(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, entity.VariantPortal, cfg.Variant())
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "test-agent/2.0", cfg.UserAgent)
	assert.Equal(t, "https://example.com/cal", cfg.Portal.URL)
	assert.Equal(t, "https://pds.example.com", cfg.Bluesky.Host)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Mirrors.DiscordWebhookURL)
	assert.Equal(t, DefaultSubscriptionURL, cfg.Subscription.URL, "unset keys keep defaults")
}

func TestLoadBotConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "source: portal\ntimezone: America/Chicago\n")
	t.Setenv(EnvTimezone, "UTC")

	cfg, err := LoadBotConfig(path, testLogger(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoadBotConfig_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv(EnvSource, "portal")
	t.Setenv(EnvTimezone, "Gotham/City")
	t.Setenv(EnvHTTPTimeout, "forever")

	var logs bytes.Buffer
	cfg, err := LoadBotConfig("", testLogger(&logs))
	require.NoError(t, err)

	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Contains(t, logs.String(), "Configuration fallback applied")
	assert.Contains(t, logs.String(), EnvTimezone)
}

func TestLoadBotConfig_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := LoadBotConfig(path, testLogger(&bytes.Buffer{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)

	var cfgErr *entity.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{path}, cfgErr.Fields)
}

func TestLoadBotConfig_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "source: [portal\n")

	_, err := LoadBotConfig(path, testLogger(&bytes.Buffer{}))
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)
}

func TestBotConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BotConfig)
		field  string
	}{
		{"unknown source", func(c *BotConfig) { c.Source = "rss" }, EnvSource},
		{"bad timezone", func(c *BotConfig) { c.Timezone = "Nowhere" }, EnvTimezone},
		{"zero timeout", func(c *BotConfig) { c.HTTPTimeout = 0 }, EnvHTTPTimeout},
		{"empty category", func(c *BotConfig) { c.Category = "" }, EnvCategory},
		{"bad portal url", func(c *BotConfig) { c.Portal.URL = "portal.311.nyc.gov" }, EnvPortalURL},
		{"bad mirror url", func(c *BotConfig) { c.Mirrors.SlackWebhookURL = "hooks.slack.com" }, EnvSlackWebhook},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBotConfig()
			cfg.Subscription.Key = "k"
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *entity.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, cfgErr.Fields, tt.field)
		})
	}
}

func TestLoadBotConfig_SourceOverrideSkipsKeyRequirement(t *testing.T) {
	t.Setenv(EnvSource, "subscription")
	t.Setenv(EnvSubscriptionKey, "")

	cfg, err := LoadBotConfig("", testLogger(&bytes.Buffer{}), WithSource("portal"))
	require.NoError(t, err)
	assert.Equal(t, entity.VariantPortal, cfg.Variant())

	cfg, err = LoadBotConfig("", testLogger(&bytes.Buffer{}), WithSource(""))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)
}
