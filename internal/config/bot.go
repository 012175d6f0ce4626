// Package config assembles the bot's runtime configuration once at process
// start. Values are layered: built-in defaults, then an optional YAML file,
// then environment variables. Credentials are read from the environment only.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"nycasp-bot/internal/domain/entity"
	envconfig "nycasp-bot/internal/pkg/config"
)

// Environment variable names.
const (
	EnvSubscriptionKey = "API_KEY_311"
	EnvBlueskyUsername = "BSKY_USERNAME"
	EnvBlueskyPassword = "BSKY_PASSWORD"
	EnvBlueskyHost     = "BSKY_HOST"
	EnvSource          = "NYCASP_SOURCE"
	EnvSubscriptionURL = "NYCASP_SUBSCRIPTION_URL"
	EnvPortalURL       = "NYCASP_PORTAL_URL"
	EnvTimezone        = "NYCASP_TIMEZONE"
	EnvHTTPTimeout     = "NYCASP_HTTP_TIMEOUT"
	EnvUserAgent       = "NYCASP_USER_AGENT"
	EnvCategory        = "NYCASP_CATEGORY"
	EnvDiscordWebhook  = "DISCORD_WEBHOOK_URL"
	EnvSlackWebhook    = "SLACK_WEBHOOK_URL"
)

// Defaults.
const (
	DefaultSubscriptionURL = "https://api.nyc.gov/public/api/GetCalendar"
	DefaultPortalURL       = "https://portal.311.nyc.gov/home-cal/"
	DefaultBlueskyHost     = "https://bsky.social"
	DefaultTimezone        = "America/New_York"
	DefaultUserAgent       = "nycasp-bot/1.0"
	DefaultHTTPTimeout     = 30 * time.Second
)

// BotConfig holds everything a run needs. It is passed explicitly to the
// calendar source and publisher constructors.
type BotConfig struct {
	// Source selects the upstream calendar feed ("subscription" or "portal").
	// Default: "subscription"
	Source string `yaml:"source"`

	// Timezone is the IANA zone used to decide what "today" is.
	// Default: "America/New_York"
	Timezone string `yaml:"timezone"`

	// HTTPTimeout bounds each outbound request. Range: 1s-5m. Default: 30s
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// UserAgent is sent with calendar requests.
	UserAgent string `yaml:"user_agent"`

	// Category is the calendar label that identifies the ASP entry.
	Category string `yaml:"category"`

	Subscription SubscriptionConfig `yaml:"subscription"`
	Portal       PortalConfig       `yaml:"portal"`
	Bluesky      BlueskyConfig      `yaml:"bluesky"`
	Mirrors      MirrorConfig       `yaml:"mirrors"`
}

// SubscriptionConfig configures the city's subscription API.
type SubscriptionConfig struct {
	URL string `yaml:"url"`

	// Key is the Ocp-Apim-Subscription-Key value. Environment only.
	Key string `yaml:"-"`
}

// PortalConfig configures the public 311 portal feed.
type PortalConfig struct {
	URL string `yaml:"url"`
}

// BlueskyConfig configures the posting account.
type BlueskyConfig struct {
	// Host is the PDS base URL.
	Host string `yaml:"host"`

	// Identifier and Password are environment only.
	Identifier string `yaml:"-"`
	Password   string `yaml:"-"`
}

// MirrorConfig lists optional webhooks that re-post the status text.
type MirrorConfig struct {
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
	SlackWebhookURL   string `yaml:"slack_webhook_url"`
}

// DefaultBotConfig returns the built-in defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		Source:       string(entity.VariantSubscription),
		Timezone:     DefaultTimezone,
		HTTPTimeout:  DefaultHTTPTimeout,
		UserAgent:    DefaultUserAgent,
		Category:     entity.DefaultCategory,
		Subscription: SubscriptionConfig{URL: DefaultSubscriptionURL},
		Portal:       PortalConfig{URL: DefaultPortalURL},
		Bluesky:      BlueskyConfig{Host: DefaultBlueskyHost},
	}
}

// Override adjusts the configuration after files and environment are applied,
// typically from command-line flags.
type Override func(*BotConfig)

// WithSource overrides the source variant when source is non-empty.
func WithSource(source string) Override {
	return func(c *BotConfig) {
		if source != "" {
			c.Source = source
		}
	}
}

// LoadBotConfig builds the configuration. path may be empty; when set, the
// YAML file must exist and parse. Invalid non-secret environment values fall
// back to the file/default value with a warning. Overrides run last, and the
// result is validated.
func LoadBotConfig(path string, logger *slog.Logger, overrides ...Override) (*BotConfig, error) {
	cfg := DefaultBotConfig()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	for _, warning := range cfg.applyEnv() {
		logger.Warn("Configuration fallback applied", slog.String("warning", warning))
	}

	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeFile overlays the YAML file at path onto c.
func (c *BotConfig) mergeFile(path string) error {
	// #nosec G304 -- path comes from the --config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return &entity.ConfigurationError{
			Fields:  []string{path},
			Message: fmt.Sprintf("failed to read config file: %v", err),
		}
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return &entity.ConfigurationError{
			Fields:  []string{path},
			Message: fmt.Sprintf("failed to parse config: %v", err),
		}
	}

	return nil
}

// applyEnv overlays environment variables and returns fallback warnings.
func (c *BotConfig) applyEnv() []string {
	var warnings []string
	collect := func(w []string) { warnings = append(warnings, w...) }

	source := envconfig.LoadEnvWithFallback(EnvSource, c.Source, func(v string) error {
		if _, ok := entity.ParseSourceVariant(v); !ok {
			return fmt.Errorf("unknown source %q", v)
		}
		return nil
	})
	c.Source = source.Value
	collect(source.Warnings)

	tz := envconfig.LoadEnvWithFallback(EnvTimezone, c.Timezone, envconfig.ValidateTimezone)
	c.Timezone = tz.Value
	collect(tz.Warnings)

	timeout := envconfig.LoadEnvDuration(EnvHTTPTimeout, c.HTTPTimeout, func(d time.Duration) error {
		return envconfig.ValidateDuration(d, time.Second, 5*time.Minute)
	})
	c.HTTPTimeout = timeout.Value
	collect(timeout.Warnings)

	for _, u := range []struct {
		env  string
		dest *string
	}{
		{EnvSubscriptionURL, &c.Subscription.URL},
		{EnvPortalURL, &c.Portal.URL},
		{EnvBlueskyHost, &c.Bluesky.Host},
	} {
		r := envconfig.LoadEnvWithFallback(u.env, *u.dest, envconfig.ValidateHTTPURL)
		*u.dest = r.Value
		collect(r.Warnings)
	}

	c.UserAgent = envconfig.LoadEnvString(EnvUserAgent, c.UserAgent)
	c.Category = envconfig.LoadEnvString(EnvCategory, c.Category)
	c.Mirrors.DiscordWebhookURL = envconfig.LoadEnvString(EnvDiscordWebhook, c.Mirrors.DiscordWebhookURL)
	c.Mirrors.SlackWebhookURL = envconfig.LoadEnvString(EnvSlackWebhook, c.Mirrors.SlackWebhookURL)

	c.Subscription.Key = envconfig.LoadEnvString(EnvSubscriptionKey, "")
	c.Bluesky.Identifier = envconfig.LoadEnvString(EnvBlueskyUsername, "")
	c.Bluesky.Password = envconfig.LoadEnvString(EnvBlueskyPassword, "")

	return warnings
}

// Variant returns the configured source variant.
func (c *BotConfig) Variant() entity.SourceVariant {
	v, _ := entity.ParseSourceVariant(c.Source)
	return v
}

// Location returns the configured timezone, or UTC if it cannot be loaded.
func (c *BotConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks the settings every run needs. Posting credentials are
// checked by the publisher so that dry runs work without them.
func (c *BotConfig) Validate() error {
	var errs []error

	variant, ok := entity.ParseSourceVariant(c.Source)
	if !ok {
		errs = append(errs, &entity.ConfigurationError{
			Fields:  []string{EnvSource},
			Message: fmt.Sprintf("unknown source %q (expected subscription or portal)", c.Source),
		})
	}

	if variant == entity.VariantSubscription && c.Subscription.Key == "" {
		errs = append(errs, &entity.ConfigurationError{
			Fields:  []string{EnvSubscriptionKey},
			Message: "subscription key is required for the subscription source",
		})
	}

	if err := envconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, &entity.ConfigurationError{Fields: []string{EnvTimezone}, Message: err.Error()})
	}

	if err := envconfig.ValidatePositiveDuration(c.HTTPTimeout); err != nil {
		errs = append(errs, &entity.ConfigurationError{Fields: []string{EnvHTTPTimeout}, Message: err.Error()})
	}

	if c.Category == "" {
		errs = append(errs, &entity.ConfigurationError{Fields: []string{EnvCategory}, Message: "category label cannot be empty"})
	}

	for field, u := range map[string]string{
		EnvSubscriptionURL: c.Subscription.URL,
		EnvPortalURL:       c.Portal.URL,
		EnvBlueskyHost:     c.Bluesky.Host,
	} {
		if err := entity.ValidateURL(field, u); err != nil {
			errs = append(errs, err)
		}
	}

	for field, u := range map[string]string{
		EnvDiscordWebhook: c.Mirrors.DiscordWebhookURL,
		EnvSlackWebhook:   c.Mirrors.SlackWebhookURL,
	} {
		if u == "" {
			continue
		}
		if err := entity.ValidateURL(field, u); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
