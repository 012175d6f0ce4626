package calendar

import (
	"fmt"
	"net/http"

	"nycasp-bot/internal/config"
	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/usecase/status"
)

// NewSource builds the calendar source selected by cfg.Source.
func NewSource(cfg *config.BotConfig, client *http.Client) (status.CalendarSource, error) {
	switch cfg.Variant() {
	case entity.VariantSubscription:
		return NewSubscriptionSource(client, SubscriptionOptions{
			Options: Options{URL: cfg.Subscription.URL, UserAgent: cfg.UserAgent},
			Key:     cfg.Subscription.Key,
		})
	case entity.VariantPortal:
		return NewPortalSource(client, PortalOptions{
			Options: Options{URL: cfg.Portal.URL, UserAgent: cfg.UserAgent},
		})
	default:
		return nil, &entity.ConfigurationError{
			Fields:  []string{config.EnvSource},
			Message: fmt.Sprintf("unknown source %q", cfg.Source),
		}
	}
}
