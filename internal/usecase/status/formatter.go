package status

import (
	"fmt"
	"strings"

	"nycasp-bot/internal/domain/entity"
)

// Brand is the short name the portal variant substitutes for the program name.
const Brand = "NYCASP"

// Default phrases used by the subscription variant when an entry carries no
// detail text.
const (
	defaultSuspendedPhrase = "Alternate Side Parking is suspended."
	defaultInEffectPhrase  = "Alternate Side Parking rules are in effect."
)

// Format rewrites the detail text of entry into the message posted for target.
// Each source variant keeps its own literal substitution rules.
func Format(variant entity.SourceVariant, entry entity.AspEntry, target entity.TargetDate) entity.StatusMessage {
	switch variant {
	case entity.VariantPortal:
		return FormatPortal(entry.Details, target)
	default:
		return FormatSubscription(entry, target)
	}
}

// FormatSubscription applies the subscription feed rules. An entry without
// details gets a base phrase chosen from its status before the date rules run.
func FormatSubscription(entry entity.AspEntry, target entity.TargetDate) entity.StatusMessage {
	msg := strings.TrimSpace(entry.Details)
	if msg == "" {
		msg = defaultInEffectPhrase
		if strings.Contains(strings.ToUpper(entry.Status), "SUSPEND") {
			msg = defaultSuspendedPhrase
		}
	}

	date := target.Human()
	if target.IsToday {
		msg = strings.ReplaceAll(msg, "suspended", "suspended today, "+date)
		msg = strings.ReplaceAll(msg, "in effect", "in effect today, "+date)
		return entity.StatusMessage(msg)
	}

	update := "will be suspended tomorrow, " + date
	msg = strings.ReplaceAll(msg, "is suspended", update)
	msg = strings.ReplaceAll(msg, "are suspended", update)
	msg = strings.ReplaceAll(msg, "are in effect", "will be in effect tomorrow, "+date)
	return entity.StatusMessage(msg)
}

// FormatPortal applies the portal feed rules: program name branding first,
// then the date rules. Empty details produce a synthesized in-effect message.
func FormatPortal(details string, target entity.TargetDate) entity.StatusMessage {
	date := target.Human()
	msg := strings.TrimSpace(details)
	if msg == "" {
		if target.IsToday {
			return entity.StatusMessage(fmt.Sprintf("%s is in effect today, %s.", Brand, date))
		}
		return entity.StatusMessage(fmt.Sprintf("%s will be in effect tomorrow, %s.", Brand, date))
	}

	msg = strings.ReplaceAll(msg, "Alternate side parking", Brand+" rules")

	if target.IsToday {
		msg = strings.ReplaceAll(msg, "suspended", "suspended today, "+date)
		msg = strings.ReplaceAll(msg, "in effect", "in effect today, "+date)
		return entity.StatusMessage(msg)
	}

	update := "will be suspended tomorrow, " + date
	msg = strings.ReplaceAll(msg, "is suspended", update)
	msg = strings.ReplaceAll(msg, "are suspended", update)
	msg = strings.ReplaceAll(msg, "are in effect", "will be in effect")
	return entity.StatusMessage(msg)
}
