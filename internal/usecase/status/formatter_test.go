package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nycasp-bot/internal/domain/entity"
)

var (
	march3   = time.Date(2025, time.March, 3, 7, 0, 0, 0, time.UTC)
	today    = entity.NewTargetDate(march3, false)
	tomorrow = entity.NewTargetDate(march3, true) // Tuesday, March 4
)

func TestFormatPortal(t *testing.T) {
	tests := []struct {
		name    string
		details string
		target  entity.TargetDate
		want    string
	}{
		{
			name:    "suspended today is branded and dated",
			details: "Alternate side parking is suspended.",
			target:  today,
			want:    "NYCASP rules is suspended today, March 3.",
		},
		{
			name:    "only the sentence-case program name is branded",
			details: "Alternate Side Parking rules are in effect.",
			target:  today,
			want:    "Alternate Side Parking rules are in effect today, March 3.",
		},
		{
			name:    "suspended tomorrow",
			details: "Alternate side parking is suspended for Lunar New Year.",
			target:  tomorrow,
			want:    "NYCASP rules will be suspended tomorrow, Tuesday, March 4 for Lunar New Year.",
		},
		{
			name:    "plural suspended tomorrow",
			details: "Parking meters are suspended.",
			target:  tomorrow,
			want:    "Parking meters will be suspended tomorrow, Tuesday, March 4.",
		},
		{
			name:    "in effect tomorrow has no date",
			details: "Alternate side parking and meters are in effect.",
			target:  tomorrow,
			want:    "NYCASP rules and meters will be in effect.",
		},
		{
			name:    "empty details today",
			details: "",
			target:  today,
			want:    "NYCASP is in effect today, March 3.",
		},
		{
			name:    "blank details tomorrow",
			details: "   ",
			target:  tomorrow,
			want:    "NYCASP will be in effect tomorrow, Tuesday, March 4.",
		},
		{
			name:    "unrecognized wording passes through",
			details: "Street cleaning schedule unchanged.",
			target:  today,
			want:    "Street cleaning schedule unchanged.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPortal(tt.details, tt.target).String())
		})
	}
}

func TestFormatSubscription(t *testing.T) {
	tests := []struct {
		name   string
		entry  entity.AspEntry
		target entity.TargetDate
		want   string
	}{
		{
			name:   "suspended today keeps program name",
			entry:  entity.AspEntry{Details: "Alternate side parking is suspended."},
			target: today,
			want:   "Alternate side parking is suspended today, March 3.",
		},
		{
			name:   "in effect today",
			entry:  entity.AspEntry{Details: "Alternate Side Parking and meters are in effect."},
			target: today,
			want:   "Alternate Side Parking and meters are in effect today, March 3.",
		},
		{
			name:   "is suspended tomorrow",
			entry:  entity.AspEntry{Details: "Alternate side parking is suspended. Meters are in effect."},
			target: tomorrow,
			want: "Alternate side parking will be suspended tomorrow, Tuesday, March 4. " +
				"Meters will be in effect tomorrow, Tuesday, March 4.",
		},
		{
			name:   "are suspended tomorrow",
			entry:  entity.AspEntry{Details: "Alternate side parking and meters are suspended."},
			target: tomorrow,
			want:   "Alternate side parking and meters will be suspended tomorrow, Tuesday, March 4.",
		},
		{
			name:   "empty details with suspended status today",
			entry:  entity.AspEntry{Status: "SUSPENDED"},
			target: today,
			want:   "Alternate Side Parking is suspended today, March 3.",
		},
		{
			name:   "empty details with in effect status tomorrow",
			entry:  entity.AspEntry{Status: "IN EFFECT"},
			target: tomorrow,
			want:   "Alternate Side Parking rules will be in effect tomorrow, Tuesday, March 4.",
		},
		{
			name:   "empty details and status tomorrow defaults to in effect",
			entry:  entity.AspEntry{},
			target: tomorrow,
			want:   "Alternate Side Parking rules will be in effect tomorrow, Tuesday, March 4.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSubscription(tt.entry, tt.target).String())
		})
	}
}

func TestFormat_DispatchesByVariant(t *testing.T) {
	entry := entity.AspEntry{Details: "Alternate side parking is suspended."}

	assert.Equal(t, entity.StatusMessage("NYCASP rules is suspended today, March 3."),
		Format(entity.VariantPortal, entry, today))
	assert.Equal(t, entity.StatusMessage("Alternate side parking is suspended today, March 3."),
		Format(entity.VariantSubscription, entry, today))
}

func TestFormat_SuspendedTodayAlwaysDated(t *testing.T) {
	details := []string{
		"Alternate side parking is suspended.",
		"Alternate side parking and meters are suspended for Christmas Day.",
		"Alternate side parking is suspended due to snow.",
	}

	for _, d := range details {
		for _, v := range []entity.SourceVariant{entity.VariantSubscription, entity.VariantPortal} {
			msg := Format(v, entity.AspEntry{Details: d}, today)
			assert.Contains(t, msg.String(), "suspended today, March 3", "variant=%s details=%q", v, d)
		}
	}
}

func TestFormat_SuspendedTomorrowAlwaysDated(t *testing.T) {
	details := []string{
		"Alternate side parking is suspended.",
		"Alternate side parking and meters are suspended.",
	}

	for _, d := range details {
		for _, v := range []entity.SourceVariant{entity.VariantSubscription, entity.VariantPortal} {
			msg := Format(v, entity.AspEntry{Details: d}, tomorrow)
			assert.Contains(t, msg.String(), "will be suspended tomorrow, Tuesday, March 4", "variant=%s details=%q", v, d)
		}
	}
}
