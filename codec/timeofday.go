package codec

import (
	"errors"
	"time"
)

// Time-of-day values are carried as time.Time on the zero anchor date
// (January 1, year 1, UTC) so that equal clocks compare equal.

var timeOfDayLayouts = []string{
	"15:04:05.999999999",
	"15:04:05",
	"15:04",
}

var errBadTimeOfDay = errors.New("expected HH:MM[:SS[.frac]]")

// ParseTimeOfDay parses a clock value in HH:MM[:SS[.frac]] form.
func ParseTimeOfDay(s string) (time.Time, error) {
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeTimeOfDay(t), nil
		}
	}
	return time.Time{}, errBadTimeOfDay
}

// NormalizeTimeOfDay projects t's clock onto the anchor date.
func NormalizeTimeOfDay(t time.Time) time.Time {
	h, m, s := t.Clock()
	return time.Date(1, time.January, 1, h, m, s, t.Nanosecond(), time.UTC)
}

// IsTimeOfDay reports whether t already sits on the anchor date.
func IsTimeOfDay(t time.Time) bool {
	y, mo, d := t.Date()
	return y == 1 && mo == time.January && d == 1 && t.Location() == time.UTC
}

// FormatTimeOfDay renders the canonical "15:04:05[.frac]" form.
func FormatTimeOfDay(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("15:04:05")
	}
	return t.Format("15:04:05.999999999")
}
