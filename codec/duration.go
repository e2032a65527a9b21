package codec

import (
	"math"
	"time"
)

// ParseDuration parses the Go duration syntax ("1h30m", "250ms", ...).
func ParseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

// FormatDuration renders the canonical Go duration form, which
// ParseDuration accepts back unchanged.
func FormatDuration(d time.Duration) string {
	return d.String()
}

// DurationFromSeconds converts fractional seconds, rejecting values outside
// the representable range.
func DurationFromSeconds(sec float64) (time.Duration, bool) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 0, false
	}
	ns := sec * float64(time.Second)
	if ns > math.MaxInt64 || ns < math.MinInt64 {
		return 0, false
	}
	return time.Duration(ns), true
}
