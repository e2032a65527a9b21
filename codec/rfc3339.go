package codec

import (
	"math"
	"time"
)

// ParseDateTime parses an RFC3339 timestamp, with or without fractional
// seconds.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FormatDateTime renders the canonical textual form: UTC, RFC3339 with
// nanosecond precision (trailing zeros trimmed).
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// DateTimeFromEpoch converts fractional seconds since the Unix epoch.
func DateTimeFromEpoch(sec float64) (time.Time, bool) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return time.Time{}, false
	}
	// Bound to a representable range; time.Unix silently wraps far outside it.
	if sec < -62135596800 || sec > 253402300799 { // 0001-01-01 .. 9999-12-31
		return time.Time{}, false
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), true
}
