package codec

import "time"

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date in the "2006-01-02" form, anchored to
// UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders the canonical "2006-01-02" form.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// IsDateOnly reports whether t carries no clock component.
func IsDateOnly(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
