package skemacore

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Shared primitives behind the per-type coercion ladders. Every function is
// total and deterministic; the ladders themselves are documented on the
// node types that use them.

const (
	reasonOverflow   = "overflow"
	reasonBadSyntax  = "bad_syntax"
	reasonFractional = "fractional"
)

// intFromString parses a trimmed decimal integer. reason is empty on
// success, otherwise one of the reason* constants.
func intFromString(s string) (int64, string) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, reasonBadSyntax
	}
	i, err := strconv.ParseInt(t, 10, 64)
	if err == nil {
		return i, ""
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, reasonOverflow
	}
	return 0, reasonBadSyntax
}

// intFromNumber interprets a JSON number token as an integer. Lax mode
// additionally accepts integral floats ("5.0").
func intFromNumber(n json.Number, lax bool) (int64, string) {
	if i, err := n.Int64(); err == nil {
		return i, ""
	}
	f, err := n.Float64()
	if err != nil {
		return 0, reasonBadSyntax
	}
	if !lax {
		return 0, reasonBadSyntax
	}
	return intFromFloat(f)
}

// intFromFloat accepts floats with a zero fractional part.
func intFromFloat(f float64) (int64, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, reasonBadSyntax
	}
	if f != math.Trunc(f) {
		return 0, reasonFractional
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, reasonOverflow
	}
	return int64(f), ""
}

// floatFromString parses a decimal or scientific float. Non-finite names
// ("inf", "nan", ...) parse but are reported so the caller can apply its
// finiteness policy.
func floatFromString(s string) (f float64, finite bool, reason string) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false, reasonBadSyntax
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false, reasonBadSyntax
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0), ""
}

// boolFromString interprets the closed truthy/falsy vocabulary, trimmed and
// case-insensitive: true/t/yes/y/on/1 and false/f/no/n/off/0.
func boolFromString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "on", "1":
		return true, true
	case "false", "f", "no", "n", "off", "0":
		return false, true
	}
	return false, false
}

// numberAsFloat widens any numeric vocabulary value to float64.
func numberAsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
