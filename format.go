package skemacore

import (
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/skemacore/codec"
)

// Format scalars delegate leaf-level parsing and formatting to the codec
// package; the nodes here only run the ladder and the bound checks.

// datetimeNode validates timestamps.
//
// Strict: time.Time; on the JSON channel RFC3339 strings are the wire form
// and are accepted too.
// Lax: adds RFC3339 strings on the native channel and epoch seconds
// (int64, float64, json.Number).
type datetimeNode struct {
	strict *bool
	after  *time.Time
	before *time.Time
}

func (n *datetimeNode) kind() string { return "datetime" }

func (n *datetimeNode) validate(rt *runtime, v any) (any, error) {
	t, err := n.coerce(rt, v)
	if err != nil {
		return nil, err
	}
	if n.after != nil && !t.After(*n.after) {
		return nil, rt.fail(KindGreaterThan, v, map[string]any{"gt": codec.FormatDateTime(*n.after)})
	}
	if n.before != nil && !t.Before(*n.before) {
		return nil, rt.fail(KindLessThan, v, map[string]any{"lt": codec.FormatDateTime(*n.before)})
	}
	return t, nil
}

func (n *datetimeNode) coerce(rt *runtime, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return time.Time{}, rt.fail(KindDatetimeType, v, nil)
		}
		parsed, err := codec.ParseDateTime(t)
		if err != nil {
			return time.Time{}, rt.fail(KindDatetimeParsing, v, map[string]any{"reason": "input does not match RFC 3339"})
		}
		return parsed, nil
	case int64, float64, json.Number:
		if !rt.lax(n.strict) {
			return time.Time{}, rt.fail(KindDatetimeType, v, nil)
		}
		sec, ok := numberAsFloat(t)
		if !ok {
			return time.Time{}, rt.fail(KindDatetimeParsing, v, map[string]any{"reason": "invalid epoch seconds"})
		}
		parsed, ok := codec.DateTimeFromEpoch(sec)
		if !ok {
			return time.Time{}, rt.fail(KindDatetimeParsing, v, map[string]any{"reason": "epoch seconds out of range"})
		}
		return parsed, nil
	default:
		return time.Time{}, rt.fail(KindDatetimeType, v, nil)
	}
}

func (n *datetimeNode) serialize(rt *runtime, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		return t, nil
	}
	return codec.FormatDateTime(t), nil
}

// dateNode validates calendar dates, carried as time.Time with a zero
// clock.
//
// Strict: time.Time with a zero clock; "2006-01-02" strings on the JSON
// channel.
// Lax: adds date strings on the native channel. A time.Time carrying a
// clock component is rejected in every mode; dates do not truncate.
type dateNode struct {
	strict *bool
}

func (n *dateNode) kind() string { return "date" }

func (n *dateNode) validate(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		if !codec.IsDateOnly(t) {
			return nil, rt.fail(KindDateParsing, v, map[string]any{"reason": "datetime carries a clock component"})
		}
		return t, nil
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return nil, rt.fail(KindDateType, v, nil)
		}
		parsed, err := codec.ParseDate(t)
		if err != nil {
			return nil, rt.fail(KindDateParsing, v, map[string]any{"reason": "input does not match YYYY-MM-DD"})
		}
		return parsed, nil
	default:
		return nil, rt.fail(KindDateType, v, nil)
	}
}

func (n *dateNode) serialize(rt *runtime, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok || !codec.IsDateOnly(t) {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		return t, nil
	}
	return codec.FormatDate(t), nil
}

// timeNode validates time-of-day values, carried as time.Time on the
// anchor date (January 1, year 1, UTC).
//
// Strict: time.Time on the anchor date; "15:04[:05[.frac]]" strings on the
// JSON channel.
// Lax: adds clock strings on the native channel and accepts any time.Time,
// keeping only its clock normalized onto the anchor.
type timeNode struct {
	strict *bool
}

func (n *timeNode) kind() string { return "time" }

func (n *timeNode) validate(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		if codec.IsTimeOfDay(t) {
			return t, nil
		}
		if !rt.lax(n.strict) {
			return nil, rt.fail(KindTimeParsing, v, map[string]any{"reason": "datetime carries a date component"})
		}
		return codec.NormalizeTimeOfDay(t), nil
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return nil, rt.fail(KindTimeType, v, nil)
		}
		parsed, err := codec.ParseTimeOfDay(t)
		if err != nil {
			return nil, rt.fail(KindTimeParsing, v, map[string]any{"reason": "input does not match HH:MM[:SS]"})
		}
		return parsed, nil
	default:
		return nil, rt.fail(KindTimeType, v, nil)
	}
}

func (n *timeNode) serialize(rt *runtime, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok || !codec.IsTimeOfDay(t) {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		return t, nil
	}
	return codec.FormatTimeOfDay(t), nil
}

// durationNode validates durations.
//
// Strict: time.Duration; Go duration strings ("1h30m") on the JSON channel.
// Lax: adds duration strings on the native channel and numeric seconds
// (int64, float64, json.Number).
type durationNode struct {
	strict *bool
}

func (n *durationNode) kind() string { return "duration" }

func (n *durationNode) validate(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return nil, rt.fail(KindDurationType, v, nil)
		}
		d, err := codec.ParseDuration(t)
		if err != nil {
			return nil, rt.fail(KindDurationParsing, v, map[string]any{"reason": "input does not match Go duration syntax"})
		}
		return d, nil
	case int64, float64, json.Number:
		if !rt.lax(n.strict) {
			return nil, rt.fail(KindDurationType, v, nil)
		}
		sec, ok := numberAsFloat(t)
		if !ok {
			return nil, rt.fail(KindDurationParsing, v, map[string]any{"reason": "invalid seconds value"})
		}
		d, ok := codec.DurationFromSeconds(sec)
		if !ok {
			return nil, rt.fail(KindDurationParsing, v, map[string]any{"reason": "seconds out of range"})
		}
		return d, nil
	default:
		return nil, rt.fail(KindDurationType, v, nil)
	}
}

func (n *durationNode) serialize(rt *runtime, v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		return d, nil
	}
	return codec.FormatDuration(d), nil
}

// uuidNode validates UUIDs.
//
// Strict: uuid.UUID; canonical strings on the JSON channel.
// Lax: adds strings on the native channel (the variants uuid.Parse
// understands) and raw 16-byte sequences.
type uuidNode struct {
	strict *bool
}

func (n *uuidNode) kind() string { return "uuid" }

func (n *uuidNode) validate(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return nil, rt.fail(KindUUIDType, v, nil)
		}
		u, err := codec.ParseUUID(t)
		if err != nil {
			return nil, rt.fail(KindUUIDParsing, v, map[string]any{"reason": err.Error()})
		}
		return u, nil
	case []byte:
		if !rt.lax(n.strict) {
			return nil, rt.fail(KindUUIDType, v, nil)
		}
		u, err := codec.UUIDFromBytes(t)
		if err != nil {
			return nil, rt.fail(KindUUIDParsing, v, map[string]any{"reason": err.Error()})
		}
		return u, nil
	default:
		return nil, rt.fail(KindUUIDType, v, nil)
	}
}

func (n *uuidNode) serialize(rt *runtime, v any) (any, error) {
	u, ok := v.(uuid.UUID)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		return u, nil
	}
	return codec.FormatUUID(u), nil
}

// urlNode validates absolute URLs.
//
// Strict: *url.URL; absolute-URL strings on the JSON channel.
// Lax: adds absolute-URL strings on the native channel. Relative
// references are rejected in every mode.
type urlNode struct {
	strict *bool
}

func (n *urlNode) kind() string { return "url" }

func (n *urlNode) validate(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case *url.URL:
		if t == nil {
			return nil, rt.fail(KindURLType, v, nil)
		}
		if t.Scheme == "" {
			return nil, rt.fail(KindURLParsing, v, map[string]any{"reason": "relative URL without a base"})
		}
		u := *t
		return &u, nil
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return nil, rt.fail(KindURLType, v, nil)
		}
		u, err := codec.ParseURL(t)
		if err != nil {
			return nil, rt.fail(KindURLParsing, v, map[string]any{"reason": err.Error()})
		}
		return u, nil
	default:
		return nil, rt.fail(KindURLType, v, nil)
	}
}

func (n *urlNode) serialize(rt *runtime, v any) (any, error) {
	u, ok := v.(*url.URL)
	if !ok || u == nil {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		c := *u
		return &c, nil
	}
	return codec.FormatURL(u), nil
}
