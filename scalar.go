package skemacore

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// anyNode accepts every input. The output is still a fresh copy; the
// executor never aliases caller structures.
type anyNode struct{}

func (n *anyNode) kind() string { return "any" }

func (n *anyNode) validate(rt *runtime, v any) (any, error) {
	return copyGraph(v), nil
}

func (n *anyNode) serialize(rt *runtime, v any) (any, error) {
	return rt.encodeAny(v)
}

// noneNode accepts null and nothing else, in both modes.
type noneNode struct{}

func (n *noneNode) kind() string { return "none" }

func (n *noneNode) validate(rt *runtime, v any) (any, error) {
	if v != nil {
		return nil, rt.fail(KindNoneRequired, v, nil)
	}
	return nil, nil
}

func (n *noneNode) serialize(rt *runtime, v any) (any, error) {
	if v != nil {
		return rt.mismatchValue(n, v)
	}
	return nil, nil
}

// boolNode validates booleans.
//
// Strict: bool.
// Lax: adds trimmed case-insensitive strings (true/t/yes/y/on/1,
// false/f/no/n/off/0) and numbers equal to exactly 0 or 1.
type boolNode struct {
	strict *bool
}

func (n *boolNode) kind() string { return "bool" }

func (n *boolNode) validate(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		if !rt.lax(n.strict) {
			return nil, rt.fail(KindBoolType, v, nil)
		}
		b, ok := boolFromString(t)
		if !ok {
			return nil, rt.fail(KindBoolParsing, v, nil)
		}
		return b, nil
	case int64, float64, json.Number:
		if !rt.lax(n.strict) {
			return nil, rt.fail(KindBoolType, v, nil)
		}
		f, ok := numberAsFloat(t)
		if !ok || (f != 0 && f != 1) {
			return nil, rt.fail(KindBoolParsing, v, nil)
		}
		return f == 1, nil
	default:
		return nil, rt.fail(KindBoolType, v, nil)
	}
}

func (n *boolNode) serialize(rt *runtime, v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return rt.mismatchValue(n, v)
}

// intNode validates 64-bit integers.
//
// Strict: int64, or an integral JSON number token.
// Lax: adds trimmed decimal strings, integral floats and booleans (0/1).
// A number with a fractional part is int_from_float; values outside the
// int64 range are int_parsing with an overflow reason.
type intNode struct {
	strict     *bool
	ge, gt     *int64
	le, lt     *int64
	multipleOf *int64
}

func (n *intNode) kind() string { return "int" }

func (n *intNode) validate(rt *runtime, v any) (any, error) {
	i, err := n.coerce(rt, v)
	if err != nil {
		return nil, err
	}
	if err := n.check(rt, i, v); err != nil {
		return nil, err
	}
	return i, nil
}

func (n *intNode) coerce(rt *runtime, v any) (int64, error) {
	lax := rt.lax(n.strict)
	switch t := v.(type) {
	case int64:
		return t, nil
	case json.Number:
		i, reason := intFromNumber(t, lax)
		if reason == reasonFractional {
			return 0, rt.fail(KindIntFromFloat, v, nil)
		}
		if reason == reasonOverflow {
			return 0, rt.fail(KindIntParsing, v, map[string]any{"reason": reasonOverflow})
		}
		if reason != "" {
			if lax {
				return 0, rt.fail(KindIntParsing, v, nil)
			}
			return 0, rt.fail(KindIntType, v, nil)
		}
		return i, nil
	case float64:
		if !lax {
			return 0, rt.fail(KindIntType, v, nil)
		}
		i, reason := intFromFloat(t)
		switch reason {
		case "":
			return i, nil
		case reasonFractional:
			return 0, rt.fail(KindIntFromFloat, v, nil)
		default:
			return 0, rt.fail(KindIntParsing, v, map[string]any{"reason": reason})
		}
	case string:
		if !lax {
			return 0, rt.fail(KindIntType, v, nil)
		}
		i, reason := intFromString(t)
		if reason == reasonOverflow {
			return 0, rt.fail(KindIntParsing, v, map[string]any{"reason": reasonOverflow})
		}
		if reason != "" {
			return 0, rt.fail(KindIntParsing, v, nil)
		}
		return i, nil
	case bool:
		if !lax {
			return 0, rt.fail(KindIntType, v, nil)
		}
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, rt.fail(KindIntType, v, nil)
	}
}

func (n *intNode) check(rt *runtime, i int64, input any) error {
	if n.ge != nil && i < *n.ge {
		return rt.fail(KindGreaterThanEqual, input, map[string]any{"ge": *n.ge})
	}
	if n.gt != nil && i <= *n.gt {
		return rt.fail(KindGreaterThan, input, map[string]any{"gt": *n.gt})
	}
	if n.le != nil && i > *n.le {
		return rt.fail(KindLessThanEqual, input, map[string]any{"le": *n.le})
	}
	if n.lt != nil && i >= *n.lt {
		return rt.fail(KindLessThan, input, map[string]any{"lt": *n.lt})
	}
	if n.multipleOf != nil && i%*n.multipleOf != 0 {
		return rt.fail(KindMultipleOf, input, map[string]any{"multiple_of": *n.multipleOf})
	}
	return nil
}

func (n *intNode) serialize(rt *runtime, v any) (any, error) {
	if i, ok := v.(int64); ok {
		return i, nil
	}
	return rt.mismatchValue(n, v)
}

// floatNode validates 64-bit floats.
//
// Strict: float64, int64 or a JSON number token.
// Lax: adds decimal/scientific strings and booleans (0/1). Non-finite
// values (NaN, ±Inf) are finite_number unless allow_inf_nan is set; the
// textual names (nan, inf, infinity) parse only in lax mode.
type floatNode struct {
	strict      *bool
	allowInfNan bool
	ge, gt      *float64
	le, lt      *float64
	multipleOf  *float64
}

func (n *floatNode) kind() string { return "float" }

func (n *floatNode) validate(rt *runtime, v any) (any, error) {
	f, err := n.coerce(rt, v)
	if err != nil {
		return nil, err
	}
	if !n.allowInfNan && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, rt.fail(KindFiniteNumber, v, nil)
	}
	if err := n.check(rt, f, v); err != nil {
		return nil, err
	}
	return f, nil
}

func (n *floatNode) coerce(rt *runtime, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, rt.fail(KindFloatParsing, v, nil)
		}
		return f, nil
	case string:
		if !rt.lax(n.strict) {
			return 0, rt.fail(KindFloatType, v, nil)
		}
		f, _, reason := floatFromString(t)
		if reason != "" {
			return 0, rt.fail(KindFloatParsing, v, nil)
		}
		return f, nil
	case bool:
		if !rt.lax(n.strict) {
			return 0, rt.fail(KindFloatType, v, nil)
		}
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, rt.fail(KindFloatType, v, nil)
	}
}

func (n *floatNode) check(rt *runtime, f float64, input any) error {
	if n.ge != nil && !(f >= *n.ge) {
		return rt.fail(KindGreaterThanEqual, input, map[string]any{"ge": *n.ge})
	}
	if n.gt != nil && !(f > *n.gt) {
		return rt.fail(KindGreaterThan, input, map[string]any{"gt": *n.gt})
	}
	if n.le != nil && !(f <= *n.le) {
		return rt.fail(KindLessThanEqual, input, map[string]any{"le": *n.le})
	}
	if n.lt != nil && !(f < *n.lt) {
		return rt.fail(KindLessThan, input, map[string]any{"lt": *n.lt})
	}
	if n.multipleOf != nil && !floatIsMultiple(f, *n.multipleOf) {
		return rt.fail(KindMultipleOf, input, map[string]any{"multiple_of": *n.multipleOf})
	}
	return nil
}

func floatIsMultiple(f, m float64) bool {
	if m == 0 {
		return false
	}
	rem := math.Abs(math.Mod(f, m))
	const eps = 1e-9
	return rem <= eps || math.Abs(rem-math.Abs(m)) <= eps
}

func (n *floatNode) serialize(rt *runtime, v any) (any, error) {
	switch t := v.(type) {
	case float64:
		if rt.target == TargetTextual && (math.IsNaN(t) || math.IsInf(t, 0)) {
			return rt.mismatchValue(n, v)
		}
		return t, nil
	case int64:
		return float64(t), nil
	}
	return rt.mismatchValue(n, v)
}

// strNode validates strings.
//
// Strict: string.
// Lax: adds UTF-8 byte sequences; numbers are never coerced to text.
// strip_whitespace/to_lower/to_upper run in both modes before length and
// pattern checks; lengths count runes.
type strNode struct {
	strict     *bool
	minLen     int // -1 when unbounded
	maxLen     int // -1 when unbounded
	pattern    *regexp.Regexp
	patternSrc string
	strip      bool
	toLower    bool
	toUpper    bool
}

func (n *strNode) kind() string { return "str" }

func (n *strNode) validate(rt *runtime, v any) (any, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		if !rt.lax(n.strict) {
			return nil, rt.fail(KindStringType, v, nil)
		}
		if !utf8.Valid(t) {
			return nil, rt.fail(KindStringUnicode, v, nil)
		}
		s = string(t)
	default:
		return nil, rt.fail(KindStringType, v, nil)
	}
	if n.strip {
		s = strings.TrimSpace(s)
	}
	if n.toLower {
		s = strings.ToLower(s)
	}
	if n.toUpper {
		s = strings.ToUpper(s)
	}
	if n.minLen >= 0 || n.maxLen >= 0 {
		rl := utf8.RuneCountInString(s)
		if n.minLen >= 0 && rl < n.minLen {
			return nil, rt.fail(KindStringTooShort, v, map[string]any{"min_length": n.minLen})
		}
		if n.maxLen >= 0 && rl > n.maxLen {
			return nil, rt.fail(KindStringTooLong, v, map[string]any{"max_length": n.maxLen})
		}
	}
	if n.pattern != nil && !n.pattern.MatchString(s) {
		return nil, rt.fail(KindStringPatternMismatch, v, map[string]any{"pattern": n.patternSrc})
	}
	return s, nil
}

func (n *strNode) serialize(rt *runtime, v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return rt.mismatchValue(n, v)
}

// bytesNode validates byte sequences.
//
// Strict: []byte; on the JSON channel strings are the wire form and are
// taken as their UTF-8 bytes. Lax: adds strings on the native channel too.
// Lengths count bytes.
type bytesNode struct {
	strict *bool
	minLen int
	maxLen int
}

func (n *bytesNode) kind() string { return "bytes" }

func (n *bytesNode) validate(rt *runtime, v any) (any, error) {
	var b []byte
	switch t := v.(type) {
	case []byte:
		b = make([]byte, len(t))
		copy(b, t)
	case string:
		if rt.channel != inputJSON && !rt.lax(n.strict) {
			return nil, rt.fail(KindBytesType, v, nil)
		}
		b = []byte(t)
	default:
		return nil, rt.fail(KindBytesType, v, nil)
	}
	if n.minLen >= 0 && len(b) < n.minLen {
		return nil, rt.fail(KindBytesTooShort, v, map[string]any{"min_length": n.minLen})
	}
	if n.maxLen >= 0 && len(b) > n.maxLen {
		return nil, rt.fail(KindBytesTooLong, v, map[string]any{"max_length": n.maxLen})
	}
	return b, nil
}

func (n *bytesNode) serialize(rt *runtime, v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	if rt.target == TargetNative {
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}
	return rt.textualBytes(n, b)
}

// literalNode accepts a closed set of scalar values (null, booleans,
// integers, strings). Matching is exact value equality in both modes,
// except that integral JSON number tokens match integer members and, in
// lax mode only, integral floats do as well. There is no cross-family
// coercion: "5" never matches the literal 5.
type literalNode struct {
	expected []any
	keys     map[any]struct{}
	display  string
}

func (n *literalNode) kind() string { return "literal" }

func (n *literalNode) validate(rt *runtime, v any) (any, error) {
	c, ok := n.canonical(rt, v)
	if !ok {
		return nil, rt.fail(KindLiteralError, v, map[string]any{"expected": n.display})
	}
	if _, hit := n.keys[c]; !hit {
		return nil, rt.fail(KindLiteralError, v, map[string]any{"expected": n.display})
	}
	return c, nil
}

func (n *literalNode) canonical(rt *runtime, v any) (any, bool) {
	switch t := v.(type) {
	case nil, bool, string, int64:
		return t, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		return nil, false
	case float64:
		if !rt.lax(nil) {
			return nil, false
		}
		i, reason := intFromFloat(t)
		if reason != "" {
			return nil, false
		}
		return i, true
	default:
		return nil, false
	}
}

func (n *literalNode) serialize(rt *runtime, v any) (any, error) {
	if _, hit := n.keys[v]; hit {
		return v, nil
	}
	return rt.mismatchValue(n, v)
}
