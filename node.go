package skemacore

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// node is the uniform contract every compiled schema variant implements.
// validate walks an input value toward the canonical internal form;
// serialize walks an already-valid internal value toward an output
// encoding. Both report failures as Issues and never mutate the runtime
// beyond their own scope.
type node interface {
	kind() string
	validate(rt *runtime, v any) (any, error)
	serialize(rt *runtime, v any) (any, error)
}

// typeName names an internal value's type for diagnostics.
func typeName(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case json.Number:
		return "number"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	case time.Time:
		return "datetime"
	case time.Duration:
		return "duration"
	case uuid.UUID:
		return "uuid"
	case *url.URL:
		return "url"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// copyGraph deep-copies a vocabulary value, preserving shared structure and
// cycles. Output values are always newly constructed; the executors never
// alias caller-owned containers.
func copyGraph(v any) any {
	return copyGraphMemo(v, nil)
}

func copyGraphMemo(v any, memo map[uintptr]any) any {
	switch t := v.(type) {
	case []any:
		if len(t) == 0 {
			return []any{}
		}
		id := reflect.ValueOf(t).Pointer()
		if memo != nil {
			if c, ok := memo[id]; ok {
				return c
			}
		} else {
			memo = make(map[uintptr]any, 4)
		}
		out := make([]any, len(t))
		memo[id] = out
		for i, e := range t {
			out[i] = copyGraphMemo(e, memo)
		}
		return out
	case map[string]any:
		id := reflect.ValueOf(t).Pointer()
		if memo != nil {
			if c, ok := memo[id]; ok {
				return c
			}
		} else {
			memo = make(map[uintptr]any, 4)
		}
		out := make(map[string]any, len(t))
		memo[id] = out
		for k, e := range t {
			out[k] = copyGraphMemo(e, memo)
		}
		return out
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	case *url.URL:
		if t == nil {
			return (*url.URL)(nil)
		}
		u := *t
		return &u
	default:
		return v
	}
}

// looseEqual compares a validated value against a configured default,
// treating numerically equal int64/float64 pairs as equal so defaults
// declared as integers match float fields.
func looseEqual(a, b any) bool {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !looseEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, ev := range x {
			ov, ok := y[k]
			if !ok || !looseEqual(ev, ov) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
