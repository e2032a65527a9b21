package skemacore

import (
	"fmt"
	"net/url"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/reoring/skemacore/codec"
)

// Serialization-side runtime helpers shared by every node variant. The
// serializer never re-validates; when a value's shape disagrees with the
// schema it either degrades through encodeAny (MismatchFallback) or refuses
// with a type_unsupported leaf (MismatchError).

// mismatchValue applies the call's mismatch policy to a value the node
// cannot encode.
func (rt *runtime) mismatchValue(n node, v any) (any, error) {
	if rt.mismatch == MismatchError {
		return nil, rt.fail(KindTypeUnsupported, v, map[string]any{
			"expected": n.kind(),
			"actual":   typeName(v),
		})
	}
	return rt.encodeAny(v)
}

// encodeAny is the best-effort generic encoding used by the any node and
// by the fallback mismatch policy. It walks containers with the same cycle
// discipline as schema-directed serialization and, under the textual
// target, flattens rich leaf types to their canonical string forms.
func (rt *runtime) encodeAny(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, int64, string:
		return t, nil
	case float64:
		return t, nil
	case []byte:
		if rt.target == TargetNative {
			out := make([]byte, len(t))
			copy(out, t)
			return out, nil
		}
		if utf8.Valid(t) {
			return string(t), nil
		}
		return codec.EncodeBase64(t), nil
	case time.Time:
		if rt.target == TargetNative {
			return t, nil
		}
		return codec.FormatDateTime(t), nil
	case time.Duration:
		if rt.target == TargetNative {
			return t, nil
		}
		return codec.FormatDuration(t), nil
	case uuid.UUID:
		if rt.target == TargetNative {
			return t, nil
		}
		return codec.FormatUUID(t), nil
	case *url.URL:
		if rt.target == TargetNative {
			if t == nil {
				return nil, nil
			}
			u := *t
			return &u, nil
		}
		if t == nil {
			return nil, nil
		}
		return codec.FormatURL(t), nil
	case []any:
		id, tracked, cyclic := rt.beginCycleCheck(t)
		if cyclic {
			return nil, rt.fail(KindCircularReference, nil, nil)
		}
		defer rt.endCycleCheck(id, tracked)
		out := make([]any, len(t))
		var iss Issues
		for i, e := range t {
			rt.pushIndex(i)
			ev, err := rt.encodeAny(e)
			if err != nil {
				iss = AppendIssues(iss, rt.loc, err)
			} else {
				out[i] = ev
			}
			rt.pop()
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	case map[string]any:
		id, tracked, cyclic := rt.beginCycleCheck(t)
		if cyclic {
			return nil, rt.fail(KindCircularReference, nil, nil)
		}
		defer rt.endCycleCheck(id, tracked)
		out := make(map[string]any, len(t))
		var iss Issues
		for _, k := range sortedKeys(t) {
			rt.pushField(k)
			ev, err := rt.encodeAny(t[k])
			if err != nil {
				iss = AppendIssues(iss, rt.loc, err)
			} else {
				out[k] = ev
			}
			rt.pop()
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	default:
		// Last resort: stringify.
		return fmt.Sprint(v), nil
	}
}

// textualBytes flattens a byte sequence for the textual target: valid
// UTF-8 becomes a string, anything else follows the mismatch policy with
// base64 as the fallback rendering.
func (rt *runtime) textualBytes(n node, b []byte) (any, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	if rt.mismatch == MismatchError {
		return nil, rt.fail(KindTypeUnsupported, nil, map[string]any{
			"expected": n.kind(),
			"actual":   "non-utf8 bytes",
		})
	}
	return codec.EncodeBase64(b), nil
}

// sortedKeys returns m's keys in ascending order for deterministic output
// and leaf ordering.
func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
