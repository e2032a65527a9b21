package skemacore

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/reoring/skemacore/codec"
)

// dictNode validates homogeneous mappings. Keys and values carry their own
// schemas; keys are re-rendered to their canonical string form in the
// output, so "05" under an int key schema lands as "5". Key leaves get a
// trailing "[key]" location segment to distinguish them from the value at
// the same key. Entries are walked in sorted key order so leaf order is
// deterministic.
type dictNode struct {
	keys   node // nil means plain string keys
	values node
	minLen int
	maxLen int
}

func (n *dictNode) kind() string { return "dict" }

func (n *dictNode) validate(rt *runtime, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, rt.fail(KindDictType, v, nil)
	}
	var iss Issues
	if n.minLen >= 0 && len(m) < n.minLen {
		iss = append(iss, rt.issue(KindTooShort, v, map[string]any{"min_length": n.minLen, "actual": len(m)}))
	}
	if n.maxLen >= 0 && len(m) > n.maxLen {
		iss = append(iss, rt.issue(KindTooLong, v, map[string]any{"max_length": n.maxLen, "actual": len(m)}))
	}
	out := make(map[string]any, len(m))
	for _, k := range sortedKeys(m) {
		rt.pushField(k)
		outKey := k
		keyOK := true
		if n.keys != nil {
			rt.pushField("[key]")
			kv, err := n.keys.validate(rt, k)
			if err != nil {
				iss = AppendIssues(iss, rt.loc, err)
				keyOK = false
			} else {
				outKey = canonicalKey(kv)
			}
			rt.pop()
		}
		ev, err := n.values.validate(rt, m[k])
		if err != nil {
			iss = AppendIssues(iss, rt.loc, err)
		} else if keyOK {
			out[outKey] = ev
		}
		rt.pop()
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (n *dictNode) serialize(rt *runtime, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	id, tracked, cyclic := rt.beginCycleCheck(m)
	if cyclic {
		return nil, rt.fail(KindCircularReference, nil, nil)
	}
	defer rt.endCycleCheck(id, tracked)
	out := make(map[string]any, len(m))
	var iss Issues
	for _, k := range sortedKeys(m) {
		rt.pushField(k)
		ev, err := n.values.serialize(rt, m[k])
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
}

// canonicalKey renders a validated key value as the canonical output key.
func canonicalKey(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case uuid.UUID:
		return codec.FormatUUID(t)
	case time.Time:
		return codec.FormatDateTime(t)
	case time.Duration:
		return codec.FormatDuration(t)
	case *url.URL:
		return codec.FormatURL(t)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}
