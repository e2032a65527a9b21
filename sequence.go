package skemacore

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// listNode validates ordered sequences. Every element is attempted against
// the item schema; failing elements each contribute leaves with the index
// appended to the location, and the call fails together once the walk
// completes. Both modes accept []any only.
type listNode struct {
	items  node
	minLen int // -1 when unbounded
	maxLen int // -1 when unbounded
}

func (n *listNode) kind() string { return "list" }

func (n *listNode) validate(rt *runtime, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, rt.fail(KindListType, v, nil)
	}
	var iss Issues
	if n.minLen >= 0 && len(seq) < n.minLen {
		iss = append(iss, rt.issue(KindTooShort, v, map[string]any{"min_length": n.minLen, "actual": len(seq)}))
	}
	if n.maxLen >= 0 && len(seq) > n.maxLen {
		iss = append(iss, rt.issue(KindTooLong, v, map[string]any{"max_length": n.maxLen, "actual": len(seq)}))
	}
	out := make([]any, len(seq))
	for i, e := range seq {
		rt.pushIndex(i)
		ev, err := n.items.validate(rt, e)
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
}

func (n *listNode) serialize(rt *runtime, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	id, tracked, cyclic := rt.beginCycleCheck(seq)
	if cyclic {
		return nil, rt.fail(KindCircularReference, nil, nil)
	}
	defer rt.endCycleCheck(id, tracked)
	out := make([]any, len(seq))
	var iss Issues
	for i, e := range seq {
		rt.pushIndex(i)
		ev, err := n.items.serialize(rt, e)
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
}

// tupleNode validates fixed-arity sequences, each position against its own
// schema. Positions past the declared arity contribute a single too_long
// leaf; missing positions contribute one missing leaf each.
type tupleNode struct {
	items []node
}

func (n *tupleNode) kind() string { return "tuple" }

func (n *tupleNode) validate(rt *runtime, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, rt.fail(KindTupleType, v, nil)
	}
	var iss Issues
	if len(seq) > len(n.items) {
		iss = append(iss, rt.issue(KindTooLong, v, map[string]any{"max_length": len(n.items), "actual": len(seq)}))
	}
	out := make([]any, len(n.items))
	for i, item := range n.items {
		rt.pushIndex(i)
		if i >= len(seq) {
			iss = append(iss, rt.issue(KindMissing, nil, nil))
			rt.pop()
			continue
		}
		ev, err := item.validate(rt, seq[i])
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
}

func (n *tupleNode) serialize(rt *runtime, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok || len(seq) != len(n.items) {
		return rt.mismatchValue(n, v)
	}
	id, tracked, cyclic := rt.beginCycleCheck(seq)
	if cyclic {
		return nil, rt.fail(KindCircularReference, nil, nil)
	}
	defer rt.endCycleCheck(id, tracked)
	out := make([]any, len(seq))
	var iss Issues
	for i, item := range n.items {
		rt.pushIndex(i)
		ev, err := item.serialize(rt, seq[i])
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
}

// setNode validates sequences with set semantics: elements are validated
// like a list, then deduplicated preserving first-occurrence order. A
// validated element without a usable identity (nested containers) yields
// set_item_not_hashable. Length bounds apply after deduplication.
type setNode struct {
	items  node
	minLen int
	maxLen int
}

func (n *setNode) kind() string { return "set" }

func (n *setNode) validate(rt *runtime, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok {
		return nil, rt.fail(KindSetType, v, nil)
	}
	var iss Issues
	out := make([]any, 0, len(seq))
	seen := make(map[any]struct{}, len(seq))
	for i, e := range seq {
		rt.pushIndex(i)
		ev, err := n.items.validate(rt, e)
		if err != nil {
			iss = AppendIssues(iss, rt.loc, err)
			rt.pop()
			continue
		}
		key, hashable := setKey(ev)
		if !hashable {
			iss = append(iss, rt.issue(KindSetItemNotHashable, e, nil))
			rt.pop()
			continue
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			out = append(out, ev)
		}
		rt.pop()
	}
	if n.minLen >= 0 && len(out) < n.minLen {
		iss = append(iss, rt.issue(KindTooShort, v, map[string]any{"min_length": n.minLen, "actual": len(out)}))
	}
	if n.maxLen >= 0 && len(out) > n.maxLen {
		iss = append(iss, rt.issue(KindTooLong, v, map[string]any{"max_length": n.maxLen, "actual": len(out)}))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// setKey maps a validated element to a comparable dedupe key. Containers
// have no value identity and are not hashable; bytes and URLs key on their
// canonical text.
func setKey(v any) (any, bool) {
	switch t := v.(type) {
	case nil, bool, int64, float64, string, json.Number, uuid.UUID:
		return t, true
	case []byte:
		return "b\x00" + string(t), true
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return "s\x00" + s.String(), true
		}
		return nil, false
	}
}

func (n *setNode) serialize(rt *runtime, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	id, tracked, cyclic := rt.beginCycleCheck(seq)
	if cyclic {
		return nil, rt.fail(KindCircularReference, nil, nil)
	}
	defer rt.endCycleCheck(id, tracked)
	out := make([]any, len(seq))
	var iss Issues
	for i, e := range seq {
		rt.pushIndex(i)
		ev, err := n.items.serialize(rt, e)
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
}
