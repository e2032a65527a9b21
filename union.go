package skemacore

import "strings"

// unionNode validates plain unions. In left_to_right mode alternatives are
// attempted in declared order under the effective mode and the first
// success wins. In smart mode a strict pass runs over every alternative
// first, so the alternative needing the fewest coercions wins; a lax pass
// follows only when the effective mode is lax. On total failure each
// alternative's full leaf set is nested under that alternative's index,
// preserving provenance; the reported leaves come from the final executed
// pass.
type unionNode struct {
	choices []node
	mode    UnionMode
}

func (n *unionNode) kind() string { return "union" }

func (n *unionNode) validate(rt *runtime, v any) (any, error) {
	switch n.mode {
	case UnionLeftToRight:
		out, iss, ok := n.attempt(rt, v, rt.mode)
		if ok {
			return out, nil
		}
		return nil, iss
	default: // UnionSmart
		out, strictIss, ok := n.attempt(rt, v, ModeStrict)
		if ok {
			return out, nil
		}
		if rt.mode != ModeLax {
			return nil, strictIss
		}
		out, laxIss, ok := n.attempt(rt, v, ModeLax)
		if ok {
			return out, nil
		}
		return nil, laxIss
	}
}

// attempt runs one pass over the alternatives under the given mode.
func (n *unionNode) attempt(rt *runtime, v any, mode Mode) (any, Issues, bool) {
	saved := rt.mode
	rt.mode = mode
	defer func() { rt.mode = saved }()
	var iss Issues
	for i, alt := range n.choices {
		rt.pushIndex(i)
		out, err := alt.validate(rt, v)
		if err == nil {
			rt.pop()
			return out, nil, true
		}
		iss = AppendIssues(iss, rt.loc, err)
		rt.pop()
	}
	return nil, iss, false
}

// serialize tries each alternative under a forced error mismatch policy so
// the first alternative whose shape matches the value encodes it; the
// call's own policy applies only when no alternative matches.
func (n *unionNode) serialize(rt *runtime, v any) (any, error) {
	saved := rt.mismatch
	rt.mismatch = MismatchError
	for _, alt := range n.choices {
		out, err := alt.serialize(rt, v)
		if err == nil {
			rt.mismatch = saved
			return out, nil
		}
	}
	rt.mismatch = saved
	return rt.mismatchValue(n, v)
}

// taggedUnionNode validates discriminated unions. The discriminator field
// is read before anything else; a missing or unrecognized tag produces
// exactly one leaf at the discriminator's location instead of per-
// alternative failures. A recognized tag dispatches directly to its
// alternative, whose leaves nest under the tag segment.
type taggedUnionNode struct {
	discriminator string
	choices       map[string]node
	tags          []string // declared order, for diagnostics
}

func (n *taggedUnionNode) kind() string { return "tagged_union" }

func (n *taggedUnionNode) validate(rt *runtime, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, rt.fail(KindModelType, v, nil)
	}
	dv, present := m[n.discriminator]
	if !present {
		rt.pushField(n.discriminator)
		defer rt.pop()
		return nil, rt.fail(KindUnionTagNotFound, nil, map[string]any{"discriminator": n.discriminator})
	}
	tag, isStr := dv.(string)
	alt, known := n.choices[tag]
	if !isStr || !known {
		rt.pushField(n.discriminator)
		defer rt.pop()
		return nil, rt.fail(KindUnionTagInvalid, dv, map[string]any{
			"discriminator": n.discriminator,
			"tag":           tagDisplay(dv),
			"expected_tags": strings.Join(n.tags, ", "),
		})
	}
	rt.pushField(tag)
	out, err := alt.validate(rt, v)
	rt.pop()
	if err != nil {
		iss, _ := AsIssues(err)
		return nil, iss
	}
	return out, nil
}

func (n *taggedUnionNode) serialize(rt *runtime, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	tag, _ := m[n.discriminator].(string)
	alt, known := n.choices[tag]
	if !known {
		return rt.mismatchValue(n, v)
	}
	return alt.serialize(rt, v)
}

func tagDisplay(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return typeName(v)
}
