package skemacore

import (
	"context"
	"reflect"

	"github.com/reoring/skemacore/i18n"
)

// inputChannel records which boundary a value entered through. The JSON
// channel carries information the native one cannot (e.g. a string is the
// canonical wire form of datetimes), so a few strict ladders differ.
type inputChannel int

const (
	inputNative inputChannel = iota
	inputJSON
)

// runtime is the per-call state threaded through every node: effective
// mode, the location stack, the recursion-depth guard and, on the
// serialization side, the visited-identity set plus field policy. A runtime
// is created fresh per top-level call and never shared.
type runtime struct {
	ctx     context.Context
	mode    Mode
	channel inputChannel
	defs    *definitions

	loc      Loc
	depth    int
	maxDepth int

	// Serialization state.
	target       Target
	mismatch     MismatchPolicy
	byAlias      bool
	omitDefaults bool
	include      FieldMask
	exclude      FieldMask
	visited      map[uintptr]struct{}
}

func (rt *runtime) pushField(name string) { rt.loc = append(rt.loc, name) }
func (rt *runtime) pushIndex(i int)       { rt.loc = append(rt.loc, i) }
func (rt *runtime) pop()                  { rt.loc = rt.loc[:len(rt.loc)-1] }

// issue builds an Issue at the current location.
func (rt *runtime) issue(kind string, input any, ctx map[string]any) Issue {
	return Issue{Loc: rt.loc.clone(), Kind: kind, Message: i18n.T(kind, ctx), Ctx: ctx, Input: input, Offset: -1}
}

// fail wraps a single issue at the current location into an error result.
func (rt *runtime) fail(kind string, input any, ctx map[string]any) error {
	return Issues{rt.issue(kind, input, ctx)}
}

// lax reports whether the node-effective mode is lax. A node-level strict
// flag takes precedence over the call mode.
func (rt *runtime) lax(strict *bool) bool {
	if strict != nil {
		return !*strict
	}
	return rt.mode == ModeLax
}

// enterRef acquires one recursion slot for a reference hop. The matching
// leaveRef must run on every exit path.
func (rt *runtime) enterRef() bool {
	if rt.depth >= rt.maxDepth {
		return false
	}
	rt.depth++
	return true
}

func (rt *runtime) leaveRef() { rt.depth-- }

// beginCycleCheck registers v's identity on the active traversal path.
// cyclic is true when the identity is already on the path. Identities are
// tracked for maps, slices and pointers only; scalars cannot cycle.
func (rt *runtime) beginCycleCheck(v any) (id uintptr, tracked, cyclic bool) {
	id, tracked = identityOf(v)
	if !tracked {
		return 0, false, false
	}
	if rt.visited == nil {
		rt.visited = make(map[uintptr]struct{}, 8)
	}
	if _, seen := rt.visited[id]; seen {
		return id, true, true
	}
	rt.visited[id] = struct{}{}
	return id, true, false
}

// endCycleCheck releases the identity when the frame exits.
func (rt *runtime) endCycleCheck(id uintptr, tracked bool) {
	if tracked {
		delete(rt.visited, id)
	}
}

func identityOf(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.UnsafePointer:
		if rv.IsNil() {
			return 0, false
		}
		if rv.Kind() == reflect.Slice && rv.Len() == 0 {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}
