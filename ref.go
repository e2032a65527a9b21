package skemacore

// refNode is the indirection a definition-ref compiles to. It carries only
// the id; the target is looked up in the registry at execution time, which
// is what permits forward and circular definitions. Every hop through a
// reference acquires one recursion slot and releases it on every exit
// path; exhausting the configured maximum yields a single
// recursion_too_deep leaf instead of a stack fault.
type refNode struct {
	id string
}

func (n *refNode) kind() string { return "definition-ref" }

func (n *refNode) validate(rt *runtime, v any) (any, error) {
	target, ok := rt.defs.resolve(n.id)
	if !ok {
		return nil, rt.fail(KindDefinitionNotFound, v, map[string]any{"ref": n.id})
	}
	if !rt.enterRef() {
		return nil, rt.fail(KindRecursionTooDeep, v, map[string]any{"max_depth": rt.maxDepth})
	}
	defer rt.leaveRef()
	return target.validate(rt, v)
}

func (n *refNode) serialize(rt *runtime, v any) (any, error) {
	target, ok := rt.defs.resolve(n.id)
	if !ok {
		return nil, rt.fail(KindDefinitionNotFound, v, map[string]any{"ref": n.id})
	}
	if !rt.enterRef() {
		return nil, rt.fail(KindRecursionTooDeep, v, map[string]any{"max_depth": rt.maxDepth})
	}
	defer rt.leaveRef()
	return target.serialize(rt, v)
}
