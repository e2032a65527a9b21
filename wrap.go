package skemacore

// Wrapper nodes adjust how their inner schema executes without owning any
// shape of their own.

// nullableNode passes null through and delegates everything else.
type nullableNode struct {
	inner node
}

func (n *nullableNode) kind() string { return "nullable" }

func (n *nullableNode) validate(rt *runtime, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return n.inner.validate(rt, v)
}

func (n *nullableNode) serialize(rt *runtime, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return n.inner.serialize(rt, v)
}

// modeNode overrides the effective mode for its subtree during validation.
// Serialization has no mode, so it passes through.
type modeNode struct {
	mode  Mode
	inner node
}

func (n *modeNode) kind() string { return "mode" }

func (n *modeNode) validate(rt *runtime, v any) (any, error) {
	saved := rt.mode
	rt.mode = n.mode
	defer func() { rt.mode = saved }()
	return n.inner.validate(rt, v)
}

func (n *modeNode) serialize(rt *runtime, v any) (any, error) {
	return n.inner.serialize(rt, v)
}

// transformNode runs a named hook around validation of its inner schema.
// A before hook reshapes the raw input ahead of the inner walk; an after
// hook reshapes the validated output. Hook failures surface as a single
// transform_error leaf at the current location. Serialization passes
// through untransformed; hooks are a validation-side concern.
type transformNode struct {
	name   string
	fn     TransformFunc
	before bool
	inner  node
}

func (n *transformNode) kind() string { return "transform" }

func (n *transformNode) validate(rt *runtime, v any) (any, error) {
	if n.before {
		tv, err := n.fn(rt.ctx, v)
		if err != nil {
			return nil, rt.fail(KindTransformError, v, map[string]any{"transform": n.name, "error": err.Error()})
		}
		return n.inner.validate(rt, tv)
	}
	out, err := n.inner.validate(rt, v)
	if err != nil {
		return nil, err
	}
	tv, err := n.fn(rt.ctx, out)
	if err != nil {
		return nil, rt.fail(KindTransformError, out, map[string]any{"transform": n.name, "error": err.Error()})
	}
	return tv, nil
}

func (n *transformNode) serialize(rt *runtime, v any) (any, error) {
	return n.inner.serialize(rt, v)
}

// jsonOrNativeNode switches on the input channel during validation (JSON
// wire values versus adapter-normalized native values) and on the target
// during serialization (textual output follows the json child, native
// output the native child).
type jsonOrNativeNode struct {
	jsonChild   node
	nativeChild node
}

func (n *jsonOrNativeNode) kind() string { return "json-or-native" }

func (n *jsonOrNativeNode) validate(rt *runtime, v any) (any, error) {
	if rt.channel == inputJSON {
		return n.jsonChild.validate(rt, v)
	}
	return n.nativeChild.validate(rt, v)
}

func (n *jsonOrNativeNode) serialize(rt *runtime, v any) (any, error) {
	if rt.target == TargetTextual {
		return n.jsonChild.serialize(rt, v)
	}
	return n.nativeChild.serialize(rt, v)
}
