package skemacore

import "context"

// Mode selects how far input coercion may go.
type Mode int

const (
	// ModeDefault defers to the schema's compiled default mode.
	ModeDefault Mode = iota
	// ModeStrict accepts only the canonical representation of each type.
	ModeStrict
	// ModeLax applies each type's documented coercion ladder.
	ModeLax
)

// Target selects the serialization encoding.
type Target int

const (
	// TargetNative preserves rich internal types (time.Time, uuid.UUID, ...).
	TargetNative Target = iota
	// TargetTextual flattens everything to numbers, strings, booleans,
	// null, sequences and string-keyed mappings.
	TargetTextual
)

// MismatchPolicy dictates how the serializer treats values whose shape
// disagrees with the schema. Serialization does not re-validate; it either
// degrades gracefully or refuses.
type MismatchPolicy int

const (
	// MismatchFallback applies a best-effort generic encoding.
	MismatchFallback MismatchPolicy = iota
	// MismatchError raises a type_unsupported issue instead.
	MismatchError
)

// ExtraBehavior controls how unknown record fields are handled.
type ExtraBehavior int

const (
	ExtraIgnore ExtraBehavior = iota // Drop unknown keys.
	ExtraForbid                      // Reject unknown keys with an error.
	ExtraAllow                       // Preserve unknown keys in the output.
)

// UnionMode selects the matching strategy for plain unions.
type UnionMode int

const (
	// UnionSmart tries a strict pass over all alternatives before any lax
	// coercion, so the alternative with the fewest coercions wins.
	UnionSmart UnionMode = iota
	// UnionLeftToRight takes the first alternative that succeeds in the
	// effective mode, in declared order.
	UnionLeftToRight
)

// DupKeyPolicy controls duplicate object keys on the JSON channel.
type DupKeyPolicy int

const (
	DupKeyError DupKeyPolicy = iota // Duplicate JSON keys are errors.
	DupKeyLast                      // Last occurrence wins.
)

// ValidateOpt bundles per-call validation options. Passed variadically;
// the last value wins.
type ValidateOpt struct {
	// Mode overrides the schema's compiled default when not ModeDefault.
	Mode Mode
	// MaxDepth overrides the compiled recursion limit when positive. On
	// the JSON channel it also bounds input nesting during decoding.
	MaxDepth int
	// OnDuplicateKey applies to the JSON channel only.
	OnDuplicateKey DupKeyPolicy
	// MaxBytes bounds JSON input size; zero means unlimited.
	MaxBytes int64
}

// SerializeOpt bundles per-call serialization options. Passed variadically;
// the last value wins.
type SerializeOpt struct {
	Target   Target
	Mismatch MismatchPolicy
	// ByAlias emits record fields under their configured alias.
	ByAlias bool
	// OmitDefaults suppresses record fields equal to their configured
	// default value.
	OmitDefaults bool
	// Include, when non-nil, restricts record output to the selected
	// fields. Exclude drops the selected fields. Nested masks address
	// nested records; masks pass through sequence and mapping nodes
	// unchanged.
	Include FieldMask
	Exclude FieldMask
	// MaxDepth overrides the compiled recursion limit when positive.
	MaxDepth int
}

// FieldMask selects record fields by name. A nil sub-mask selects (or
// excludes) the whole field; a non-empty sub-mask descends into it.
type FieldMask map[string]FieldMask

// sub returns the nested mask for a field and whether the field is listed.
func (m FieldMask) sub(name string) (FieldMask, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m[name]
	return s, ok
}

// TransformFunc is a named validation hook attached via a "transform" node.
// It runs before ("before") or after ("after") the wrapped schema.
type TransformFunc func(ctx context.Context, v any) (any, error)

// FieldSerializerFunc replaces the default encoding of one record field.
type FieldSerializerFunc func(ctx context.Context, v any, target Target) (any, error)

func pickValidateOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ValidateOpt{}
}

func pickSerializeOpt(opts []SerializeOpt) SerializeOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return SerializeOpt{}
}
