package skemacore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reoring/skemacore/i18n"
)

// Issue kinds (exported consts for IDE completion and type safety by convention).
const (
	KindMissing        = "missing"
	KindExtraForbidden = "extra_forbidden"
	KindNoneRequired   = "none_required"

	KindBoolType    = "bool_type"
	KindBoolParsing = "bool_parsing"

	KindIntType          = "int_type"
	KindIntParsing       = "int_parsing"
	KindIntFromFloat     = "int_from_float"
	KindGreaterThan      = "greater_than"
	KindGreaterThanEqual = "greater_than_equal"
	KindLessThan         = "less_than"
	KindLessThanEqual    = "less_than_equal"
	KindMultipleOf       = "multiple_of"

	KindFloatType    = "float_type"
	KindFloatParsing = "float_parsing"
	KindFiniteNumber = "finite_number"

	KindStringType            = "string_type"
	KindStringUnicode         = "string_unicode"
	KindStringTooShort        = "string_too_short"
	KindStringTooLong         = "string_too_long"
	KindStringPatternMismatch = "string_pattern_mismatch"

	KindBytesType     = "bytes_type"
	KindBytesTooShort = "bytes_too_short"
	KindBytesTooLong  = "bytes_too_long"

	KindLiteralError = "literal_error"

	KindDatetimeType    = "datetime_type"
	KindDatetimeParsing = "datetime_parsing"
	KindDateType        = "date_type"
	KindDateParsing     = "date_parsing"
	KindTimeType        = "time_type"
	KindTimeParsing     = "time_parsing"
	KindDurationType    = "duration_type"
	KindDurationParsing = "duration_parsing"
	KindUUIDType        = "uuid_type"
	KindUUIDParsing     = "uuid_parsing"
	KindURLType         = "url_type"
	KindURLParsing      = "url_parsing"

	KindListType           = "list_type"
	KindTupleType          = "tuple_type"
	KindSetType            = "set_type"
	KindSetItemNotHashable = "set_item_not_hashable"
	KindDictType           = "dict_type"
	KindModelType          = "model_type"
	KindTooShort           = "too_short"
	KindTooLong            = "too_long"

	KindUnionTagNotFound = "union_tag_not_found"
	KindUnionTagInvalid  = "union_tag_invalid"

	KindRecursionTooDeep   = "recursion_too_deep"
	KindDefinitionNotFound = "definition_not_found"
	KindCircularReference  = "circular_reference"
	KindTypeUnsupported    = "type_unsupported"
	KindTransformError     = "transform_error"
	KindSerializerError    = "serializer_error"

	// JSON ingestion (token-level decoding).
	KindJSONInvalid      = "json_invalid"
	KindDuplicateKey     = "duplicate_key"
	KindMaxDepthExceeded = "max_depth_exceeded"
	KindMaxBytesExceeded = "max_bytes_exceeded"
)

// Issue is a single validation or serialization failure leaf.
type Issue struct {
	// Loc reflects the traversal path from the call root to the offending
	// value. Segments are field names (string) or indexes (int).
	Loc Loc `json:"loc"`
	// Kind is one of the Kind* constants above.
	Kind    string `json:"kind"`
	Message string `json:"msg"`
	// Ctx carries structured parameters (e.g. {"min_length":1, "actual":0})
	// for i18n and observability.
	Ctx map[string]any `json:"ctx,omitempty"`
	// Input echoes the offending input value. Best-effort: nil for leaves
	// that describe an absence (e.g. missing fields).
	Input any `json:"input"`
	// Cause optionally records the underlying error.
	Cause error `json:"-"`
	// Offset is the byte offset in the input source, -1 when unknown.
	Offset int64 `json:"offset,omitempty"`
}

// MarshalJSON hides the -1 offset sentinel; omitempty alone would still
// emit it.
func (i Issue) MarshalJSON() ([]byte, error) {
	shadow := struct {
		Loc     Loc            `json:"loc"`
		Kind    string         `json:"kind"`
		Message string         `json:"msg"`
		Ctx     map[string]any `json:"ctx,omitempty"`
		Input   any            `json:"input"`
		Offset  *int64         `json:"offset,omitempty"`
	}{Loc: i.Loc, Kind: i.Kind, Message: i.Message, Ctx: i.Ctx, Input: i.Input}
	if i.Offset >= 0 {
		shadow.Offset = &i.Offset
	}
	return json.Marshal(shadow)
}

// NewIssue builds an Issue at the given location, rendering its message
// through the current i18n translator.
func NewIssue(loc Loc, kind string, input any, ctx map[string]any) Issue {
	return Issue{Loc: loc, Kind: kind, Message: i18n.T(kind, ctx), Ctx: ctx, Input: input, Offset: -1}
}

// Issues is the ordered collection of failure leaves for one call. It
// implements error; leaves keep discovery order through every rendering.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. int_type at /items/2/price
		fmt.Fprintf(b, "%s at %s", it.Kind, it.Loc.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends the leaves carried by err to dst. Non-Issues errors
// are adopted as a single leaf at the given location so no failure is ever
// silently dropped.
func AppendIssues(dst Issues, loc Loc, err error) Issues {
	if err == nil {
		return dst
	}
	if iss, ok := AsIssues(err); ok {
		return append(dst, iss...)
	}
	return append(dst, Issue{Loc: loc.clone(), Kind: KindTypeUnsupported, Message: err.Error(), Cause: err, Offset: -1})
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Schema description defects (SchemaError.Defect).
const (
	DefectBadDescription      = "bad_description"
	DefectUnknownType         = "unknown_type"
	DefectMissingField        = "missing_field"
	DefectBadConstraint       = "bad_constraint"
	DefectBadDefault          = "bad_default"
	DefectDuplicateDefinition = "duplicate_definition"
	DefectDuplicateField      = "duplicate_field"
	DefectUnknownTransform    = "unknown_transform"
	DefectUnknownSerializer   = "unknown_serializer"
	DefectEmptyUnion          = "empty_union"
)

// SchemaError reports a defect in a schema description. Compilation fails
// wholesale on the first defect; no partially compiled schema is returned.
type SchemaError struct {
	// Path is a JSON Pointer into the schema description naming the
	// offending node.
	Path string
	// Defect is one of the Defect* constants above.
	Defect  string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error at %s: %s (%s)", e.Path, e.Message, e.Defect)
}

// AsSchemaError extracts a *SchemaError from an error chain.
func AsSchemaError(err error) (*SchemaError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
