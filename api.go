package skemacore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/skemacore/internal/engine"
)

// Schema is a compiled, immutable schema. Compilation happens once; the
// resulting tree and definitions registry are read-only and safe to share
// across any number of concurrent Validate/Serialize calls, each of which
// owns fresh per-call state.
type Schema struct {
	root     node
	defs     *definitions
	mode     Mode
	maxDepth int
	adapter  ValueAdapter
}

const defaultMaxDepth = 255

// CompileOption adjusts compile-time state.
type CompileOption func(*compileConfig)

type compileConfig struct {
	mode        Mode
	maxDepth    int
	adapter     ValueAdapter
	transforms  map[string]TransformFunc
	serializers map[string]FieldSerializerFunc
}

// WithMode sets the schema's default validation mode (strict when unset).
func WithMode(m Mode) CompileOption {
	return func(c *compileConfig) { c.mode = m }
}

// WithMaxDepth sets the default recursion-depth limit for reference hops.
func WithMaxDepth(n int) CompileOption {
	return func(c *compileConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithTransform registers a named hook usable from "transform" nodes.
func WithTransform(name string, fn TransformFunc) CompileOption {
	return func(c *compileConfig) { c.transforms[name] = fn }
}

// WithFieldSerializer registers a named per-field serializer override
// usable from model field descriptions.
func WithFieldSerializer(name string, fn FieldSerializerFunc) CompileOption {
	return func(c *compileConfig) { c.serializers[name] = fn }
}

// WithAdapter replaces the host-value adapter used by Validate.
func WithAdapter(a ValueAdapter) CompileOption {
	return func(c *compileConfig) {
		if a != nil {
			c.adapter = a
		}
	}
}

// Compile turns a schema description into an executable Schema. Any defect
// aborts the whole compilation with a *SchemaError naming the offending
// node; no partially compiled schema is ever returned.
func Compile(desc any, opts ...CompileOption) (*Schema, error) {
	cfg := compileConfig{
		mode:        ModeStrict,
		maxDepth:    defaultMaxDepth,
		adapter:     NativeAdapter{},
		transforms:  map[string]TransformFunc{},
		serializers: map[string]FieldSerializerFunc{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mode == ModeDefault {
		cfg.mode = ModeStrict
	}
	c := &compiler{
		defs:        newDefinitions(),
		transforms:  cfg.transforms,
		serializers: cfg.serializers,
	}
	root, err := c.compileRoot(desc)
	if err != nil {
		return nil, err
	}
	return &Schema{
		root:     root,
		defs:     c.defs,
		mode:     cfg.mode,
		maxDepth: cfg.maxDepth,
		adapter:  cfg.adapter,
	}, nil
}

// CompileJSON compiles a schema description held as JSON bytes.
func CompileJSON(data []byte, opts ...CompileOption) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var desc any
	if err := dec.Decode(&desc); err != nil {
		return nil, &SchemaError{Path: "/", Defect: DefectBadDescription, Message: "invalid JSON: " + err.Error()}
	}
	return Compile(desc, opts...)
}

// CompileYAML compiles a schema description held as YAML bytes.
func CompileYAML(data []byte, opts ...CompileOption) (*Schema, error) {
	var desc any
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, &SchemaError{Path: "/", Defect: DefectBadDescription, Message: "invalid YAML: " + err.Error()}
	}
	return Compile(desc, opts...)
}

// MustCompile is Compile that panics on defect, for schemas declared as
// package-level literals.
func MustCompile(desc any, opts ...CompileOption) *Schema {
	s, err := Compile(desc, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// newRuntime builds the fresh per-call state.
func (s *Schema) newRuntime(ctx context.Context, channel inputChannel) *runtime {
	if ctx == nil {
		ctx = context.Background()
	}
	return &runtime{
		ctx:      ctx,
		mode:     s.mode,
		channel:  channel,
		defs:     s.defs,
		maxDepth: s.maxDepth,
	}
}

// Validate checks value against the schema and returns the coerced,
// newly constructed output. value enters through the ValueAdapter, so any
// Go value the adapter understands is accepted. Failures are returned as
// Issues with exact locations; the error is never anything else.
func (s *Schema) Validate(ctx context.Context, value any, opts ...ValidateOpt) (any, error) {
	opt := pickValidateOpt(opts)
	rt := s.newRuntime(ctx, inputNative)
	if opt.Mode != ModeDefault {
		rt.mode = opt.Mode
	}
	if opt.MaxDepth > 0 {
		rt.maxDepth = opt.MaxDepth
	}
	internal, err := s.adapter.Read(value)
	if err != nil {
		return nil, Issues{rt.issue(KindTypeUnsupported, value, map[string]any{"actual": typeName(value), "error": err.Error()})}
	}
	return s.root.validate(rt, internal)
}

// ValidateJSON decodes data through the streaming token source, applying
// the ingestion limits, then validates the decoded value on the JSON
// channel (where strings are the canonical wire form of the rich scalar
// types).
func (s *Schema) ValidateJSON(ctx context.Context, data []byte, opts ...ValidateOpt) (any, error) {
	return s.ValidateJSONReader(ctx, bytes.NewReader(data), opts...)
}

// ValidateJSONReader is ValidateJSON over a stream.
func (s *Schema) ValidateJSONReader(ctx context.Context, r io.Reader, opts ...ValidateOpt) (any, error) {
	opt := pickValidateOpt(opts)
	rt := s.newRuntime(ctx, inputJSON)
	if opt.Mode != ModeDefault {
		rt.mode = opt.Mode
	}
	if opt.MaxDepth > 0 {
		rt.maxDepth = opt.MaxDepth
	}
	enforce := engine.EnforceOptions{
		MaxDepth: rt.maxDepth,
		MaxBytes: opt.MaxBytes,
	}
	if opt.OnDuplicateKey == DupKeyLast {
		enforce.OnDuplicate = engine.DupLast
	}
	src := engine.WrapWithEnforcement(engine.NewReader(r), enforce)
	value, err := engine.DecodeValue(src)
	if err != nil {
		return nil, issuesFromDecode(err)
	}
	return s.root.validate(rt, value)
}

// issuesFromDecode adopts token-level decode failures into the structured
// error model.
func issuesFromDecode(err error) Issues {
	var viol *engine.Violation
	if errors.As(err, &viol) {
		var kind string
		var ctx map[string]any
		switch viol.Code {
		case "duplicate_key":
			kind = KindDuplicateKey
			ctx = map[string]any{"key": viol.Key}
		case "max_depth_exceeded":
			kind = KindMaxDepthExceeded
		default:
			kind = KindMaxBytesExceeded
		}
		iss := NewIssue(locFromPointer(viol.Path), kind, nil, ctx)
		iss.Offset = viol.Offset
		return Issues{iss}
	}
	return Issues{NewIssue(nil, KindJSONInvalid, nil, map[string]any{"error": err.Error()})}
}

// Serialize walks an already-valid internal value toward the selected
// target encoding. It does not re-validate; shape disagreements follow the
// configured mismatch policy, and cyclic runtime values are reported as
// circular_reference instead of recursing without bound.
func (s *Schema) Serialize(ctx context.Context, value any, opts ...SerializeOpt) (any, error) {
	opt := pickSerializeOpt(opts)
	rt := s.newRuntime(ctx, inputNative)
	rt.target = opt.Target
	rt.mismatch = opt.Mismatch
	rt.byAlias = opt.ByAlias
	rt.omitDefaults = opt.OmitDefaults
	rt.include = opt.Include
	rt.exclude = opt.Exclude
	if opt.MaxDepth > 0 {
		rt.maxDepth = opt.MaxDepth
	}
	return s.root.serialize(rt, value)
}

// SerializeJSON serializes under the textual target and marshals the
// result to JSON bytes.
func (s *Schema) SerializeJSON(ctx context.Context, value any, opts ...SerializeOpt) ([]byte, error) {
	opt := pickSerializeOpt(opts)
	opt.Target = TargetTextual
	out, err := s.Serialize(ctx, value, opt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// Construct hands serialized parts back to the host boundary through the
// compiled adapter.
func (s *Schema) Construct(shape string, parts any) (any, error) {
	return s.adapter.Construct(shape, parts)
}
