// Package skemacore is a schema-driven validation and serialization
// engine. A declarative schema description compiles once into an immutable
// node tree; the compiled Schema then validates/coerces arbitrary runtime
// values (native Go values through a ValueAdapter, or JSON bytes through a
// streaming decoder with ingestion limits) and serializes already-valid
// values into a native or textual encoding.
//
// Design policy:
//   - One closed node set with a uniform validate/serialize contract per
//     variant; no open-ended type hierarchies.
//   - A stable error model via Issues (location path, kind, message, ctx);
//     compile-time defects are a disjoint SchemaError family.
//   - Per-call state (mode, location stack, recursion guard, visited set)
//     is created fresh per call; compiled schemas are safe to share.
//   - Leaf-level format parsing lives under codec/, messages under i18n/,
//     JSON ingestion under internal/, and the CLI under cmd/skemacore.
//
// Typical usage:
//
//	s, err := skemacore.CompileJSON(desc)
//	v, err := s.ValidateJSON(ctx, data)
//	out, err := s.Serialize(ctx, v, skemacore.SerializeOpt{Target: skemacore.TargetTextual})
package skemacore
