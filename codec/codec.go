// Package codec holds the leaf-level parse/format primitives for
// specialized scalar formats (temporal values, UUIDs, URLs, byte
// encodings). The engine treats these as opaque functions: parsing accepts
// the documented canonical forms only, and formatting emits exactly one
// canonical rendering, so formatted output always parses back to the same
// value.
package codec
