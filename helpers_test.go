package skemacore_test

import (
	"testing"

	skemacore "github.com/reoring/skemacore"
)

func mustCompile(t *testing.T, desc any, opts ...skemacore.CompileOption) *skemacore.Schema {
	t.Helper()
	s, err := skemacore.Compile(desc, opts...)
	if err != nil {
		t.Fatalf("compile err: %v", err)
	}
	return s
}

func issuesOf(t *testing.T, err error) skemacore.Issues {
	t.Helper()
	if err == nil {
		t.Fatalf("expected issues, got nil error")
	}
	iss, ok := skemacore.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %T: %v", err, err)
	}
	return iss
}

// wantIssue asserts that err carries exactly one leaf with the given kind
// and location pointer.
func wantIssue(t *testing.T, err error, kind, pointer string) {
	t.Helper()
	iss := issuesOf(t, err)
	if len(iss) != 1 {
		t.Fatalf("expected exactly one issue, got %d: %v", len(iss), iss)
	}
	if iss[0].Kind != kind {
		t.Fatalf("expected kind %q, got %q (%v)", kind, iss[0].Kind, iss[0])
	}
	if got := iss[0].Loc.Pointer(); got != pointer {
		t.Fatalf("expected loc %q, got %q", pointer, got)
	}
}

// hasIssue reports whether err carries a leaf with the given kind at the
// given pointer.
func hasIssue(t *testing.T, err error, kind, pointer string) bool {
	t.Helper()
	for _, it := range issuesOf(t, err) {
		if it.Kind == kind && it.Loc.Pointer() == pointer {
			return true
		}
	}
	return false
}

func intSchema() map[string]any { return map[string]any{"type": "int"} }
func strSchema() map[string]any { return map[string]any{"type": "str"} }

func modelOf(fields ...map[string]any) map[string]any {
	fs := make([]any, len(fields))
	for i, f := range fields {
		fs[i] = f
	}
	return map[string]any{"type": "model", "fields": fs}
}

func field(name string, schema map[string]any) map[string]any {
	return map[string]any{"name": name, "schema": schema}
}
