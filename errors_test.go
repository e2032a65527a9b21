package skemacore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	skemacore "github.com/reoring/skemacore"
)

func TestIssue_MarshalOmitsUnknownOffset(t *testing.T) {
	s := mustCompile(t, modelOf(field("a", intSchema())))
	_, err := s.Validate(context.Background(), map[string]any{})
	iss := issuesOf(t, err)

	b, merr := json.Marshal(iss)
	if merr != nil {
		t.Fatalf("marshal err: %v", merr)
	}
	if strings.Contains(string(b), `"offset"`) {
		t.Fatalf("offset emitted for an in-memory issue: %s", b)
	}
	if !strings.Contains(string(b), `"kind":"missing"`) {
		t.Fatalf("unexpected payload: %s", b)
	}
}

func TestIssue_MarshalKeepsDecodeOffset(t *testing.T) {
	s := mustCompile(t, modelOf(field("a", intSchema())))
	_, err := s.ValidateJSON(context.Background(), []byte(`{"a":1,"a":2}`))
	iss := issuesOf(t, err)
	if iss[0].Kind != skemacore.KindDuplicateKey {
		t.Fatalf("unexpected kind: %s", iss[0].Kind)
	}
	if iss[0].Offset <= 0 {
		t.Fatalf("decode issue lost its offset: %d", iss[0].Offset)
	}

	b, merr := json.Marshal(iss[0])
	if merr != nil {
		t.Fatalf("marshal err: %v", merr)
	}
	if !strings.Contains(string(b), `"offset"`) {
		t.Fatalf("offset dropped from decode issue: %s", b)
	}
}
