package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	skemacore "github.com/reoring/skemacore"
	"github.com/reoring/skemacore/middleware"
)

func userSchema(t *testing.T) *skemacore.Schema {
	t.Helper()
	s, err := skemacore.Compile(map[string]any{
		"type": "model",
		"fields": []any{
			map[string]any{"name": "name", "schema": map[string]any{"type": "str", "min_length": 1}},
			map[string]any{"name": "age", "schema": map[string]any{"type": "int", "ge": 0}},
		},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return s
}

func TestDecodeRequest_OK(t *testing.T) {
	s := userSchema(t)
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"ada","age":36}`))
	v, err := middleware.DecodeRequest(s, req)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(map[string]any)
	if m["name"] != "ada" || m["age"] != int64(36) {
		t.Fatalf("unexpected value: %#v", m)
	}
}

func TestDecodeRequest_DuplicateKeyRejected(t *testing.T) {
	s := userSchema(t)
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"a","name":"b","age":1}`))
	_, err := middleware.DecodeRequest(s, req)
	iss, ok := skemacore.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Kind != skemacore.KindDuplicateKey || iss[0].Loc.Pointer() != "/name" {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestWriteIssues(t *testing.T) {
	s := userSchema(t)
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"age":-1}`))
	_, err := middleware.DecodeRequest(s, req)
	iss, ok := skemacore.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}

	rec := httptest.NewRecorder()
	if err := middleware.WriteIssues(rec, http.StatusUnprocessableEntity, iss); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var payload struct {
		Issues []struct {
			Kind string `json:"kind"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload.Issues) != 2 {
		t.Fatalf("expected leaves for the missing field and the bound, got %d", len(payload.Issues))
	}
}
