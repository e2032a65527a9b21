package skemacore_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	skemacore "github.com/reoring/skemacore"
)

func TestValidateJSON_ChannelCoercion(t *testing.T) {
	s := mustCompile(t, modelOf(field("n", intSchema()), field("id", map[string]any{"type": "uuid"})))
	out, err := s.ValidateJSON(context.Background(),
		[]byte(`{"n": 42, "id": "6e0c0cba-52e3-4f79-9d08-5ea21a5b46c0"}`))
	if err != nil {
		t.Fatalf("validate json: %v", err)
	}
	m := out.(map[string]any)
	if m["n"] != int64(42) {
		t.Fatalf("number not narrowed to int64: %T %v", m["n"], m["n"])
	}
}

func TestValidateJSON_DuplicateKey(t *testing.T) {
	s := mustCompile(t, modelOf(field("a", intSchema())))
	ctx := context.Background()

	_, err := s.ValidateJSON(ctx, []byte(`{"a": 1, "a": 2}`))
	wantIssue(t, err, skemacore.KindDuplicateKey, "/a")

	out, err := s.ValidateJSON(ctx, []byte(`{"a": 1, "a": 2}`),
		skemacore.ValidateOpt{OnDuplicateKey: skemacore.DupKeyLast})
	if err != nil {
		t.Fatalf("last-wins policy: %v", err)
	}
	if out.(map[string]any)["a"] != int64(2) {
		t.Fatalf("expected last occurrence, got %v", out)
	}
}

func TestValidateJSON_DepthAndByteLimits(t *testing.T) {
	ctx := context.Background()

	deep := mustCompile(t, map[string]any{"type": "any"})
	_, err := deep.ValidateJSON(ctx, []byte(`[[[[1]]]]`), skemacore.ValidateOpt{MaxDepth: 2})
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Kind != skemacore.KindMaxDepthExceeded {
		t.Fatalf("expected max_depth_exceeded, got %v", err)
	}

	_, err = deep.ValidateJSON(ctx, []byte(`{"k": "`+strings.Repeat("x", 100)+`"}`),
		skemacore.ValidateOpt{MaxBytes: 16})
	iss = issuesOf(t, err)
	if len(iss) != 1 || iss[0].Kind != skemacore.KindMaxBytesExceeded {
		t.Fatalf("expected max_bytes_exceeded, got %v", err)
	}
}

func TestValidateJSON_Malformed(t *testing.T) {
	s := mustCompile(t, intSchema())
	_, err := s.ValidateJSON(context.Background(), []byte(`{"unclosed": `))
	iss := issuesOf(t, err)
	if len(iss) != 1 || iss[0].Kind != skemacore.KindJSONInvalid {
		t.Fatalf("expected json_invalid, got %v", err)
	}
}

func TestSchema_ConcurrentUse(t *testing.T) {
	s := mustCompile(t, modelOf(
		field("name", strSchema()),
		field("n", intSchema()),
	), skemacore.WithMode(skemacore.ModeLax))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.Validate(ctx, map[string]any{"name": "w", "n": "7"})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			if v.(map[string]any)["n"] != int64(7) {
				t.Errorf("worker %d: got %#v", i, v)
			}
			if _, err := s.Serialize(ctx, v); err != nil {
				t.Errorf("worker %d serialize: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestIssues_ErrorSummary(t *testing.T) {
	s := mustCompile(t, modelOf(
		field("a", intSchema()),
		field("b", intSchema()),
		field("c", intSchema()),
		field("d", intSchema()),
	))
	_, err := s.Validate(context.Background(), map[string]any{})
	if err == nil {
		t.Fatalf("expected failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "missing at /a") {
		t.Fatalf("summary lacks first leaf: %q", msg)
	}
	if !strings.Contains(msg, "(total 4)") {
		t.Fatalf("summary lacks total: %q", msg)
	}
}

func TestWithTransform_BeforeAndAfter(t *testing.T) {
	trim := func(ctx context.Context, v any) (any, error) {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return v, nil
	}
	double := func(ctx context.Context, v any) (any, error) {
		return v.(int64) * 2, nil
	}
	reject := func(ctx context.Context, v any) (any, error) {
		return nil, errors.New("no")
	}

	before := mustCompile(t, map[string]any{
		"type": "transform", "transform": "trim", "schema": strSchema(),
	}, skemacore.WithTransform("trim", trim))
	v, err := before.Validate(context.Background(), "  hi  ")
	if err != nil || v != "hi" {
		t.Fatalf("before hook: v=%v err=%v", v, err)
	}

	after := mustCompile(t, map[string]any{
		"type": "transform", "transform": "double", "when": "after", "schema": intSchema(),
	}, skemacore.WithTransform("double", double))
	v, err = after.Validate(context.Background(), int64(21))
	if err != nil || v != int64(42) {
		t.Fatalf("after hook: v=%v err=%v", v, err)
	}

	failing := mustCompile(t, modelOf(field("x", map[string]any{
		"type": "transform", "transform": "reject", "schema": strSchema(),
	})), skemacore.WithTransform("reject", reject))
	_, err = failing.Validate(context.Background(), map[string]any{"x": "v"})
	wantIssue(t, err, skemacore.KindTransformError, "/x")
}

func TestJSONOrNative_Switches(t *testing.T) {
	s := mustCompile(t, map[string]any{
		"type":          "json-or-native",
		"json_schema":   strSchema(),
		"native_schema": intSchema(),
	})
	ctx := context.Background()

	if v, err := s.Validate(ctx, int64(5)); err != nil || v != int64(5) {
		t.Fatalf("native channel: v=%v err=%v", v, err)
	}
	if v, err := s.ValidateJSON(ctx, []byte(`"five"`)); err != nil || v != "five" {
		t.Fatalf("json channel: v=%v err=%v", v, err)
	}
	if _, err := s.Validate(ctx, "five"); err == nil {
		t.Fatalf("native channel should use the native child")
	}
}

func TestRoundTrip_NativeSerializeIsFixedPoint(t *testing.T) {
	s := mustCompile(t, modelOf(
		field("id", map[string]any{"type": "uuid"}),
		field("name", strSchema()),
		field("tags", map[string]any{"type": "list", "items_schema": strSchema()}),
		map[string]any{"name": "score", "schema": map[string]any{"type": "float"}, "default": 1.5},
	))
	ctx := context.Background()
	first, err := s.ValidateJSON(ctx, []byte(`{
		"id": "6e0c0cba-52e3-4f79-9d08-5ea21a5b46c0",
		"name": "thing",
		"tags": ["a", "b"]
	}`))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	out, err := s.Serialize(ctx, first)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	second, err := s.Validate(ctx, out)
	if err != nil {
		t.Fatalf("revalidate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("round trip diverged:\n first: %#v\nsecond: %#v", first, second)
	}
}
