package skemacore_test

import (
	"context"
	"reflect"
	"testing"
)

type chainLink struct {
	Label string `json:"label"`
	Next  any    `json:"next"`
}

func TestAdapter_SelfPointingStructTerminates(t *testing.T) {
	l := &chainLink{Label: "loop"}
	l.Next = l

	s := mustCompile(t, modelOf(
		field("label", strSchema()),
		field("next", map[string]any{"type": "any"}),
	))
	v, err := s.Validate(context.Background(), l)
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	out := v.(map[string]any)
	if out["label"] != "loop" {
		t.Fatalf("unexpected output: %#v", out)
	}

	// The cycle survives normalization: the nested map points back at
	// itself rather than unrolling forever.
	next, ok := out["next"].(map[string]any)
	if !ok {
		t.Fatalf("next is not a map: %#v", out["next"])
	}
	if next["label"] != "loop" {
		t.Fatalf("unexpected nested output: %#v", next)
	}
	if reflect.ValueOf(next["next"]).Pointer() != reflect.ValueOf(next).Pointer() {
		t.Fatalf("cycle was not preserved")
	}
}

func TestAdapter_SharedPointerIsNotACycle(t *testing.T) {
	type leaf struct {
		N int `json:"n"`
	}
	type pair struct {
		Left  *leaf `json:"left"`
		Right *leaf `json:"right"`
	}
	shared := &leaf{N: 7}

	s := mustCompile(t, modelOf(
		field("left", modelOf(field("n", intSchema()))),
		field("right", modelOf(field("n", intSchema()))),
	))
	v, err := s.Validate(context.Background(), pair{Left: shared, Right: shared})
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	want := map[string]any{
		"left":  map[string]any{"n": int64(7)},
		"right": map[string]any{"n": int64(7)},
	}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("unexpected output: %#v", v)
	}
}
