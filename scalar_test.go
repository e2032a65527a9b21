package skemacore_test

import (
	"context"
	"testing"

	skemacore "github.com/reoring/skemacore"
)

func TestInt_StrictRejectsString(t *testing.T) {
	s := mustCompile(t, intSchema())
	ctx := context.Background()

	if _, err := s.Validate(ctx, "5"); err == nil {
		t.Fatalf("expected int_type in strict mode")
	} else {
		wantIssue(t, err, skemacore.KindIntType, "/")
	}

	v, err := s.Validate(ctx, int64(5))
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	if v != int64(5) {
		t.Fatalf("unexpected output: %#v", v)
	}
}

func TestInt_LaxLadder(t *testing.T) {
	s := mustCompile(t, intSchema())
	ctx := context.Background()
	lax := skemacore.ValidateOpt{Mode: skemacore.ModeLax}

	cases := []struct {
		in   any
		want int64
	}{
		{"5", 5},
		{" -12 ", -12},
		{5.0, 5},
		{true, 1},
		{false, 0},
	}
	for _, tc := range cases {
		v, err := s.Validate(ctx, tc.in, lax)
		if err != nil {
			t.Fatalf("lax validate %#v err: %v", tc.in, err)
		}
		if v != tc.want {
			t.Fatalf("lax validate %#v: got %#v, want %d", tc.in, v, tc.want)
		}
	}

	if _, err := s.Validate(ctx, 5.5, lax); err == nil {
		t.Fatalf("expected int_from_float for fractional input")
	} else {
		wantIssue(t, err, skemacore.KindIntFromFloat, "/")
	}
	if _, err := s.Validate(ctx, "abc", lax); err == nil {
		t.Fatalf("expected int_parsing for non-numeric text")
	} else {
		wantIssue(t, err, skemacore.KindIntParsing, "/")
	}
	// Overflowing decimal text reports a parse failure, not a panic.
	if _, err := s.Validate(ctx, "99999999999999999999", lax); err == nil {
		t.Fatalf("expected int_parsing for overflow")
	}
}

func TestInt_Bounds(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "int", "ge": 0, "lt": 10, "multiple_of": 2})
	ctx := context.Background()

	if _, err := s.Validate(ctx, int64(-2)); err == nil {
		t.Fatalf("expected greater_than_equal")
	} else {
		wantIssue(t, err, skemacore.KindGreaterThanEqual, "/")
	}
	if _, err := s.Validate(ctx, int64(10)); err == nil {
		t.Fatalf("expected less_than")
	} else {
		wantIssue(t, err, skemacore.KindLessThan, "/")
	}
	if _, err := s.Validate(ctx, int64(3)); err == nil {
		t.Fatalf("expected multiple_of")
	} else {
		wantIssue(t, err, skemacore.KindMultipleOf, "/")
	}
	if _, err := s.Validate(ctx, int64(8)); err != nil {
		t.Fatalf("validate err: %v", err)
	}
}

func TestBool_Ladder(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "bool"})
	ctx := context.Background()
	lax := skemacore.ValidateOpt{Mode: skemacore.ModeLax}

	if _, err := s.Validate(ctx, "yes"); err == nil {
		t.Fatalf("expected bool_type in strict mode")
	}
	for in, want := range map[string]bool{"yes": true, "Off": false, "1": true, " false ": false} {
		v, err := s.Validate(ctx, in, lax)
		if err != nil {
			t.Fatalf("lax %q err: %v", in, err)
		}
		if v != want {
			t.Fatalf("lax %q: got %v, want %v", in, v, want)
		}
	}
	if _, err := s.Validate(ctx, "maybe", lax); err == nil {
		t.Fatalf("expected bool_parsing")
	} else {
		wantIssue(t, err, skemacore.KindBoolParsing, "/")
	}
	if _, err := s.Validate(ctx, int64(2), lax); err == nil {
		t.Fatalf("expected bool_parsing for 2")
	}
}

func TestFloat_FiniteAndBounds(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "float", "gt": 0})
	ctx := context.Background()

	if _, err := s.Validate(ctx, int64(3)); err != nil {
		t.Fatalf("int should widen: %v", err)
	}
	if _, err := s.Validate(ctx, 0.0); err == nil {
		t.Fatalf("expected greater_than")
	} else {
		wantIssue(t, err, skemacore.KindGreaterThan, "/")
	}
	if _, err := s.Validate(ctx, "1e3", skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err != nil {
		t.Fatalf("scientific text in lax: %v", err)
	}
	inf := mustCompile(t, map[string]any{"type": "float"})
	if _, err := inf.Validate(ctx, "inf", skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err == nil {
		t.Fatalf("expected finite_number without allow_inf_nan")
	} else {
		wantIssue(t, err, skemacore.KindFiniteNumber, "/")
	}
}

func TestStr_ConstraintsAndTransforms(t *testing.T) {
	s := mustCompile(t, map[string]any{
		"type": "str", "min_length": 2, "max_length": 4,
		"strip_whitespace": true, "to_lower": true, "pattern": "^[a-z]+$",
	})
	ctx := context.Background()

	v, err := s.Validate(ctx, "  ABC ")
	if err != nil {
		t.Fatalf("validate err: %v", err)
	}
	if v != "abc" {
		t.Fatalf("expected transforms applied, got %q", v)
	}
	if _, err := s.Validate(ctx, "a"); err == nil {
		t.Fatalf("expected string_too_short")
	} else {
		wantIssue(t, err, skemacore.KindStringTooShort, "/")
	}
	if _, err := s.Validate(ctx, "abcde"); err == nil {
		t.Fatalf("expected string_too_long")
	} else {
		wantIssue(t, err, skemacore.KindStringTooLong, "/")
	}
	if _, err := s.Validate(ctx, "ab1"); err == nil {
		t.Fatalf("expected string_pattern_mismatch")
	} else {
		wantIssue(t, err, skemacore.KindStringPatternMismatch, "/")
	}
	if _, err := s.Validate(ctx, int64(5)); err == nil {
		t.Fatalf("numbers are never coerced to text")
	} else {
		wantIssue(t, err, skemacore.KindStringType, "/")
	}
}

func TestNoneAndNullable(t *testing.T) {
	ctx := context.Background()
	none := mustCompile(t, map[string]any{"type": "none"})
	if _, err := none.Validate(ctx, nil); err != nil {
		t.Fatalf("none should accept null: %v", err)
	}
	if _, err := none.Validate(ctx, int64(0)); err == nil {
		t.Fatalf("expected none_required")
	} else {
		wantIssue(t, err, skemacore.KindNoneRequired, "/")
	}

	nullable := mustCompile(t, map[string]any{"type": "nullable", "schema": intSchema()})
	if v, err := nullable.Validate(ctx, nil); err != nil || v != nil {
		t.Fatalf("nullable null: v=%v err=%v", v, err)
	}
	if v, err := nullable.Validate(ctx, int64(3)); err != nil || v != int64(3) {
		t.Fatalf("nullable int: v=%v err=%v", v, err)
	}
}

func TestLiteral(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "literal", "expected": []any{"a", "b", 1}})
	ctx := context.Background()

	if v, err := s.Validate(ctx, "a"); err != nil || v != "a" {
		t.Fatalf("literal a: v=%v err=%v", v, err)
	}
	if v, err := s.Validate(ctx, int64(1)); err != nil || v != int64(1) {
		t.Fatalf("literal 1: v=%v err=%v", v, err)
	}
	if _, err := s.Validate(ctx, "c"); err == nil {
		t.Fatalf("expected literal_error")
	} else {
		wantIssue(t, err, skemacore.KindLiteralError, "/")
	}
	// No cross-family coercion: the text "1" never matches the integer 1.
	if _, err := s.Validate(ctx, "1", skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err == nil {
		t.Fatalf("expected literal_error for cross-family input")
	}
}

func TestBytes_Ladder(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "bytes", "max_length": 3})
	ctx := context.Background()

	v, err := s.Validate(ctx, []byte("ab"))
	if err != nil {
		t.Fatalf("bytes err: %v", err)
	}
	if string(v.([]byte)) != "ab" {
		t.Fatalf("unexpected bytes: %v", v)
	}
	if _, err := s.Validate(ctx, "ab"); err == nil {
		t.Fatalf("strict native channel rejects string")
	}
	if v, err := s.Validate(ctx, "ab", skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err != nil || string(v.([]byte)) != "ab" {
		t.Fatalf("lax string->bytes: v=%v err=%v", v, err)
	}
	if _, err := s.Validate(ctx, []byte("abcd")); err == nil {
		t.Fatalf("expected bytes_too_long")
	} else {
		wantIssue(t, err, skemacore.KindBytesTooLong, "/")
	}
}

func TestNodeLevelStrictFlagOverridesCallMode(t *testing.T) {
	// strict:false on the node applies the ladder even under a strict call.
	s := mustCompile(t, map[string]any{"type": "int", "strict": false})
	v, err := s.Validate(context.Background(), "7")
	if err != nil {
		t.Fatalf("node-level lax: %v", err)
	}
	if v != int64(7) {
		t.Fatalf("unexpected output: %#v", v)
	}

	// strict:true pins the node even under a lax call.
	s2 := mustCompile(t, map[string]any{"type": "int", "strict": true})
	if _, err := s2.Validate(context.Background(), "7", skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err == nil {
		t.Fatalf("node-level strict should reject text")
	}
}
