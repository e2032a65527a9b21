package skemacore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	skemacore "github.com/reoring/skemacore"
)

func TestDatetime_Channels(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "datetime"})
	ctx := context.Background()

	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if v, err := s.Validate(ctx, want); err != nil || !v.(time.Time).Equal(want) {
		t.Fatalf("native time.Time: v=%v err=%v", v, err)
	}

	// Strings are the wire form on the JSON channel, accepted strictly.
	v, err := s.ValidateJSON(ctx, []byte(`"2025-01-02T03:04:05Z"`))
	if err != nil {
		t.Fatalf("json string err: %v", err)
	}
	if !v.(time.Time).Equal(want) {
		t.Fatalf("unexpected time: %v", v)
	}

	// On the native channel a string needs lax mode.
	if _, err := s.Validate(ctx, "2025-01-02T03:04:05Z"); err == nil {
		t.Fatalf("expected datetime_type on strict native channel")
	}
	if _, err := s.Validate(ctx, "2025-01-02T03:04:05Z", skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err != nil {
		t.Fatalf("lax native string err: %v", err)
	}

	// Epoch seconds are lax only.
	if _, err := s.ValidateJSON(ctx, []byte(`1735786800`)); err == nil {
		t.Fatalf("expected datetime_type for strict epoch input")
	}
	v, err = s.ValidateJSON(ctx, []byte(`1735786800`), skemacore.ValidateOpt{Mode: skemacore.ModeLax})
	if err != nil {
		t.Fatalf("lax epoch err: %v", err)
	}
	if v.(time.Time).Unix() != 1735786800 {
		t.Fatalf("unexpected epoch time: %v", v)
	}

	if _, err := s.ValidateJSON(ctx, []byte(`"not a time"`)); err == nil {
		t.Fatalf("expected datetime_parsing")
	} else {
		wantIssue(t, err, skemacore.KindDatetimeParsing, "/")
	}
}

func TestDatetime_Bounds(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "datetime", "gt": "2025-01-01T00:00:00Z"})
	ctx := context.Background()
	if _, err := s.ValidateJSON(ctx, []byte(`"2024-12-31T23:59:59Z"`)); err == nil {
		t.Fatalf("expected greater_than for timestamp below bound")
	} else {
		wantIssue(t, err, skemacore.KindGreaterThan, "/")
	}
	if _, err := s.ValidateJSON(ctx, []byte(`"2025-06-01T00:00:00Z"`)); err != nil {
		t.Fatalf("validate err: %v", err)
	}
}

func TestDate(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "date"})
	ctx := context.Background()

	v, err := s.ValidateJSON(ctx, []byte(`"2025-06-15"`))
	if err != nil {
		t.Fatalf("date err: %v", err)
	}
	got := v.(time.Time)
	if got.Year() != 2025 || got.Month() != time.June || got.Day() != 15 {
		t.Fatalf("unexpected date: %v", got)
	}

	// A datetime with a clock component is not a date, even lax.
	withClock := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	if _, err := s.Validate(ctx, withClock, skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err == nil {
		t.Fatalf("expected date_parsing for datetime with clock")
	} else {
		wantIssue(t, err, skemacore.KindDateParsing, "/")
	}

	if _, err := s.ValidateJSON(ctx, []byte(`"15/06/2025"`)); err == nil {
		t.Fatalf("expected date_parsing")
	}
}

func TestTimeOfDay(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "time"})
	ctx := context.Background()

	v, err := s.ValidateJSON(ctx, []byte(`"13:45:30"`))
	if err != nil {
		t.Fatalf("time err: %v", err)
	}
	h, m, sec := v.(time.Time).Clock()
	if h != 13 || m != 45 || sec != 30 {
		t.Fatalf("unexpected clock: %v", v)
	}

	// Lax keeps only the clock of a full datetime.
	full := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)
	v, err = s.Validate(ctx, full, skemacore.ValidateOpt{Mode: skemacore.ModeLax})
	if err != nil {
		t.Fatalf("lax datetime err: %v", err)
	}
	if h, m, _ := v.(time.Time).Clock(); h != 8 || m != 30 {
		t.Fatalf("unexpected normalized clock: %v", v)
	}
}

func TestDuration(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "duration"})
	ctx := context.Background()

	v, err := s.ValidateJSON(ctx, []byte(`"1h30m"`))
	if err != nil {
		t.Fatalf("duration err: %v", err)
	}
	if v != 90*time.Minute {
		t.Fatalf("unexpected duration: %v", v)
	}
	if _, err := s.ValidateJSON(ctx, []byte(`90`)); err == nil {
		t.Fatalf("numeric seconds need lax mode")
	}
	v, err = s.ValidateJSON(ctx, []byte(`90`), skemacore.ValidateOpt{Mode: skemacore.ModeLax})
	if err != nil {
		t.Fatalf("lax seconds err: %v", err)
	}
	if v != 90*time.Second {
		t.Fatalf("unexpected duration: %v", v)
	}
}

func TestUUID(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "uuid"})
	ctx := context.Background()

	const canonical = "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	v, err := s.ValidateJSON(ctx, []byte(`"`+canonical+`"`))
	if err != nil {
		t.Fatalf("uuid err: %v", err)
	}
	u := v.(uuid.UUID)
	if u.String() != canonical {
		t.Fatalf("unexpected uuid: %v", u)
	}
	if v, err := s.Validate(ctx, u); err != nil || v != u {
		t.Fatalf("native uuid: v=%v err=%v", v, err)
	}
	if _, err := s.ValidateJSON(ctx, []byte(`"nope"`)); err == nil {
		t.Fatalf("expected uuid_parsing")
	} else {
		wantIssue(t, err, skemacore.KindUUIDParsing, "/")
	}
	// Raw 16-byte form is lax only.
	raw := make([]byte, 16)
	copy(raw, u[:])
	if _, err := s.Validate(ctx, raw); err == nil {
		t.Fatalf("raw bytes need lax mode")
	}
	if _, err := s.Validate(ctx, raw, skemacore.ValidateOpt{Mode: skemacore.ModeLax}); err != nil {
		t.Fatalf("lax raw bytes err: %v", err)
	}
}

func TestURL(t *testing.T) {
	s := mustCompile(t, map[string]any{"type": "url"})
	ctx := context.Background()

	v, err := s.ValidateJSON(ctx, []byte(`"https://example.com/a?b=1"`))
	if err != nil {
		t.Fatalf("url err: %v", err)
	}
	if got := v.(interface{ String() string }).String(); got != "https://example.com/a?b=1" {
		t.Fatalf("unexpected url: %v", got)
	}
	if _, err := s.ValidateJSON(ctx, []byte(`"/relative/path"`)); err == nil {
		t.Fatalf("expected url_parsing for relative reference")
	} else {
		wantIssue(t, err, skemacore.KindURLParsing, "/")
	}
}
