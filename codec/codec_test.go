package codec_test

import (
	"testing"
	"time"

	"github.com/reoring/skemacore/codec"
)

func TestDateTime_RoundTrip(t *testing.T) {
	ts, err := codec.ParseDateTime("2025-03-04T05:06:07.5+09:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// Canonical form is UTC.
	if got := codec.FormatDateTime(ts); got != "2025-03-03T20:06:07.5Z" {
		t.Fatalf("format = %q", got)
	}
	if _, err := codec.ParseDateTime("2025-03-04 05:06:07"); err == nil {
		t.Fatalf("space separator must be rejected")
	}
}

func TestDateTimeFromEpoch(t *testing.T) {
	ts, ok := codec.DateTimeFromEpoch(1_000_000_000.5)
	if !ok {
		t.Fatalf("epoch rejected")
	}
	if got := codec.FormatDateTime(ts); got != "2001-09-09T01:46:40.5Z" {
		t.Fatalf("got %q", got)
	}
}

func TestDate(t *testing.T) {
	d, err := codec.ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("leap day: %v", err)
	}
	if !codec.IsDateOnly(d) {
		t.Fatalf("parsed date carries clock fields: %v", d)
	}
	if codec.FormatDate(d) != "2024-02-29" {
		t.Fatalf("format: %q", codec.FormatDate(d))
	}
	if _, err := codec.ParseDate("2023-02-29"); err == nil {
		t.Fatalf("impossible date must be rejected")
	}
}

func TestTimeOfDay(t *testing.T) {
	tod, err := codec.ParseTimeOfDay("13:45:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !codec.IsTimeOfDay(tod) {
		t.Fatalf("parsed time carries date fields: %v", tod)
	}
	if codec.FormatTimeOfDay(tod) != "13:45:30" {
		t.Fatalf("format: %q", codec.FormatTimeOfDay(tod))
	}
	anchored := codec.NormalizeTimeOfDay(time.Date(2025, 6, 1, 13, 45, 30, 0, time.UTC))
	if !anchored.Equal(tod) {
		t.Fatalf("normalize should strip the date: %v vs %v", anchored, tod)
	}
}

func TestDuration(t *testing.T) {
	d, err := codec.ParseDuration("1h30m")
	if err != nil || d != 90*time.Minute {
		t.Fatalf("parse: %v %v", d, err)
	}
	if codec.FormatDuration(90*time.Minute) != "1h30m0s" {
		t.Fatalf("format: %q", codec.FormatDuration(90*time.Minute))
	}
	if d, ok := codec.DurationFromSeconds(1.5); !ok || d != 1500*time.Millisecond {
		t.Fatalf("from seconds: %v %v", d, ok)
	}
}

func TestUUID(t *testing.T) {
	const canonical = "6e0c0cba-52e3-4f79-9d08-5ea21a5b46c0"
	u, err := codec.ParseUUID(canonical)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if codec.FormatUUID(u) != canonical {
		t.Fatalf("format: %q", codec.FormatUUID(u))
	}
	if _, err := codec.ParseUUID("not-a-uuid"); err == nil {
		t.Fatalf("garbage must be rejected")
	}
	if _, err := codec.UUIDFromBytes(u[:]); err != nil {
		t.Fatalf("raw bytes: %v", err)
	}
	if _, err := codec.UUIDFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatalf("short byte slice must be rejected")
	}
}

func TestURL(t *testing.T) {
	u, err := codec.ParseURL("https://example.com/a?x=1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if codec.FormatURL(u) != "https://example.com/a?x=1" {
		t.Fatalf("format: %q", codec.FormatURL(u))
	}
	if _, err := codec.ParseURL("/relative/path"); err == nil {
		t.Fatalf("relative url must be rejected")
	}
}

func TestBase64(t *testing.T) {
	raw := []byte{0xff, 0x00, 0x10}
	enc := codec.EncodeBase64(raw)
	dec, err := codec.DecodeBase64(enc)
	if err != nil || string(dec) != string(raw) {
		t.Fatalf("round trip: %q %v", dec, err)
	}
}
