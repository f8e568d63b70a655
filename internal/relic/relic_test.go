package relic_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"reliquary/internal/relic"
	"reliquary/internal/services"
)

func TestIsValidGlyph(t *testing.T) {
	cases := []struct {
		glyph string
		want  bool
	}{
		{"", false},
		{"abc123", true},
		{"###", false},
		{"  ", false},
		{"#a#", true},
		{"𓂀🜂🜄", true},
		{"🜂🜄", false},
	}
	for _, tc := range cases {
		if got := relic.IsValidGlyph(tc.glyph); got != tc.want {
			t.Fatalf("IsValidGlyph(%q) = %v, want %v", tc.glyph, got, tc.want)
		}
	}
}

func TestNewValidatesRequiredFields(t *testing.T) {
	_, err := relic.New(relic.Fields{Event: "Awaken Stars", Theme: "", Glyph: "abc"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, services.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	for _, field := range []string{"theme", "timestamp"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("expected %q in %q", field, err.Error())
		}
	}
}

func TestNewDefaultsContributorAndUTC(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	ts := time.Date(2025, 9, 17, 12, 52, 0, 0, loc)
	r, err := relic.New(relic.Fields{
		Event:     " Oddyssey Noir ",
		Theme:     "Sonic Gate Invocation",
		Timestamp: ts,
		Glyph:     "e3f1",
		Status:    relic.StatusMerged,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Contributor != relic.DefaultContributor {
		t.Fatalf("contributor = %q", r.Contributor)
	}
	if r.Event != "Oddyssey Noir" {
		t.Fatalf("event not trimmed: %q", r.Event)
	}
	if r.Timestamp.Location() != time.UTC || !r.Timestamp.Equal(ts) {
		t.Fatalf("timestamp not normalized: %v", r.Timestamp)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := []relic.Relic{{
		Event: "a", Theme: "b", Glyph: "c", Timestamp: time.Now(),
		VaultLog: &relic.TagLog{Source: "vault", Index: 1},
	}}
	cp := relic.Clone(orig)
	cp[0].VaultLog.Index = 9
	cp[0].Event = "changed"
	if orig[0].VaultLog.Index != 1 || orig[0].Event != "a" {
		t.Fatalf("clone aliased original: %+v", orig[0])
	}
}

func TestSameContentIgnoresTags(t *testing.T) {
	ts := time.Now()
	a := relic.Relic{Event: "e", Theme: "t", Glyph: "g", Timestamp: ts, Contributor: "OMEGA"}
	b := a
	b.VaultTag = "RELIC-001"
	b.TransmissionTag = "TX-ALL-ALL-001"
	if !a.SameContent(b) {
		t.Fatal("tags should not affect content equality")
	}
	b.Glyph = "other"
	if a.SameContent(b) {
		t.Fatal("glyph change should affect content equality")
	}
}

func TestValidateAllReportsPosition(t *testing.T) {
	good := relic.Relic{Event: "e", Theme: "t", Glyph: "g", Timestamp: time.Now()}
	err := relic.ValidateAll([]relic.Relic{good, {Event: "e"}})
	if err == nil || !strings.Contains(err.Error(), "relic 2") {
		t.Fatalf("expected position in error, got %v", err)
	}
}

func TestSealPayloadIsStable(t *testing.T) {
	ts := time.Date(2025, 9, 17, 9, 52, 0, 0, time.UTC)
	got := string(relic.SealPayload("OddysseyNoir", "𓂀", ts))
	want := "OddysseyNoir|𓂀|2025-09-17T09:52:00Z"
	if got != want {
		t.Fatalf("payload = %q, want %q", got, want)
	}
}

func TestNodeRelicDecodesOffsetlessTimestampAsUTC(t *testing.T) {
	var n relic.NodeRelic
	data := `{"node":"OddysseyNoir","glyph":"abc123","timestamp":"2025-09-17T09:52:00.123456","exit_hash":"ff00"}`
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := time.Date(2025, 9, 17, 9, 52, 0, 123456000, time.UTC)
	if !n.Timestamp.Equal(want) || n.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp = %v, want %v", n.Timestamp, want)
	}
	if n.Node != "OddysseyNoir" || n.Glyph != "abc123" || n.ExitHash != "ff00" {
		t.Fatalf("other fields lost: %+v", n)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2025-09-17T09:52:00Z":          time.Date(2025, 9, 17, 9, 52, 0, 0, time.UTC),
		"2025-09-17T11:52:00+02:00":     time.Date(2025, 9, 17, 9, 52, 0, 0, time.UTC),
		"2025-09-17T09:52:00":           time.Date(2025, 9, 17, 9, 52, 0, 0, time.UTC),
		"2025-09-17 09:52:00.5":         time.Date(2025, 9, 17, 9, 52, 0, 500000000, time.UTC),
		"2025-09-17T09:52:00.123456789": time.Date(2025, 9, 17, 9, 52, 0, 123456789, time.UTC),
	}
	for in, want := range cases {
		got, err := relic.ParseTimestamp(in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := relic.ParseTimestamp("yesterday"); err == nil {
		t.Fatal("expected error for free-form timestamp")
	}
}

func TestNodeRelicMissingTimestampIsZero(t *testing.T) {
	var n relic.NodeRelic
	if err := json.Unmarshal([]byte(`{"node":"n1","glyph":"g"}`), &n); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !n.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", n.Timestamp)
	}
}
