package exitseal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"reliquary/internal/exitseal"
	"reliquary/internal/fileutil"
	"reliquary/internal/fingerprint"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

func fixedClock() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC) }

func TestSealComputesSha3ExitHash(t *testing.T) {
	s := exitseal.New(nil, fixedClock, nil)
	n, err := s.Seal("nova", "a1b2", "<div/>")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	want := fingerprint.MustLookup(fingerprint.SHA3_256).Sum([]byte("nova|a1b2|2026-01-02T03:04:05.000000006Z"))
	if n.ExitHash != want {
		t.Fatalf("exit hash = %s, want %s", n.ExitHash, want)
	}
	if ok, err := s.Verify(n); !ok || err != nil {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
}

func TestSealRejectsBadInput(t *testing.T) {
	s := exitseal.New(nil, fixedClock, nil)
	if _, err := s.Seal("", "abc", ""); !errors.Is(err, services.ErrInvalid) {
		t.Fatalf("empty node: %v", err)
	}
	if _, err := s.Seal("nova", "---", ""); !errors.Is(err, services.ErrIntegrity) {
		t.Fatalf("invalid glyph: %v", err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	s := exitseal.New(nil, fixedClock, nil)
	n, _ := s.Seal("nova", "a1b2", "")
	n.Glyph = "ffff"
	if ok, err := s.Verify(n); ok || !errors.Is(err, services.ErrIntegrity) {
		t.Fatalf("expected integrity failure, got %v %v", ok, err)
	}
	n.ExitHash = relic.ResurrectedSeal
	if ok, err := s.Verify(n); ok || err != nil {
		t.Fatalf("resurrected relic should be unverifiable without error, got %v %v", ok, err)
	}
}

func TestWriteThenRead(t *testing.T) {
	s := exitseal.New(fingerprint.MustLookup(fingerprint.BLAKE3), fixedClock, nil)
	n, _ := s.Seal("orion", "glyph9", "overlay")
	path := filepath.Join(t.TempDir(), "nodes", "orion.json")
	if err := s.Write(context.Background(), path, n); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, state, err := exitseal.Read(path)
	if err != nil || state != fileutil.Intact {
		t.Fatalf("Read: %v %v", state, err)
	}
	if got.Node != n.Node || got.Glyph != n.Glyph || got.ExitHash != n.ExitHash ||
		got.Overlay != n.Overlay || !got.Timestamp.Equal(n.Timestamp) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, n)
	}
	if _, state, _ := exitseal.Read(filepath.Join(t.TempDir(), "missing.json")); state != fileutil.Absent {
		t.Fatalf("expected Absent, got %v", state)
	}
}
