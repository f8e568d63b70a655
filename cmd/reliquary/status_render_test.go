package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"reliquary/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Archive", statusError, "corrupt", false)
	want := fmt.Sprintf("  %-*s %s", statusLabelWidth, "Archive:", "[ERROR] corrupt")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Archive", statusOK, "3 relics", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCheckLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "Data directory", Passed: true, Detail: "/data (read/write ok)"},
		{Name: "Node manifest", Detail: "/data/nodes.yaml (missing; resurrection has no nodes)"},
	}
	lines := checkLines(results, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[WARN] 1 of 2 checks need attention") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] /data (read/write ok)") {
		t.Fatalf("expected ok detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] /data/nodes.yaml") {
		t.Fatalf("expected warn detail in third line, got %q", lines[2])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestCountKind(t *testing.T) {
	if got := countKind(0, statusError); got != statusOK {
		t.Fatalf("zero count should be OK, got %v", got)
	}
	if got := countKind(2, statusWarn); got != statusWarn {
		t.Fatalf("non-zero count should keep kind, got %v", got)
	}
}
