package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reliquary/internal/manifest"
	"reliquary/internal/resurrection"
	"reliquary/internal/services"
)

const sample = `nodes:
  - node_id: OdysseyNoir
    relic_path: relics/odyssey_exit.json
    glyph_signature: "𓂀🜂🜄"
    overlay: "<div class='neon'>𓂀🜂🜄</div>"
  - node_id: Vega
    relic_path: /var/lib/reliquary/vega.json
    glyph_signature: vega-1
    reason: decommissioned disk
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nodes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadResolvesPathsAndDefaults(t *testing.T) {
	path := writeManifest(t, sample)
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(m.Nodes))
	}
	want := filepath.Join(filepath.Dir(path), "relics", "odyssey_exit.json")
	if m.Nodes[0].RelicPath != want {
		t.Fatalf("relic path = %q, want %q", m.Nodes[0].RelicPath, want)
	}
	if m.Nodes[0].Reason != resurrection.DefaultReason {
		t.Fatalf("reason = %q", m.Nodes[0].Reason)
	}
	vega, ok := m.Lookup("Vega")
	if !ok || vega.RelicPath != "/var/lib/reliquary/vega.json" || vega.Reason != "decommissioned disk" {
		t.Fatalf("unexpected Vega entry %+v", vega)
	}
	if paths := m.RelicPaths(); len(paths) != 2 || paths[0] != want {
		t.Fatalf("unexpected relic paths %v", paths)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := manifest.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("missing manifest: %v", err)
	}
	cases := map[string]struct {
		content string
		want    error
	}{
		"malformed":      {content: "nodes: [", want: services.ErrCorruption},
		"unknown field":  {content: "nodes:\n  - node_id: a\n    relic_path: a.json\n    glyph_signature: g\n    colour: red\n", want: services.ErrCorruption},
		"missing glyph":  {content: "nodes:\n  - node_id: a\n    relic_path: a.json\n", want: services.ErrInvalid},
		"missing path":   {content: "nodes:\n  - node_id: a\n    glyph_signature: g\n", want: services.ErrInvalid},
		"duplicate node": {content: "nodes:\n  - {node_id: a, relic_path: a.json, glyph_signature: g}\n  - {node_id: a, relic_path: b.json, glyph_signature: g}\n", want: services.ErrInvalid},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.Load(writeManifest(t, tc.content))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
