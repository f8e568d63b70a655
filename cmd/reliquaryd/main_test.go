package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reliquary/internal/relic"
	"reliquary/internal/testsupport"
)

func TestOnceRestoresManifestNodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	testsupport.WriteFile(t, cfg.Resurrection.ManifestPath, `nodes:
  - node_id: OdysseyNoir
    relic_path: relics/odyssey.json
    glyph_signature: odyssey1
`)
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(base, "config.toml")
	testsupport.WriteFile(t, configPath, string(data))

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", configPath, "--once"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("reliquaryd --once: %v", err)
	}

	var n relic.NodeRelic
	testsupport.ReadJSON(t, filepath.Join(base, "relics", "odyssey.json"), &n)
	if !n.Resurrected() {
		t.Fatalf("expected resurrected relic, got %+v", n)
	}
	if _, err := os.Stat(cfg.Merge.ScrollPath); err != nil {
		t.Fatalf("expected merge scroll: %v", err)
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"extra"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for positional arguments")
	}
}
