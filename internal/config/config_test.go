package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reliquary/internal/config"
	"reliquary/internal/services"
)

func TestLoadDefaultsExpandAgainstDataDir(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("RELIQUARY_VAULT_KEY_PATH", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "reliquary", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}

	dataDir := filepath.Join(tempHome, ".local", "share", "reliquary")
	checks := map[string][2]string{
		"data_dir":    {cfg.Paths.DataDir, dataDir},
		"archive":     {cfg.Archive.Path, filepath.Join(dataDir, "archive.json")},
		"vault":       {cfg.Vault.VaultPath, filepath.Join(dataDir, "vault", "archive.vault")},
		"vault_index": {cfg.Vault.IndexPath, filepath.Join(dataDir, "vault", "vault_index.json")},
		"key":         {cfg.Vault.KeyPath, filepath.Join(tempHome, ".config", "reliquary", "vault.key")},
		"share_dir":   {cfg.Sharing.ShareDir, filepath.Join(dataDir, "transmissions")},
		"ledger":      {cfg.Sharing.LedgerPath, filepath.Join(dataDir, "transmission_ledger.json")},
		"scroll":      {cfg.Merge.ScrollPath, filepath.Join(dataDir, "merged_scroll.json")},
		"res_log":     {cfg.Resurrection.LogPath, filepath.Join(dataDir, "resurrection_log.json")},
		"lock":        {cfg.Daemon.LockPath, filepath.Join(dataDir, "reliquaryd.lock")},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s = %q, want %q", name, pair[0], pair[1])
		}
	}
	if cfg.Archive.Backend != config.BackendJSON {
		t.Fatalf("backend = %q", cfg.Archive.Backend)
	}
	if cfg.Vault.Cipher != config.CipherXChaCha {
		t.Fatalf("cipher = %q", cfg.Vault.Cipher)
	}
	if cfg.Fingerprint.Glyph != "sha256" || cfg.Fingerprint.Seal != "sha3-256" {
		t.Fatalf("fingerprints = %q/%q", cfg.Fingerprint.Glyph, cfg.Fingerprint.Seal)
	}
	if cfg.Merge.DefaultContributor != "Unknown" {
		t.Fatalf("default contributor = %q", cfg.Merge.DefaultContributor)
	}
}

func TestLoadCustomPathSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RELIQUARY_VAULT_KEY_PATH", "")
	path := filepath.Join(dir, "reliquary.toml")
	body := `
[paths]
data_dir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"

[archive]
backend = "SQLite"

[fingerprint]
glyph = "blake3"

[vault]
cipher = "age"

[merge]
sources = ["nodes/nova.json", "/abs/orion.json"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Archive.Backend != config.BackendSQLite {
		t.Fatalf("backend = %q", cfg.Archive.Backend)
	}
	if want := filepath.Join(dir, "data", "archive.db"); cfg.Archive.Path != want {
		t.Fatalf("archive path = %q, want %q", cfg.Archive.Path, want)
	}
	if cfg.Fingerprint.Glyph != "blake3" || cfg.Vault.Cipher != config.CipherAge {
		t.Fatalf("unexpected glyph/cipher %q/%q", cfg.Fingerprint.Glyph, cfg.Vault.Cipher)
	}
	if len(cfg.Merge.Sources) != 2 || cfg.Merge.Sources[0] != filepath.Join(dir, "data", "nodes", "nova.json") {
		t.Fatalf("unexpected sources %v", cfg.Merge.Sources)
	}
	if cfg.Merge.Sources[1] != filepath.Clean("/abs/orion.json") {
		t.Fatalf("absolute source rewritten: %q", cfg.Merge.Sources[1])
	}
}

func TestVaultKeyPathEnvOverride(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "keys", "vault.key")
	t.Setenv("RELIQUARY_VAULT_KEY_PATH", keyPath)

	cfg, _, _, err := config.Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Vault.KeyPath != keyPath {
		t.Fatalf("key path = %q, want %q", cfg.Vault.KeyPath, keyPath)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[archive\nbackend ="), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"backend", func(c *config.Config) { c.Archive.Backend = "postgres" }},
		{"glyph", func(c *config.Config) { c.Fingerprint.Glyph = "md5" }},
		{"seal", func(c *config.Config) { c.Fingerprint.Seal = "crc32" }},
		{"cipher", func(c *config.Config) { c.Vault.Cipher = "rot13" }},
		{"interval", func(c *config.Config) { c.Daemon.IntervalSeconds = 0 }},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"vault paths", func(c *config.Config) { c.Vault.IndexPath = c.Vault.VaultPath }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Archive.Path = "/tmp/archive.json"
			cfg.Vault.VaultPath = "/tmp/a.vault"
			cfg.Vault.IndexPath = "/tmp/a.json"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesParents(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Sharing.ShareDir = filepath.Join(dir, "share")
	cfg.Vault.VaultPath = filepath.Join(dir, "vault", "archive.vault")
	cfg.Vault.KeyPath = filepath.Join(dir, "keys", "vault.key")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{"data", "logs", "share", "vault", "keys"} {
		if info, err := os.Stat(filepath.Join(dir, p)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", p, err)
		}
	}
}

func TestCreateSampleDecodesAndLoads(t *testing.T) {
	t.Setenv("RELIQUARY_VAULT_KEY_PATH", "")
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Vault.Cipher != config.CipherXChaCha || cfg.Daemon.IntervalSeconds != 300 {
		t.Fatalf("unexpected sample values: %+v", cfg)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}
