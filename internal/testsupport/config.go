package testsupport

import (
	"path/filepath"
	"testing"

	"reliquary/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose every path lives in a fresh temp
// directory. Options are applied after the defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	data := filepath.Join(base, "data")
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = data
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Archive.Path = filepath.Join(data, "archive.json")
	cfgVal.Vault.VaultPath = filepath.Join(data, "vault", "archive.vault")
	cfgVal.Vault.IndexPath = filepath.Join(data, "vault", "vault_index.json")
	cfgVal.Vault.KeyPath = filepath.Join(base, "keys", "vault.key")
	cfgVal.Sharing.ShareDir = filepath.Join(data, "transmissions")
	cfgVal.Sharing.LedgerPath = filepath.Join(data, "transmission_ledger.json")
	cfgVal.Merge.ScrollPath = filepath.Join(data, "merged_scroll.json")
	cfgVal.Resurrection.ManifestPath = filepath.Join(base, "nodes.yaml")
	cfgVal.Resurrection.LogPath = filepath.Join(data, "resurrection_log.json")
	cfgVal.Daemon.LockPath = filepath.Join(data, "reliquaryd.lock")
	cfgVal.Daemon.IntervalSeconds = 1
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithSQLiteArchive switches the archive to the SQLite backend.
func WithSQLiteArchive() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Backend = config.BackendSQLite
		b.cfg.Archive.Path = filepath.Join(b.cfg.Paths.DataDir, "archive.db")
	}
}

// WithCipher selects the vault cipher.
func WithCipher(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Vault.Cipher = name
	}
}

// WithFeedArchive toggles archive feedback for restored nodes.
func WithFeedArchive(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resurrection.FeedArchive = enabled
	}
}

// WithConverge toggles scroll convergence in the daemon cycle.
func WithConverge(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.Converge = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
