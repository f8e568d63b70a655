package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	defaultConfigLocation = "~/.config/reliquary/config.toml"
	projectConfigName     = "reliquary.toml"
)

// Paths holds the directories every store resolves relative file names against.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Archive selects the archive storage backend.
type Archive struct {
	Backend string `toml:"backend"` // json | sqlite
	Path    string `toml:"path"`
}

// Fingerprint names the digest strategies for glyphs and exit seals.
type Fingerprint struct {
	Glyph string `toml:"glyph"`
	Seal  string `toml:"seal"`
}

// Vault configures encrypted archive snapshots.
type Vault struct {
	Cipher    string `toml:"cipher"` // xchacha20poly1305 | age
	VaultPath string `toml:"vault_path"`
	IndexPath string `toml:"index_path"`
	KeyPath   string `toml:"key_path"`
}

// Sharing configures transmission packages and the transmission ledger.
type Sharing struct {
	ShareDir   string `toml:"share_dir"`
	LedgerPath string `toml:"ledger_path"`
}

// Merge configures the merge engine and the convergence scroll.
type Merge struct {
	DefaultContributor string   `toml:"default_contributor"`
	ScrollPath         string   `toml:"scroll_path"`
	Sources            []string `toml:"sources"`
}

// Resurrection configures node inspection and restoration.
type Resurrection struct {
	ManifestPath string `toml:"manifest_path"`
	LogPath      string `toml:"log_path"`
	FeedArchive  bool   `toml:"feed_archive"`
}

// Daemon configures the reliquaryd loop.
type Daemon struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	LockPath        string `toml:"lock_path"`
	Converge        bool   `toml:"converge"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for reliquary.
//
// Sections by subsystem:
//   - Paths: data and log directories
//   - Archive: storage backend and location
//   - Fingerprint: glyph and exit-seal digest strategies
//   - Vault: cipher, ciphertext, plaintext index and key locations
//   - Sharing: transmission package directory and ledger
//   - Merge: default contributor, convergence sources and scroll
//   - Resurrection: node manifest, inspection log, archive feedback
//   - Daemon: loop interval and single-instance lock
//   - Logging: log format, level, and retention
type Config struct {
	Paths        Paths        `toml:"paths"`
	Archive      Archive      `toml:"archive"`
	Fingerprint  Fingerprint  `toml:"fingerprint"`
	Vault        Vault        `toml:"vault"`
	Sharing      Sharing      `toml:"sharing"`
	Merge        Merge        `toml:"merge"`
	Resurrection Resurrection `toml:"resurrection"`
	Daemon       Daemon       `toml:"daemon"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load locates, parses, and validates a configuration file. The returned
// config has every path field expanded to an absolute path. A missing file is
// not an error; defaults are used and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log and share directories plus the
// parents of every configured file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, c.Sharing.ShareDir}
	for _, file := range []string{
		c.Archive.Path,
		c.Vault.VaultPath,
		c.Vault.IndexPath,
		c.Vault.KeyPath,
		c.Sharing.LedgerPath,
		c.Merge.ScrollPath,
		c.Resurrection.LogPath,
		c.Daemon.LockPath,
	} {
		if strings.TrimSpace(file) != "" {
			dirs = append(dirs, filepath.Dir(file))
		}
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
