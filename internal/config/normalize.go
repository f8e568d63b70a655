package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	if err := c.normalizeVault(); err != nil {
		return err
	}
	if err := c.normalizeStores(); err != nil {
		return err
	}
	c.normalizeNames()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() error {
	c.Archive.Backend = strings.ToLower(strings.TrimSpace(c.Archive.Backend))
	if c.Archive.Backend == "" {
		c.Archive.Backend = defaultArchiveBackend
	}
	fallback := defaultArchiveJSONName
	if c.Archive.Backend == BackendSQLite {
		fallback = defaultArchiveSQLiteName
	}
	var err error
	if c.Archive.Path, err = c.dataPath(c.Archive.Path, fallback); err != nil {
		return fmt.Errorf("archive.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeVault() error {
	c.Vault.Cipher = strings.ToLower(strings.TrimSpace(c.Vault.Cipher))
	if c.Vault.Cipher == "" {
		c.Vault.Cipher = defaultVaultCipher
	}
	if value, ok := os.LookupEnv(vaultKeyPathEnv); ok && strings.TrimSpace(value) != "" {
		c.Vault.KeyPath = value
	}
	if strings.TrimSpace(c.Vault.KeyPath) == "" {
		c.Vault.KeyPath = defaultVaultKeyPath
	}
	var err error
	if c.Vault.KeyPath, err = expandPath(strings.TrimSpace(c.Vault.KeyPath)); err != nil {
		return fmt.Errorf("vault.key_path: %w", err)
	}
	if c.Vault.VaultPath, err = c.dataPath(c.Vault.VaultPath, defaultVaultName); err != nil {
		return fmt.Errorf("vault.vault_path: %w", err)
	}
	if c.Vault.IndexPath, err = c.dataPath(c.Vault.IndexPath, defaultVaultIndexName); err != nil {
		return fmt.Errorf("vault.index_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeStores() error {
	var err error
	if c.Sharing.ShareDir, err = c.dataPath(c.Sharing.ShareDir, defaultShareDirName); err != nil {
		return fmt.Errorf("sharing.share_dir: %w", err)
	}
	if c.Sharing.LedgerPath, err = c.dataPath(c.Sharing.LedgerPath, defaultLedgerName); err != nil {
		return fmt.Errorf("sharing.ledger_path: %w", err)
	}
	if c.Merge.ScrollPath, err = c.dataPath(c.Merge.ScrollPath, defaultScrollName); err != nil {
		return fmt.Errorf("merge.scroll_path: %w", err)
	}
	for i, source := range c.Merge.Sources {
		if c.Merge.Sources[i], err = c.dataPath(source, ""); err != nil {
			return fmt.Errorf("merge.sources[%d]: %w", i, err)
		}
	}
	if strings.TrimSpace(c.Resurrection.ManifestPath) == "" {
		c.Resurrection.ManifestPath = defaultManifestPath
	}
	if c.Resurrection.ManifestPath, err = expandPath(strings.TrimSpace(c.Resurrection.ManifestPath)); err != nil {
		return fmt.Errorf("resurrection.manifest_path: %w", err)
	}
	if c.Resurrection.LogPath, err = c.dataPath(c.Resurrection.LogPath, defaultResurrectionLog); err != nil {
		return fmt.Errorf("resurrection.log_path: %w", err)
	}
	if c.Daemon.LockPath, err = c.dataPath(c.Daemon.LockPath, defaultDaemonLockName); err != nil {
		return fmt.Errorf("daemon.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNames() {
	c.Fingerprint.Glyph = strings.ToLower(strings.TrimSpace(c.Fingerprint.Glyph))
	if c.Fingerprint.Glyph == "" {
		c.Fingerprint.Glyph = defaultGlyphFingerprint
	}
	c.Fingerprint.Seal = strings.ToLower(strings.TrimSpace(c.Fingerprint.Seal))
	if c.Fingerprint.Seal == "" {
		c.Fingerprint.Seal = defaultSealFingerprint
	}
	c.Merge.DefaultContributor = strings.TrimSpace(c.Merge.DefaultContributor)
	if c.Merge.DefaultContributor == "" {
		c.Merge.DefaultContributor = defaultContributor
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// dataPath resolves value against the data directory. Empty values take
// fallback; an empty fallback leaves the field empty.
func (c *Config) dataPath(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if fallback == "" {
			return "", nil
		}
		value = fallback
	}
	if !strings.HasPrefix(value, "~") && !filepath.IsAbs(value) {
		value = filepath.Join(c.Paths.DataDir, value)
	}
	return expandPath(value)
}
