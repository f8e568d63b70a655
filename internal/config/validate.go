package config

import (
	"fmt"
	"strings"

	"reliquary/internal/fingerprint"
	"reliquary/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateArchive,
		c.validateFingerprint,
		c.validateVault,
		c.validateDaemon,
		c.validateLogging,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrConfiguration, fmt.Sprintf(format, args...))
}

func (c *Config) validateArchive() error {
	switch c.Archive.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return invalid("archive.backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Archive.Backend)
	}
	if strings.TrimSpace(c.Archive.Path) == "" {
		return invalid("archive.path must be set")
	}
	return nil
}

func (c *Config) validateFingerprint() error {
	if _, err := fingerprint.Lookup(c.Fingerprint.Glyph); err != nil {
		return invalid("fingerprint.glyph: %v", err)
	}
	if _, err := fingerprint.Lookup(c.Fingerprint.Seal); err != nil {
		return invalid("fingerprint.seal: %v", err)
	}
	return nil
}

func (c *Config) validateVault() error {
	switch c.Vault.Cipher {
	case CipherXChaCha, CipherAge:
	default:
		return invalid("vault.cipher must be %q or %q, got %q", CipherXChaCha, CipherAge, c.Vault.Cipher)
	}
	if c.Vault.VaultPath == c.Vault.IndexPath {
		return invalid("vault.vault_path and vault.index_path must differ")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.IntervalSeconds <= 0 {
		return invalid("daemon.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level %q is not recognized", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return invalid("logging.retention_days must be zero or positive")
	}
	return nil
}
