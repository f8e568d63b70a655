package config

import "time"

const (
	defaultDataDir           = "~/.local/share/reliquary"
	defaultLogDir            = "~/.local/share/reliquary/logs"
	defaultArchiveBackend    = BackendJSON
	defaultGlyphFingerprint  = "sha256"
	defaultSealFingerprint   = "sha3-256"
	defaultVaultCipher       = CipherXChaCha
	defaultVaultKeyPath      = "~/.config/reliquary/vault.key"
	defaultManifestPath      = "~/.config/reliquary/nodes.yaml"
	defaultContributor       = "Unknown"
	defaultDaemonInterval    = 300
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultArchiveJSONName   = "archive.json"
	defaultArchiveSQLiteName = "archive.db"
	defaultVaultName         = "vault/archive.vault"
	defaultVaultIndexName    = "vault/vault_index.json"
	defaultShareDirName      = "transmissions"
	defaultLedgerName        = "transmission_ledger.json"
	defaultScrollName        = "merged_scroll.json"
	defaultResurrectionLog   = "resurrection_log.json"
	defaultDaemonLockName    = "reliquaryd.lock"
	vaultKeyPathEnv          = "RELIQUARY_VAULT_KEY_PATH"
)

// Archive backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Vault ciphers.
const (
	CipherXChaCha = "xchacha20poly1305"
	CipherAge     = "age"
)

// Default returns a Config populated with defaults. Store paths left empty
// are resolved against Paths.DataDir during Load.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Archive: Archive{
			Backend: defaultArchiveBackend,
		},
		Fingerprint: Fingerprint{
			Glyph: defaultGlyphFingerprint,
			Seal:  defaultSealFingerprint,
		},
		Vault: Vault{
			Cipher:  defaultVaultCipher,
			KeyPath: defaultVaultKeyPath,
		},
		Merge: Merge{
			DefaultContributor: defaultContributor,
		},
		Resurrection: Resurrection{
			ManifestPath: defaultManifestPath,
		},
		Daemon: Daemon{
			IntervalSeconds: defaultDaemonInterval,
			Converge:        true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

// DaemonInterval returns the reliquaryd tick as a duration.
func (c *Config) DaemonInterval() time.Duration {
	return time.Duration(c.Daemon.IntervalSeconds) * time.Second
}
