package preflight

import (
	"context"
	"path/filepath"

	"reliquary/internal/archive"
	"reliquary/internal/config"
	"reliquary/internal/vault"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// minFreeBytes is the free space below which the data directory check fails.
const minFreeBytes = 64 << 20

// RunAll executes every readiness check for cfg. store may be nil, in which
// case the archive check is skipped.
func RunAll(ctx context.Context, cfg *config.Config, store *archive.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDiskSpace("Data volume", cfg.Paths.DataDir, minFreeBytes),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if store != nil {
		results = append(results, CheckArchive(ctx, store))
	}
	if cipher, err := vault.CipherByName(cfg.Vault.Cipher); err == nil {
		results = append(results, CheckVaultKey(vault.NewKeyStore(cfg.Vault.KeyPath, cipher, nil)))
	}
	results = append(results,
		CheckDirectoryAccess("Vault directory", filepath.Dir(cfg.Vault.VaultPath)),
		CheckManifest(cfg.Resurrection.ManifestPath),
	)
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
