package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"reliquary/internal/archive"
	"reliquary/internal/logging"
	"reliquary/internal/testsupport"
	"reliquary/internal/vault"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDiskSpace("disk", dir, 1); !result.Passed {
		t.Fatalf("expected pass with 1 byte minimum, got: %s", result.Detail)
	}
	if result := CheckDiskSpace("disk", dir, ^uint64(0)); result.Passed {
		t.Fatal("expected failure with an unreachable minimum")
	}
}

func TestCheckArchiveCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	testsupport.WriteFile(t, path, "[{")
	store := archive.NewStore(archive.NewFileStorage(path), logging.NewNop())
	if result := CheckArchive(context.Background(), store); result.Passed {
		t.Fatal("expected failure for corrupt archive")
	}
}

func TestCheckVaultKeyPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.key")
	keys := vault.NewKeyStore(path, vault.XChaCha{}, logging.NewNop())
	if result := CheckVaultKey(keys); !result.Passed {
		t.Fatalf("missing key should pass, got: %s", result.Detail)
	}
	if _, _, err := keys.LoadOrGenerate(); err != nil {
		t.Fatal(err)
	}
	if result := CheckVaultKey(keys); !result.Passed {
		t.Fatalf("fresh key should pass, got: %s", result.Detail)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckVaultKey(keys); result.Passed {
		t.Fatal("world-readable key should fail")
	}
}

func TestRunAllReportsMissingManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	store := testsupport.MemoryStore(t, testsupport.NewRelic(t, "Awaken", "Stars", "OMEGA"))
	results := RunAll(context.Background(), cfg, store)
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Node manifest" {
		t.Fatalf("expected only the manifest check to fail, got %+v", failed)
	}
}
