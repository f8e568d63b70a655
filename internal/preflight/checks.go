package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"reliquary/internal/archive"
	"reliquary/internal/manifest"
	"reliquary/internal/services"
	"reliquary/internal/vault"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace fails when the filesystem holding path has less than
// minFree bytes available to unprivileged writers.
func CheckDiskSpace(name, path string, minFree uint64) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	detail := fmt.Sprintf("%s free", formatBytes(free))
	if free < minFree {
		return Result{Name: name, Detail: detail + fmt.Sprintf(" (below %s)", formatBytes(minFree))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckArchive loads the archive. Absence passes; corruption fails.
func CheckArchive(ctx context.Context, store *archive.Store) Result {
	const name = "Archive"
	relics, err := store.Load(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s: %v)", store.Location(), services.Kind(err), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d relics)", store.Location(), len(relics))}
}

// CheckVaultKey reports whether the vault key exists and is valid for the
// configured cipher. A key that has not been generated yet passes.
func CheckVaultKey(keys *vault.KeyStore) Result {
	const name = "Vault key"
	if _, err := keys.Load(); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not generated yet)", keys.Path())}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (%v)", keys.Path(), err)}
	}
	info, err := os.Stat(keys.Path())
	if err == nil && info.Mode().Perm()&0o077 != 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (mode %o is readable by others)", keys.Path(), info.Mode().Perm())}
	}
	return Result{Name: name, Passed: true, Detail: keys.Path()}
}

// CheckManifest parses the node manifest.
func CheckManifest(path string) Result {
	const name = "Node manifest"
	m, err := manifest.Load(path)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (missing; resurrection has no nodes)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (%v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d nodes)", path, len(m.Nodes))}
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
