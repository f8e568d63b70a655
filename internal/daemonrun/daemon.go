package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reliquary/internal/archive"
	"reliquary/internal/config"
	"reliquary/internal/exitseal"
	"reliquary/internal/fingerprint"
	"reliquary/internal/logging"
	"reliquary/internal/manifest"
	"reliquary/internal/mergedaemon"
	"reliquary/internal/resurrection"
	"reliquary/internal/services"
)

// Daemon runs inspection cycles and enforces single-instance execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *archive.Store
	resurrector *resurrection.Daemon
	sealer      *exitseal.Sealer
	now         func() time.Time

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// CycleReport summarizes one inspection cycle.
type CycleReport struct {
	Nodes     int
	Verified  int
	Restored  int
	Failed    int
	Converged bool
	Scroll    mergedaemon.Summary
}

// New constructs a daemon over store. The lock is not taken until Start.
func New(cfg *config.Config, store *archive.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and archive store")
	}
	glyph, err := fingerprint.Lookup(cfg.Fingerprint.Glyph)
	if err != nil {
		return nil, err
	}
	seal, err := fingerprint.Lookup(cfg.Fingerprint.Seal)
	if err != nil {
		return nil, err
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	opts := []resurrection.Option{
		resurrection.WithLogPath(cfg.Resurrection.LogPath),
		resurrection.WithGlyphStrategy(glyph),
	}
	if cfg.Resurrection.FeedArchive {
		opts = append(opts, resurrection.WithArchive(store))
	}
	return &Daemon{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		resurrector: resurrection.New(logger, opts...),
		sealer:      exitseal.New(seal, nil, logger),
		now:         time.Now,
		lockPath:    cfg.Daemon.LockPath,
		lock:        flock.New(cfg.Daemon.LockPath),
	}, nil
}

// LockPath returns the single-instance lock file.
func (d *Daemon) LockPath() string { return d.lockPath }

// Running reports whether Start succeeded and Stop has not been called.
func (d *Daemon) Running() bool { return d.running.Load() }

// Start acquires the daemon lock.
func (d *Daemon) Start() error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reliquaryd instance is already running")
	}
	d.running.Store(true)
	d.logger.Debug("daemon lock acquired", logging.String("lock", d.lockPath))
	return nil
}

// Stop releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_unlock_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no reliquaryd is running"),
			logging.String(logging.FieldImpact, "next start may report a running instance"),
		)
	}
	d.running.Store(false)
}

// Loop runs a cycle immediately and then every interval until ctx is done.
func (d *Daemon) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := d.Cycle(ctx); err != nil && ctx.Err() == nil {
			logging.ErrorWithContext(d.logger, "cycle failed", "cycle_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the manifest and archive paths"),
				logging.String(logging.FieldImpact, "nodes were not inspected this cycle"),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cycle reloads the manifest, runs every node through the resurrection
// daemon, and converges the node relics when configured. A node whose
// restoration fails is counted and the cycle moves on.
func (d *Daemon) Cycle(ctx context.Context) (CycleReport, error) {
	var report CycleReport
	m, err := manifest.Load(d.cfg.Resurrection.ManifestPath)
	if errors.Is(err, services.ErrNotFound) {
		logging.WarnWithContext(d.logger, "node manifest missing", "manifest_missing",
			logging.String(logging.FieldPath, d.cfg.Resurrection.ManifestPath),
			logging.String(logging.FieldErrorHint, "create the manifest listing node relic paths"),
			logging.String(logging.FieldImpact, "no nodes inspected"),
		)
		return report, nil
	}
	if err != nil {
		return report, err
	}

	report.Nodes = len(m.Nodes)
	for _, node := range m.Nodes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := d.resurrector.Run(ctx, node.RelicPath, node.Template)
		if err != nil && out.Terminal == "" {
			report.Failed++
			logging.ErrorWithContext(d.logger, "node inspection failed", "node_failed",
				logging.String(logging.FieldNode, node.NodeID),
				logging.String(logging.FieldPath, node.RelicPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the relic location and the archive"),
				logging.String(logging.FieldImpact, "node relic left as found"),
			)
			continue
		}
		if err != nil {
			logging.WarnWithContext(d.logger, "inspection log not persisted", "resurrection_log_failed",
				logging.String(logging.FieldNode, node.NodeID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the resurrection log file"),
				logging.String(logging.FieldImpact, "node relic "+strings.ToLower(string(out.Terminal))+"; log entries for this run are missing"),
			)
		}
		switch out.Terminal {
		case resurrection.TerminalRestored:
			report.Restored++
		case resurrection.TerminalVerified:
			report.Verified++
		}
	}

	if d.cfg.Daemon.Converge && len(m.Nodes) > 0 {
		md := mergedaemon.New(d.sealer, d.now, d.logger)
		if err := md.Absorb(ctx, m.RelicPaths()); err != nil {
			return report, err
		}
		if err := md.Enshrine(ctx, d.cfg.Merge.ScrollPath); err != nil {
			return report, err
		}
		report.Converged = true
		report.Scroll = md.Summary()
	}

	d.logger.Info("cycle complete",
		logging.String(logging.FieldEventType, "cycle_complete"),
		logging.Int("nodes", report.Nodes),
		logging.Int("verified", report.Verified),
		logging.Int("restored", report.Restored),
		logging.Int("failed", report.Failed),
		logging.Bool("converged", report.Converged),
	)
	return report, nil
}
