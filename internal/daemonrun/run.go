// Package daemonrun hosts the reliquaryd runtime: a single-instance loop that
// inspects every manifest node, restores what is missing or corrupt, and
// optionally converges the node relics into the merge scroll.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"reliquary/internal/archive"
	"reliquary/internal/config"
	"reliquary/internal/logging"
	"reliquary/internal/preflight"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	// Once runs a single cycle and returns instead of looping.
	Once bool
}

// Run starts the reliquaryd runtime loop and blocks until the context is
// cancelled or SIGINT/SIGTERM arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessionID := logging.NewSessionID()
	logger, err := logging.NewFromConfig(cfg, sessionID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if cfg.Paths.LogDir != "" {
		logging.PruneLogs(logger, cfg.Paths.LogDir, "reliquary-*.jsonl", cfg.Logging.RetentionDays, time.Now(),
			logging.DailyLogPath(cfg.Paths.LogDir, time.Now()))
	}

	store, err := archive.Open(signalCtx, cfg, logger)
	if err != nil {
		logger.Error("open archive", logging.Error(err))
		return err
	}
	defer store.Close()

	d, err := New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Stop()

	pidPath := d.LockPath() + ".pid"
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logger.Info("reliquaryd started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String(logging.FieldSessionID, sessionID),
		logging.Duration("interval", cfg.DaemonInterval()),
		logging.String("manifest", cfg.Resurrection.ManifestPath),
		logging.String("archive", store.Location()),
		logging.Bool("converge", cfg.Daemon.Converge),
	)

	for _, check := range preflight.Failed(preflight.RunAll(signalCtx, cfg, store)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldErrorHint, "run `reliquary status` for the full readiness report"),
		)
	}

	if opts.Once {
		_, err := d.Cycle(signalCtx)
		return err
	}
	d.Loop(signalCtx, cfg.DaemonInterval())
	logger.Info("reliquaryd shutting down", logging.String(logging.FieldEventType, "daemon_stopped"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
