package logging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reliquary/internal/config"
	"reliquary/internal/logging"
	"reliquary/internal/services"
)

func newFileLogger(t *testing.T) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	return path, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(data)
	}
}

func TestNewFromConfigWritesDailyJSONLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, "sess-1")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("archive loaded", logging.String(logging.FieldEventType, "archive_loaded"))

	data, err := os.ReadFile(logging.DailyLogPath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read daily log: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"msg":"archive loaded"`, `"session_id":"sess-1"`, `"event_type":"archive_loaded"`} {
		if !strings.Contains(text, want) {
			t.Errorf("daily log missing %s: %s", want, text)
		}
	}
}

func TestConsoleLoggerHeaderCarriesComponentAndSubject(t *testing.T) {
	path, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "vault")
	logger.Info("relic sealed",
		logging.String(logging.FieldRelicTag, "RELIC-001"),
		logging.String(logging.FieldNode, "node-a"),
		logging.Int("count", 2),
	)

	out := read()
	if !strings.Contains(out, "INFO [vault] RELIC-001 · node-a – relic sealed") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - count: 2") {
		t.Fatalf("expected count field line: %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information at info level: %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	path, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")
	if out := read(); !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	path, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "node skipped", "node_skipped",
		logging.String(logging.FieldImpact, "node excluded from scroll"),
		logging.Error(errors.New("boom")),
	)
	out := read()
	for _, want := range []string{
		`"level":"warn"`,
		`"event_type":"node_skipped"`,
		`"error_hint":"check logs for details"`,
		`"impact":"node excluded from scroll"`,
		`"error":"boom"`,
		`"error_kind":"io_fatal"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestErrorWithContextClassifiesError(t *testing.T) {
	path, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	cause := services.Wrap(services.ErrCrypto, "vault", "open", "decrypt failed", nil)
	logging.ErrorWithContext(logger, "vault open failed", "vault_crypto_failure", logging.Error(cause))
	if out := read(); !strings.Contains(out, `"error_kind":"crypto"`) {
		t.Fatalf("expected crypto error kind in %s", out)
	}
}

func TestWithContextAddsServiceFields(t *testing.T) {
	path, read := newFileLogger(t)
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRelicTag(context.Background(), "ARCH-007")
	ctx = services.WithNode(ctx, "nova")
	ctx = services.WithRequestID(ctx, "req-9")

	logging.WithContext(ctx, logger).Info("ctx")

	out := read()
	for _, want := range []string{`"relic_tag":"ARCH-007"`, `"node":"nova"`, `"correlation_id":"req-9"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
	if got := logging.ContextFields(context.Background()); len(got) != 0 {
		t.Fatalf("expected no fields from empty context, got %v", got)
	}
}

func TestPruneLogsRemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	oldPath := filepath.Join(dir, "reliquary-20200101.jsonl")
	keepPath := filepath.Join(dir, "reliquary-20200102.jsonl")
	freshPath := filepath.Join(dir, "reliquary-today.jsonl")
	otherPath := filepath.Join(dir, "notes.txt")
	for _, p := range []string{oldPath, keepPath, freshPath, otherPath} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	stale := now.AddDate(0, 0, -30)
	for _, p := range []string{oldPath, keepPath, otherPath} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.PruneLogs(logging.NewNop(), dir, "reliquary-*.jsonl", 7, now, keepPath)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed", oldPath)
	}
	for _, p := range []string{keepPath, freshPath, otherPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s kept: %v", p, err)
		}
	}
	if got := logging.PruneLogs(nil, dir, "*", 0, now); got != 0 {
		t.Fatalf("retention 0 should disable pruning, removed %d", got)
	}
}
