package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reliquary/internal/fileutil"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// sqliteSchemaVersion is bumped whenever schema.sql changes shape.
const sqliteSchemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("archive schema version mismatch")

// SQLiteStorage keeps one row per relic, ordered by ordinal. The full relic
// is stored as JSON in payload; the other columns exist for ad hoc queries.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the archive database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIOFatal, "archive", "open sqlite", "create directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return services.Wrap(services.ErrCorruption, "archive", "open sqlite", "check schema", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return services.Wrap(services.ErrCorruption, "archive", "open sqlite", "read schema version", err)
	}
	if version != sqliteSchemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, sqliteSchemaVersion)
	}
	return nil
}

func (s *SQLiteStorage) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", sqliteSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStorage) Location() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) Load(ctx context.Context) ([]relic.Relic, fileutil.State, error) {
	var written int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM archive_state").Scan(&written); err != nil {
		return nil, fileutil.Fatal, services.Wrap(services.ErrIOFatal, "archive", "load", s.path, err)
	}
	if written == 0 {
		return nil, fileutil.Absent, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT ordinal, payload FROM relics ORDER BY ordinal")
	if err != nil {
		return nil, fileutil.Fatal, services.Wrap(services.ErrIOFatal, "archive", "load", s.path, err)
	}
	defer rows.Close()

	relics := []relic.Relic{}
	for rows.Next() {
		var (
			ordinal int
			payload string
		)
		if err := rows.Scan(&ordinal, &payload); err != nil {
			return nil, fileutil.Corrupt, services.Wrap(services.ErrCorruption, "archive", "load", s.path, err)
		}
		var r relic.Relic
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fileutil.Corrupt, services.Wrap(services.ErrCorruption, "archive", "load",
				fmt.Sprintf("%s row %d", s.path, ordinal), err)
		}
		relics = append(relics, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fileutil.Fatal, services.Wrap(services.ErrIOFatal, "archive", "load", s.path, err)
	}
	return relics, fileutil.Intact, nil
}

// Save rewrites every row inside one transaction so readers never observe a
// partial collection.
func (s *SQLiteStorage) Save(ctx context.Context, relics []relic.Relic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "save", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM relics"); err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "save", "clear relics", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO relics (
            ordinal, event, theme, timestamp, glyph, contributor, archive_tag, payload
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "save", "prepare insert", err)
	}
	defer stmt.Close()

	for i, r := range relics {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal relic %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx,
			i+1,
			r.Event,
			r.Theme,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.Glyph,
			r.ContributorOrDefault(),
			nullableString(r.ArchiveTag),
			string(payload),
		); err != nil {
			return services.Wrap(services.ErrIOFatal, "archive", "save", fmt.Sprintf("insert relic %d", i+1), err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO archive_state (id, written_at) VALUES (1, ?)
         ON CONFLICT(id) DO UPDATE SET written_at = excluded.written_at`,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "save", "record write", err)
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "save", "commit", err)
	}
	return nil
}

// Backup writes a consistent copy of the database to dest with VACUUM INTO.
func (s *SQLiteStorage) Backup(ctx context.Context, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "backup", "create directory", err)
	}
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrIOFatal, "archive", "backup", "replace "+dest, err)
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "backup", dest, err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
