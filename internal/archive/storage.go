package archive

import (
	"context"

	"reliquary/internal/fileutil"
	"reliquary/internal/relic"
)

// Storage is the persistence handle behind a Store.
//
// Load reports Absent with a nil slice when nothing has been persisted yet and
// Corrupt with an ErrCorruption error when persisted content does not parse.
// Save replaces the whole collection.
type Storage interface {
	Load(ctx context.Context) ([]relic.Relic, fileutil.State, error)
	Save(ctx context.Context, relics []relic.Relic) error
	Location() string
}

// Backuper is implemented by storages that can copy their persisted form.
type Backuper interface {
	Backup(ctx context.Context, dest string) error
}
