package archive

import (
	"context"
	"encoding/json"

	"reliquary/internal/fileutil"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

// FileStorage keeps the archive as an indented JSON array.
type FileStorage struct {
	path string
}

// NewFileStorage returns a storage rooted at path. Nothing is touched on disk
// until the first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Location() string { return s.path }

func (s *FileStorage) Load(ctx context.Context) ([]relic.Relic, fileutil.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, fileutil.Fatal, err
	}
	data, state, err := fileutil.ReadFile(s.path)
	if state != fileutil.Intact {
		return nil, state, err
	}
	var relics []relic.Relic
	if err := json.Unmarshal(data, &relics); err != nil {
		return nil, fileutil.Corrupt, services.Wrap(services.ErrCorruption, "archive", "load", s.path, err)
	}
	if relics == nil {
		relics = []relic.Relic{}
	}
	return relics, fileutil.Intact, nil
}

func (s *FileStorage) Save(ctx context.Context, relics []relic.Relic) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if relics == nil {
		relics = []relic.Relic{}
	}
	return fileutil.WriteJSONAtomic(s.path, relics)
}

// Backup copies the archive file to dest and verifies the copy.
func (s *FileStorage) Backup(ctx context.Context, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.CopyVerified(s.path, dest); err != nil {
		return services.Wrap(services.ErrIOFatal, "archive", "backup", dest, err)
	}
	return nil
}
