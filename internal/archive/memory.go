package archive

import (
	"context"
	"sync"

	"reliquary/internal/fileutil"
	"reliquary/internal/relic"
)

// MemoryStorage holds the archive in process memory. It backs tests and
// dry runs.
type MemoryStorage struct {
	mu     sync.Mutex
	relics []relic.Relic
	saved  bool
	saves  int
}

// NewMemoryStorage returns a storage seeded with relics. A nil seed behaves
// like an archive that was never written.
func NewMemoryStorage(seed []relic.Relic) *MemoryStorage {
	return &MemoryStorage{relics: relic.Clone(seed), saved: seed != nil}
}

func (m *MemoryStorage) Location() string { return "memory" }

func (m *MemoryStorage) Load(ctx context.Context) ([]relic.Relic, fileutil.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, fileutil.Fatal, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, fileutil.Absent, nil
	}
	out := relic.Clone(m.relics)
	if out == nil {
		out = []relic.Relic{}
	}
	return out, fileutil.Intact, nil
}

func (m *MemoryStorage) Save(ctx context.Context, relics []relic.Relic) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relics = relic.Clone(relics)
	m.saved = true
	m.saves++
	return nil
}

// Saves reports how many times the collection was rewritten.
func (m *MemoryStorage) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
