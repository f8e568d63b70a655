package testsupport

import (
	"context"
	"testing"
	"time"

	"reliquary/internal/archive"
	"reliquary/internal/fingerprint"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
)

// FixedTime is the timestamp fixtures are stamped with.
var FixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// NewRelic builds a valid relic for event/theme/contributor. The glyph is the
// default fingerprint of "event: theme".
func NewRelic(t testing.TB, event, theme, contributor string) relic.Relic {
	t.Helper()
	r, err := relic.New(relic.Fields{
		Event:       event,
		Theme:       theme,
		Timestamp:   FixedTime,
		Glyph:       fingerprint.Sum(event + ": " + theme),
		Contributor: contributor,
		Status:      relic.StatusMerged,
	})
	if err != nil {
		t.Fatalf("relic.New: %v", err)
	}
	return r
}

// MemoryStore returns an archive store over in-memory storage holding relics
// appended in order.
func MemoryStore(t testing.TB, relics ...relic.Relic) *archive.Store {
	t.Helper()
	store := archive.NewStore(archive.NewMemoryStorage(nil), logging.NewNop())
	for _, r := range relics {
		if _, err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return store
}
