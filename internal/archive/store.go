package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"reliquary/internal/fileutil"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

const (
	tagPrefix     = "ARCH-"
	logSource     = "archive"
	defaultMethod = "append"
)

// Store is the archive service shared by every component.
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  *slog.Logger
}

// NewStore wraps storage. A nil logger discards output.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logging.NewComponentLogger(logger, "archive"),
	}
}

// Location describes where the archive lives.
func (s *Store) Location() string {
	return s.storage.Location()
}

// Close releases the storage handle when it holds one.
func (s *Store) Close() error {
	if closer, ok := s.storage.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Load returns the persisted collection in insertion order. An archive that
// was never written yields an empty slice.
func (s *Store) Load(ctx context.Context) ([]relic.Relic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) ([]relic.Relic, error) {
	relics, state, err := s.storage.Load(ctx)
	switch state {
	case fileutil.Intact:
		return relics, nil
	case fileutil.Absent:
		s.logger.Debug("archive absent; starting empty",
			logging.String(logging.FieldPath, s.storage.Location()),
			logging.String(logging.FieldEventType, "archive_absent"),
		)
		return []relic.Relic{}, nil
	default:
		return nil, err
	}
}

// Append assigns the next archive tag to r, attaches its archive log and
// rewrites the collection. The stored relic is returned.
func (s *Store) Append(ctx context.Context, r relic.Relic) (relic.Relic, error) {
	if err := r.Validate(); err != nil {
		return relic.Relic{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	relics, err := s.load(ctx)
	if err != nil {
		return relic.Relic{}, err
	}
	index := nextIndex(relics)
	r = relic.Clone([]relic.Relic{r})[0]
	r.ArchiveTag = FormatTag(index)
	r.ArchiveLog = &relic.TagLog{
		Source: logSource,
		Method: appendMethod(r),
		Status: relic.StatusArchived,
		Index:  index,
	}
	relics = append(relics, r)
	if err := s.storage.Save(ctx, relics); err != nil {
		return relic.Relic{}, err
	}
	s.logger.Info("relic archived",
		logging.String(logging.FieldRelicTag, r.ArchiveTag),
		logging.String(logging.FieldEventType, "relic_archived"),
		logging.String("event", r.Event),
		logging.String("theme", r.Theme),
		logging.Int("total", len(relics)),
	)
	return r, nil
}

// Replace rewrites the whole collection. Every relic must be valid.
func (s *Store) Replace(ctx context.Context, relics []relic.Relic) error {
	if err := relic.ValidateAll(relics); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Save(ctx, relics); err != nil {
		return err
	}
	s.logger.Debug("archive rewritten",
		logging.Int("total", len(relics)),
		logging.String(logging.FieldEventType, "archive_replaced"),
	)
	return nil
}

// Search returns the relics matching q in archive order. No match is an
// empty slice, not an error.
func (s *Store) Search(ctx context.Context, q Query) ([]relic.Relic, error) {
	relics, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]relic.Relic, 0, len(relics))
	for _, r := range relics {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Get returns the relic at the 1-based position index.
func (s *Store) Get(ctx context.Context, index int) (relic.Relic, error) {
	relics, err := s.Load(ctx)
	if err != nil {
		return relic.Relic{}, err
	}
	if index < 1 || index > len(relics) {
		return relic.Relic{}, services.Wrap(services.ErrNotFound, "archive", "get",
			fmt.Sprintf("index %d out of range 1..%d", index, len(relics)), nil)
	}
	return relics[index-1], nil
}

// Backup copies the persisted archive to dest when the storage supports it.
func (s *Store) Backup(ctx context.Context, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.storage.(Backuper)
	if !ok {
		return services.Wrap(services.ErrInvalid, "archive", "backup",
			"storage "+s.storage.Location()+" does not support backup", nil)
	}
	if _, state, err := s.storage.Load(ctx); state != fileutil.Intact {
		if state == fileutil.Absent {
			return services.Wrap(services.ErrNotFound, "archive", "backup", "nothing persisted at "+s.storage.Location(), nil)
		}
		return err
	}
	if err := b.Backup(ctx, dest); err != nil {
		return err
	}
	s.logger.Info("archive backed up",
		logging.String(logging.FieldPath, dest),
		logging.String(logging.FieldEventType, "archive_backup"),
	)
	return nil
}

// FormatTag renders the archive tag for a 1-based index.
func FormatTag(index int) string {
	return fmt.Sprintf("%s%03d", tagPrefix, index)
}

// ParseTag extracts the index from an archive tag.
func ParseTag(tag string) (int, bool) {
	rest, ok := strings.CutPrefix(tag, tagPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// nextIndex is one past the larger of the collection length and the highest
// tag already issued, so tags stay monotonic after a Replace shrinks the set.
func nextIndex(relics []relic.Relic) int {
	highest := len(relics)
	for _, r := range relics {
		if n, ok := ParseTag(r.ArchiveTag); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func appendMethod(r relic.Relic) string {
	if r.Provenance != nil && strings.TrimSpace(r.Provenance.Method) != "" {
		return r.Provenance.Method
	}
	return defaultMethod
}
