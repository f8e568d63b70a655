package sharing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reliquary/internal/archive"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
)

// ResultStatus distinguishes "nothing matched" from a completed transmission.
type ResultStatus string

const (
	ResultNoMatch     ResultStatus = "NoMatch"
	ResultTransmitted ResultStatus = StatusTransmitted
)

// Result describes one Transmit call.
type Result struct {
	Status ResultStatus
	Path   string
	Relics []relic.Relic
	Entry  LedgerEntry
}

// Protocol ties an archive to a share directory and a ledger.
type Protocol struct {
	store    *archive.Store
	shareDir string
	ledger   *Ledger
	now      func() time.Time
	logger   *slog.Logger
}

// NewProtocol builds a protocol over store. now may be nil.
func NewProtocol(store *archive.Store, shareDir string, ledger *Ledger, now func() time.Time, logger *slog.Logger) *Protocol {
	if now == nil {
		now = time.Now
	}
	return &Protocol{
		store:    store,
		shareDir: shareDir,
		ledger:   ledger,
		now:      now,
		logger:   logging.NewComponentLogger(logger, "sharing"),
	}
}

// Transmit filters the archive, tags and exports the matches, and appends one
// ledger entry. When nothing matches, no package or ledger entry is written
// and the result status is ResultNoMatch.
func (p *Protocol) Transmit(ctx context.Context, contributor, theme string) (Result, error) {
	contributor = strings.TrimSpace(contributor)
	theme = strings.TrimSpace(theme)
	relics, err := p.store.Load(ctx)
	if err != nil {
		return Result{}, err
	}
	subset := Filter(relics, contributor, theme)
	if len(subset) == 0 {
		p.logger.Info("no relics matched the filter",
			logging.String("contributor", orDefault(contributor, allDisplay)),
			logging.String("theme", orDefault(theme, allDisplay)),
			logging.String(logging.FieldEventType, "transmission_no_match"),
		)
		return Result{Status: ResultNoMatch, Relics: []relic.Relic{}}, nil
	}

	tagged := TagTransmission(subset, contributor, theme)
	path, err := Export(tagged, p.shareDir, contributor, theme)
	if err != nil {
		return Result{}, err
	}
	entry, err := p.ledger.Append(ctx, LedgerEntry{
		File:              path,
		Contributor:       orDefault(contributor, allDisplay),
		Theme:             orDefault(theme, allDisplay),
		RelicsTransmitted: len(tagged),
		TransmittedAt:     p.now(),
	})
	if err != nil {
		return Result{}, err
	}
	p.logger.Info("transmission exported",
		logging.String(logging.FieldPath, path),
		logging.Int("relics", len(tagged)),
		logging.String(logging.FieldCorrelationID, entry.ID),
		logging.String(logging.FieldEventType, "transmission_exported"),
	)
	return Result{Status: ResultTransmitted, Path: path, Relics: tagged, Entry: entry}, nil
}
