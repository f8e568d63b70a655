package sharing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reliquary/internal/fileutil"
)

// StatusTransmitted is recorded on every ledger entry.
const StatusTransmitted = "Transmitted"

// LedgerEntry records one completed transmission.
type LedgerEntry struct {
	ID                string    `json:"id"`
	File              string    `json:"file"`
	Contributor       string    `json:"contributor"`
	Theme             string    `json:"theme"`
	RelicsTransmitted int       `json:"relics_transmitted"`
	Status            string    `json:"status"`
	TransmittedAt     time.Time `json:"transmitted_at"`
}

// Ledger is the append-only transmission history file.
type Ledger struct {
	path string
}

// NewLedger returns a ledger persisted at path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger location.
func (l *Ledger) Path() string { return l.path }

// Entries loads the ledger. A missing ledger is empty; an unparseable one is
// ErrCorruption and is never overwritten.
func (l *Ledger) Entries(ctx context.Context) ([]LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []LedgerEntry
	state, err := fileutil.ReadJSON(l.path, &entries)
	if state == fileutil.Absent {
		return []LedgerEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []LedgerEntry{}
	}
	return entries, nil
}

// Append adds entry to the ledger and rewrites it. Missing ID, status, and
// timestamp are filled in; the stored entry is returned.
func (l *Ledger) Append(ctx context.Context, entry LedgerEntry) (LedgerEntry, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return LedgerEntry{}, err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = StatusTransmitted
	}
	if entry.TransmittedAt.IsZero() {
		entry.TransmittedAt = time.Now()
	}
	entry.TransmittedAt = entry.TransmittedAt.UTC()
	entries = append(entries, entry)
	if err := fileutil.WriteJSONAtomic(l.path, entries); err != nil {
		return LedgerEntry{}, err
	}
	return entry, nil
}
