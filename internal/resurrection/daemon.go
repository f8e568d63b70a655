package resurrection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"reliquary/internal/archive"
	"reliquary/internal/fileutil"
	"reliquary/internal/fingerprint"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

// Terminal is the end state of one inspection.
type Terminal string

const (
	TerminalRestored Terminal = "Restored"
	TerminalVerified Terminal = "Verified"
)

// ArchiveTheme is the theme of relics fed back into the archive.
const ArchiveTheme = "Resurrection"

// Outcome reports one Run.
type Outcome struct {
	Path     string
	State    fileutil.State
	Terminal Terminal
	Relic    relic.NodeRelic
	Archived *relic.Relic
	Log      []LogEntry
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Daemon) {
		if now != nil {
			d.now = now
		}
	}
}

// WithArchive feeds every restored node into store as a Restored relic.
func WithArchive(store *archive.Store) Option {
	return func(d *Daemon) { d.store = store }
}

// WithLogPath persists inspection log entries to path after each Run.
func WithLogPath(path string) Option {
	return func(d *Daemon) { d.logPath = path }
}

// WithGlyphStrategy sets the fingerprint used for archive feedback relics.
func WithGlyphStrategy(s fingerprint.Strategy) Option {
	return func(d *Daemon) {
		if s != nil {
			d.glyph = s
		}
	}
}

// Daemon inspects and restores node relic locations.
type Daemon struct {
	now     func() time.Time
	store   *archive.Store
	logPath string
	glyph   fingerprint.Strategy
	logger  *slog.Logger

	mu  sync.Mutex
	log []LogEntry
}

// New returns a daemon with the given options.
func New(logger *slog.Logger, opts ...Option) *Daemon {
	d := &Daemon{
		now:    time.Now,
		glyph:  fingerprint.Glyph(),
		logger: logging.NewComponentLogger(logger, "resurrection"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Log returns every entry recorded by this daemon since construction.
func (d *Daemon) Log() []LogEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]LogEntry(nil), d.log...)
}

// Run inspects path and restores it from tpl when it is absent or corrupt.
func (d *Daemon) Run(ctx context.Context, path string, tpl Template) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	tpl = tpl.Normalize()
	ctx = services.WithNode(ctx, tpl.NodeID)
	logger := logging.WithContext(ctx, d.logger)

	state, detail, err := Inspect(path)
	if err != nil {
		return Outcome{Path: path, State: state}, err
	}
	out := Outcome{Path: path, State: state}
	out.Log = append(out.Log, d.record(path, tpl.NodeID, state, ActionInspected, detail))

	if state == fileutil.Intact {
		out.Terminal = TerminalVerified
		out.Log = append(out.Log, d.record(path, tpl.NodeID, state, ActionVerified, ""))
		logger.Debug("node relic verified",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldEventType, "node_verified"),
		)
		return out, d.persist(out.Log)
	}

	logging.WarnWithContext(logger, "node relic needs restoration", "node_"+stateEvent(state),
		logging.String(logging.FieldPath, path),
		logging.String("detail", detail),
		logging.String(logging.FieldErrorHint, "regenerating from the fallback template"),
		logging.String(logging.FieldImpact, "original exit seal is replaced by the resurrection marker"),
	)
	restored, entries, archived, err := d.restore(ctx, path, tpl, state)
	out.Log = append(out.Log, entries...)
	if err != nil {
		_ = d.persist(out.Log)
		return out, err
	}
	out.Terminal = TerminalRestored
	out.Relic = restored
	out.Archived = archived
	return out, d.persist(out.Log)
}

// Restore regenerates the node relic at path from tpl regardless of what is
// stored there.
func (d *Daemon) Restore(ctx context.Context, path string, tpl Template) (relic.NodeRelic, error) {
	if err := ctx.Err(); err != nil {
		return relic.NodeRelic{}, err
	}
	tpl = tpl.Normalize()
	state, _, _ := Inspect(path)
	restored, entries, _, err := d.restore(services.WithNode(ctx, tpl.NodeID), path, tpl, state)
	if perr := d.persist(entries); err == nil {
		err = perr
	}
	return restored, err
}

func (d *Daemon) restore(ctx context.Context, path string, tpl Template, prior fileutil.State) (relic.NodeRelic, []LogEntry, *relic.Relic, error) {
	if err := tpl.Validate(); err != nil {
		return relic.NodeRelic{}, nil, nil, err
	}
	n := relic.NodeRelic{
		Node:      tpl.NodeID,
		Glyph:     tpl.GlyphSignature,
		Timestamp: d.now().UTC(),
		ExitHash:  relic.ResurrectedSeal,
		Overlay:   tpl.Overlay,
		Status:    relic.NodeStatusRestored,
		Reason:    tpl.Reason,
	}
	if d.store != nil {
		// An unreadable archive refuses the restoration before the relic changes.
		if _, err := d.store.Load(ctx); err != nil {
			return relic.NodeRelic{}, nil, nil, err
		}
	}
	if err := fileutil.WriteJSONAtomic(path, n); err != nil {
		return relic.NodeRelic{}, nil, nil, err
	}
	entries := []LogEntry{d.record(path, n.Node, prior, ActionRestored, tpl.Reason)}
	logging.WithContext(ctx, d.logger).Info("node relic resurrected",
		logging.String(logging.FieldPath, path),
		logging.String("reason", tpl.Reason),
		logging.String(logging.FieldEventType, "node_restored"),
	)

	if d.store == nil {
		return n, entries, nil, nil
	}
	archived, err := d.feedArchive(ctx, n)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "restored node not archived", "archive_feedback_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the archive with `reliquary status`"),
			logging.String(logging.FieldImpact, "node relic restored; archive has no Restored relic for it"),
		)
		return n, entries, nil, nil
	}
	entries = append(entries, d.record(path, n.Node, prior, ActionArchived, archived.ArchiveTag))
	return n, entries, &archived, nil
}

func (d *Daemon) feedArchive(ctx context.Context, n relic.NodeRelic) (relic.Relic, error) {
	r, err := relic.New(relic.Fields{
		Event:       n.Node,
		Theme:       ArchiveTheme,
		Timestamp:   n.Timestamp,
		Glyph:       d.glyph.Sum(relic.SealPayload(n.Node, n.Glyph, n.Timestamp)),
		Contributor: n.Node,
		Status:      relic.StatusRestored,
		Provenance: &relic.Provenance{
			Source: "resurrection",
			Method: "restore",
			Status: relic.StatusRestored,
		},
	})
	if err != nil {
		return relic.Relic{}, err
	}
	return d.store.Append(ctx, r)
}

func (d *Daemon) record(path, node string, state fileutil.State, action, detail string) LogEntry {
	entry := LogEntry{
		At:     d.now().UTC(),
		Path:   path,
		Node:   node,
		State:  state.String(),
		Action: action,
		Detail: detail,
	}
	d.mu.Lock()
	d.log = append(d.log, entry)
	d.mu.Unlock()
	return entry
}

func (d *Daemon) persist(entries []LogEntry) error {
	return appendLog(d.logPath, entries)
}

func stateEvent(state fileutil.State) string {
	if state == fileutil.Absent {
		return "absent"
	}
	return "corrupt"
}
