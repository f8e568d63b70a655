package mergedaemon

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reliquary/internal/exitseal"
	"reliquary/internal/fileutil"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

// Skip records a source that could not be absorbed.
type Skip struct {
	Path   string `json:"path"`
	State  string `json:"state"`
	Reason string `json:"reason"`
}

// Scroll is the persisted convergence record. The first four lists are
// order-aligned: index i of each describes the same absorbed node.
type Scroll struct {
	MergedTimestamp   time.Time `json:"merged_timestamp"`
	Nodes             []string  `json:"nodes"`
	Glyphs            []string  `json:"glyphs"`
	Overlays          []string  `json:"overlays"`
	Hashes            []string  `json:"hashes"`
	ValidatedGlyphs   []string  `json:"validated_glyphs"`
	Skipped           []Skip    `json:"skipped"`
	IntegrityFailures []string  `json:"integrity_failures"`
}

// Summary is the broadcast view of a scroll.
type Summary struct {
	MergedTimestamp   time.Time
	Nodes             []string
	Glyphs            []string
	Overlays          int
	Hashes            int
	Validated         int
	Skipped           int
	IntegrityFailures int
}

// Daemon accumulates node relics into a Scroll.
type Daemon struct {
	sealer *exitseal.Sealer
	logger *slog.Logger
	scroll Scroll
}

// New returns a daemon whose scroll is stamped with now. A nil sealer
// disables exit-hash verification.
func New(sealer *exitseal.Sealer, now func() time.Time, logger *slog.Logger) *Daemon {
	if now == nil {
		now = time.Now
	}
	return &Daemon{
		sealer: sealer,
		logger: logging.NewComponentLogger(logger, "mergedaemon"),
		scroll: Scroll{
			MergedTimestamp:   now().UTC(),
			Nodes:             []string{},
			Glyphs:            []string{},
			Overlays:          []string{},
			Hashes:            []string{},
			ValidatedGlyphs:   []string{},
			Skipped:           []Skip{},
			IntegrityFailures: []string{},
		},
	}
}

// Absorb reads each path in order. Missing and corrupt sources are skipped;
// only context cancellation and fatal I/O errors stop the run.
func (d *Daemon) Absorb(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, state, err := exitseal.Read(path)
		switch state {
		case fileutil.Absent:
			d.skip(path, state, "missing relic")
			continue
		case fileutil.Corrupt:
			d.skip(path, state, errorText(err))
			continue
		case fileutil.Fatal:
			return err
		}
		if strings.TrimSpace(n.Node) == "" {
			d.skip(path, fileutil.Corrupt, "relic has no node identifier")
			continue
		}
		d.absorb(ctx, path, n)
	}
	return nil
}

func (d *Daemon) absorb(ctx context.Context, path string, n relic.NodeRelic) {
	d.scroll.Nodes = append(d.scroll.Nodes, n.Node)
	d.scroll.Glyphs = append(d.scroll.Glyphs, n.Glyph)
	d.scroll.Overlays = append(d.scroll.Overlays, n.Overlay)
	d.scroll.Hashes = append(d.scroll.Hashes, n.ExitHash)
	if relic.IsValidGlyph(n.Glyph) {
		d.scroll.ValidatedGlyphs = append(d.scroll.ValidatedGlyphs, n.Glyph)
	}

	logger := logging.WithContext(services.WithNode(ctx, n.Node), d.logger)
	if d.sealer != nil {
		if _, err := d.sealer.Verify(n); err != nil {
			d.scroll.IntegrityFailures = append(d.scroll.IntegrityFailures, n.Node)
			logging.WarnWithContext(logger, "exit hash mismatch; relic absorbed unverified", "integrity_failure",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-seal the node or inspect its exit relic for tampering"),
				logging.String(logging.FieldImpact, "node listed under integrity_failures"),
			)
		}
	}
	logger.Debug("node absorbed",
		logging.String(logging.FieldPath, path),
		logging.Bool("glyph_valid", relic.IsValidGlyph(n.Glyph)),
		logging.String(logging.FieldEventType, "node_absorbed"),
	)
}

func (d *Daemon) skip(path string, state fileutil.State, reason string) {
	d.scroll.Skipped = append(d.scroll.Skipped, Skip{Path: path, State: state.String(), Reason: reason})
	logging.WarnWithContext(d.logger, "relic source skipped", "node_skipped",
		logging.String(logging.FieldPath, path),
		logging.String("state", state.String()),
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "restore the node with `reliquary resurrect` or fix the source file"),
		logging.String(logging.FieldImpact, "node excluded from the convergence scroll"),
	)
}

// Scroll returns a copy of the accumulated scroll.
func (d *Daemon) Scroll() Scroll {
	s := d.scroll
	s.Nodes = append([]string{}, s.Nodes...)
	s.Glyphs = append([]string{}, s.Glyphs...)
	s.Overlays = append([]string{}, s.Overlays...)
	s.Hashes = append([]string{}, s.Hashes...)
	s.ValidatedGlyphs = append([]string{}, s.ValidatedGlyphs...)
	s.Skipped = append([]Skip{}, s.Skipped...)
	s.IntegrityFailures = append([]string{}, s.IntegrityFailures...)
	return s
}

// Enshrine persists the scroll at path.
func (d *Daemon) Enshrine(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(path, d.scroll); err != nil {
		return err
	}
	d.logger.Info("scroll enshrined",
		logging.String(logging.FieldPath, path),
		logging.Int("nodes", len(d.scroll.Nodes)),
		logging.Int("skipped", len(d.scroll.Skipped)),
		logging.String(logging.FieldEventType, "scroll_enshrined"),
	)
	return nil
}

// Summary condenses the scroll for display.
func (d *Daemon) Summary() Summary {
	return Summary{
		MergedTimestamp:   d.scroll.MergedTimestamp,
		Nodes:             append([]string{}, d.scroll.Nodes...),
		Glyphs:            append([]string{}, d.scroll.Glyphs...),
		Overlays:          len(d.scroll.Overlays),
		Hashes:            len(d.scroll.Hashes),
		Validated:         len(d.scroll.ValidatedGlyphs),
		Skipped:           len(d.scroll.Skipped),
		IntegrityFailures: len(d.scroll.IntegrityFailures),
	}
}

// LoadScroll reads a previously enshrined scroll.
func LoadScroll(path string) (Scroll, error) {
	var s Scroll
	state, err := fileutil.ReadJSON(path, &s)
	if state == fileutil.Absent {
		return Scroll{}, services.Wrap(services.ErrNotFound, "mergedaemon", "load scroll", path, nil)
	}
	return s, err
}

func errorText(err error) string {
	if err == nil {
		return "unparseable relic"
	}
	return err.Error()
}
