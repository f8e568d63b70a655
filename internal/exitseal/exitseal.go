// Package exitseal produces the exit relic a node leaves behind: its glyph,
// an opaque overlay, and an exit hash sealing node, glyph and timestamp.
package exitseal

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reliquary/internal/fileutil"
	"reliquary/internal/fingerprint"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

// Sealer creates and verifies node exit relics.
type Sealer struct {
	strategy fingerprint.Strategy
	now      func() time.Time
	logger   *slog.Logger
}

// New returns a Sealer. A nil strategy uses fingerprint.Seal; a nil clock uses
// time.Now.
func New(strategy fingerprint.Strategy, now func() time.Time, logger *slog.Logger) *Sealer {
	if strategy == nil {
		strategy = fingerprint.Seal()
	}
	if now == nil {
		now = time.Now
	}
	return &Sealer{strategy: strategy, now: now, logger: logging.NewComponentLogger(logger, "exitseal")}
}

// Seal builds an exit relic for node. The glyph must be valid.
func (s *Sealer) Seal(node, glyph, overlay string) (relic.NodeRelic, error) {
	node = strings.TrimSpace(node)
	glyph = strings.TrimSpace(glyph)
	if node == "" {
		return relic.NodeRelic{}, services.Wrap(services.ErrInvalid, "exitseal", "seal", "node is empty", nil)
	}
	if !relic.IsValidGlyph(glyph) {
		return relic.NodeRelic{}, services.Wrap(services.ErrIntegrity, "exitseal", "seal",
			"glyph "+glyph+" has no alphanumeric content", nil)
	}
	ts := s.now().UTC()
	return relic.NodeRelic{
		Node:      node,
		Glyph:     glyph,
		Timestamp: ts,
		ExitHash:  s.strategy.Sum(relic.SealPayload(node, glyph, ts)),
		Overlay:   overlay,
	}, nil
}

// Verify recomputes the exit hash. Resurrected relics and hashes that are not
// hex digests cannot be verified and report false with a nil error; a hex hash
// that does not match reports ErrIntegrity.
func (s *Sealer) Verify(n relic.NodeRelic) (bool, error) {
	if n.Resurrected() || !fingerprint.IsHex(n.ExitHash) {
		return false, nil
	}
	want := s.strategy.Sum(relic.SealPayload(n.Node, n.Glyph, n.Timestamp))
	if want != n.ExitHash {
		return false, services.Wrap(services.ErrIntegrity, "exitseal", "verify",
			"exit hash mismatch for node "+n.Node, nil)
	}
	return true, nil
}

// Write persists n at path, replacing any previous relic.
func (s *Sealer) Write(ctx context.Context, path string, n relic.NodeRelic) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(path, n); err != nil {
		return err
	}
	s.logger.Info("exit relic sealed",
		logging.String(logging.FieldNode, n.Node),
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldEventType, "exit_sealed"),
		logging.String("strategy", s.strategy.Name()),
	)
	return nil
}

// Read loads the exit relic at path and reports what was found.
func Read(path string) (relic.NodeRelic, fileutil.State, error) {
	var n relic.NodeRelic
	state, err := fileutil.ReadJSON(path, &n)
	return n, state, err
}
