package resurrection

import (
	"strings"

	"reliquary/internal/services"
)

// DefaultReason is recorded when a template names no reason.
const DefaultReason = "Missing or corrupted relic"

// Template is the fallback a node relic is regenerated from.
type Template struct {
	NodeID         string `json:"node_id" yaml:"node_id"`
	GlyphSignature string `json:"glyph_signature" yaml:"glyph_signature"`
	Overlay        string `json:"overlay,omitempty" yaml:"overlay,omitempty"`
	Reason         string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Normalize trims fields and fills the default reason.
func (t Template) Normalize() Template {
	t.NodeID = strings.TrimSpace(t.NodeID)
	t.GlyphSignature = strings.TrimSpace(t.GlyphSignature)
	t.Reason = strings.TrimSpace(t.Reason)
	if t.Reason == "" {
		t.Reason = DefaultReason
	}
	return t
}

// Validate rejects templates whose output would itself inspect as corrupt.
func (t Template) Validate() error {
	t = t.Normalize()
	if t.NodeID == "" {
		return services.Wrap(services.ErrInvalid, "resurrection", "template", "node_id is required", nil)
	}
	if t.GlyphSignature == "" {
		return services.Wrap(services.ErrInvalid, "resurrection", "template",
			"glyph_signature is required for node "+t.NodeID, nil)
	}
	return nil
}
