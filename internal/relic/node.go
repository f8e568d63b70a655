package relic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ResurrectedSeal is the integrity marker written in place of an exit hash when
// a node relic is regenerated from a fallback template.
const ResurrectedSeal = "RESURRECTED"

// NodeStatusRestored is the status recorded on regenerated node relics.
const NodeStatusRestored = "restored"

// NodeRelic is the exit record a node leaves behind. The merge daemon folds
// many of these into one scroll.
type NodeRelic struct {
	Node      string    `json:"node"`
	Glyph     string    `json:"glyph"`
	Timestamp time.Time `json:"timestamp"`
	ExitHash  string    `json:"exit_hash"`
	Overlay   string    `json:"overlay,omitempty"`
	Status    string    `json:"status,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// Intact reports whether the node relic carries a non-empty glyph.
func (n NodeRelic) Intact() bool {
	return strings.TrimSpace(n.Glyph) != ""
}

// Resurrected reports whether the relic was regenerated from a template.
func (n NodeRelic) Resurrected() bool {
	return n.ExitHash == ResurrectedSeal
}

// SealPayload is the byte string an exit hash is computed over.
func SealPayload(node, glyph string, ts time.Time) []byte {
	return []byte(node + "|" + glyph + "|" + ts.UTC().Format(time.RFC3339Nano))
}

// naiveLayouts are accepted for node relic timestamps written without a zone
// offset. Such timestamps are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads an ISO-8601 instant. Offset-less values are UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not ISO-8601", value)
}

// UnmarshalJSON accepts offset-less timestamps alongside RFC 3339. A missing
// or empty timestamp decodes as the zero time.
func (n *NodeRelic) UnmarshalJSON(data []byte) error {
	type plain NodeRelic
	aux := struct {
		*plain
		Timestamp *string `json:"timestamp"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.Timestamp = time.Time{}
	if aux.Timestamp == nil || strings.TrimSpace(*aux.Timestamp) == "" {
		return nil
	}
	ts, err := ParseTimestamp(*aux.Timestamp)
	if err != nil {
		return err
	}
	n.Timestamp = ts
	return nil
}
