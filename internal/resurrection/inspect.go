package resurrection

import (
	"encoding/json"
	"strings"

	"reliquary/internal/fileutil"
)

// relicShape is the part of a node relic inspection depends on. Other fields
// are not interpreted, so an unusual timestamp or extra key never makes a
// relic corrupt.
type relicShape struct {
	Glyph json.RawMessage `json:"glyph"`
}

// Inspect classifies the node relic at path. CORRUPT covers content that is
// not a JSON object and content without a non-empty string glyph. detail
// describes the finding; for IO_FATAL it carries the error text and err is set.
func Inspect(path string) (state fileutil.State, detail string, err error) {
	var shape relicShape
	state, err = fileutil.ReadJSON(path, &shape)
	switch state {
	case fileutil.Absent:
		return state, "relic missing", nil
	case fileutil.Corrupt:
		return state, "relic unreadable: " + err.Error(), nil
	case fileutil.Fatal:
		return state, err.Error(), err
	}
	var glyph string
	if len(shape.Glyph) == 0 || json.Unmarshal(shape.Glyph, &glyph) != nil || strings.TrimSpace(glyph) == "" {
		return fileutil.Corrupt, "glyph missing or empty", nil
	}
	return fileutil.Intact, "relic intact", nil
}
