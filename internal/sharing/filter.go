package sharing

import (
	"strings"

	"reliquary/internal/archive"
	"reliquary/internal/relic"
)

// Filter returns the relics whose contributor equals contributor under
// Unicode case folding and whose theme contains theme case-insensitively. An
// empty filter value matches everything. Order is preserved.
func Filter(relics []relic.Relic, contributor, theme string) []relic.Relic {
	wantContributor := archive.Fold(strings.TrimSpace(contributor))
	wantTheme := archive.Fold(strings.TrimSpace(theme))
	out := make([]relic.Relic, 0, len(relics))
	for _, r := range relics {
		if wantContributor != "" && archive.Fold(r.ContributorOrDefault()) != wantContributor {
			continue
		}
		if wantTheme != "" && !strings.Contains(archive.Fold(r.Theme), wantTheme) {
			continue
		}
		out = append(out, r)
	}
	return out
}
