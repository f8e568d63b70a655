package sharing

import (
	"fmt"
	"strings"

	"reliquary/internal/relic"
)

const (
	logSource  = "sharing"
	allScope   = "ALL"
	allDisplay = "All"
)

// TagTransmission returns copies of subset carrying TX-<CONTRIBUTOR>-<THEME>-NNN
// tags, numbered from 1, plus a transmission log naming the filters used.
func TagTransmission(subset []relic.Relic, contributor, theme string) []relic.Relic {
	contributor = strings.TrimSpace(contributor)
	theme = strings.TrimSpace(theme)
	out := relic.Clone(subset)
	for i := range out {
		out[i].TransmissionTag = FormatTag(contributor, theme, i+1)
		out[i].TransmissionLog = &relic.TagLog{
			Source:      logSource,
			Status:      relic.StatusPrepared,
			Index:       i + 1,
			Contributor: orDefault(contributor, allDisplay),
			Theme:       orDefault(theme, allDisplay),
		}
	}
	return out
}

// FormatTag renders one transmission tag.
func FormatTag(contributor, theme string, seq int) string {
	return strings.ToUpper(fmt.Sprintf("TX-%s-%s-%03d",
		orDefault(contributor, allScope), orDefault(theme, allScope), seq))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
