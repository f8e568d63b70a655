package archive

import (
	"strings"

	"golang.org/x/text/cases"

	"reliquary/internal/relic"
)

// Field selects which relic attribute a Query inspects.
type Field string

const (
	FieldEvent       Field = "event"
	FieldTheme       Field = "theme"
	FieldContributor Field = "contributor"
)

// AllFields is the default search scope.
var AllFields = []Field{FieldEvent, FieldTheme, FieldContributor}

// ParseField maps a user-supplied field name onto a Field.
func ParseField(name string) (Field, bool) {
	switch Field(strings.ToLower(strings.TrimSpace(name))) {
	case FieldEvent:
		return FieldEvent, true
	case FieldTheme:
		return FieldTheme, true
	case FieldContributor:
		return FieldContributor, true
	}
	return "", false
}

// Query is a case-insensitive substring match over the selected fields. A
// relic matches when any selected field contains Text. Empty Fields means
// AllFields; empty Text matches every relic.
type Query struct {
	Text   string
	Fields []Field
}

// Match reports whether r satisfies q.
func (q Query) Match(r relic.Relic) bool {
	needle := Fold(strings.TrimSpace(q.Text))
	if needle == "" {
		return true
	}
	fields := q.Fields
	if len(fields) == 0 {
		fields = AllFields
	}
	for _, f := range fields {
		var value string
		switch f {
		case FieldEvent:
			value = r.Event
		case FieldTheme:
			value = r.Theme
		case FieldContributor:
			value = r.ContributorOrDefault()
		}
		if strings.Contains(Fold(value), needle) {
			return true
		}
	}
	return false
}

// Fold applies Unicode case folding so comparisons ignore case across scripts.
func Fold(s string) string {
	return cases.Fold().String(s)
}
