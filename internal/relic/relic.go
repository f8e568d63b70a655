package relic

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"reliquary/internal/services"
)

// DefaultContributor is recorded when no contributor is supplied.
const DefaultContributor = "Unknown"

// Status is the provenance marker carried by a relic.
type Status string

const (
	StatusDecoded   Status = "Decoded"
	StatusMerged    Status = "Merged"
	StatusArchived  Status = "Archived"
	StatusEncrypted Status = "Encrypted"
	StatusPrepared  Status = "Prepared"
	StatusRestored  Status = "Restored"
)

// Provenance records which component created a relic and how.
type Provenance struct {
	Source string `json:"source"`
	Method string `json:"method,omitempty"`
	Status Status `json:"status"`
}

// TagLog is attached alongside a scoped tag. Index is the 1-based position the
// tag was derived from.
type TagLog struct {
	Source      string `json:"source"`
	Method      string `json:"method,omitempty"`
	Status      Status `json:"status"`
	Index       int    `json:"index,omitempty"`
	Contributor string `json:"contributor,omitempty"`
	Theme       string `json:"theme,omitempty"`
}

// Relic is the core archive record.
type Relic struct {
	Event       string      `json:"event"`
	Theme       string      `json:"theme"`
	Timestamp   time.Time   `json:"timestamp"`
	Glyph       string      `json:"glyph"`
	Contributor string      `json:"contributor"`
	Status      Status      `json:"status"`
	Provenance  *Provenance `json:"provenance,omitempty"`

	ArchiveTag      string  `json:"archive_tag,omitempty"`
	ArchiveLog      *TagLog `json:"archive_log,omitempty"`
	VaultTag        string  `json:"vault_tag,omitempty"`
	VaultLog        *TagLog `json:"vault_log,omitempty"`
	TransmissionTag string  `json:"transmission_tag,omitempty"`
	TransmissionLog *TagLog `json:"transmission_log,omitempty"`
}

// Fields holds the caller-supplied values for New.
type Fields struct {
	Event       string
	Theme       string
	Timestamp   time.Time
	Glyph       string
	Contributor string
	Status      Status
	Provenance  *Provenance
}

// New builds a validated relic. The timestamp is normalized to UTC and an empty
// contributor becomes DefaultContributor.
func New(f Fields) (Relic, error) {
	r := Relic{
		Event:       strings.TrimSpace(f.Event),
		Theme:       strings.TrimSpace(f.Theme),
		Timestamp:   f.Timestamp.UTC(),
		Glyph:       strings.TrimSpace(f.Glyph),
		Contributor: strings.TrimSpace(f.Contributor),
		Status:      f.Status,
		Provenance:  f.Provenance,
	}
	if r.Contributor == "" {
		r.Contributor = DefaultContributor
	}
	if err := r.Validate(); err != nil {
		return Relic{}, err
	}
	return r, nil
}

// Validate enforces the persistence invariant: event, theme, timestamp, and
// glyph are all present.
func (r Relic) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Event) == "" {
		missing = append(missing, "event")
	}
	if strings.TrimSpace(r.Theme) == "" {
		missing = append(missing, "theme")
	}
	if r.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if strings.TrimSpace(r.Glyph) == "" {
		missing = append(missing, "glyph")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrInvalid, "relic", "validate",
			fmt.Sprintf("missing %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}

// ContributorOrDefault returns the contributor, substituting DefaultContributor
// for records written before the field was required.
func (r Relic) ContributorOrDefault() string {
	if c := strings.TrimSpace(r.Contributor); c != "" {
		return c
	}
	return DefaultContributor
}

// SameContent reports whether two relics agree on every semantic field. Tag
// and log fields are ignored.
func (r Relic) SameContent(other Relic) bool {
	return r.Event == other.Event &&
		r.Theme == other.Theme &&
		r.Timestamp.Equal(other.Timestamp) &&
		r.Glyph == other.Glyph &&
		r.ContributorOrDefault() == other.ContributorOrDefault()
}

// ValidateAll checks every relic and reports the first failure with its
// 1-based position.
func ValidateAll(relics []Relic) error {
	for i, r := range relics {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("relic %d: %w", i+1, err)
		}
	}
	return nil
}

// Clone returns a deep copy so tagging a subset never aliases the master
// archive's log pointers.
func Clone(relics []Relic) []Relic {
	if relics == nil {
		return nil
	}
	out := make([]Relic, len(relics))
	for i, r := range relics {
		out[i] = r
		if r.Provenance != nil {
			p := *r.Provenance
			out[i].Provenance = &p
		}
		out[i].ArchiveLog = cloneLog(r.ArchiveLog)
		out[i].VaultLog = cloneLog(r.VaultLog)
		out[i].TransmissionLog = cloneLog(r.TransmissionLog)
	}
	return out
}

func cloneLog(l *TagLog) *TagLog {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// IsValidGlyph reports whether glyph is non-empty and contains at least one
// alphanumeric character.
func IsValidGlyph(glyph string) bool {
	for _, r := range glyph {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// ErrEmptyGlyph is returned when a node relic carries no glyph.
var ErrEmptyGlyph = errors.New("glyph is empty")
