package merge

import (
	"strings"
	"time"

	"reliquary/internal/fingerprint"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

// Provenance values stamped on every merged relic.
const (
	ProvenanceSource = "merge"
	ProvenanceMethod = "merge"
)

// Engine builds relics from titles.
type Engine struct {
	decoder            Decoder
	glyph              fingerprint.Strategy
	now                func() time.Time
	defaultContributor string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDecoder replaces the default ColonDecoder.
func WithDecoder(d Decoder) Option {
	return func(e *Engine) {
		if d != nil {
			e.decoder = d
		}
	}
}

// WithGlyphStrategy selects the digest used for glyphs.
func WithGlyphStrategy(s fingerprint.Strategy) Option {
	return func(e *Engine) {
		if s != nil {
			e.glyph = s
		}
	}
}

// WithClock injects the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithDefaultContributor sets the contributor used when Merge receives none.
func WithDefaultContributor(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.defaultContributor = name
		}
	}
}

// NewEngine returns an engine with the colon decoder, the default glyph
// strategy and the wall clock unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		decoder:            ColonDecoder{},
		glyph:              fingerprint.Glyph(),
		now:                time.Now,
		defaultContributor: relic.DefaultContributor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge decodes title and returns a new Merged relic. The glyph is the
// digest of the title exactly as supplied.
func (e *Engine) Merge(title, contributor string) (relic.Relic, error) {
	if strings.TrimSpace(title) == "" {
		return relic.Relic{}, services.Wrap(services.ErrInvalid, "merge", "decode", "title is empty", nil)
	}
	event, theme, err := e.decoder.Decode(title)
	if err != nil {
		return relic.Relic{}, services.Wrap(services.ErrInvalid, "merge", "decode", title, err)
	}
	if strings.TrimSpace(theme) == "" {
		theme = UnknownTheme
	}
	if strings.TrimSpace(event) == "" {
		return relic.Relic{}, services.Wrap(services.ErrInvalid, "merge", "decode",
			"title "+title+" has no event", nil)
	}
	if strings.TrimSpace(contributor) == "" {
		contributor = e.defaultContributor
	}
	return relic.New(relic.Fields{
		Event:       event,
		Theme:       theme,
		Timestamp:   e.now().UTC(),
		Glyph:       e.glyph.Sum([]byte(title)),
		Contributor: contributor,
		Status:      relic.StatusMerged,
		Provenance: &relic.Provenance{
			Source: ProvenanceSource,
			Method: ProvenanceMethod,
			Status: relic.StatusMerged,
		},
	})
}

// GlyphStrategy reports the strategy the engine fingerprints with.
func (e *Engine) GlyphStrategy() fingerprint.Strategy {
	return e.glyph
}
