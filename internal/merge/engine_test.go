package merge_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"reliquary/internal/archive"
	"reliquary/internal/fingerprint"
	"reliquary/internal/merge"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

func newEngine(opts ...merge.Option) *merge.Engine {
	return merge.NewEngine(append([]merge.Option{merge.WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestMergeSplitsOnFirstColon(t *testing.T) {
	r, err := newEngine().Merge("Awaken Stars: Transmission: Sequence", "OMEGA")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if r.Event != "Awaken Stars" || r.Theme != "Transmission: Sequence" {
		t.Fatalf("unexpected split %q / %q", r.Event, r.Theme)
	}
	if r.Contributor != "OMEGA" || r.Status != relic.StatusMerged {
		t.Fatalf("unexpected contributor/status %q/%q", r.Contributor, r.Status)
	}
	if r.Provenance == nil || *r.Provenance != (relic.Provenance{Source: "merge", Method: "merge", Status: relic.StatusMerged}) {
		t.Fatalf("unexpected provenance %+v", r.Provenance)
	}
	if !r.Timestamp.Equal(fixedNow) || r.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp should be the injected clock in UTC, got %v", r.Timestamp)
	}
	if r.Glyph != fingerprint.Sum("Awaken Stars: Transmission: Sequence") {
		t.Fatalf("glyph is not sha256 of title: %s", r.Glyph)
	}
}

func TestMergeWithoutColonUsesUnknownTheme(t *testing.T) {
	r, err := newEngine().Merge("  Lone Signal  ", "")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if r.Event != "Lone Signal" || r.Theme != merge.UnknownTheme {
		t.Fatalf("unexpected %q / %q", r.Event, r.Theme)
	}
	if r.Contributor != relic.DefaultContributor {
		t.Fatalf("expected default contributor, got %q", r.Contributor)
	}
}

func TestMergeRejectsEmptyTitles(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n", ": theme only"} {
		if _, err := newEngine().Merge(title, "x"); !errors.Is(err, services.ErrInvalid) {
			t.Fatalf("Merge(%q) expected ErrInvalid, got %v", title, err)
		}
	}
}

func TestMergeEmptyThemeBecomesUnknown(t *testing.T) {
	r, err := newEngine().Merge("Flare:", "")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if r.Theme != merge.UnknownTheme {
		t.Fatalf("theme = %q", r.Theme)
	}
}

func TestMergeOptions(t *testing.T) {
	decoder := merge.DecoderFunc(func(title string) (string, string, error) {
		return strings.ToUpper(title), "custom", nil
	})
	engine := newEngine(
		merge.WithDecoder(decoder),
		merge.WithGlyphStrategy(fingerprint.MustLookup(fingerprint.BLAKE3)),
		merge.WithDefaultContributor("archivist"),
	)
	r, err := engine.Merge("quiet", "")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if r.Event != "QUIET" || r.Theme != "custom" || r.Contributor != "archivist" {
		t.Fatalf("options not applied: %+v", r)
	}
	if r.Glyph != fingerprint.MustLookup(fingerprint.BLAKE3).Sum([]byte("quiet")) {
		t.Fatalf("expected blake3 glyph")
	}

	failing := merge.DecoderFunc(func(string) (string, string, error) { return "", "", errors.New("model offline") })
	if _, err := newEngine(merge.WithDecoder(failing)).Merge("x", ""); !errors.Is(err, services.ErrInvalid) {
		t.Fatalf("decoder failure should surface as ErrInvalid, got %v", err)
	}
}

func TestColonSplitProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("event and theme are trimmed halves around the first colon", prop.ForAll(
		func(event, theme string) bool {
			title := event + ":" + theme
			gotEvent, gotTheme, err := merge.ColonDecoder{}.Decode(title)
			return err == nil &&
				gotEvent == strings.TrimSpace(event) &&
				gotTheme == strings.TrimSpace(theme)
		},
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.Property("titles without a colon keep the whole title", prop.ForAll(
		func(title string) bool {
			title = strings.ReplaceAll(title, ":", "")
			event, theme, _ := merge.ColonDecoder{}.Decode(title)
			return event == strings.TrimSpace(title) && theme == merge.UnknownTheme
		},
		gen.AnyString(),
	))

	properties.Property("same title yields same glyph", prop.ForAll(
		func(title string) bool {
			a, errA := newEngine().Merge("x"+title, "")
			b, errB := newEngine().Merge("x"+title, "someone")
			return errA == nil && errB == nil && a.Glyph == b.Glyph
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestMergeAppendSearchEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := archive.NewStore(archive.NewMemoryStorage(nil), nil)
	engine := newEngine()

	first, err := engine.Merge("Oak Space Night: Celestial Broadcast", "")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if _, err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := store.Search(ctx, archive.Query{Text: "Stars"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no match yet, got %+v", got)
	}

	second, err := engine.Merge("Awaken Stars: Transmission Sequence", "")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if _, err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err = store.Search(ctx, archive.Query{Text: "Stars"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Event != "Awaken Stars" || got[0].Theme != "Transmission Sequence" {
		t.Fatalf("unexpected search result %+v", got)
	}
	if got[0].ArchiveTag != "ARCH-002" {
		t.Fatalf("archive tag = %q", got[0].ArchiveTag)
	}
}
