package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reliquary/internal/archive"
	"reliquary/internal/fingerprint"
	"reliquary/internal/merge"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var contributor string
	cmd := &cobra.Command{
		Use:   "merge <title>",
		Short: "Decode a title into a relic and append it to the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			strategy, err := fingerprint.Lookup(cfg.Fingerprint.Glyph)
			if err != nil {
				return err
			}
			engine := merge.NewEngine(
				merge.WithGlyphStrategy(strategy),
				merge.WithDefaultContributor(cfg.Merge.DefaultContributor),
			)
			r, err := engine.Merge(strings.Join(args, " "), contributor)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			archived, err := store.Append(commandCtx(cmd), r)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, archived)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Archived %s\n", archived.ArchiveTag)
			fmt.Fprintf(out, "  Event:       %s\n", archived.Event)
			fmt.Fprintf(out, "  Theme:       %s\n", archived.Theme)
			fmt.Fprintf(out, "  Contributor: %s\n", archived.ContributorOrDefault())
			fmt.Fprintf(out, "  Glyph:       %s\n", archived.Glyph)
			return nil
		},
	}
	cmd.Flags().StringVarP(&contributor, "contributor", "C", "", "Contributor recorded on the relic")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search the archive by event, theme, or contributor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := archive.Query{Text: strings.Join(args, " ")}
			for _, name := range fields {
				field, ok := archive.ParseField(name)
				if !ok {
					return fmt.Errorf("unknown search field %q (want event, theme, or contributor)", name)
				}
				query.Fields = append(query.Fields, field)
			}
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			results, err := store.Search(commandCtx(cmd), query)
			if err != nil {
				return err
			}
			return printRelics(cmd, ctx, results, "No relics matched.")
		},
	}
	cmd.Flags().StringSliceVarP(&fields, "field", "f", nil, "Restrict search to fields (event, theme, contributor)")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every relic in the archive",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			relics, err := store.Load(commandCtx(cmd))
			if err != nil {
				return err
			}
			return printRelics(cmd, ctx, relics, "Archive is empty.")
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <index|tag>",
		Short: "Show one relic by 1-based index or archive tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			r, err := lookupRelic(cmd, store, args[0])
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, r)
			}
			rows := [][]string{
				{"Tag", r.ArchiveTag},
				{"Event", r.Event},
				{"Theme", r.Theme},
				{"Contributor", r.ContributorOrDefault()},
				{"Timestamp", r.Timestamp.Format(time.RFC3339)},
				{"Glyph", r.Glyph},
				{"Status", string(r.Status)},
			}
			if r.Provenance != nil {
				rows = append(rows, []string{"Provenance", r.Provenance.Source + "/" + r.Provenance.Method})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{Header: "Field"}, {Header: "Value", Width: 72}}, rows))
			return nil
		},
	}
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dest>",
		Short: "Write a verified copy of the persisted archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Backup(commandCtx(cmd), args[0]); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"source": store.Location(), "backup": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %s to %s\n", store.Location(), args[0])
			return nil
		},
	}
}

// lookupRelic resolves an ARCH-NNN tag by scanning the archive and a bare
// number by position.
func lookupRelic(cmd *cobra.Command, store *archive.Store, ref string) (relic.Relic, error) {
	ref = strings.TrimSpace(ref)
	tag := strings.ToUpper(ref)
	if _, ok := archive.ParseTag(tag); ok {
		relics, err := store.Load(commandCtx(cmd))
		if err != nil {
			return relic.Relic{}, err
		}
		for _, r := range relics {
			if r.ArchiveTag == tag {
				return r, nil
			}
		}
		return relic.Relic{}, services.Wrap(services.ErrNotFound, "archive", "show", "no relic tagged "+tag, nil)
	}
	index, err := strconv.Atoi(ref)
	if err != nil || index < 1 {
		return relic.Relic{}, fmt.Errorf("invalid relic reference %q (want a positive index or ARCH-NNN)", ref)
	}
	return store.Get(commandCtx(cmd), index)
}

func printRelics(cmd *cobra.Command, ctx *commandContext, relics []relic.Relic, empty string) error {
	if ctx.jsonOutput() {
		if relics == nil {
			relics = []relic.Relic{}
		}
		return writeJSON(cmd, relics)
	}
	out := cmd.OutOrStdout()
	if len(relics) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}
	fmt.Fprintln(out, renderTable(relicColumns, relicRows(relics)))
	return nil
}

var relicColumns = columns("Tag", "Event", "Theme", "Contributor", "Timestamp", "Status")

func relicRows(relics []relic.Relic) [][]string {
	rows := make([][]string, 0, len(relics))
	for _, r := range relics {
		tag := r.ArchiveTag
		if r.VaultTag != "" && tag == "" {
			tag = r.VaultTag
		}
		rows = append(rows, []string{
			tag,
			r.Event,
			r.Theme,
			r.ContributorOrDefault(),
			r.Timestamp.Format(time.RFC3339),
			string(r.Status),
		})
	}
	return rows
}
