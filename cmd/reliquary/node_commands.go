package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reliquary/internal/exitseal"
	"reliquary/internal/fingerprint"
	"reliquary/internal/manifest"
	"reliquary/internal/mergedaemon"
	"reliquary/internal/resurrection"
	"reliquary/internal/services"
)

func (c *commandContext) sealer() (*exitseal.Sealer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	strategy, err := fingerprint.Lookup(cfg.Fingerprint.Seal)
	if err != nil {
		return nil, err
	}
	return exitseal.New(strategy, nil, c.loggerValue()), nil
}

func newSealCommand(ctx *commandContext) *cobra.Command {
	var overlay string
	var out string
	cmd := &cobra.Command{
		Use:   "seal <node> <glyph>",
		Short: "Write a sealed exit relic for a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sealer, err := ctx.sealer()
			if err != nil {
				return err
			}
			n, err := sealer.Seal(args[0], args[1], overlay)
			if err != nil {
				return err
			}
			if out == "" {
				return writeJSON(cmd, n)
			}
			if err := sealer.Write(commandCtx(cmd), out, n); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sealed node %s at %s (exit hash %s)\n", n.Node, out, n.ExitHash)
			return nil
		},
	}
	cmd.Flags().StringVar(&overlay, "overlay", "", "Opaque overlay markup stored with the relic")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the relic to this path instead of stdout")
	return cmd
}

func newConvergeCommand(ctx *commandContext) *cobra.Command {
	var out string
	var noVerify bool
	cmd := &cobra.Command{
		Use:   "converge [relic-path...]",
		Short: "Merge node exit relics into the merge scroll",
		Long: "Merge node exit relics into the merge scroll. Without arguments the " +
			"[merge] sources are used, falling back to the relic paths in the node manifest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			paths, err := convergeSources(args, cfg.Merge.Sources, cfg.Resurrection.ManifestPath)
			if err != nil {
				return err
			}
			var sealer *exitseal.Sealer
			if !noVerify {
				if sealer, err = ctx.sealer(); err != nil {
					return err
				}
			}
			md := mergedaemon.New(sealer, nil, ctx.loggerValue())
			if err := md.Absorb(commandCtx(cmd), paths); err != nil {
				return err
			}
			target := out
			if target == "" {
				target = cfg.Merge.ScrollPath
			}
			if err := md.Enshrine(commandCtx(cmd), target); err != nil {
				return err
			}
			summary := md.Summary()
			if ctx.jsonOutput() {
				return writeJSON(cmd, md.Scroll())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scroll enshrined at %s\n", target)
			sw := newStatusWriter(cmd.OutOrStdout())
			sw.line("Nodes merged", statusOK, strconv.Itoa(len(summary.Nodes)))
			sw.line("Validated glyphs", statusOK, strconv.Itoa(summary.Validated))
			sw.line("Skipped sources", countKind(summary.Skipped, statusWarn), strconv.Itoa(summary.Skipped))
			sw.line("Integrity failures", countKind(summary.IntegrityFailures, statusError), strconv.Itoa(summary.IntegrityFailures))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Scroll destination (defaults to merge.scroll_path)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip exit hash verification")
	return cmd
}

func convergeSources(args, configured []string, manifestPath string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(configured) > 0 {
		return configured, nil
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, fmt.Errorf("no relic paths given, merge.sources is empty, and %w", err)
		}
		return nil, err
	}
	return m.RelicPaths(), nil
}

func newResurrectCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "resurrect [node-id...]",
		Short: "Inspect manifest nodes and restore missing or corrupt relics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m, err := manifest.Load(cfg.Resurrection.ManifestPath)
			if err != nil {
				return err
			}
			nodes := m.Nodes
			if len(args) > 0 {
				nodes = make([]manifest.Node, 0, len(args))
				for _, id := range args {
					node, ok := m.Lookup(id)
					if !ok {
						return services.Wrap(services.ErrNotFound, "resurrect", "lookup", "node "+id+" is not in the manifest", nil)
					}
					nodes = append(nodes, node)
				}
			}

			glyph, err := fingerprint.Lookup(cfg.Fingerprint.Glyph)
			if err != nil {
				return err
			}
			opts := []resurrection.Option{
				resurrection.WithLogPath(cfg.Resurrection.LogPath),
				resurrection.WithGlyphStrategy(glyph),
			}
			if cfg.Resurrection.FeedArchive {
				store, err := ctx.openStore(cmd)
				if err != nil {
					return err
				}
				opts = append(opts, resurrection.WithArchive(store))
			}
			d := resurrection.New(ctx.loggerValue(), opts...)

			type row struct {
				Node     string `json:"node"`
				Path     string `json:"path"`
				State    string `json:"state"`
				Terminal string `json:"terminal"`
			}
			rows := make([]row, 0, len(nodes))
			for _, node := range nodes {
				if force {
					prior, _, _ := resurrection.Inspect(node.RelicPath)
					if _, err := d.Restore(commandCtx(cmd), node.RelicPath, node.Template); err != nil {
						return err
					}
					rows = append(rows, row{node.NodeID, node.RelicPath, prior.String(), string(resurrection.TerminalRestored)})
					continue
				}
				outcome, err := d.Run(commandCtx(cmd), node.RelicPath, node.Template)
				if err != nil {
					return err
				}
				rows = append(rows, row{node.NodeID, node.RelicPath, outcome.State.String(), string(outcome.Terminal)})
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Manifest lists no nodes.")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				table = append(table, []string{r.Node, r.State, r.Terminal, r.Path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(columns("Node", "Found", "Result", "Path"), table))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate relics even when they inspect as intact")
	return cmd
}

