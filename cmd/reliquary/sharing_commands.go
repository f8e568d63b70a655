package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reliquary/internal/sharing"
)

func newTransmitCommand(ctx *commandContext) *cobra.Command {
	var contributor string
	var theme string
	cmd := &cobra.Command{
		Use:   "transmit",
		Short: "Export a filtered archive subset as a transmission package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cmd)
			if err != nil {
				return err
			}
			protocol := sharing.NewProtocol(store, cfg.Sharing.ShareDir,
				sharing.NewLedger(cfg.Sharing.LedgerPath), nil, ctx.loggerValue())
			result, err := protocol.Transmit(commandCtx(cmd), contributor, theme)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"status": result.Status,
					"file":   result.Path,
					"relics": result.Relics,
					"ledger": result.Entry,
				})
			}
			out := cmd.OutOrStdout()
			if result.Status == sharing.ResultNoMatch {
				fmt.Fprintln(out, "No relics matched the filter.")
				return nil
			}
			fmt.Fprintf(out, "Transmitted %d relic(s) to %s\n", len(result.Relics), result.Path)
			rows := make([][]string, 0, len(result.Relics))
			for _, r := range result.Relics {
				rows = append(rows, []string{r.TransmissionTag, r.Event, r.Theme, r.ContributorOrDefault()})
			}
			fmt.Fprintln(out, renderTable(columns("Transmission", "Event", "Theme", "Contributor"), rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&contributor, "contributor", "C", "", "Only transmit relics from this contributor")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "Only transmit relics whose theme contains this text")
	return cmd
}

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "Show the transmission ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := sharing.NewLedger(cfg.Sharing.LedgerPath).Entries(commandCtx(cmd))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transmissions recorded.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.TransmittedAt.Local().Format(time.DateTime),
					e.Contributor,
					e.Theme,
					strconv.Itoa(e.RelicsTransmitted),
					e.File,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{Header: "When"},
				{Header: "Contributor"},
				{Header: "Theme"},
				{Header: "Relics", Right: true},
				{Header: "File"},
			}, rows))
			return nil
		},
	}
}
