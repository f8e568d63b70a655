package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reliquary/internal/archive"
	"reliquary/internal/logging"
	"reliquary/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Run readiness checks against the configured stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var store *archive.Store
			if opened, err := ctx.openStore(cmd); err == nil {
				store = opened
			} else {
				ctx.loggerValue().Debug("archive unavailable for status", logging.Error(err))
			}
			results := preflight.RunAll(commandCtx(cmd), cfg, store)
			if store == nil {
				results = append(results, preflight.Result{Name: "Archive", Detail: cfg.Archive.Path + " (could not be opened)"})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			for _, line := range checkLines(results, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

// checkLines renders a summary line followed by one line per check.
func checkLines(results []preflight.Result, colorize bool) []string {
	failed := preflight.Failed(results)
	lines := make([]string, 0, len(results)+1)
	if len(failed) == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, fmt.Sprintf("All %d checks passed", len(results)), colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusWarn, fmt.Sprintf("%d of %d checks need attention", len(failed), len(results)), colorize))
	}
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}
