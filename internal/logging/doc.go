// Package logging assembles the structured slog loggers used by the reliquary
// CLI and daemon.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with relic tags, node identifiers and
// correlation IDs. Warnings for recoverable conditions go through
// WarnWithContext so every line carries an event type, a hint and an impact.
package logging
