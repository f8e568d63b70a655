// Package services defines shared utilities consumed by every reliquary
// component.
//
// Key responsibilities:
//   - Context helpers that stamp component names, relic tags, node identifiers,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     absence, corruption, integrity, crypto, or fatal I/O so callers can
//     decide between substituting a default, skipping a source, restoring a
//     record, or halting.
//
// Use these helpers when wiring new component logic so error handling and
// observability stay uniform across the archive, vault, sharing, merge, and
// resurrection paths.
package services
