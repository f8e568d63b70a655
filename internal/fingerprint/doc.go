// Package fingerprint computes deterministic one-way digests over byte content.
//
// This package has no reliquary-specific dependencies.
//
// Two digest families are in use: content glyphs (default SHA-256) and node
// exit seals (default SHA3-256). Both are configured by name, so a deployment
// can move either family to BLAKE3 without code changes.
//
// Primary entry points:
//   - Lookup: resolves a configured strategy name
//   - Strategy.Sum: lowercase hex digest of the input
package fingerprint
