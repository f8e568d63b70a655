// Package archive persists the ordered relic collection and answers searches
// over it.
//
// Store is the single entry point. It wraps a Storage handle (JSON file,
// SQLite, or in-memory) so the merge engine, vault, sharing protocol and
// resurrection daemon share one store instead of reopening the archive file
// on their own. Every write is a whole-collection rewrite; a single writer is
// assumed.
package archive
