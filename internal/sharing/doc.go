// Package sharing filters archive subsets, tags them for hand-off, exports
// them as standalone transmission packages, and keeps an append-only ledger
// of what was sent.
//
// The master archive is never mutated: every tagging step works on copies.
package sharing
