// Package mergedaemon folds many node exit relics into one convergence scroll.
//
// Absorption is best effort: a missing or unparseable source is skipped with a
// warning and recorded in the scroll, never aborting the run. Exit hashes that
// look like digests are re-verified; mismatches are recorded as integrity
// failures while the relic itself is still absorbed.
package mergedaemon
