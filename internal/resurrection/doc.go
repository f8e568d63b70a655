// Package resurrection inspects node relic locations and regenerates missing
// or corrupted ones from fallback templates.
//
// Each location moves through one inspection: ABSENT and CORRUPT end in
// Restored, INTACT ends in Verified. Restoration either fully succeeds or
// returns a fatal I/O error. Every inspection and restoration is appended to
// a JSON log so operators can audit what was regenerated and why.
package resurrection
