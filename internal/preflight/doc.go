// Package preflight provides readiness checks for the filesystem locations
// and stores reliquary depends on.
//
// These checks run in two contexts:
//   - reliquaryd runs RunAll at startup and logs every failing check.
//   - The CLI "reliquary status" command renders the same results.
//
// A failing check never blocks a command; it explains why the command that
// follows may fail.
package preflight
