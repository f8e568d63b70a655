// Package fileutil owns whole-file persistence for every reliquary store.
//
// Reads report a State so callers can tell an absent file (substitute a
// default) from a corrupt one (never treated as empty) from an unrecoverable
// filesystem failure. Writes always replace the full file through a temp file
// and rename; there is no append-in-place path.
package fileutil
