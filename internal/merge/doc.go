// Package merge turns a free-text title plus an optional contributor into a
// fingerprinted relic.
//
// Title decoding is delegated to a Decoder so the default colon split can be
// swapped for a smarter collaborator without touching the engine.
package merge
