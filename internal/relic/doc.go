// Package relic defines the record types shared by every reliquary component.
//
// A Relic is one timestamped, fingerprinted metadata record for an archived
// event or transmission. Relics are validated at construction (New) and again
// before every persistence write, so a relic with an empty event, theme,
// timestamp, or glyph never reaches disk. Tagging steps (archive, vault,
// transmission) only touch their own tag and log fields.
//
// A NodeRelic is the per-node exit record produced by the exit seal and the
// resurrection daemon and consumed by the merge daemon.
package relic
