// Package main hosts the reliquary CLI.
//
// Each subcommand maps onto one archive operation: merging titles into relics,
// searching and backing up the archive, sealing and opening vault snapshots,
// transmitting filtered subsets, producing and converging node exit relics,
// and resurrecting damaged node relics. Configuration resolution and logger
// setup live in the command context so subcommands only wire components.
package main
