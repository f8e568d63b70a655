// Package config loads, normalizes, and validates reliquary configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// resolves per-store file names against the data directory, reads TOML files,
// and honours the RELIQUARY_VAULT_KEY_PATH environment override. Obtain
// settings through this package so downstream code receives absolute paths
// and canonical backend, cipher and fingerprint names.
package config
