// Package vault encrypts archive snapshots at rest.
//
// A sealed snapshot is the vault-tagged archive encoded as deterministic CBOR,
// compressed with zstd and encrypted with the configured cipher. Next to the
// ciphertext the vault writes a plaintext index of tag, event, theme and
// contributor so snapshots stay discoverable without the key. The index is
// intentionally unencrypted.
package vault
