package vault

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reliquary/internal/archive"
	"reliquary/internal/fileutil"
	"reliquary/internal/logging"
	"reliquary/internal/relic"
	"reliquary/internal/services"
)

const (
	tagPrefix = "RELIC-"
	logSource = "vault"
)

// IndexEntry is one row of the plaintext index.
type IndexEntry struct {
	Tag         string `json:"tag"`
	Event       string `json:"event"`
	Theme       string `json:"theme"`
	Contributor string `json:"contributor"`
}

// SealResult describes a persisted snapshot.
type SealResult struct {
	Relics          []relic.Relic
	Index           []IndexEntry
	CiphertextBytes int
	VaultPath       string
	IndexPath       string
}

// Vault writes and reads encrypted snapshots.
type Vault struct {
	cipher    Cipher
	vaultPath string
	indexPath string
	logger    *slog.Logger
}

// New returns a vault persisting ciphertext at vaultPath and the plaintext
// index at indexPath.
func New(cipher Cipher, vaultPath, indexPath string, logger *slog.Logger) *Vault {
	return &Vault{
		cipher:    cipher,
		vaultPath: vaultPath,
		indexPath: indexPath,
		logger:    logging.NewComponentLogger(logger, "vault"),
	}
}

// Tag returns a copy of relics carrying sequential vault tags and a vault log.
// Re-tagging overwrites the previous tag and log and leaves every other field
// untouched.
func Tag(relics []relic.Relic) []relic.Relic {
	out := relic.Clone(relics)
	for i := range out {
		out[i].VaultTag = FormatTag(i + 1)
		out[i].VaultLog = &relic.TagLog{
			Source: logSource,
			Status: relic.StatusEncrypted,
			Index:  i + 1,
		}
	}
	return out
}

// FormatTag renders the vault tag for a 1-based index.
func FormatTag(index int) string {
	return fmt.Sprintf("%s%03d", tagPrefix, index)
}

// BuildIndex projects tagged relics onto their plaintext index rows.
func BuildIndex(relics []relic.Relic) []IndexEntry {
	index := make([]IndexEntry, 0, len(relics))
	for _, r := range relics {
		index = append(index, IndexEntry{
			Tag:         r.VaultTag,
			Event:       r.Event,
			Theme:       r.Theme,
			Contributor: r.ContributorOrDefault(),
		})
	}
	return index
}

// Seal tags relics, encrypts the snapshot with key and writes both the
// ciphertext and the plaintext index. The input slice is not modified.
func (v *Vault) Seal(ctx context.Context, relics []relic.Relic, key []byte) (SealResult, error) {
	if err := ctx.Err(); err != nil {
		return SealResult{}, err
	}
	if err := relic.ValidateAll(relics); err != nil {
		return SealResult{}, err
	}
	tagged := Tag(relics)
	plaintext, err := canonicalize(tagged)
	if err != nil {
		return SealResult{}, err
	}
	blob, err := v.cipher.Encrypt(plaintext, key)
	if err != nil {
		return SealResult{}, err
	}
	if err := fileutil.WriteFileAtomic(v.vaultPath, blob, 0o600); err != nil {
		return SealResult{}, err
	}
	index := BuildIndex(tagged)
	if err := fileutil.WriteJSONAtomic(v.indexPath, index); err != nil {
		return SealResult{}, err
	}
	v.logger.Info("archive sealed",
		logging.Int("relics", len(tagged)),
		logging.Int("bytes", len(blob)),
		logging.String("cipher", v.cipher.Name()),
		logging.String(logging.FieldPath, v.vaultPath),
		logging.String(logging.FieldEventType, "vault_sealed"),
	)
	return SealResult{
		Relics:          tagged,
		Index:           index,
		CiphertextBytes: len(blob),
		VaultPath:       v.vaultPath,
		IndexPath:       v.indexPath,
	}, nil
}

// SealStore seals the current contents of store.
func (v *Vault) SealStore(ctx context.Context, store *archive.Store, key []byte) (SealResult, error) {
	relics, err := store.Load(ctx)
	if err != nil {
		return SealResult{}, err
	}
	return v.Seal(ctx, relics, key)
}

// Open decrypts the persisted snapshot. A missing vault is ErrNotFound; a
// wrong key or tampered ciphertext is ErrCrypto.
func (v *Vault) Open(ctx context.Context, key []byte) ([]relic.Relic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blob, state, err := fileutil.ReadFile(v.vaultPath)
	switch state {
	case fileutil.Absent:
		return nil, services.Wrap(services.ErrNotFound, "vault", "open", v.vaultPath, nil)
	case fileutil.Corrupt, fileutil.Fatal:
		return nil, err
	}
	plaintext, err := v.cipher.Decrypt(blob, key)
	if err != nil {
		logging.WarnWithContext(v.logger, "vault decrypt failed", "vault_crypto_failure",
			logging.String(logging.FieldPath, v.vaultPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the key path and cipher setting"),
			logging.String(logging.FieldImpact, "snapshot not opened"),
		)
		return nil, err
	}
	relics, err := decanonicalize(plaintext)
	if err != nil {
		return nil, err
	}
	v.logger.Debug("vault opened",
		logging.Int("relics", len(relics)),
		logging.String(logging.FieldEventType, "vault_opened"),
	)
	return relics, nil
}

// Index reads the plaintext index without a key.
func (v *Vault) Index(ctx context.Context) ([]IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var index []IndexEntry
	state, err := fileutil.ReadJSON(v.indexPath, &index)
	if state == fileutil.Absent {
		return nil, services.Wrap(services.ErrNotFound, "vault", "index", v.indexPath, nil)
	}
	if err != nil {
		return nil, err
	}
	if index == nil {
		index = []IndexEntry{}
	}
	return index, nil
}

// Preview lists relics whose contributor matches under case folding. An empty
// contributor lists everything. Nothing is persisted.
func Preview(relics []relic.Relic, contributor string) []relic.Relic {
	want := archive.Fold(strings.TrimSpace(contributor))
	out := make([]relic.Relic, 0, len(relics))
	for _, r := range relic.Clone(relics) {
		if want == "" || archive.Fold(r.ContributorOrDefault()) == want {
			out = append(out, r)
		}
	}
	return out
}
