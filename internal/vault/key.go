package vault

import (
	"errors"
	"log/slog"

	"reliquary/internal/fileutil"
	"reliquary/internal/logging"
	"reliquary/internal/services"
)

// KeyStore owns the key file for one cipher. The key has no rotation; treat
// the file as a long-lived secret.
type KeyStore struct {
	path   string
	cipher Cipher
	logger *slog.Logger
}

// NewKeyStore returns a key store at path for cipher.
func NewKeyStore(path string, cipher Cipher, logger *slog.Logger) *KeyStore {
	return &KeyStore{path: path, cipher: cipher, logger: logging.NewComponentLogger(logger, "vault")}
}

// Path returns the key file location.
func (k *KeyStore) Path() string { return k.path }

// Load reads the existing key. A missing file is ErrNotFound; a file that does
// not hold a valid key for the cipher is ErrCrypto.
func (k *KeyStore) Load() ([]byte, error) {
	key, state, err := fileutil.ReadFile(k.path)
	switch state {
	case fileutil.Absent:
		return nil, services.Wrap(services.ErrNotFound, "vault", "load key", k.path, nil)
	case fileutil.Corrupt:
		return nil, services.Wrap(services.ErrCrypto, "vault", "load key", k.path+" is empty", nil)
	case fileutil.Fatal:
		return nil, err
	}
	if err := k.cipher.ValidateKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// LoadOrGenerate returns the persisted key, generating and persisting a new
// one with mode 0600 when none exists. generated reports which happened.
func (k *KeyStore) LoadOrGenerate() (key []byte, generated bool, err error) {
	key, err = k.Load()
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return nil, false, err
	}
	if key, err = k.cipher.GenerateKey(); err != nil {
		return nil, false, err
	}
	if err := fileutil.WriteFileAtomic(k.path, key, 0o600); err != nil {
		return nil, false, err
	}
	k.logger.Info("vault key generated",
		logging.String(logging.FieldPath, k.path),
		logging.String("cipher", k.cipher.Name()),
		logging.String(logging.FieldEventType, "vault_key_generated"),
	)
	return key, true, nil
}
