package vault

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
	"golang.org/x/crypto/chacha20poly1305"

	"reliquary/internal/config"
	"reliquary/internal/services"
)

// Cipher encrypts whole snapshots with a key held in a single file.
type Cipher interface {
	Name() string
	GenerateKey() ([]byte, error)
	ValidateKey(key []byte) error
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(blob, key []byte) ([]byte, error)
}

// CipherByName resolves the [vault] cipher setting.
func CipherByName(name string) (Cipher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.CipherXChaCha, "":
		return XChaCha{}, nil
	case config.CipherAge:
		return Age{}, nil
	}
	return nil, services.Wrap(services.ErrConfiguration, "vault", "cipher", "unknown cipher "+name, nil)
}

// KeySize is the raw key length for XChaCha.
const KeySize = chacha20poly1305.KeySize

// BlobVersion prefixes every XChaCha blob and is authenticated as AAD.
const BlobVersion byte = 0x01

// BlobOverhead is version + nonce + Poly1305 tag.
const BlobOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// XChaCha is XChaCha20-Poly1305 with a raw 32-byte key. Blobs are laid out as
//
//	[version: 1 byte] [nonce: 24 bytes] [ciphertext+tag]
type XChaCha struct{}

func (XChaCha) Name() string { return config.CipherXChaCha }

func (XChaCha) GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "generate key", "read random", err)
	}
	return key, nil
}

func (XChaCha) ValidateKey(key []byte) error {
	if len(key) != KeySize {
		return services.Wrap(services.ErrCrypto, "vault", "key",
			fmt.Sprintf("key is %d bytes, want %d", len(key), KeySize), nil)
	}
	return nil
}

func (c XChaCha) Encrypt(plaintext, key []byte) ([]byte, error) {
	if err := c.ValidateKey(key); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "encrypt", "init cipher", err)
	}
	out := make([]byte, 1+chacha20poly1305.NonceSizeX, BlobOverhead+len(plaintext))
	out[0] = BlobVersion
	if _, err := io.ReadFull(rand.Reader, out[1:]); err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "encrypt", "generate nonce", err)
	}
	nonce := out[1 : 1+chacha20poly1305.NonceSizeX]
	return aead.Seal(out, nonce, plaintext, []byte{BlobVersion}), nil
}

func (c XChaCha) Decrypt(blob, key []byte) ([]byte, error) {
	if err := c.ValidateKey(key); err != nil {
		return nil, err
	}
	if len(blob) < BlobOverhead {
		return nil, services.Wrap(services.ErrCrypto, "vault", "decrypt",
			fmt.Sprintf("blob is %d bytes, minimum is %d", len(blob), BlobOverhead), nil)
	}
	if blob[0] != BlobVersion {
		return nil, services.Wrap(services.ErrCrypto, "vault", "decrypt",
			fmt.Sprintf("blob version %d is not supported", blob[0]), nil)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "decrypt", "init cipher", err)
	}
	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, blob[1+chacha20poly1305.NonceSizeX:], blob[:1])
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "decrypt", "wrong key or tampered vault", err)
	}
	return plaintext, nil
}

// Age encrypts to the recipient of an X25519 identity stored as text.
type Age struct{}

func (Age) Name() string { return config.CipherAge }

func (Age) GenerateKey() ([]byte, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "generate key", "age identity", err)
	}
	return []byte(identity.String() + "\n"), nil
}

func (Age) identity(key []byte) (*age.X25519Identity, error) {
	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(key)))
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "key", "parse age identity", err)
	}
	return identity, nil
}

func (a Age) ValidateKey(key []byte) error {
	_, err := a.identity(key)
	return err
}

func (a Age) Encrypt(plaintext, key []byte) ([]byte, error) {
	identity, err := a.identity(key)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "encrypt", "create age encryptor", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "encrypt", "write plaintext", err)
	}
	if err := w.Close(); err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "encrypt", "finalize", err)
	}
	return buf.Bytes(), nil
}

func (a Age) Decrypt(blob, key []byte) ([]byte, error) {
	identity, err := a.identity(key)
	if err != nil {
		return nil, err
	}
	r, err := age.Decrypt(bytes.NewReader(blob), identity)
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "decrypt", "wrong key or tampered vault", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, services.Wrap(services.ErrCrypto, "vault", "decrypt", "read plaintext", err)
	}
	return plaintext, nil
}
