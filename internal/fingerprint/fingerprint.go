package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

const (
	SHA256   = "sha256"
	SHA3_256 = "sha3-256"
	BLAKE3   = "blake3"
)

// Strategy is a named digest algorithm.
type Strategy interface {
	Name() string
	Sum(content []byte) string
}

type hashStrategy struct {
	name string
	fn   func() hash.Hash
}

func (s hashStrategy) Name() string { return s.name }

func (s hashStrategy) Sum(content []byte) string {
	h := s.fn()
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

var registry = map[string]Strategy{
	SHA256:   hashStrategy{name: SHA256, fn: sha256.New},
	SHA3_256: hashStrategy{name: SHA3_256, fn: sha3.New256},
	BLAKE3:   hashStrategy{name: BLAKE3, fn: func() hash.Hash { return blake3.New() }},
}

// Lookup resolves a strategy by name. Names are case-insensitive; "sha3" is
// accepted as an alias for sha3-256.
func Lookup(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "sha3" {
		key = SHA3_256
	}
	s, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown fingerprint strategy %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) Strategy {
	s, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Glyph returns the default content-glyph strategy.
func Glyph() Strategy { return registry[SHA256] }

// Seal returns the default exit-seal strategy.
func Seal() Strategy { return registry[SHA3_256] }

// Sum is shorthand for the default glyph strategy over a string.
func Sum(content string) string {
	return Glyph().Sum([]byte(content))
}

// IsHex reports whether value looks like a digest produced by a Strategy:
// non-empty, even length, lowercase hex.
func IsHex(value string) bool {
	if value == "" || len(value)%2 != 0 {
		return false
	}
	for _, r := range value {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
