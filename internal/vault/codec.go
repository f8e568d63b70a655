package vault

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"reliquary/internal/relic"
	"reliquary/internal/services"
)

// encMode is Core Deterministic CBOR with RFC 3339 nanosecond timestamps, so
// the same archive always canonicalizes to the same bytes and timestamps
// survive the round trip exactly.
var (
	encMode     cbor.EncMode
	decMode     cbor.DecMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	if encMode, err = opts.EncMode(); err != nil {
		panic("vault: CBOR encoder initialization failed: " + err.Error())
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic("vault: CBOR decoder initialization failed: " + err.Error())
	}
	if zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault)); err != nil {
		panic("vault: zstd encoder initialization failed: " + err.Error())
	}
	if zstdDecoder, err = zstd.NewReader(nil); err != nil {
		panic("vault: zstd decoder initialization failed: " + err.Error())
	}
}

// canonicalize encodes and compresses relics into the plaintext that gets
// encrypted.
func canonicalize(relics []relic.Relic) ([]byte, error) {
	if relics == nil {
		relics = []relic.Relic{}
	}
	encoded, err := encMode.Marshal(relics)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalid, "vault", "canonicalize", "cbor encode", err)
	}
	return zstdEncoder.EncodeAll(encoded, nil), nil
}

// decanonicalize reverses canonicalize. The input has already been
// authenticated, so failures here mean the snapshot was written by an
// incompatible build.
func decanonicalize(plaintext []byte) ([]relic.Relic, error) {
	encoded, err := zstdDecoder.DecodeAll(plaintext, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrCorruption, "vault", "decanonicalize", "zstd decode", err)
	}
	relics := []relic.Relic{}
	if err := decMode.Unmarshal(encoded, &relics); err != nil {
		return nil, services.Wrap(services.ErrCorruption, "vault", "decanonicalize", "cbor decode", err)
	}
	return relics, nil
}
