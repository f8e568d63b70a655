package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks absent archives, vaults, ledgers, or relic locations.
	// Recoverable: callers substitute a default.
	ErrNotFound = errors.New("not found")
	// ErrCorruption marks persisted data that exists but cannot be parsed or
	// is structurally invalid. Never conflated with absence.
	ErrCorruption = errors.New("corrupt data")
	// ErrIntegrity marks glyphs or seals that fail validation.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrCrypto marks key mismatch or tampered ciphertext.
	ErrCrypto = errors.New("crypto failure")
	// ErrIOFatal marks unrecoverable filesystem failures.
	ErrIOFatal = errors.New("fatal i/o error")
	// ErrInvalid marks caller input that violates a relic invariant.
	ErrInvalid = errors.New("invalid input")
	// ErrConfiguration marks unusable configuration values.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIOFatal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short classification label for err, suitable for the
// event_type suffix of a log line or the status column of a report.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorruption):
		return "corruption"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrCrypto):
		return "crypto"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "io_fatal"
	}
}

// Recoverable reports whether err describes a condition a caller is expected
// to handle locally (substitute a default, skip a source, or restore).
func Recoverable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorruption) || errors.Is(err, ErrIntegrity)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "reliquary failure"
	}
	return strings.Join(parts, ": ")
}
