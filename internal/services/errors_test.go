package services_test

import (
	"errors"
	"strings"
	"testing"

	"reliquary/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrCorruption, "archive", "load", "parse archive", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrCorruption) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"archive", "load", "parse archive"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToFatal(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIOFatal) {
		t.Fatalf("expected fatal marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "reliquary failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{services.Wrap(services.ErrNotFound, "vault", "open", "", nil), "not_found"},
		{services.Wrap(services.ErrCorruption, "archive", "load", "", nil), "corruption"},
		{services.Wrap(services.ErrIntegrity, "mergedaemon", "absorb", "", nil), "integrity"},
		{services.Wrap(services.ErrCrypto, "vault", "open", "", nil), "crypto"},
		{services.Wrap(services.ErrInvalid, "merge", "merge", "", nil), "invalid"},
		{services.Wrap(services.ErrConfiguration, "config", "", "", nil), "configuration"},
		{errors.New("disk on fire"), "io_fatal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRecoverable(t *testing.T) {
	if !services.Recoverable(services.Wrap(services.ErrNotFound, "archive", "load", "", nil)) {
		t.Fatal("absence should be recoverable")
	}
	if services.Recoverable(services.Wrap(services.ErrCrypto, "vault", "open", "", nil)) {
		t.Fatal("crypto failure must propagate")
	}
	if services.Recoverable(services.Wrap(services.ErrIOFatal, "archive", "save", "", nil)) {
		t.Fatal("fatal i/o must propagate")
	}
}
