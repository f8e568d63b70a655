package logging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Redacted replaces the value of any attribute whose key names secret material.
const Redacted = "[redacted]"

// NewSessionID returns a fresh identifier for one CLI invocation or daemon run.
func NewSessionID() string {
	return uuid.NewString()
}

// sensitiveKey reports whether an attribute key may carry vault key material.
func sensitiveKey(key string) bool {
	k := strings.ToLower(key)
	switch k {
	case "key", "identity", "passphrase":
		return true
	}
	return strings.HasSuffix(k, "_key") || strings.Contains(k, "secret")
}

// envelopeHandler stamps every record with the run's fixed attributes and
// blanks sensitive values before they reach any sink.
type envelopeHandler struct {
	base  slog.Handler
	stamp []slog.Attr
}

func newEnvelopeHandler(base slog.Handler, sessionID, program string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	var stamp []slog.Attr
	if sessionID != "" {
		stamp = append(stamp, slog.String(FieldSessionID, sessionID))
	}
	if program != "" {
		stamp = append(stamp, slog.String(FieldProgram, program))
	}
	return &envelopeHandler{base: base, stamp: stamp}
}

func (h *envelopeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *envelopeHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redact(a))
		return true
	})
	out.AddAttrs(h.stamp...)
	return h.base.Handle(ctx, out)
}

func (h *envelopeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redact(a)
	}
	return &envelopeHandler{base: h.base.WithAttrs(clean), stamp: h.stamp}
}

func (h *envelopeHandler) WithGroup(name string) slog.Handler {
	return &envelopeHandler{base: h.base.WithGroup(name), stamp: h.stamp}
}

func redact(a slog.Attr) slog.Attr {
	if sensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}
	group := a.Value.Group()
	clean := make([]any, len(group))
	for i, g := range group {
		clean[i] = redact(g)
	}
	return slog.Group(a.Key, clean...)
}
