package logging

import (
	"context"
	"log/slog"

	"reliquary/internal/services"
)

const (
	// FieldComponent names the subsystem emitting the line.
	FieldComponent = "component"
	// FieldEventType classifies a line for filtering (relic_merged, node_skipped, ...).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldErrorKind classifies the error on a warning (not_found, corruption, ...).
	FieldErrorKind = "error_kind"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRelicTag carries the archive, vault or transmission tag being handled.
	FieldRelicTag = "relic_tag"
	// FieldNode carries the node identifier being merged, sealed or resurrected.
	FieldNode = "node"
	// FieldOperation carries the CLI or daemon operation name.
	FieldOperation = "operation"
	// FieldCorrelationID carries a request correlation identifier.
	FieldCorrelationID = "correlation_id"
	// FieldSessionID carries the per-run session identifier.
	FieldSessionID = "session_id"
	// FieldProgram carries the binary name (reliquary or reliquaryd).
	FieldProgram = "program"
	// FieldPath carries the file a line refers to.
	FieldPath = "path"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if tag, ok := services.RelicTagFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRelicTag, tag))
	}
	if node, ok := services.NodeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldNode, node))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
