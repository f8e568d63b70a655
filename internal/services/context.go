package services

import "context"

type contextKey string

const (
	relicTagKey  contextKey = "relic_tag"
	nodeKey      contextKey = "node"
	operationKey contextKey = "operation"
	requestIDKey contextKey = "request_id"
)

// WithRelicTag annotates context with the tag of the relic being processed.
func WithRelicTag(ctx context.Context, tag string) context.Context {
	if tag == "" {
		return ctx
	}
	return context.WithValue(ctx, relicTagKey, tag)
}

// RelicTagFromContext extracts the relic tag if present.
func RelicTagFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(relicTagKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithNode annotates context with the node identifier being inspected or merged.
func WithNode(ctx context.Context, node string) context.Context {
	if node == "" {
		return ctx
	}
	return context.WithValue(ctx, nodeKey, node)
}

// NodeFromContext returns the node identifier if present.
func NodeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(nodeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperation annotates context with the operation name (merge, seal, transmit...).
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
