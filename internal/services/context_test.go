package services_test

import (
	"context"
	"testing"

	"reliquary/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRelicTag(ctx, "ARCH-007")
	ctx = services.WithNode(ctx, "OddysseyNoir")
	ctx = services.WithOperation(ctx, "transmit")
	ctx = services.WithRequestID(ctx, "req-123")

	if tag, ok := services.RelicTagFromContext(ctx); !ok || tag != "ARCH-007" {
		t.Fatalf("unexpected relic tag: %v %v", tag, ok)
	}
	if node, ok := services.NodeFromContext(ctx); !ok || node != "OddysseyNoir" {
		t.Fatalf("unexpected node: %v %v", node, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "transmit" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestNodeBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithNode(ctx, "")
	if _, ok := services.NodeFromContext(ctx); ok {
		t.Fatal("expected no node value")
	}
}
