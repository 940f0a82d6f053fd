package services_test

import (
	"context"
	"testing"

	"reelist/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCommand(ctx, "search")
	ctx = services.WithRequestID(ctx, "req-123")

	if cmd, ok := services.CommandFromContext(ctx); !ok || cmd != "search" {
		t.Fatalf("unexpected command: %v %v", cmd, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestNewRequestContextGeneratesID(t *testing.T) {
	first, ok := services.RequestIDFromContext(services.NewRequestContext(context.Background()))
	if !ok || first == "" {
		t.Fatal("expected generated request id")
	}
	second, _ := services.RequestIDFromContext(services.NewRequestContext(context.Background()))
	if first == second {
		t.Fatalf("expected distinct request ids, got %q twice", first)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCommand(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.CommandFromContext(ctx); ok {
		t.Fatal("expected no command value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
