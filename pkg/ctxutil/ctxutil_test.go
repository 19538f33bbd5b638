package ctxutil

import (
	"context"
	"testing"
)

func TestActorFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithActor(context.Background(), "ops-admin")
	got, ok := ActorFromCtx(ctx)
	if !ok || got != "ops-admin" {
		t.Fatalf("ActorFromCtx = %q, %v; want ops-admin, true", got, ok)
	}
}

func TestActorFromCtx_Missing(t *testing.T) {
	t.Parallel()

	if _, ok := ActorFromCtx(context.Background()); ok {
		t.Fatal("expected ok=false for empty context")
	}
	if _, ok := ActorFromCtx(WithActor(context.Background(), "")); ok {
		t.Fatal("expected ok=false for blank actor")
	}
}

func TestIsAdminCtx(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		actor string
		role  string
		want  bool
	}{
		{"admin", "ops", RoleAdmin, true},
		{"guide", "g-1", "guide", false},
		{"role without actor", "", RoleAdmin, false},
		{"anonymous", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := WithRole(WithActor(context.Background(), tt.actor), tt.role)
			if got := IsAdminCtx(ctx); got != tt.want {
				t.Errorf("IsAdminCtx = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
	ctx := WithRequestID(context.Background(), "req-1")
	if got := RequestIDFromCtx(ctx); got != "req-1" {
		t.Fatalf("RequestIDFromCtx = %q, want req-1", got)
	}
}
