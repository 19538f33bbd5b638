// Package ctxutil carries request-scoped identity through context.Context.
package ctxutil

import "context"

type ctxKey string

const (
	actorKey     ctxKey = "actor"
	roleKey      ctxKey = "role"
	requestIDKey ctxKey = "request_id"
)

// RoleAdmin is the role value that grants administrative access.
const RoleAdmin = "admin"

// WithActor stores the opaque actor identifier persisted with every decision.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromCtx extracts the actor identifier.
// Returns an empty string and false if absent or blank.
func ActorFromCtx(ctx context.Context) (string, bool) {
	actor, _ := ctx.Value(actorKey).(string)
	if actor == "" {
		return "", false
	}
	return actor, true
}

// WithRole stores the caller's role in the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// RoleFromCtx extracts the caller's role. Returns an empty string if absent.
func RoleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

// IsAdminCtx reports whether the caller is an authenticated admin.
func IsAdminCtx(ctx context.Context) bool {
	_, ok := ActorFromCtx(ctx)
	return ok && RoleFromCtx(ctx) == RoleAdmin
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
