package middleware

import (
	"context"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

// RequireAdmin returns domain.ErrUnauthorized for anonymous callers and
// domain.ErrForbidden for authenticated non-admins.
// Use in REST handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	if _, ok := ctxutil.ActorFromCtx(ctx); !ok {
		return domain.ErrUnauthorized
	}
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrForbidden
	}
	return nil
}

// RequireAdminOrSelf additionally lets a guide act on their own profile:
// the token subject must equal guideID.
func RequireAdminOrSelf(ctx context.Context, guideID string) error {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if ctxutil.IsAdminCtx(ctx) {
		return nil
	}
	if ctxutil.RoleFromCtx(ctx) == domain.UserRoleGuide.String() && actor == guideID {
		return nil
	}
	return domain.ErrForbidden
}
