package rest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/transport/middleware"
)

// requireAdmin writes 401/403 and returns false unless the caller is an admin.
func requireAdmin(log *slog.Logger, w http.ResponseWriter, r *http.Request) bool {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(log, w, r, err)
		return false
	}
	return true
}

// requireAdminOrSelf also admits the guide the resource belongs to.
func requireAdminOrSelf(log *slog.Logger, w http.ResponseWriter, r *http.Request, guideID uuid.UUID) bool {
	if err := middleware.RequireAdminOrSelf(r.Context(), guideID.String()); err != nil {
		handleError(log, w, r, err)
		return false
	}
	return true
}
