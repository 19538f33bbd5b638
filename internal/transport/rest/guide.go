package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/guide"
)

type guideService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.GuideProfile, error)
	List(ctx context.Context, filter domain.GuideFilter) (*guide.ListResult, error)
	History(ctx context.Context, guideID uuid.UUID) ([]domain.AuditEntry, error)
	Suspend(ctx context.Context, input guide.SuspendInput) (*domain.GuideProfile, error)
	Activate(ctx context.Context, guideID uuid.UUID) (*domain.GuideProfile, error)
}

// GuideHandler serves guide profiles.
type GuideHandler struct {
	svc guideService
	log *slog.Logger
}

// NewGuideHandler creates a GuideHandler.
func NewGuideHandler(svc guideService, logger *slog.Logger) *GuideHandler {
	return &GuideHandler{svc: svc, log: logger.With("handler", "guide")}
}

// List handles GET /guides?status=&language=&area=&limit=&offset=.
func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	filter := domain.GuideFilter{
		Language: optionalQuery(r, "language"),
		Area:     optionalQuery(r, "area"),
		Page:     page,
	}
	if v := optionalQuery(r, "status"); v != nil {
		status := domain.GuideStatus(strings.ToUpper(*v))
		filter.Status = &status
	}

	result, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[guideResponse]{
		Items: mapSlice(result.Guides, toGuideResponse),
		Total: result.Total,
	})
}

// Get handles GET /guides/{id}. Guides may read their own profile.
func (h *GuideHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if !requireAdminOrSelf(h.log, w, r, id) {
		return
	}

	profile, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGuideResponse(profile))
}

// History handles GET /guides/{id}/history.
func (h *GuideHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if !requireAdminOrSelf(h.log, w, r, id) {
		return
	}

	entries, err := h.svc.History(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[auditEntryResponse]{
		Items: toAuditResponses(entries),
		Total: len(entries),
	})
}

// Suspend handles POST /guides/{id}/suspend.
func (h *GuideHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req reasonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	profile, err := h.svc.Suspend(r.Context(), guide.SuspendInput{GuideID: id, Reason: req.Reason})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGuideResponse(profile))
}

// Activate handles POST /guides/{id}/activate.
func (h *GuideHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	profile, err := h.svc.Activate(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGuideResponse(profile))
}
