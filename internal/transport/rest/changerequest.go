package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/profilechange"
)

type changeRequestService interface {
	Submit(ctx context.Context, input profilechange.SubmitInput) (*domain.ProfileChangeRequest, error)
	AttachEvidence(ctx context.Context, input profilechange.AttachEvidenceInput) (*domain.ProfileChangeRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID) (*profilechange.ApproveResult, error)
	Reject(ctx context.Context, input profilechange.RejectInput) (*domain.ProfileChangeRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProfileChangeRequest, error)
	List(ctx context.Context, filter domain.ChangeRequestFilter) (*profilechange.ListResult, error)
}

// ChangeRequestHandler serves the profile change workflow.
type ChangeRequestHandler struct {
	svc changeRequestService
	log *slog.Logger
}

// NewChangeRequestHandler creates a ChangeRequestHandler.
func NewChangeRequestHandler(svc changeRequestService, logger *slog.Logger) *ChangeRequestHandler {
	return &ChangeRequestHandler{svc: svc, log: logger.With("handler", "change_request")}
}

type submitChangeRequest struct {
	Field       string     `json:"field"`
	NewValue    stringList `json:"newValue"`
	EvidenceRef string     `json:"evidenceRef"`
}

type evidenceRequest struct {
	Reference string `json:"reference"`
}

type approveChangeResponse struct {
	Request changeRequestResponse `json:"request"`
	Guide   guideResponse         `json:"guide"`
	Flagged []flaggedResponse     `json:"flagged"`
}

// Submit handles POST /guides/{id}/change-requests. The guide may submit
// for their own profile.
func (h *ChangeRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	guideID, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if !requireAdminOrSelf(h.log, w, r, guideID) {
		return
	}

	var req submitChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	created, err := h.svc.Submit(r.Context(), profilechange.SubmitInput{
		GuideID:     guideID,
		Field:       domain.ProfileField(strings.ToUpper(strings.TrimSpace(req.Field))),
		NewValue:    req.NewValue,
		EvidenceRef: req.EvidenceRef,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChangeRequestResponse(created))
}

// List handles GET /change-requests?guideId=&status=&field=&limit=&offset=.
func (h *ChangeRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	filter := domain.ChangeRequestFilter{Page: page}
	if v := optionalQuery(r, "guideId"); v != nil {
		id, err := parseID("guideId", *v)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		filter.GuideID = &id
	}
	if v := optionalQuery(r, "status"); v != nil {
		status := domain.DecisionStatus(strings.ToUpper(*v))
		filter.Status = &status
	}
	if v := optionalQuery(r, "field"); v != nil {
		field := domain.ProfileField(strings.ToUpper(*v))
		filter.Field = &field
	}

	result, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[changeRequestResponse]{
		Items: mapSlice(result.Requests, toChangeRequestResponse),
		Total: result.Total,
	})
}

// Get handles GET /change-requests/{id}. The owning guide may read it.
func (h *ChangeRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	req, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if !requireAdminOrSelf(h.log, w, r, req.GuideID) {
		return
	}

	writeJSON(w, http.StatusOK, toChangeRequestResponse(req))
}

// AttachEvidence handles POST /change-requests/{id}/evidence.
func (h *ChangeRequestHandler) AttachEvidence(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	var req evidenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	updated, err := h.svc.AttachEvidence(r.Context(), profilechange.AttachEvidenceInput{RequestID: id, Reference: req.Reference})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toChangeRequestResponse(updated))
}

// Approve handles POST /change-requests/{id}/approve.
func (h *ChangeRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.svc.Approve(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	guides := map[uuid.UUID]*domain.GuideProfile{result.Profile.ID: result.Profile}
	writeJSON(w, http.StatusOK, approveChangeResponse{
		Request: toChangeRequestResponse(result.Request),
		Guide:   toGuideResponse(result.Profile),
		Flagged: toFlaggedResponses(result.Flagged, guides),
	})
}

// Reject handles POST /change-requests/{id}/reject.
func (h *ChangeRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	rejected, err := h.svc.Reject(r.Context(), profilechange.RejectInput{RequestID: id, Reason: req.Reason})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toChangeRequestResponse(rejected))
}
