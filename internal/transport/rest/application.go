package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/application"
)

type applicationService interface {
	Submit(ctx context.Context, input application.SubmitInput) (*domain.GuideApplication, error)
	Approve(ctx context.Context, applicationID uuid.UUID) (*application.ApproveResult, error)
	Reject(ctx context.Context, input application.RejectInput) (*domain.GuideApplication, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.GuideApplication, error)
	List(ctx context.Context, filter domain.ApplicationFilter) (*application.ListResult, error)
}

// ApplicationHandler serves the guide application workflow.
type ApplicationHandler struct {
	svc applicationService
	log *slog.Logger
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(svc applicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, log: logger.With("handler", "application")}
}

type submitApplicationRequest struct {
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Age          int      `json:"age"`
	Sex          string   `json:"sex"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	GuideType    string   `json:"guideType"`
	Languages    []string `json:"languages"`
	ServiceAreas []string `json:"serviceAreas"`
	Documents    []string `json:"documents"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type approveApplicationResponse struct {
	Application applicationResponse `json:"application"`
	Guide       guideResponse       `json:"guide"`
}

// Submit handles POST /applications.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	var req submitApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	app, err := h.svc.Submit(r.Context(), application.SubmitInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		Sex:          req.Sex,
		Phone:        req.Phone,
		Email:        req.Email,
		GuideType:    req.GuideType,
		Languages:    req.Languages,
		ServiceAreas: req.ServiceAreas,
		Documents:    req.Documents,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(app))
}

// List handles GET /applications?status=&limit=&offset=.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	filter := domain.ApplicationFilter{Page: page}
	if v := optionalQuery(r, "status"); v != nil {
		status := domain.DecisionStatus(strings.ToUpper(*v))
		filter.Status = &status
	}

	result, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[applicationResponse]{
		Items: mapSlice(result.Applications, toApplicationResponse),
		Total: result.Total,
	})
}

// Get handles GET /applications/{id}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	app, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}

// Approve handles POST /applications/{id}/approve.
func (h *ApplicationHandler) Approve(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, approveApplicationResponse{
		Application: toApplicationResponse(result.Application),
		Guide:       toGuideResponse(result.Profile),
	})
}

// Reject handles POST /applications/{id}/reject.
func (h *ApplicationHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	app, err := h.svc.Reject(r.Context(), application.RejectInput{ApplicationID: id, Reason: req.Reason})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(app))
}
