package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/internal/service/audit"
)

type auditService interface {
	EntriesFor(ctx context.Context, subjectType domain.SubjectType, subjectID uuid.UUID) ([]domain.AuditEntry, error)
	List(ctx context.Context, filter domain.AuditFilter) (*audit.ListResult, error)
}

// AuditHandler serves read access to the audit log.
type AuditHandler struct {
	svc auditService
	log *slog.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc auditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: logger.With("handler", "audit")}
}

// List handles GET /audit?subjectType=&actor=&action=&since=&until=&limit=&offset=.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.svc.List(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[auditEntryResponse]{
		Items: toAuditResponses(result.Entries),
		Total: result.Total,
	})
}

// Subject handles GET /audit/{subjectType}/{subjectId}.
func (h *AuditHandler) Subject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(h.log, w, r) {
		return
	}
	subjectID, err := pathID(r, "subjectId")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	subjectType := domain.SubjectType(strings.ToUpper(r.PathValue("subjectType")))

	entries, err := h.svc.EntriesFor(r.Context(), subjectType, subjectID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse[auditEntryResponse]{
		Items: toAuditResponses(entries),
		Total: len(entries),
	})
}

func auditFilterFromQuery(r *http.Request) (domain.AuditFilter, error) {
	page, err := pageFromQuery(r)
	if err != nil {
		return domain.AuditFilter{}, err
	}
	filter := domain.AuditFilter{Actor: optionalQuery(r, "actor"), Page: page}

	if v := optionalQuery(r, "subjectType"); v != nil {
		st := domain.SubjectType(strings.ToUpper(*v))
		filter.SubjectType = &st
	}
	if v := optionalQuery(r, "action"); v != nil {
		action := domain.AuditAction(strings.ToUpper(*v))
		filter.Action = &action
	}
	if filter.Since, err = optionalTime(r, "since"); err != nil {
		return domain.AuditFilter{}, err
	}
	if filter.Until, err = optionalTime(r, "until"); err != nil {
		return domain.AuditFilter{}, err
	}
	return filter, nil
}
