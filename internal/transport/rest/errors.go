package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

type errorResponse struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
	Reasons []string            `json:"reasons,omitempty"`
}

// handleError maps domain errors to HTTP responses. Anything unrecognised is
// logged and reported as INTERNAL without details.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *domain.ValidationError
		ie *domain.IneligibleGuideError
	)

	switch {
	case errors.As(err, &ve):
		writeErrorPayload(w, http.StatusBadRequest, errorPayload{
			Code: "VALIDATION", Message: ve.Error(), Fields: ve.Errors,
		})
	case errors.As(err, &ie):
		reasons := make([]string, len(ie.Reasons))
		for i, reason := range ie.Reasons {
			reasons[i] = reason.String()
		}
		writeErrorPayload(w, http.StatusUnprocessableEntity, errorPayload{
			Code: "INELIGIBLE_GUIDE", Message: "guide is not eligible for the package", Reasons: reasons,
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrMissingDocument):
		writeError(w, http.StatusUnprocessableEntity, "MISSING_DOCUMENT", "a supporting document is required")
	case errors.Is(err, domain.ErrStaleRequest):
		writeError(w, http.StatusConflict, "STALE_REQUEST", "profile changed since the request was made")
	case errors.Is(err, domain.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrPackageAlreadyAssigned):
		writeError(w, http.StatusConflict, "PACKAGE_ALREADY_ASSIGNED", "package already has a guide")
	case errors.Is(err, domain.ErrPackageNotAssigned):
		writeError(w, http.StatusConflict, "PACKAGE_NOT_ASSIGNED", "package has no guide")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "not allowed")
	default:
		log.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeErrorPayload(w, status, errorPayload{Code: code, Message: message})
}

func writeErrorPayload(w http.ResponseWriter, status int, payload errorPayload) {
	writeJSON(w, status, errorResponse{Error: payload})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
