package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/tourops-backend/internal/adapter/docstore"
	"github.com/heartmarshall/tourops-backend/internal/domain"
	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

type documentStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// DocumentHandler accepts supporting documents for change requests.
type DocumentHandler struct {
	store    documentStore
	maxBytes int64
	log      *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(store documentStore, maxBytes int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, maxBytes: maxBytes, log: logger.With("handler", "document")}
}

type uploadResponse struct {
	Reference string `json:"reference"`
}

// Upload handles POST /documents (multipart form, field "file"). Any
// authenticated caller may upload.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := ctxutil.ActorFromCtx(r.Context())
	if !ok {
		handleError(h.log, w, r, domain.ErrUnauthorized)
		return
	}

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+maxBodyBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(h.log, w, r, domain.NewValidationError("file", "too large"))
			return
		}
		handleError(h.log, w, r, domain.NewValidationError("file", "required"))
		return
	}
	defer file.Close()

	ref, err := h.store.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, docstore.ErrTooLarge) {
			handleError(h.log, w, r, domain.NewValidationError("file", "too large"))
			return
		}
		handleError(h.log, w, r, err)
		return
	}

	h.log.InfoContext(r.Context(), "document uploaded",
		slog.String("reference", ref),
		slog.String("actor", actor),
	)
	writeJSON(w, http.StatusCreated, uploadResponse{Reference: ref})
}
