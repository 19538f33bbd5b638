package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/tourops-backend/pkg/ctxutil"
)

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	Recovery(logger)(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/applications", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, buf.String())
}

func TestRecovery_PanicWritesEnvelopeAndLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("busy index out of sync")
	})

	req := httptest.NewRequest(http.MethodPost, "/packages/p1/assign", nil)
	ctx := ctxutil.WithRequestID(req.Context(), "req-42")
	ctx = ctxutil.WithActor(ctx, "admin-1")
	rec := httptest.NewRecorder()

	Recovery(logger)(handler).ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "busy index")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "panic recovered", entry["msg"])
	assert.Equal(t, "busy index out of sync", entry["error"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "admin-1", entry["actor"])
	assert.Equal(t, "/packages/p1/assign", entry["path"])
	assert.NotEmpty(t, entry["stack"])
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		Recovery(logger)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/guides", nil))
	})
}
