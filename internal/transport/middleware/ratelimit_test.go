package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, addr string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = addr
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	handler := rl.Limit(5)(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "/applications", "1.2.3.4:1234").Code, "request %d", i)
	}

	rec := hit(handler, "/applications", "1.2.3.4:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)

	// 5 per minute refills one token every 12s.
	secs, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 12, secs, 1)
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	handler := rl.Limit(2)(okHandler())

	hit(handler, "/guides", "1.1.1.1:1234")
	hit(handler, "/guides", "1.1.1.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "/guides", "1.1.1.1:1234").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "/guides", "2.2.2.2:5678").Code)
}

func TestRateLimiter_TokenRefill(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	// 60 per minute = one token per second.
	handler := rl.Limit(60)(okHandler())

	for i := 0; i < 60; i++ {
		hit(handler, "/packages", "3.3.3.3:1234")
	}
	require.Equal(t, http.StatusTooManyRequests, hit(handler, "/packages", "3.3.3.3:1234").Code)

	time.Sleep(1100 * time.Millisecond)

	assert.Equal(t, http.StatusOK, hit(handler, "/packages", "3.3.3.3:1234").Code)
}

func TestRateLimiter_PortsShareBucket(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	handler := rl.Limit(2)(okHandler())

	codes := make([]int, 0, 3)
	for _, addr := range []string{"5.6.7.8:1000", "5.6.7.8:1001", "5.6.7.8:1002"} {
		codes = append(codes, hit(handler, "/packages/x/assign", addr).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_ExemptPathsSkipBucket(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()

	handler := rl.Limit(1, "/live", "/ready")(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "/live", "9.9.9.9:1").Code)
	}
	assert.Equal(t, http.StatusOK, hit(handler, "/guides", "9.9.9.9:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "/guides", "9.9.9.9:1").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "/ready", "9.9.9.9:1").Code)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
