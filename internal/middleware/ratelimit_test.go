package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rateLimited(t *testing.T, requestsPerSecond float64, burst int) http.Handler {
	t.Helper()
	rl := NewRateLimiter(requestsPerSecond, burst)
	t.Cleanup(rl.Shutdown)
	return rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	handler := rateLimited(t, 1, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimiterBlocksOverBurst(t *testing.T) {
	handler := rateLimited(t, 1, 1)

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.2:50000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:50001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	handler := rateLimited(t, 1, 1)

	blocked := httptest.NewRequest(http.MethodGet, "/", nil)
	blocked.RemoteAddr = "10.0.0.3:50000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, blocked)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A different client keeps its own budget.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.4:50000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIPStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:61234"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientIP(req))
}
