package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareDeniesWith429(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(0.001, 1)
	defer l.Close()

	handler := ratelimit.Middleware(l, "ingest", ratelimit.IPKeyFunc)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/runs/insert", nil)
	req.RemoteAddr = "10.0.0.1:55555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Client Side Error","message":"too many requests","type":"RateLimited"}`, rec.Body.String())
}

func TestMiddlewareNilLimiterPassesThrough(t *testing.T) {
	handler := ratelimit.Middleware(nil, "ingest", ratelimit.IPKeyFunc)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/runs/insert", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareScopesKeysIndependently(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(0.001, 1)
	defer l.Close()

	ingest := ratelimit.Middleware(l, "ingest", ratelimit.IPKeyFunc)(okHandler())
	query := ratelimit.Middleware(l, "query", ratelimit.IPKeyFunc)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/runs/insert", nil)
	req.RemoteAddr = "10.0.0.2:55555"

	rec := httptest.NewRecorder()
	ingest.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ingest.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// The ingest bucket being drained does not touch the query scope.
	rec = httptest.NewRecorder()
	query.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareEmptyKeySkips(t *testing.T) {
	l := ratelimit.NewMemoryLimiter(0.001, 1)
	defer l.Close()

	noKey := func(r *http.Request) string { return "" }
	handler := ratelimit.Middleware(l, "ingest", noKey)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/runs/insert", nil)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestIPKeyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:41234"
	assert.Equal(t, "192.168.1.10", ratelimit.IPKeyFunc(req))
}
