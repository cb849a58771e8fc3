package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/adapter/ratelimit"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/crop/domain"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	p   *domain.Principal
	err error
}

func (s stubResolver) Resolve(context.Context, string) (*domain.Principal, error) {
	return s.p, s.err
}

type stubLimiter struct {
	res ratelimit.Result
	err error
}

func (s stubLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return s.res, s.err
}

func statusWriter(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, ErrTooManyRequests):
		w.WriteHeader(http.StatusTooManyRequests)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Regexp(t, `^req_[0-9a-f-]{36}$`, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "upstream-1", seen)
}

func TestAuth(t *testing.T) {
	p := &domain.Principal{Email: "a@example.com"}

	var got *domain.Principal
	h := Auth(stubResolver{p: p}, statusWriter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, p, got)

	called := false
	h = Auth(stubResolver{err: domain.ErrUnauthenticated}, statusWriter)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRateLimit(t *testing.T) {
	p := &domain.Principal{Email: "a@example.com"}
	withPrincipal := func(req *http.Request) *http.Request {
		return req.WithContext(WithPrincipal(req.Context(), p))
	}

	denied := stubLimiter{res: ratelimit.Result{Allowed: false, Limit: 5, RetryAfter: 1500 * time.Millisecond}}
	rec := httptest.NewRecorder()
	RateLimit(denied, statusWriter, logger.NewNop())(http.HandlerFunc(okHandler)).
		ServeHTTP(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil)))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))

	allowed := stubLimiter{res: ratelimit.Result{Allowed: true, Limit: 5, Remaining: 4}}
	rec = httptest.NewRecorder()
	RateLimit(allowed, statusWriter, logger.NewNop())(http.HandlerFunc(okHandler)).
		ServeHTTP(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))

	broken := stubLimiter{err: errors.New("redis down")}
	rec = httptest.NewRecorder()
	RateLimit(broken, statusWriter, logger.NewNop())(http.HandlerFunc(okHandler)).
		ServeHTTP(rec, withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code, "fails open")
}

func TestAccessLogRecordsRoutePattern(t *testing.T) {
	mm := metrics.NewMetricsManager("test")
	r := chi.NewRouter()
	r.Use(AccessLog(logger.NewNop(), mm))
	r.Get("/api/crops/{id}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/crops/abc", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(mm.APILatency))
}
