package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/findash-backend/internal/dto"
	"github.com/GregMSThompson/findash-backend/internal/handlers"
	"github.com/GregMSThompson/findash-backend/internal/middleware"
	"github.com/GregMSThompson/findash-backend/internal/response"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

type stubFieldService struct {
	calls   int
	lastUID string
	lastReq dto.FieldsRequest
}

func (s *stubFieldService) Fields(_ context.Context, uid string, req dto.FieldsRequest) (dto.FieldsResponse, error) {
	s.calls++
	s.lastUID = uid
	s.lastReq = req
	return dto.FieldsResponse{}, nil
}

func newDeps(fs *stubFieldService) *handlers.Deps {
	log := logger.New("error", logger.NewTestHandler)
	return &handlers.Deps{
		Log:             log,
		ResponseHandler: response.New(log),
		FieldSvc:        fs,
	}
}

func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
	})
}

func TestRouter_HealthzOutsideAuth(t *testing.T) {
	r := NewRouter(newDeps(&stubFieldService{}), Options{Auth: denyAll})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestRouter_MetricsOutsideAuth(t *testing.T) {
	r := NewRouter(newDeps(&stubFieldService{}), Options{Auth: denyAll})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_AuthGuardsAPI(t *testing.T) {
	fs := &stubFieldService{}
	r := NewRouter(newDeps(fs), Options{Auth: denyAll})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fields?url=https://x.test", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, fs.calls)
}

func TestRouter_LocalModeUsesLocalUID(t *testing.T) {
	fs := &stubFieldService{}
	r := NewRouter(newDeps(fs), Options{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fields?url=https://x.test&selector=s1&arraysOnly=true", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, middleware.LocalUID, fs.lastUID)
	assert.Equal(t, "https://x.test", fs.lastReq.URL)
	assert.Equal(t, "s1", fs.lastReq.SelectorID)
	assert.True(t, fs.lastReq.ArraysOnly)
}

func TestRouter_RateLimitApplied(t *testing.T) {
	fs := &stubFieldService{}
	r := NewRouter(newDeps(fs), Options{RateLimit: 0.5, RateBurst: 1})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/fields", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/fields", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, fs.calls)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := NewRouter(newDeps(&stubFieldService{}), Options{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
