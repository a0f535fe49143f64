package fetchclient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/metrics"
	"github.com/GregMSThompson/findash-backend/pkg/helpers"
)

func TestGet_SendsHeadersAndReturnsBody(t *testing.T) {
	var gotUA, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCache = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := New(time.Second).Get(helpers.TestCtx(), srv.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, UserAgent, gotUA)
	assert.Equal(t, "no-cache", gotCache)
}

func TestGet_NonOKIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(time.Second).Get(helpers.TestCtx(), srv.URL)
	var hErr *errs.HTTPError
	require.True(t, errors.As(err, &hErr))
	assert.Equal(t, http.StatusTooManyRequests, hErr.Status)
	assert.Equal(t, "API request failed: Too Many Requests (429)", hErr.Error())
	assert.True(t, IsUpstream(err))
}

func TestGet_InvalidJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer srv.Close()

	_, err := New(time.Second).Get(helpers.TestCtx(), srv.URL)
	var pErr *errs.ParseError
	assert.True(t, errors.As(err, &pErr))
}

func TestGet_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pad":"` + strings.Repeat("x", 64) + `"}`))
	}))
	defer srv.Close()

	_, err := New(time.Second, WithMaxBody(16)).Get(helpers.TestCtx(), srv.URL)
	var pErr *errs.ParseError
	assert.True(t, errors.As(err, &pErr))
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New(time.Second).Get(helpers.TestCtx(), addr)
	var tErr *errs.TransportError
	assert.True(t, errors.As(err, &tErr))
}

func TestGet_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(time.Second).Get(helpers.TestCtx(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTestEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/scalar" {
			_, _ = w.Write([]byte(`"just a string"`))
			return
		}
		_, _ = w.Write([]byte(`[{"a":1}]`))
	}))
	defer srv.Close()

	c := New(time.Second)
	var vErr *errs.ValidationError

	_, err := c.TestEndpoint(helpers.TestCtx(), "ftp://example.com")
	assert.True(t, errors.As(err, &vErr))

	_, err = c.TestEndpoint(helpers.TestCtx(), srv.URL+"/scalar")
	assert.True(t, errors.As(err, &vErr))

	body, err := c.TestEndpoint(helpers.TestCtx(), srv.URL+"/list")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a":1}]`, string(body))
}

func TestGet_MetricsLabelByProviderNotHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := New(time.Second).Get(helpers.TestCtx(), srv.URL)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := rr.Body.String()
	assert.Contains(t, out, `findash_upstream_fetches_total{outcome="ok",provider="custom"}`)
	assert.NotContains(t, out, strings.TrimPrefix(srv.URL, "http://"))
}
