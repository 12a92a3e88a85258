package core

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrelay/internal/config"
	"planrelay/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(&config.Config{Service: "planrelay"}, testLogger())
	require.NoError(t, err)
	return s
}

// --- NewServer Tests ---

func TestNewServer_NilDependencies(t *testing.T) {
	_, err := NewServer(nil, testLogger())
	assert.Error(t, err)

	_, err = NewServer(&config.Config{}, nil)
	assert.Error(t, err)
}

// --- Recoverer Tests ---

func TestRecoverer_CatchesPanic(t *testing.T) {
	s := testServer(t)
	handler := s.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
}

func TestRecoverer_PassThrough(t *testing.T) {
	s := testServer(t)
	handler := s.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

// --- RequestID Tests ---

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDMiddleware_PropagatesIncomingID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "upstream-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", seen)
	assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-Id"))
}

// --- Context Timeout Tests ---

func TestContextTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	handler := ContextTimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.True(t, hasDeadline)
}

// --- URL Sanitization Tests ---

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no query", in: "/hacknplan", want: "/hacknplan"},
		{name: "token redacted", in: "/hacknplan?token=secret123", want: "/hacknplan?token=REDACTED"},
		{name: "other params kept", in: "/hacknplan?token=s&source=hnp", want: "/hacknplan?source=hnp&token=REDACTED"},
		{name: "no token param", in: "/health?verbose=1", want: "/health?verbose=1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := url.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sanitizeURL(u))
		})
	}
}

// --- Response Capture Tests ---

func TestResponseCapture_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rc := &responseCapture{ResponseWriter: rec}

	_, err := rc.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rc.statusCode)
}

func TestResponseCapture_ExplicitStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rc := &responseCapture{ResponseWriter: rec}

	rc.WriteHeader(http.StatusAccepted)
	rc.WriteHeader(http.StatusInternalServerError) // second call must not overwrite

	assert.Equal(t, http.StatusAccepted, rc.statusCode)
}

// --- Routing Tests ---

func TestMountRoutes_HealthAndRegistrars(t *testing.T) {
	s := testServer(t)
	s.Registrars = append(s.Registrars, func(r chi.Router) {
		r.Get("/custom", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	s.MountRoutes()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "planrelay", health.Service)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/custom", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
