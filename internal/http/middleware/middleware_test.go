package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklin-edu/students-api/internal/http/middleware"
)

func TestRequestIDAssignsAndExposesID(t *testing.T) {
	var seen string

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	middleware.RequestID(inner).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/students", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))

	// The id is a well-formed UUID.
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestRequestIDsAreUnique(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := middleware.RequestID(inner)

	ids := make(map[string]bool)
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		ids[rec.Header().Get("X-Request-Id")] = true
	}

	assert.Len(t, ids, 10)
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestLoggerPassesThroughStatus(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	middleware.Logger(log)(inner).ServeHTTP(rec,
		httptest.NewRequest(http.MethodDelete, "/api/students/1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoggerForwardsFlush(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok, "wrapped writer must still expose http.Flusher")
		w.Write([]byte("chunk"))
		f.Flush()
	})

	rec := httptest.NewRecorder()
	middleware.Logger(log)(inner).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/students", nil))

	assert.True(t, rec.Flushed)
}

func TestLoggerDefaultsToOK(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A handler that only writes a body never calls WriteHeader.
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	middleware.Logger(log)(inner).ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/students", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
