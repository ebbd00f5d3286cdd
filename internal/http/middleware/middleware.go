// Package middleware provides HTTP middleware shared by all routes.
//
// Middleware here follows the standard wrapping shape:
//
//	func(next http.Handler) http.Handler
//
// so pieces compose with each other and with third-party wrappers
// (gorilla/handlers CORS and recovery are applied the same way in
// main).
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ctxKey is unexported so no other package can collide with our
// context keys.
type ctxKey int

const requestIDKey ctxKey = iota

// RequestID assigns every inbound request a fresh UUID and stores it
// in the request context, so handlers and the logger can correlate
// all log lines belonging to one request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, id)

		// Echo the id back so clients can quote it in bug reports.
		w.Header().Set("X-Request-Id", id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id stored by RequestID, or "" if
// the middleware did not run (e.g. in a bare handler unit test).
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder wraps ResponseWriter to capture the status code a
// handler writes, since http.ResponseWriter has no getter for it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the underlying writer so handlers that stream
// still see a working http.Flusher through the wrapper.
func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logger writes one structured log line per completed request:
// method, path, status, duration, and the correlating request id.
func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Default to 200: handlers that only call Write never
			// call WriteHeader explicitly.
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("request completed",
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
