package logging

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

// LoggerContextKey holds the request-scoped logger in the request context.
const LoggerContextKey contextKey = "logger"

// statusWriter records the status code and payload size that went out on the
// wire. Only the first WriteHeader wins, matching net/http semantics.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger attaches a logger scoped to the request (request id, method,
// path) to the context and emits one completion record per request. Server
// errors surface at error level, client errors at warn, everything else at
// info.
func RequestLogger(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger.WithFields(map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			sw := &statusWriter{ResponseWriter: w}
			ctx := context.WithValue(r.Context(), LoggerContextKey, reqLogger)
			next.ServeHTTP(sw, r.WithContext(ctx))

			// A handler that never writes still counts as a 200.
			if sw.status == 0 {
				sw.status = http.StatusOK
			}

			reqLogger.Log(r.Context(), levelFor(sw.status), "request completed",
				"status", sw.status,
				"bytes", sw.bytes,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// GetLoggerFromContext returns the request-scoped logger. Outside a request
// (tests, startup) it falls back to a development logger.
func GetLoggerFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return l
	}
	return NewLogger(true)
}
