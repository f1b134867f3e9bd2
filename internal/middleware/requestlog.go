package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/studybuddy/internal/session"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLog writes one line per request. Server errors log at Error, client errors at
// Warn. Use after RequestID and LoadSession so request_id and user are filled in.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "request",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"size", ww.BytesWritten(),
			"user", session.FromContext(r.Context()).Username)
	})
}
