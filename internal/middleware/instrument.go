package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// unmeasured paths are health checks, the metrics endpoint and static assets.
var unmeasured = []string{"/metrics", "/health", "/ready", "/static/"}

func measured(path string) bool {
	for _, p := range unmeasured {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return false
		}
	}
	return true
}

// unmatchedRoute labels requests that resolved to no route or to a 404.
const unmatchedRoute = "unmatched"

// routeLabel is the chi route pattern that served r, e.g. /pages/{slug}/view/{name}.
func routeLabel(r *http.Request, status int) string {
	if status == http.StatusNotFound {
		return unmatchedRoute
	}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// Instrument records request count and duration per method, route pattern and status.
// It must run inside a chi router so the pattern is known once the handler returns.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !measured(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordRequest(r.Method, routeLabel(r, status), status, time.Since(start).Seconds())
	})
}
