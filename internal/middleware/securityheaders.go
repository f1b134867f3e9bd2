package middleware

import (
	"net/http"

	"github.com/crucial707/studybuddy/internal/session"
)

// contentSecurityPolicy allows same-origin styles, images, audio and form posts only.
const contentSecurityPolicy = "default-src 'none'; style-src 'self'; img-src 'self' data:; " +
	"media-src 'self'; form-action 'self'; base-uri 'none'; frame-ancestors 'none'"

var staticHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "same-origin",
	"Content-Security-Policy": contentSecurityPolicy,
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
}

// SecurityHeaders sets the fixed security headers, HSTS when serving HTTPS, and
// Cache-Control: no-store for logged-in responses so notes, plans and test answers
// are not kept by shared caches. Use after LoadSession.
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range staticHeaders {
				h.Set(k, v)
			}
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			if session.FromContext(r.Context()).LoggedIn {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
