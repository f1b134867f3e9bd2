package middleware

import (
	"net/http"

	"github.com/crucial707/studybuddy/internal/session"
)

// LoadSession decodes the session cookie and stores the result in the request context.
// Requests without a valid cookie carry the anonymous session.
func LoadSession(codec *session.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := codec.Read(r)
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireLogin redirects anonymous visitors to redirectTo.
func RequireLogin(redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.FromContext(r.Context()).Anonymous() {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
