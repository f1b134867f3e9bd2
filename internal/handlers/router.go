package handlers

import (
	"net/http"

	"github.com/crucial707/studybuddy/internal/middleware"
	"github.com/crucial707/studybuddy/internal/session"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig is everything NewRouter wires together.
type RouterConfig struct {
	Auth     *AuthHandler
	Home     *HomePage
	Registry *Registry
	Sessions *session.Codec

	// MaxUploadBytes caps multipart uploads under /pages.
	MaxUploadBytes int64
	// HSTS adds Strict-Transport-Security; set when serving HTTPS.
	HSTS bool
	// CSRF protects every form when set (gorilla/csrf).
	CSRF func(http.Handler) http.Handler
	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func(r *http.Request) error
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP (chi RealIP).
	TrustProxy bool
}

// NewRouter builds the server's chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Instrument)
	r.Use(middleware.LoadSession(cfg.Sessions))
	r.Use(middleware.SecurityHeaders(cfg.HSTS))
	r.Use(middleware.RequestLog)

	// Health and metrics (no session, no CSRF)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", Static())

	r.Group(func(r chi.Router) {
		if cfg.CSRF != nil {
			r.Use(cfg.CSRF)
		}

		// Public
		authLimiter := middleware.AuthRateLimiter()
		r.Get("/", cfg.Auth.Home)
		r.Get("/login", cfg.Auth.ShowLogin)
		r.With(authLimiter.Middleware).Post("/login", cfg.Auth.Login)
		r.With(authLimiter.Middleware).Post("/signup", cfg.Auth.SignUp)
		r.Post("/logout", cfg.Auth.Logout)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin("/"))
			r.Use(middleware.UploadLimit(cfg.MaxUploadBytes))
			r.Get("/dashboard", cfg.Home.Dashboard)
			r.HandleFunc("/pages/{slug}", cfg.Registry.Dispatch)
			r.HandleFunc("/pages/{slug}/*", cfg.Registry.Dispatch)
		})
	})

	r.NotFound(pageNotFound)
	return r
}
