package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/studybuddy/internal/auth"
	"github.com/crucial707/studybuddy/internal/forms"
	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/session"
)

// ==========================
// Auth Handler
// ==========================

// AuthHandler serves the landing page, the login and sign-up forms and logout.
type AuthHandler struct {
	Auth     *auth.Service
	Sessions *session.Codec
	Features []Feature
}

type credentials struct {
	Username string `form:"username" validate:"notblank,max=64"`
	Password string `form:"password" validate:"required,max=128"`
}

type loginData struct {
	Features  []Feature
	ShowLogin bool
	Mode      string // "login" or "signup"
	Username  string
	Fields    forms.Errors
}

func sessionFrom(r *http.Request) session.Session {
	return session.FromContext(r.Context())
}

// Home renders the landing page. Logged-in visitors go straight to the dashboard.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if s.LoggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "home.html", view{
		Title:  "AI Study Buddy",
		Active: -1,
		Data:   loginData{Features: h.Features, ShowLogin: s.ShowLogin, Mode: "login"},
	})
}

// ShowLogin sets the show-login flag and sends the visitor back to the landing page.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if s.LoggedIn {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if !s.ShowLogin {
		s.ShowLogin = true
		if err := h.Sessions.Write(w, s); err != nil {
			internalError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ==========================
// Login
// ==========================

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "login")
}

// ==========================
// Sign up
// ==========================

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "signup")
}

func (h *AuthHandler) submit(w http.ResponseWriter, r *http.Request, mode string) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	in := credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	data := loginData{Features: h.Features, ShowLogin: true, Mode: mode, Username: in.Username}

	if fields := forms.Validate(in); fields != nil {
		metrics.IncAuthAttempt(mode, "invalid")
		data.Fields = fields
		h.renderLogin(w, r, http.StatusBadRequest, data, "Please fill in both fields.")
		return
	}

	var err error
	if mode == "signup" {
		err = h.Auth.SignUp(r.Context(), in.Username, in.Password)
	} else {
		err = h.Auth.Login(r.Context(), in.Username, in.Password)
	}
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.IncAuthAttempt(mode, "denied")
		h.renderLogin(w, r, http.StatusUnauthorized, data, "Invalid username or password.")
		return
	case errors.Is(err, auth.ErrUserExists):
		metrics.IncAuthAttempt(mode, "exists")
		h.renderLogin(w, r, http.StatusConflict, data, "Username already exists.")
		return
	case errors.Is(err, auth.ErrMissingFields):
		metrics.IncAuthAttempt(mode, "invalid")
		h.renderLogin(w, r, http.StatusBadRequest, data, "Please fill in both fields.")
		return
	case errors.Is(err, repo.ErrStoreLocked):
		metrics.IncAuthAttempt(mode, "error")
		slog.Warn("user store locked", "action", mode, "error", err)
		h.renderLogin(w, r, http.StatusServiceUnavailable, data,
			"The user file is locked by another program. Close it and try again.")
		return
	default:
		metrics.IncAuthAttempt(mode, "error")
		internalError(w, r, err)
		return
	}

	metrics.IncAuthAttempt(mode, "ok")
	slog.Info("user authenticated", "action", mode, "user", in.Username)
	if err := h.Sessions.Write(w, session.LoggedInAs(in.Username)); err != nil {
		internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// renderLogin re-renders the landing page with the form open. The session is untouched.
func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginData, msg string) {
	renderTemplate(w, r, status, "home.html", view{
		Title:  "AI Study Buddy",
		Active: -1,
		Error:  msg,
		Data:   data,
	})
}

// ==========================
// Logout
// ==========================

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
