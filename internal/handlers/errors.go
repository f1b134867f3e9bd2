package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

type errorData struct {
	Status  int
	Heading string
	Message string
}

// renderError renders the error page with status.
func renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	renderTemplate(w, r, status, "error.html", view{
		Title:  heading,
		Active: -1,
		Data:   errorData{Status: status, Heading: heading, Message: message},
	})
}

// internalError logs err with the request ID and renders a generic 500 page.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal error",
		"request_id", chimw.GetReqID(r.Context()),
		"path", r.URL.Path,
		"error", err)
	renderError(w, r, http.StatusInternalServerError, "Something went wrong", "The action could not be completed. Please try again.")
}

// tooLarge reports whether err came from a body that exceeded middleware.UploadLimit.
func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// formError maps a failed form parse to its page: 413 for oversized bodies, 400 otherwise.
func formError(w http.ResponseWriter, r *http.Request, err error) {
	if tooLarge(err) {
		renderError(w, r, http.StatusRequestEntityTooLarge, "Upload too large", "The file is larger than the upload limit.")
		return
	}
	renderError(w, r, http.StatusBadRequest, "Bad request", "The form could not be read.")
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}
