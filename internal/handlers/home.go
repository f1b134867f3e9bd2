package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HomePage is the dashboard landing page: a welcome and the workflow guide.
type HomePage struct {
	Features []Feature
}

func (p *HomePage) Routes(r chi.Router) {
	r.Get("/", p.Dashboard)
}

// Dashboard serves both GET /dashboard and the Home page.
func (p *HomePage) Dashboard(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, http.StatusOK, "dashboard.html", view{
		Title:  "Dashboard",
		Active: PageHome,
		Data:   p.Features,
	})
}
