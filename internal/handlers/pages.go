package handlers

import (
	"fmt"
	"net/http"

	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// PageID identifies one dashboard page. The set is closed: every value must be
// registered before the server starts.
type PageID int

const (
	PageHome PageID = iota
	PageSpeech
	PageNotes
	PageExam
	PagePlanner
	PageTeachable
	PageTimetable
	PageDoubtSolver
	PageMentor

	pageCount
)

// AllPages lists every PageID in menu order.
func AllPages() []PageID {
	out := make([]PageID, 0, pageCount)
	for id := PageID(0); id < pageCount; id++ {
		out = append(out, id)
	}
	return out
}

var pageMeta = [pageCount]struct {
	slug, title, icon string
}{
	PageHome:        {"home", "Home", "🏠"},
	PageSpeech:      {"speech", "Speech to Text", "🎙"},
	PageNotes:       {"notes", "Smart Notes", "📘"},
	PageExam:        {"exam", "Mock Test", "📝"},
	PagePlanner:     {"planner", "Study Planner", "📅"},
	PageTeachable:   {"teachable", "Teachable Machine", "👨‍🏫"},
	PageTimetable:   {"timetable", "Time Table Generator", "⏱️"},
	PageDoubtSolver: {"doubts", "Doubt Solver", "❓"},
	PageMentor:      {"mentor", "Digital Mentor", "🤖"},
}

func (id PageID) valid() bool { return id >= 0 && id < pageCount }

func (id PageID) Slug() string {
	if !id.valid() {
		return ""
	}
	return pageMeta[id].slug
}

func (id PageID) Title() string {
	if !id.valid() {
		return fmt.Sprintf("PageID(%d)", int(id))
	}
	return pageMeta[id].title
}

func (id PageID) Icon() string {
	if !id.valid() {
		return ""
	}
	return pageMeta[id].icon
}

// Path is the URL prefix the page is served under.
func (id PageID) Path() string { return "/pages/" + id.Slug() }

func (id PageID) String() string { return id.Slug() }

// PageHandler is implemented by every page. Routes registers the page's own routes,
// relative to its Path.
type PageHandler interface {
	Routes(r chi.Router)
}

// Page is a registered page with its mounted router.
type Page struct {
	ID      PageID
	handler http.Handler
}

func (p Page) Slug() string  { return p.ID.Slug() }
func (p Page) Title() string { return p.ID.Title() }
func (p Page) Icon() string  { return p.ID.Icon() }
func (p Page) Path() string  { return p.ID.Path() }

// ==========================
// Registry
// ==========================

// Registry resolves slugs to pages.
type Registry struct {
	pages  []Page
	bySlug map[string]Page
}

// NewRegistry builds the registry. It panics when a PageID has no handler or a
// handler is registered for an unknown ID, so a missing page fails at startup.
func NewRegistry(handlers map[PageID]PageHandler) *Registry {
	reg := &Registry{bySlug: make(map[string]Page, pageCount)}
	for id := range handlers {
		if !id.valid() {
			panic(fmt.Sprintf("handlers: unknown page id %d", int(id)))
		}
	}
	for _, id := range AllPages() {
		h, ok := handlers[id]
		if !ok || h == nil {
			panic(fmt.Sprintf("handlers: no handler registered for page %q", id.Slug()))
		}
		r := chi.NewRouter()
		r.NotFound(pageNotFound)
		h.Routes(r)
		p := Page{ID: id, handler: r}
		reg.pages = append(reg.pages, p)
		reg.bySlug[id.Slug()] = p
	}
	return reg
}

// Pages returns the pages in menu order.
func (reg *Registry) Pages() []Page { return reg.pages }

// Lookup returns the page served under slug.
func (reg *Registry) Lookup(slug string) (Page, bool) {
	p, ok := reg.bySlug[slug]
	return p, ok
}

func pageNotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "Page not found", "The page you asked for does not exist.")
}

// Dispatch serves /pages/{slug} and /pages/{slug}/*. Unknown slugs render the 404 page.
func (reg *Registry) Dispatch(w http.ResponseWriter, r *http.Request) {
	p, ok := reg.Lookup(chi.URLParam(r, "slug"))
	if !ok {
		renderError(w, r, http.StatusNotFound, "Page not found",
			"There is no page called \""+chi.URLParam(r, "slug")+"\".")
		return
	}
	if r.Method == http.MethodGet {
		metrics.IncPageView(p.Slug())
	}
	// Hand the remainder of the path to the page router, the way chi's Mount does.
	rctx := chi.RouteContext(r.Context())
	rctx.RoutePath = "/" + chi.URLParam(r, "*")
	p.handler.ServeHTTP(w, r)
}
