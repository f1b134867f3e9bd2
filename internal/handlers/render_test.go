package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPageTemplates_ParsedAtStartup(t *testing.T) {
	for _, name := range []string{
		"dashboard.html", "doubts.html", "error.html", "exam.html", "home.html", "mentor.html",
		"notes.html", "planner.html", "speech.html", "teachable.html", "timetable.html",
	} {
		tmpl, ok := pageTemplates[name]
		if !ok {
			t.Errorf("%s: not parsed", name)
			continue
		}
		if tmpl.Lookup("layout") == nil {
			t.Errorf("%s: layout not defined", name)
		}
	}
	for _, shared := range []string{"layout.html", "partials.html"} {
		if _, ok := pageTemplates[shared]; ok {
			t.Errorf("%s parsed as a page", shared)
		}
	}
}

func TestRenderTemplate_SharedAcrossRequests(t *testing.T) {
	before := pageTemplates["error.html"]
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		renderError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusNotFound, "Gone", "Nothing here.")
		expectStatus(t, rr, http.StatusNotFound)
		expectBody(t, rr, "Nothing here.")
	}
	if pageTemplates["error.html"] != before {
		t.Error("error.html was re-parsed")
	}

	rr := httptest.NewRecorder()
	renderTemplate(rr, httptest.NewRequest(http.MethodGet, "/x", nil), http.StatusOK, "nope.html", view{})
	expectStatus(t, rr, http.StatusInternalServerError)
}
