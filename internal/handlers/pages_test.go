package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubPage struct{ body string }

func (p stubPage) Routes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(p.body)) })
	r.Get("/sub/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(p.body + ":" + chi.URLParam(r, "id")))
	})
}

func stubHandlers() map[PageID]PageHandler {
	m := make(map[PageID]PageHandler)
	for _, id := range AllPages() {
		m[id] = stubPage{body: id.Slug()}
	}
	return m
}

func expectPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if msg, _ := r.(string); !strings.Contains(msg, want) {
			t.Errorf("panic %q does not mention %q", r, want)
		}
	}()
	fn()
}

func TestPageIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range AllPages() {
		if id.Slug() == "" || id.Title() == "" {
			t.Errorf("page %d has no slug or title", int(id))
		}
		if seen[id.Slug()] {
			t.Errorf("duplicate slug %q", id.Slug())
		}
		seen[id.Slug()] = true
		if id.Path() != "/pages/"+id.Slug() {
			t.Errorf("Path(%v) = %q", id, id.Path())
		}
	}
	if len(seen) != int(pageCount) {
		t.Errorf("got %d pages, want %d", len(seen), pageCount)
	}
	if PageID(99).Slug() != "" {
		t.Error("invalid PageID has a slug")
	}
}

func TestNewRegistry_PanicsOnMissingHandler(t *testing.T) {
	h := stubHandlers()
	delete(h, PageMentor)
	expectPanic(t, `"mentor"`, func() { NewRegistry(h) })
}

func TestNewRegistry_PanicsOnUnknownID(t *testing.T) {
	h := stubHandlers()
	h[PageID(99)] = stubPage{}
	expectPanic(t, "unknown page id 99", func() { NewRegistry(h) })
}

func TestRegistry_LookupAndOrder(t *testing.T) {
	reg := NewRegistry(stubHandlers())
	pages := reg.Pages()
	if len(pages) != int(pageCount) || pages[0].ID != PageHome {
		t.Fatalf("unexpected pages: %v", pages)
	}
	if p, ok := reg.Lookup("doubts"); !ok || p.ID != PageDoubtSolver {
		t.Errorf("Lookup(doubts) = %v, %v", p, ok)
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Error("Lookup(nope) succeeded")
	}
}

func TestRouter_ProtectedPagesRedirectAnonymous(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/dashboard", "/pages/notes", "/pages/exam/tests/x"} {
		expectRedirect(t, s.get(target), "/")
	}
}

func TestRouter_EveryPageRenders(t *testing.T) {
	s := newTestServer(t)
	s.login()
	for _, id := range AllPages() {
		rr := s.get(id.Path())
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: got %d; body: %s", id.Path(), rr.Code, rr.Body.String())
			continue
		}
		expectBody(t, rr, `class="active"`, id.Title())
	}
}

func TestRouter_UnknownPage(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rr := s.get("/pages/nope")
	expectStatus(t, rr, http.StatusNotFound)
	expectBody(t, rr, "Page not found", "nope")

	rr = s.get("/pages/notes/missing")
	expectStatus(t, rr, http.StatusNotFound)

	rr = s.get("/no/such/route")
	expectStatus(t, rr, http.StatusNotFound)
}

func TestRouter_HealthAndReady(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.Ready = func(*http.Request) error { return errors.New("db down") }
	})
	rr := s.get("/health")
	expectStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "ok" {
		t.Errorf("health body: %q", rr.Body.String())
	}
	expectStatus(t, s.get("/ready"), http.StatusServiceUnavailable)
	expectStatus(t, s.get("/metrics"), http.StatusOK)
}

func TestRouter_StaticAndSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	rr := s.get("/static/style.css")
	expectStatus(t, rr, http.StatusOK)
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/css") {
		t.Errorf("Content-Type: %q", rr.Header().Get("Content-Type"))
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy")
	}
}

func TestRouter_CSRF(t *testing.T) {
	s := newTestServer(t, func(cfg *RouterConfig) {
		cfg.CSRF = csrf.Protect([]byte("0123456789abcdef0123456789abcdef"), csrf.Secure(false))
	})
	rr := s.get("/login")
	expectRedirect(t, rr, "/")
	rr = s.get("/")
	expectStatus(t, rr, http.StatusOK)
	expectBody(t, rr, `name="gorilla.csrf.Token"`)

	rr = s.postForm("/login", nil)
	expectStatus(t, rr, http.StatusForbidden)
}

func TestRequestMetrics_UnknownPathsShareSeries(t *testing.T) {
	s := newTestServer(t)
	anon := newTestServer(t)
	s.login()

	batch := func(offset int) {
		for i := offset; i < offset+50; i++ {
			expectStatus(t, anon.get(fmt.Sprintf("/no-such-path-%d", i)), http.StatusNotFound)
			expectStatus(t, anon.get(fmt.Sprintf("/pages/bogus-%d", i)), http.StatusSeeOther)
			expectStatus(t, s.get(fmt.Sprintf("/pages/bogus-%d", i)), http.StatusNotFound)
			expectStatus(t, s.get(fmt.Sprintf("/pages/notes/view/missing-%d.txt", i)), http.StatusNotFound)
		}
	}

	batch(0)
	series := testutil.CollectAndCount(metrics.RequestTotal)
	batch(50)
	if got := testutil.CollectAndCount(metrics.RequestTotal); got != series {
		t.Fatalf("http_requests_total series grew from %d to %d", series, got)
	}
	if got := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues(http.MethodGet, "unmatched", "404")); got < 300 {
		t.Errorf("unmatched 404s: got %v, want at least 300", got)
	}
}
