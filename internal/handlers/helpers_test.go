package handlers

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crucial707/studybuddy/internal/auth"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/session"
	"github.com/crucial707/studybuddy/internal/speech"
	"github.com/crucial707/studybuddy/internal/study"
)

type fakeTranscriber struct {
	res speech.Result
}

func (f *fakeTranscriber) Transcribe(context.Context, string, []byte) speech.Result {
	return f.res
}

// testServer is the full router over a temp data directory, with a cookie jar.
type testServer struct {
	t       *testing.T
	dir     string
	handler http.Handler
	cookies map[string]*http.Cookie

	stt    *fakeTranscriber
	exam   *ExamPage
	doubts *DoubtsPage
	users  *repo.FileUserRepo
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()
	dir := t.TempDir()

	users, err := repo.NewFileUserRepo(filepath.Join(dir, "users.csv"))
	if err != nil {
		t.Fatalf("NewFileUserRepo: %v", err)
	}
	plans, err := repo.NewPlanRepo(filepath.Join(dir, "study_plan.json"))
	if err != nil {
		t.Fatalf("NewPlanRepo: %v", err)
	}
	exports := filepath.Join(dir, "exports")
	store := func(sub, ext, archive string, patterns ...string) *repo.ArtifactManager {
		m, err := repo.NewArtifactManager(filepath.Join(dir, sub), ext, exports, archive, patterns...)
		if err != nil {
			t.Fatalf("NewArtifactManager(%s): %v", sub, err)
		}
		return m
	}
	features, err := LoadFeatures()
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}

	seed := func(n uint64) *rand.Rand { return rand.New(rand.NewPCG(n, 42)) }
	stt := &fakeTranscriber{res: speech.Result{Status: speech.StatusOK, Text: "hello world"}}
	exam := NewExamPage(seed(1))
	doubts := NewDoubtsPage(study.SimulatedAnswerer{})
	planner := NewPlannerPage(plans, "")
	planner.Now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	home := &HomePage{Features: features}

	reg := NewRegistry(map[PageID]PageHandler{
		PageHome:        home,
		PageSpeech:      NewSpeechPage(stt, store("texts", ".txt", "all_texts.zip"), store("audios", ".wav", "all_audio.zip", "*.{wav,mp3}")),
		PageNotes:       NewNotesPage(store("notes", ".txt", "all_notes.zip")),
		PageExam:        exam,
		PagePlanner:     planner,
		PageTeachable:   NewTeachablePage(nil, seed(2)),
		PageTimetable:   NewTimetablePage(seed(3)),
		PageDoubtSolver: doubts,
		PageMentor:      NewMentorPage(seed(4)),
	})
	codec := session.NewCodec([]byte("test-secret"), 0, false)
	cfg := RouterConfig{
		Auth:           &AuthHandler{Auth: auth.NewService(users, "plain"), Sessions: codec, Features: features},
		Home:           home,
		Registry:       reg,
		Sessions:       codec,
		MaxUploadBytes: 10 << 20,
	}
	for _, o := range opts {
		o(&cfg)
	}

	return &testServer{
		t:       t,
		dir:     dir,
		handler: NewRouter(cfg),
		cookies: map[string]*http.Cookie{},
		stt:     stt,
		exam:    exam,
		doubts:  doubts,
		users:   users,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
	return rr
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (s *testServer) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

type upload struct {
	field, name string
	data        []byte
}

func (s *testServer) postMultipart(target string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			s.t.Fatalf("WriteField: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			s.t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(f.data)); err != nil {
			s.t.Fatalf("write upload: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		s.t.Fatalf("multipart close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

// login signs up alice and leaves her session in the jar.
func (s *testServer) login() {
	s.t.Helper()
	rr := s.postForm("/signup", url.Values{"username": {"alice"}, "password": {"pw1"}})
	if rr.Code != http.StatusSeeOther {
		s.t.Fatalf("sign up: got %d, want 303; body: %s", rr.Code, rr.Body.String())
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	expectStatus(t, rr, http.StatusSeeOther)
	if got := rr.Header().Get("Location"); got != want {
		t.Fatalf("Location: got %q, want %q", got, want)
	}
}

func expectBody(t *testing.T, rr *httptest.ResponseRecorder, substrs ...string) {
	t.Helper()
	body := rr.Body.String()
	for _, s := range substrs {
		if !strings.Contains(body, s) {
			t.Errorf("body does not contain %q", s)
		}
	}
}
