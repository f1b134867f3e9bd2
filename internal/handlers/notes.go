package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/studybuddy/internal/docparse"
	"github.com/crucial707/studybuddy/internal/export"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/go-chi/chi/v5"
)

// NotesPage turns pasted text or an uploaded document into bullet notes and manages
// the saved notes directory.
type NotesPage struct {
	files *artifacts
}

func NewNotesPage(store *repo.ArtifactManager, sinks ...export.Sink) *NotesPage {
	return &NotesPage{files: &artifacts{Page: PageNotes, Kind: "note", Store: store, Sinks: sinks}}
}

type notesData struct {
	Text     string
	Notes    []string
	Markdown string
	SaveAs   string
	Saved    []models.Artifact
	Preview  *models.Artifact
}

func (p *NotesPage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/generate", p.generate)
	r.Post("/save", p.save)
	r.Get("/view/{name}", p.view)
	p.files.mount(r, "")
}

func (p *NotesPage) render(w http.ResponseWriter, r *http.Request, status int, data notesData, errMsg string) {
	saved, listErr := p.files.list()
	data.Saved = saved
	if errMsg == "" {
		errMsg = listErr
	}
	if data.SaveAs == "" {
		data.SaveAs = "smart_notes"
	}
	renderTemplate(w, r, status, "notes.html", view{
		Title:  PageNotes.Title(),
		Active: PageNotes,
		Flash:  flash(r),
		Error:  errMsg,
		Data:   data,
	})
}

func (p *NotesPage) index(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, notesData{}, "")
}

// sourceText returns the uploaded document's text when a file was posted, the
// textarea otherwise.
func sourceText(r *http.Request, field, textField string) (string, string) {
	name, data, err := readUpload(r, field)
	switch {
	case errors.Is(err, errNoFile):
		return r.FormValue(textField), ""
	case err != nil:
		return "", "The uploaded file could not be read."
	}
	text, err := docparse.Extract(name, data)
	if errors.Is(err, docparse.ErrUnsupported) {
		return "", "Unsupported file type. Upload a PDF, DOCX or TXT file."
	}
	if err != nil {
		slog.Warn("document extraction failed", "file", name, "error", err)
		return "", "Document reading error. Check the file or try another one."
	}
	return text, ""
}

func (p *NotesPage) generate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		formError(w, r, err)
		return
	}
	text, msg := sourceText(r, "file", "text")
	data := notesData{Text: r.FormValue("text"), SaveAs: r.FormValue("save_as")}
	if msg != "" {
		p.render(w, r, http.StatusBadRequest, data, msg)
		return
	}
	if strings.TrimSpace(text) == "" {
		p.render(w, r, http.StatusBadRequest, data, "Please enter text or upload a document.")
		return
	}
	data.Notes = study.GenerateNotes(text)
	if len(data.Notes) == 0 {
		p.render(w, r, http.StatusOK, data, "No sentence was long enough to become a note.")
		return
	}
	data.Markdown = study.NotesMarkdown(data.Notes)
	p.render(w, r, http.StatusOK, data, "")
}

func (p *NotesPage) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	content := r.PostFormValue("content")
	data := notesData{SaveAs: r.PostFormValue("name"), Markdown: content}
	if strings.TrimSpace(content) == "" {
		p.render(w, r, http.StatusBadRequest, data, "Generate notes before saving.")
		return
	}
	if !p.files.save(w, r, r.PostFormValue("name"), []byte(content)) {
		p.render(w, r, http.StatusBadRequest, data, "The name must contain at least one letter, digit, _ or -.")
	}
}

func (p *NotesPage) view(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	content, err := p.files.Store.Read(name)
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrInvalidName) {
		renderError(w, r, http.StatusNotFound, "Note not found", "No saved note called \""+name+"\".")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	p.render(w, r, http.StatusOK, notesData{Preview: &models.Artifact{Name: name, Content: string(content)}}, "")
}
