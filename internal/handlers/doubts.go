package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/studybuddy/internal/docparse"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/go-chi/chi/v5"
)

// retrieveK is how many chunks are handed to the answerer.
const retrieveK = 3

// DoubtsPage answers questions from the text of the user's uploaded documents.
type DoubtsPage struct {
	Answerer study.Answerer
	docs     *userState[[]loadedDoc]
}

func NewDoubtsPage(a study.Answerer) *DoubtsPage {
	if a == nil {
		a = study.SimulatedAnswerer{}
	}
	return &DoubtsPage{Answerer: a, docs: newUserState[[]loadedDoc](nil)}
}

type loadedDoc struct {
	Name   string
	Chunks []string
}

type doubtsData struct {
	Docs     []loadedDoc
	Question string
	Answer   string
	Context  []string
}

func (p *DoubtsPage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/upload", p.upload)
	r.Post("/ask", p.ask)
}

func (p *DoubtsPage) render(w http.ResponseWriter, r *http.Request, status int, data doubtsData, flashMsg, errMsg string) {
	data.Docs = p.docs.Get(currentUser(r))
	renderTemplate(w, r, status, "doubts.html", view{
		Title:  PageDoubtSolver.Title(),
		Active: PageDoubtSolver,
		Flash:  flashMsg,
		Error:  errMsg,
		Data:   data,
	})
}

func (p *DoubtsPage) index(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, doubtsData{}, "", "")
}

// upload replaces the user's document set with the posted files. Files that cannot
// be read are skipped and reported.
func (p *DoubtsPage) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		formError(w, r, err)
		return
	}
	files := r.MultipartForm.File["docs"]
	if len(files) == 0 {
		p.render(w, r, http.StatusBadRequest, doubtsData{}, "", "Choose at least one document.")
		return
	}

	var docs []loadedDoc
	var skipped []string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			skipped = append(skipped, fh.Filename)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			skipped = append(skipped, fh.Filename)
			continue
		}
		text, err := docparse.Extract(fh.Filename, data)
		if err != nil || strings.TrimSpace(text) == "" {
			slog.Warn("document extraction failed", "file", fh.Filename, "error", err)
			skipped = append(skipped, fh.Filename)
			continue
		}
		docs = append(docs, loadedDoc{Name: fh.Filename, Chunks: study.Chunk(text, study.ChunkSize)})
	}
	p.docs.Set(currentUser(r), docs)

	var errMsg, flashMsg string
	if len(skipped) > 0 {
		errMsg = "Could not read: " + strings.Join(skipped, ", ") + "."
	}
	if len(docs) > 0 {
		flashMsg = "Loaded " + plural(len(docs), "document") + " successfully."
	}
	p.render(w, r, http.StatusOK, doubtsData{}, flashMsg, errMsg)
}

func (p *DoubtsPage) ask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	q := strings.TrimSpace(r.PostFormValue("question"))
	data := doubtsData{Question: q}

	docs := p.docs.Get(currentUser(r))
	if len(docs) == 0 {
		p.render(w, r, http.StatusBadRequest, data, "", capitalize(study.ErrNoDocuments.Error())+"!")
		return
	}
	if q == "" {
		p.render(w, r, http.StatusBadRequest, data, "", capitalize(study.ErrNoQuestion.Error())+"!")
		return
	}

	var chunks []string
	for _, d := range docs {
		chunks = append(chunks, d.Chunks...)
	}
	data.Context = study.Retrieve(chunks, q, retrieveK)
	answer, err := p.Answerer.Answer(r.Context(), q, data.Context)
	if err != nil {
		slog.Warn("answer service failed", "error", err)
		p.render(w, r, http.StatusOK, data, "", "The answer service is unavailable. Try again later.")
		return
	}
	data.Answer = answer
	p.render(w, r, http.StatusOK, data, "", "")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
