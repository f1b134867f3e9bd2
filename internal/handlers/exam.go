package handlers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/crucial707/studybuddy/internal/forms"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ExamPage generates a mock test from text and grades the submission. Each user has
// at most one open test; generating a new one replaces it.
type ExamPage struct {
	rng   *lockedRand
	tests *userState[models.MockTest]
}

func NewExamPage(rng *rand.Rand) *ExamPage {
	return &ExamPage{rng: newLockedRand(rng), tests: newUserState[models.MockTest](nil)}
}

type examForm struct {
	MCQCount   int `form:"mcq_count" validate:"min=1,max=50"`
	ShortCount int `form:"short_count" validate:"min=0,max=20"`
	MarkMCQ    int `form:"mark_mcq" validate:"oneof=1 2"`
	MarkShort  int `form:"mark_short" validate:"oneof=2 4 5"`
}

func defaultExamForm() examForm {
	return examForm{MCQCount: 5, ShortCount: 3, MarkMCQ: 1, MarkShort: 2}
}

type examData struct {
	Form       examForm
	Fields     forms.Errors
	Text       string
	OpenID     string
	Test       *models.MockTest
	Result     *models.TestResult
	Answers    study.Answers
	MCQMarks   []int
	ShortMarks []int
}

func (p *ExamPage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/generate", p.generate)
	r.Get("/tests/{id}", p.show)
	r.Post("/tests/{id}", p.submit)
}

func (p *ExamPage) render(w http.ResponseWriter, r *http.Request, status int, data examData, errMsg string) {
	data.MCQMarks, data.ShortMarks = study.MCQMarks, study.ShortMarks
	renderTemplate(w, r, status, "exam.html", view{
		Title:  PageExam.Title(),
		Active: PageExam,
		Error:  errMsg,
		Data:   data,
	})
}

func (p *ExamPage) index(w http.ResponseWriter, r *http.Request) {
	data := examData{Form: defaultExamForm()}
	if t, ok := p.current(r); ok {
		data.OpenID = t.ID
	}
	p.render(w, r, http.StatusOK, data, "")
}

func (p *ExamPage) current(r *http.Request) (models.MockTest, bool) {
	t := p.tests.Get(currentUser(r))
	return t, t.ID != ""
}

func (p *ExamPage) generate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		formError(w, r, err)
		return
	}
	def := defaultExamForm()
	fr := forms.NewReader(r)
	in := examForm{
		MCQCount:   fr.Int("mcq_count", def.MCQCount),
		ShortCount: fr.Int("short_count", def.ShortCount),
		MarkMCQ:    fr.Int("mark_mcq", def.MarkMCQ),
		MarkShort:  fr.Int("mark_short", def.MarkShort),
	}
	data := examData{Form: in, Text: r.FormValue("text")}
	if fields := fr.Validate(in); fields != nil {
		data.Fields = fields
		p.render(w, r, http.StatusBadRequest, data, "Please correct the highlighted settings.")
		return
	}

	text, msg := sourceText(r, "file", "text")
	if msg != "" {
		p.render(w, r, http.StatusBadRequest, data, msg)
		return
	}

	var test models.MockTest
	var err error
	p.rng.with(func(rng *rand.Rand) {
		test, err = study.GenerateTest(rng, text, study.TestOptions{
			MCQCount:   in.MCQCount,
			ShortCount: in.ShortCount,
			MarkMCQ:    in.MarkMCQ,
			MarkShort:  in.MarkShort,
		})
	})
	switch {
	case errors.Is(err, study.ErrEmptyText):
		p.render(w, r, http.StatusBadRequest, data, "Please paste text or upload a file.")
		return
	case errors.Is(err, study.ErrNoSentences), errors.Is(err, study.ErrOutOfRange):
		p.render(w, r, http.StatusBadRequest, data, capitalize(err.Error())+".")
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	test.ID = uuid.NewString()
	p.tests.Set(currentUser(r), test)
	http.Redirect(w, r, PageExam.Path()+"/tests/"+test.ID, http.StatusSeeOther)
}

// lookup returns the user's open test when its ID matches the URL.
func (p *ExamPage) lookup(w http.ResponseWriter, r *http.Request) (models.MockTest, bool) {
	t, ok := p.current(r)
	if !ok || t.ID != chi.URLParam(r, "id") {
		renderError(w, r, http.StatusNotFound, "Test not found",
			"This mock test is no longer available. Generate a new one.")
		return models.MockTest{}, false
	}
	return t, true
}

func (p *ExamPage) show(w http.ResponseWriter, r *http.Request) {
	t, ok := p.lookup(w, r)
	if !ok {
		return
	}
	p.render(w, r, http.StatusOK, examData{Form: defaultExamForm(), Test: &t}, "")
}

func (p *ExamPage) submit(w http.ResponseWriter, r *http.Request) {
	t, ok := p.lookup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	ans := study.Answers{
		MCQ:   make([]string, len(t.MCQs)),
		Short: make([]string, len(t.Shorts)),
	}
	for i := range t.MCQs {
		ans.MCQ[i] = r.PostFormValue(fmt.Sprintf("mcq_%d", i))
	}
	for i := range t.Shorts {
		ans.Short[i] = r.PostFormValue(fmt.Sprintf("short_%d", i))
	}
	res := study.Grade(t, ans)
	p.render(w, r, http.StatusOK, examData{Form: defaultExamForm(), Test: &t, Result: &res, Answers: ans}, "")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
