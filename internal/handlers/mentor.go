package handlers

import (
	"math/rand/v2"
	"net/http"

	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/go-chi/chi/v5"
)

// MentorPage keeps a per-user task history and runs the focus analysis over it.
type MentorPage struct {
	rng     *lockedRand
	history *userState[[]models.MentorTask]
}

func NewMentorPage(rng *rand.Rand) *MentorPage {
	return &MentorPage{
		rng:     newLockedRand(rng),
		history: newUserState(study.SeedMentorHistory),
	}
}

type mentorData struct {
	Task    models.MentorTask
	Levels  []string
	History []models.MentorTask
	Advice  *models.MentorAdvice
}

func (p *MentorPage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/tasks", p.addTask)
	r.Post("/analyze", p.analyze)
}

func (p *MentorPage) render(w http.ResponseWriter, r *http.Request, status int, data mentorData, errMsg string) {
	if data.Task == (models.MentorTask{}) {
		data.Task = models.MentorTask{Task: "History Reading", EffortLevel: "Low", ObservedFocus: "High (10:00)"}
	}
	data.Levels = study.Levels
	data.History = p.history.Get(currentUser(r))
	renderTemplate(w, r, status, "mentor.html", view{
		Title:  PageMentor.Title(),
		Active: PageMentor,
		Error:  errMsg,
		Data:   data,
	})
}

func (p *MentorPage) index(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, mentorData{}, "")
}

func (p *MentorPage) addTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	task, err := study.NewMentorTask(r.PostFormValue("task"), r.PostFormValue("effort"), r.PostFormValue("focus"))
	if err != nil {
		in := models.MentorTask{
			Task:          r.PostFormValue("task"),
			EffortLevel:   r.PostFormValue("effort"),
			ObservedFocus: r.PostFormValue("focus"),
		}
		p.render(w, r, http.StatusBadRequest, mentorData{Task: in}, "Enter a task name, an effort level and the observed focus.")
		return
	}
	p.history.Update(currentUser(r), func(h []models.MentorTask) []models.MentorTask {
		out := make([]models.MentorTask, len(h), len(h)+1)
		copy(out, h)
		return append(out, task)
	})
	http.Redirect(w, r, PageMentor.Path(), http.StatusSeeOther)
}

func (p *MentorPage) analyze(w http.ResponseWriter, r *http.Request) {
	history := p.history.Get(currentUser(r))
	var advice models.MentorAdvice
	p.rng.with(func(rng *rand.Rand) {
		advice = study.AnalyzeMentor(rng, history)
	})
	p.render(w, r, http.StatusOK, mentorData{Advice: &advice}, "")
}
