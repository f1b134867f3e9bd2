package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/studybuddy/internal/forms"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/repo"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/go-chi/chi/v5"
)

// PlannerPage appends study sessions to the plan file and lists them by date.
// Email reminders for upcoming sessions come from the scheduler package.
type PlannerPage struct {
	Plans       *repo.PlanRepo
	RemindersTo string
	Now         func() time.Time
}

func NewPlannerPage(plans *repo.PlanRepo, remindersTo string) *PlannerPage {
	return &PlannerPage{Plans: plans, RemindersTo: remindersTo, Now: time.Now}
}

type planForm struct {
	Subject string `form:"subject" validate:"notblank,max=100"`
	Hours   int    `form:"hours" validate:"min=1,max=12"`
	Date    string `form:"date" validate:"required,datetime=2006-01-02"`
	Start   string `form:"start" validate:"required,datetime=15:04"`
}

type plannerData struct {
	Form        planForm
	Fields      forms.Errors
	ViewDate    string
	Plans       []models.PlanEntry
	RemindersTo string
}

func (p *PlannerPage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/", p.add)
}

func (p *PlannerPage) today() string { return p.Now().Format(study.DateLayout) }

func (p *PlannerPage) render(w http.ResponseWriter, r *http.Request, status int, data plannerData, errMsg string) {
	if data.ViewDate == "" {
		data.ViewDate = p.today()
	}
	if data.Form.Date == "" {
		data.Form = planForm{Hours: 1, Date: p.today(), Start: "08:00"}
	}
	plans, err := p.Plans.ForDate(r.Context(), data.ViewDate)
	if err != nil {
		slog.Warn("load study plans", "date", data.ViewDate, "error", err)
		if errMsg == "" {
			errMsg = "Study plans could not be loaded."
		}
		plans = nil
	}
	data.Plans = plans
	data.RemindersTo = p.RemindersTo

	v := view{Title: PagePlanner.Title(), Active: PagePlanner, Error: errMsg, Data: data}
	if d := r.URL.Query().Get("added"); d != "" {
		v.Flash = "Study plan saved for " + d + "!"
	}
	renderTemplate(w, r, status, "planner.html", v)
}

func (p *PlannerPage) index(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(study.DateLayout, date); err != nil {
		date = ""
	}
	p.render(w, r, http.StatusOK, plannerData{ViewDate: date}, "")
}

func (p *PlannerPage) add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	fr := forms.NewReader(r)
	in := planForm{
		Subject: r.PostFormValue("subject"),
		Hours:   fr.Int("hours", 0),
		Date:    r.PostFormValue("date"),
		Start:   r.PostFormValue("start"),
	}
	if fields := fr.Validate(in); fields != nil {
		p.render(w, r, http.StatusBadRequest, plannerData{Form: in, Fields: fields}, "Please correct the highlighted fields.")
		return
	}
	entry, err := study.NewPlanEntry(in.Subject, in.Hours, in.Date, in.Start)
	if err != nil {
		p.render(w, r, http.StatusBadRequest, plannerData{Form: in}, capitalize(err.Error())+".")
		return
	}
	if err := p.Plans.Append(r.Context(), entry); err != nil {
		slog.Warn("save study plan", "error", err)
		p.render(w, r, http.StatusOK, plannerData{Form: in}, "The study plan could not be saved.")
		return
	}
	http.Redirect(w, r, PagePlanner.Path()+"?date="+entry.Date+"&added="+entry.Date, http.StatusSeeOther)
}
