package handlers

import (
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/crucial707/studybuddy/internal/forms"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/go-chi/chi/v5"
)

// TimetablePage shuffles subjects into a multi-day timetable without repeats.
type TimetablePage struct {
	rng *lockedRand
}

func NewTimetablePage(rng *rand.Rand) *TimetablePage {
	return &TimetablePage{rng: newLockedRand(rng)}
}

type timetableForm struct {
	Subjects    string `form:"subjects" validate:"csvlist"`
	StartHour   int    `form:"start_hour" validate:"min=6,max=12"`
	HoursPerDay int    `form:"hours_per_day" validate:"min=1,max=12"`
	Days        int    `form:"days" validate:"min=1,max=14"`
}

type timetableData struct {
	Form      timetableForm
	Fields    forms.Errors
	Timetable *models.Timetable
	Slots     []string
}

func (p *TimetablePage) Routes(r chi.Router) {
	r.Get("/", p.index)
	r.Post("/", p.generate)
}

func (p *TimetablePage) render(w http.ResponseWriter, r *http.Request, status int, data timetableData, errMsg string) {
	renderTemplate(w, r, status, "timetable.html", view{
		Title:  PageTimetable.Title(),
		Active: PageTimetable,
		Error:  errMsg,
		Data:   data,
	})
}

func (p *TimetablePage) index(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, timetableData{Form: timetableForm{
		Subjects:    "Math, Physics, English, Chemistry, Biology",
		StartHour:   8,
		HoursPerDay: 5,
		Days:        7,
	}}, "")
}

func (p *TimetablePage) generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formError(w, r, err)
		return
	}
	fr := forms.NewReader(r)
	in := timetableForm{
		Subjects:    r.PostFormValue("subjects"),
		StartHour:   fr.Int("start_hour", 8),
		HoursPerDay: fr.Int("hours_per_day", 0),
		Days:        fr.Int("days", 7),
	}
	if fields := fr.Validate(in); fields != nil {
		msg := "Please correct the highlighted fields."
		if fields.Has("subjects") {
			msg = "Enter at least one subject."
		}
		p.render(w, r, http.StatusBadRequest, timetableData{Form: in, Fields: fields}, msg)
		return
	}

	var tt models.Timetable
	var err error
	p.rng.with(func(rng *rand.Rand) {
		tt, err = study.GenerateTimetable(rng, study.TimetableOptions{
			Subjects:    forms.SplitList(in.Subjects),
			StartHour:   in.StartHour,
			HoursPerDay: in.HoursPerDay,
			Days:        in.Days,
		})
	})
	if errors.Is(err, study.ErrTooManyHours) || errors.Is(err, study.ErrNoSubjects) || errors.Is(err, study.ErrOutOfRange) {
		p.render(w, r, http.StatusBadRequest, timetableData{Form: in}, capitalize(err.Error())+".")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	p.render(w, r, http.StatusOK, timetableData{Form: in, Timetable: &tt, Slots: tt.SlotTimes()}, "")
}
