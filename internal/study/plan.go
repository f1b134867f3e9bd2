package study

import (
	"strings"
	"time"

	"github.com/crucial707/studybuddy/internal/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MinPlanHours = 1
	MaxPlanHours = 12
)

// NewPlanEntry builds the entry for a session of hours starting at start (HH:MM) on
// date (YYYY-MM-DD). The end time wraps past midnight.
func NewPlanEntry(subject string, hours int, date, start string) (models.PlanEntry, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.PlanEntry{}, ErrNoSubjects
	}
	if hours < MinPlanHours || hours > MaxPlanHours {
		return models.PlanEntry{}, ErrOutOfRange
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return models.PlanEntry{}, ErrBadDate
	}
	st, err := time.Parse(TimeLayout, strings.TrimSpace(start))
	if err != nil {
		return models.PlanEntry{}, ErrBadTime
	}
	return models.PlanEntry{
		Subject: subject,
		Hours:   hours,
		Date:    date,
		Start:   st.Format(TimeLayout),
		End:     st.Add(time.Duration(hours) * time.Hour).Format(TimeLayout),
	}, nil
}

// PlanStart returns the start instant of p in loc.
func PlanStart(p models.PlanEntry, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, p.Date+" "+p.Start, loc)
}

// ReminderDue reports whether now falls in [start-lead, start).
func ReminderDue(p models.PlanEntry, now time.Time, lead time.Duration) bool {
	start, err := PlanStart(p, now.Location())
	if err != nil {
		return false
	}
	return !now.Before(start.Add(-lead)) && now.Before(start)
}
