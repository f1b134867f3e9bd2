package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sync"
	"time"

	mailer "github.com/crucial707/studybuddy/internal/mail"
	"github.com/crucial707/studybuddy/internal/metrics"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/crucial707/studybuddy/internal/study"
	"github.com/robfig/cron/v3"
)

// PlanLister returns the study plans of one day.
type PlanLister interface {
	ForDate(ctx context.Context, date string) ([]models.PlanEntry, error)
}

// Reminders e-mails a reminder for every plan entry that starts within Lead. Each entry
// is reminded at most once per process.
type Reminders struct {
	Plans  PlanLister
	Sender mailer.Sender
	To     []mail.Address
	Lead   time.Duration
	Logger *slog.Logger

	now  func() time.Time
	mu   sync.Mutex
	sent map[string]bool
}

func NewReminders(plans PlanLister, sender mailer.Sender, to []mail.Address, lead time.Duration, logger *slog.Logger) *Reminders {
	return &Reminders{
		Plans:  plans,
		Sender: sender,
		To:     to,
		Lead:   lead,
		Logger: logger,
		now:    time.Now,
		sent:   make(map[string]bool),
	}
}

// ReminderMessage is the e-mail for plan entry p.
func ReminderMessage(p models.PlanEntry, to []mail.Address) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "Study Reminder",
		Body:    fmt.Sprintf("Your study session '%s' starts at %s.", p.Subject, p.Start),
	}
}

// Check sends the reminders due now and returns how many were sent.
func (r *Reminders) Check(ctx context.Context) int {
	now := r.now()
	plans, err := r.duePlans(ctx, now)
	if err != nil {
		r.Logger.Error("scheduler: list plans", "error", err)
		return 0
	}

	sent := 0
	for _, p := range plans {
		if !study.ReminderDue(p, now, r.Lead) {
			continue
		}
		r.mu.Lock()
		done := r.sent[p.Key()]
		r.sent[p.Key()] = true
		r.mu.Unlock()
		if done {
			continue
		}

		if mailer.Dispatch(ctx, r.Sender, r.Logger, ReminderMessage(p, r.To)) {
			metrics.IncReminderEmail("sent")
			r.Logger.Info("scheduler: reminder sent", "subject", p.Subject, "start", p.Start)
			sent++
		} else {
			metrics.IncReminderEmail("failed")
		}
	}
	return sent
}

// duePlans loads today's plans, plus tomorrow's when the lead window reaches past midnight.
func (r *Reminders) duePlans(ctx context.Context, now time.Time) ([]models.PlanEntry, error) {
	today := now.Format(study.DateLayout)
	plans, err := r.Plans.ForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if next := now.Add(r.Lead).Format(study.DateLayout); next != today {
		more, err := r.Plans.ForDate(ctx, next)
		if err != nil {
			return nil, err
		}
		plans = append(plans, more...)
	}
	return plans, nil
}

// Start schedules Check on spec (e.g. "@every 1m") and returns a function that stops
// the scheduler and waits for a running check to finish.
func (r *Reminders) Start(ctx context.Context, spec string) (stop func(), err error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Check(ctx) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	c.Start()
	r.Logger.Info("scheduler: reminders started", "spec", spec, "lead", r.Lead.String())
	return func() { <-c.Stop().Done() }, nil
}
