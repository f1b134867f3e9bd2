package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/mail"
	"testing"
	"time"

	mailer "github.com/crucial707/studybuddy/internal/mail"
	"github.com/crucial707/studybuddy/internal/models"
	"github.com/stretchr/testify/require"
)

type fakePlans struct {
	plans []models.PlanEntry
	err   error
	asked []string
}

func (f *fakePlans) ForDate(_ context.Context, date string) ([]models.PlanEntry, error) {
	f.asked = append(f.asked, date)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.PlanEntry
	for _, p := range f.plans {
		if p.Date == date {
			out = append(out, p)
		}
	}
	return out, nil
}

type failingSender struct{ calls int }

func (f *failingSender) Send(context.Context, mailer.Message) error {
	f.calls++
	return errors.New("smtp down")
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestReminders(plans PlanLister, sender mailer.Sender, at time.Time) *Reminders {
	r := NewReminders(plans, sender, []mail.Address{{Address: "me@example.com"}}, 5*time.Minute, quietLogger())
	r.now = func() time.Time { return at }
	return r
}

func TestReminders_FireOnceInsideWindow(t *testing.T) {
	plans := &fakePlans{plans: []models.PlanEntry{
		{Subject: "Maths", Date: "2026-03-01", Start: "08:00", End: "09:00"},
		{Subject: "Physics", Date: "2026-03-01", Start: "10:00", End: "11:00"},
		{Subject: "Maths", Date: "2026-03-02", Start: "08:00", End: "09:00"},
	}}
	console := mailer.NewConsole("Study Buddy", "noreply@example.com", quietLogger())
	r := newTestReminders(plans, console, time.Date(2026, 3, 1, 7, 57, 0, 0, time.Local))

	require.Equal(t, 1, r.Check(context.Background()))
	require.Equal(t, 0, r.Check(context.Background()), "already reminded")
	require.Equal(t, []string{"2026-03-01", "2026-03-01"}, plans.asked)

	sent := console.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "Study Reminder", sent[0].Subject)
	require.Equal(t, "Your study session 'Maths' starts at 08:00.", sent[0].Body)
}

func TestReminders_OutsideWindow(t *testing.T) {
	plans := &fakePlans{plans: []models.PlanEntry{{Subject: "Maths", Date: "2026-03-01", Start: "08:00"}}}
	console := mailer.NewConsole("Study Buddy", "noreply@example.com", quietLogger())

	for _, at := range []time.Time{
		time.Date(2026, 3, 1, 7, 54, 0, 0, time.Local),
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local),
	} {
		r := newTestReminders(plans, console, at)
		require.Zero(t, r.Check(context.Background()))
	}
	require.Empty(t, console.Sent())
}

func TestReminders_FailuresAreSwallowed(t *testing.T) {
	plans := &fakePlans{plans: []models.PlanEntry{{Subject: "Maths", Date: "2026-03-01", Start: "08:00"}}}
	sender := &failingSender{}
	r := newTestReminders(plans, sender, time.Date(2026, 3, 1, 7, 58, 0, 0, time.Local))

	require.Zero(t, r.Check(context.Background()))
	require.Zero(t, r.Check(context.Background()))
	require.Equal(t, 1, sender.calls, "a failed reminder is not retried")

	broken := newTestReminders(&fakePlans{err: errors.New("corrupt")}, sender, time.Now())
	require.Zero(t, broken.Check(context.Background()))
}

func TestReminders_StartRejectsBadSpec(t *testing.T) {
	r := newTestReminders(&fakePlans{}, &failingSender{}, time.Now())
	_, err := r.Start(context.Background(), "every now and then")
	require.Error(t, err)

	stop, err := r.Start(context.Background(), "@every 1h")
	require.NoError(t, err)
	stop()
}

func TestReminders_LeadWindowCrossesMidnight(t *testing.T) {
	plans := &fakePlans{plans: []models.PlanEntry{
		{Subject: "Chemistry", Date: "2026-03-02", Start: "00:02", End: "01:02"},
	}}
	console := mailer.NewConsole("Study Buddy", "noreply@example.com", quietLogger())
	r := newTestReminders(plans, console, time.Date(2026, 3, 1, 23, 58, 0, 0, time.Local))

	require.Equal(t, 1, r.Check(context.Background()))
	require.Equal(t, []string{"2026-03-01", "2026-03-02"}, plans.asked)
	require.Len(t, console.Sent(), 1)
	require.Contains(t, console.Sent()[0].Body, "'Chemistry' starts at 00:02")
}

func TestReminders_SameDayWindowLoadsOneDate(t *testing.T) {
	plans := &fakePlans{}
	console := mailer.NewConsole("Study Buddy", "noreply@example.com", quietLogger())
	r := newTestReminders(plans, console, time.Date(2026, 3, 1, 23, 50, 0, 0, time.Local))

	require.Equal(t, 0, r.Check(context.Background()))
	require.Equal(t, []string{"2026-03-01"}, plans.asked)
}
