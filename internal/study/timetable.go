package study

import (
	"fmt"
	"math/rand/v2"

	"github.com/crucial707/studybuddy/internal/models"
)

const (
	MinStartHour = 6
	MaxStartHour = 12
	MaxDayHours  = 12
	MinDays      = 1
	MaxDays      = 14
)

// Weekdays cycles from Monday.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type TimetableOptions struct {
	Subjects    []string
	StartHour   int
	HoursPerDay int
	Days        int
}

func (o TimetableOptions) Validate() error {
	if len(o.Subjects) == 0 {
		return ErrNoSubjects
	}
	if o.HoursPerDay > len(o.Subjects) {
		return ErrTooManyHours
	}
	if o.StartHour < MinStartHour || o.StartHour > MaxStartHour ||
		o.HoursPerDay < 1 || o.HoursPerDay > MaxDayHours ||
		o.Days < MinDays || o.Days > MaxDays {
		return ErrOutOfRange
	}
	return nil
}

// SlotLabel formats the one-hour slot starting at hour, e.g. "08:00 - 09:00".
func SlotLabel(hour int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", hour%24, (hour+1)%24)
}

// GenerateTimetable samples HoursPerDay subjects without replacement for each day and
// assigns them consecutive one-hour slots from StartHour.
func GenerateTimetable(rng *rand.Rand, o TimetableOptions) (models.Timetable, error) {
	if err := o.Validate(); err != nil {
		return models.Timetable{}, err
	}

	tt := models.Timetable{Days: make([]models.TimetableDay, 0, o.Days)}
	for d := 0; d < o.Days; d++ {
		picked := rng.Perm(len(o.Subjects))[:o.HoursPerDay]
		day := models.TimetableDay{
			Day:   Weekdays[d%len(Weekdays)],
			Slots: make([]models.Slot, 0, o.HoursPerDay),
		}
		for i, idx := range picked {
			day.Slots = append(day.Slots, models.Slot{
				Time:    SlotLabel(o.StartHour + i),
				Subject: o.Subjects[idx],
			})
		}
		tt.Days = append(tt.Days, day)
	}
	return tt, nil
}
