package models

// Slot is one hour of a timetable day.
type Slot struct {
	Time    string `json:"time"` // "08:00 - 09:00"
	Subject string `json:"subject"`
}

// TimetableDay is one scheduled day.
type TimetableDay struct {
	Day   string `json:"day"`
	Slots []Slot `json:"slots"`
}

// Timetable is a generated multi-day schedule.
type Timetable struct {
	Days []TimetableDay `json:"days"`
}

// SlotTimes returns the slot labels of the first day, used as table headers.
func (t Timetable) SlotTimes() []string {
	if len(t.Days) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.Days[0].Slots))
	for _, s := range t.Days[0].Slots {
		out = append(out, s.Time)
	}
	return out
}
