package models

// PlanEntry is one study session appended by the planner.
type PlanEntry struct {
	Subject string `json:"subject"`
	Hours   int    `json:"hours"`
	Date    string `json:"date"`  // YYYY-MM-DD
	Start   string `json:"start"` // HH:MM
	End     string `json:"end"`   // HH:MM
}

// Key identifies an entry for reminder bookkeeping.
func (p PlanEntry) Key() string {
	return p.Date + " " + p.Start + " " + p.Subject
}
