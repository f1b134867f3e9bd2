package models

// MentorTask is one row of the digital mentor's study history.
type MentorTask struct {
	Task          string `json:"task"`
	EffortLevel   string `json:"effort_level"`
	ObservedFocus string `json:"observed_focus"`
}

// MentorAdvice is the mentor's analysis output.
type MentorAdvice struct {
	TaskCount   int `json:"task_count"`
	LowStart    int `json:"low_start"`
	LowEnd      int `json:"low_end"`
	HighTime    int `json:"high_time"`
	GainPercent int `json:"gain_percent"`
}
