package study

import (
	"math/rand/v2"
	"strings"

	"github.com/crucial707/studybuddy/internal/models"
)

// Effort levels offered by the mentor form.
var Levels = []string{"Low", "Medium", "High"}

const (
	lowFocusStart  = 14
	lowFocusEnd    = 16
	highEffortHour = 10
	minGain        = 10
	maxGain        = 25
)

// SeedMentorHistory is the history every user starts from.
func SeedMentorHistory() []models.MentorTask {
	return []models.MentorTask{
		{Task: "Algebra Practice", EffortLevel: "High", ObservedFocus: "Low (14:00)"},
	}
}

// ValidLevel reports whether s is one of Levels.
func ValidLevel(s string) bool {
	for _, l := range Levels {
		if l == s {
			return true
		}
	}
	return false
}

// NewMentorTask validates and builds a history row. Focus is free text such as
// "Low (14:00)".
func NewMentorTask(task, effort, focus string) (models.MentorTask, error) {
	task, focus = strings.TrimSpace(task), strings.TrimSpace(focus)
	if task == "" || focus == "" {
		return models.MentorTask{}, ErrEmptyText
	}
	if !ValidLevel(effort) {
		return models.MentorTask{}, ErrOutOfRange
	}
	return models.MentorTask{Task: task, EffortLevel: effort, ObservedFocus: focus}, nil
}

// AnalyzeMentor returns the fixed focus-window advice with a random projected gain.
func AnalyzeMentor(rng *rand.Rand, history []models.MentorTask) models.MentorAdvice {
	return models.MentorAdvice{
		TaskCount:   len(history),
		LowStart:    lowFocusStart,
		LowEnd:      lowFocusEnd,
		HighTime:    highEffortHour,
		GainPercent: minGain + rng.IntN(maxGain-minGain+1),
	}
}
