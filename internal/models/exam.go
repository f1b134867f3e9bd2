package models

// MCQ is a multiple-choice question built by blanking one word of a sentence.
type MCQ struct {
	Question string   `json:"q"`
	Options  []string `json:"options"`
	Answer   string   `json:"ans"`
}

// ShortQuestion asks to explain a sentence; the sentence itself is the model answer.
type ShortQuestion struct {
	Question string `json:"q"`
	Answer   string `json:"ans"`
}

// MockTest is a generated test kept server-side until it is submitted.
type MockTest struct {
	ID        string          `json:"id"`
	MCQs      []MCQ           `json:"mcqs"`
	Shorts    []ShortQuestion `json:"shorts"`
	MarkMCQ   int             `json:"mark_mcq"`
	MarkShort int             `json:"mark_short"`
}

// Verdict is the outcome of grading one answer.
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
	VerdictGood    Verdict = "good"
	VerdictPartial Verdict = "partial"
	VerdictPoor    Verdict = "poor"
)

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	Label   string  `json:"label"` // Q1, S2…
	Verdict Verdict `json:"verdict"`
	Correct string  `json:"correct,omitempty"`
	Marks   int     `json:"marks"`
}

// TestResult is the graded outcome of a whole mock test.
type TestResult struct {
	Questions []QuestionResult `json:"questions"`
	Total     int              `json:"total"`
	Max       int              `json:"max"`
}
