package study

import (
	"fmt"
	"strings"

	"github.com/crucial707/studybuddy/internal/models"
	"github.com/pmezard/go-difflib/difflib"
)

// Short-answer similarity thresholds.
const (
	GoodSimilarity    = 0.7
	PartialSimilarity = 0.4
)

// Similarity is the case-insensitive character-level matching ratio of a and b, in [0, 1].
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(chars(strings.ToLower(a)), chars(strings.ToLower(b))).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Answers holds a candidate's submission; missing entries count as blank.
type Answers struct {
	MCQ   []string
	Short []string
}

func answerAt(xs []string, i int) string {
	if i < len(xs) {
		return xs[i]
	}
	return ""
}

// Grade scores MCQs by exact match and short answers by similarity to the model answer:
// above GoodSimilarity earns full marks, above PartialSimilarity half (rounded down).
func Grade(test models.MockTest, ans Answers) models.TestResult {
	res := models.TestResult{
		Max: len(test.MCQs)*test.MarkMCQ + len(test.Shorts)*test.MarkShort,
	}

	for i, q := range test.MCQs {
		qr := models.QuestionResult{Label: fmt.Sprintf("Q%d", i+1)}
		if answerAt(ans.MCQ, i) == q.Answer {
			qr.Verdict = models.VerdictCorrect
			qr.Marks = test.MarkMCQ
		} else {
			qr.Verdict = models.VerdictWrong
			qr.Correct = q.Answer
		}
		res.Total += qr.Marks
		res.Questions = append(res.Questions, qr)
	}

	for i, q := range test.Shorts {
		qr := models.QuestionResult{Label: fmt.Sprintf("S%d", i+1)}
		score := Similarity(answerAt(ans.Short, i), q.Answer)
		switch {
		case score > GoodSimilarity:
			qr.Verdict = models.VerdictGood
			qr.Marks = test.MarkShort
		case score > PartialSimilarity:
			qr.Verdict = models.VerdictPartial
			qr.Marks = test.MarkShort / 2
		default:
			qr.Verdict = models.VerdictPoor
		}
		res.Total += qr.Marks
		res.Questions = append(res.Questions, qr)
	}
	return res
}
