package study

import (
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/crucial707/studybuddy/internal/models"
)

// Blank replaces the key word in an MCQ stem.
const Blank = "______"

const (
	MinQuestionWords = 3
	MinKeyWordLength = 4
	MaxDistractors   = 3

	MinMCQCount   = 1
	MaxMCQCount   = 50
	MinShortCount = 0
	MaxShortCount = 20
)

// Allowed marks per question.
var (
	MCQMarks   = []int{1, 2}
	ShortMarks = []int{2, 4, 5}
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Sentences collapses whitespace and splits text after terminal punctuation.
func Sentences(text string) []string {
	text = strings.TrimSpace(CollapseWhitespace(text))
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Words returns the word tokens of s.
func Words(s string) []string {
	return wordRe.FindAllString(s, -1)
}

func keyCandidates(sentence string) []string {
	var out []string
	for _, w := range Words(sentence) {
		if utf8.RuneCountInString(w) >= MinKeyWordLength {
			out = append(out, w)
		}
	}
	return out
}

// QuestionSentences returns the sentences usable as MCQ stems: at least
// MinQuestionWords words and at least one word long enough to blank.
func QuestionSentences(text string) []string {
	var out []string
	for _, s := range Sentences(text) {
		if len(Words(s)) >= MinQuestionWords && len(keyCandidates(s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Distractors returns up to MaxDistractors unique corpus words whose lower-case form
// differs from key, sampled without replacement.
func Distractors(rng *rand.Rand, key, corpus string) []string {
	seen := make(map[string]bool)
	var pool []string
	lkey := strings.ToLower(key)
	for _, w := range Words(corpus) {
		if seen[w] || strings.ToLower(w) == lkey {
			continue
		}
		seen[w] = true
		pool = append(pool, w)
	}
	sort.Strings(pool)
	n := min(MaxDistractors, len(pool))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n]
}

// BlankWord replaces every whole-word occurrence of key in sentence with Blank.
func BlankWord(sentence, key string) string {
	re := regexp.MustCompile(`(^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(key) + `($|[^\p{L}\p{N}_])`)
	// ReplaceAll skips overlapping matches, so repeat until stable.
	for {
		next := re.ReplaceAllString(sentence, "${1}"+Blank+"${2}")
		if next == sentence {
			return next
		}
		sentence = next
	}
}

// NewMCQ blanks a random long word of sentence and offers it among distractors from
// corpus. It returns false when the sentence has no word long enough.
func NewMCQ(rng *rand.Rand, sentence, corpus string) (models.MCQ, bool) {
	cands := keyCandidates(sentence)
	if len(cands) == 0 {
		return models.MCQ{}, false
	}
	key := cands[rng.IntN(len(cands))]

	options := append([]string{key}, Distractors(rng, key, corpus)...)
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return models.MCQ{
		Question: BlankWord(sentence, key),
		Options:  options,
		Answer:   key,
	}, true
}

// TestOptions configures GenerateTest.
type TestOptions struct {
	MCQCount   int
	ShortCount int
	MarkMCQ    int
	MarkShort  int
}

// Validate checks counts and marks against the allowed ranges.
func (o TestOptions) Validate() error {
	if o.MCQCount < MinMCQCount || o.MCQCount > MaxMCQCount ||
		o.ShortCount < MinShortCount || o.ShortCount > MaxShortCount {
		return ErrOutOfRange
	}
	if !contains(MCQMarks, o.MarkMCQ) || !contains(ShortMarks, o.MarkShort) {
		return ErrOutOfRange
	}
	return nil
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// GenerateTest draws MCQ stems and short-answer sentences at random (with replacement)
// from text. The returned test has no ID; the caller assigns one.
func GenerateTest(rng *rand.Rand, text string, opts TestOptions) (models.MockTest, error) {
	if strings.TrimSpace(text) == "" {
		return models.MockTest{}, ErrEmptyText
	}
	if err := opts.Validate(); err != nil {
		return models.MockTest{}, err
	}
	stems := QuestionSentences(text)
	if len(stems) == 0 {
		return models.MockTest{}, ErrNoSentences
	}

	test := models.MockTest{
		MCQs:      make([]models.MCQ, 0, opts.MCQCount),
		Shorts:    make([]models.ShortQuestion, 0, opts.ShortCount),
		MarkMCQ:   opts.MarkMCQ,
		MarkShort: opts.MarkShort,
	}
	for i := 0; i < opts.MCQCount; i++ {
		if q, ok := NewMCQ(rng, stems[rng.IntN(len(stems))], text); ok {
			test.MCQs = append(test.MCQs, q)
		}
	}
	for i := 0; i < opts.ShortCount; i++ {
		s := stems[rng.IntN(len(stems))]
		test.Shorts = append(test.Shorts, models.ShortQuestion{Question: s, Answer: s})
	}
	return test, nil
}
