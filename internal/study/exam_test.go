package study

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/crucial707/studybuddy/internal/models"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestSentences(t *testing.T) {
	got := Sentences("The cat sat.  The quick\nfox jumped! Is it? trailing")
	require.Equal(t, []string{"The cat sat.", "The quick fox jumped!", "Is it?", "trailing"}, got)
	// A dot inside a token does not split.
	require.Equal(t, []string{"Version 1.2 is out."}, Sentences("Version 1.2 is out."))
}

func TestQuestionSentences(t *testing.T) {
	got := QuestionSentences("The cat sat. The quick fox jumped. Go now.")
	require.Equal(t, []string{"The quick fox jumped."}, got)
}

func TestGenerateTest_SingleMCQ(t *testing.T) {
	text := "The cat sat. The quick fox jumped."
	for seed := uint64(0); seed < 50; seed++ {
		test, err := GenerateTest(newRand(seed), text, TestOptions{MCQCount: 1, MarkMCQ: 1, MarkShort: 2})
		require.NoError(t, err)
		require.Len(t, test.MCQs, 1)

		q := test.MCQs[0]
		require.Contains(t, []string{"quick", "jumped"}, q.Answer)
		require.Contains(t, q.Question, Blank)
		require.NotContains(t, q.Question, q.Answer)
		require.Contains(t, q.Options, q.Answer)

		distractors := 0
		for _, o := range q.Options {
			if o != q.Answer {
				distractors++
				require.NotEqual(t, strings.ToLower(q.Answer), strings.ToLower(o))
			}
		}
		require.Equal(t, 3, distractors)
	}
}

func TestDistractors_FewerWordsThanNeeded(t *testing.T) {
	rng := newRand(7)
	got := Distractors(rng, "Photosynthesis", "Photosynthesis photosynthesis uses light")
	require.ElementsMatch(t, []string{"uses", "light"}, got)

	require.Empty(t, Distractors(rng, "word", "word WORD Word"))
}

func TestDistractors_NeverMoreThanThree(t *testing.T) {
	corpus := "alpha beta gamma delta epsilon zeta eta theta"
	for seed := uint64(0); seed < 20; seed++ {
		got := Distractors(newRand(seed), "gamma", corpus)
		require.Len(t, got, MaxDistractors)
		require.NotContains(t, got, "gamma")
	}
}

func TestBlankWord(t *testing.T) {
	require.Equal(t, "The ______ and the ______ parts, not cattle.", BlankWord("The cat and the cat parts, not cattle.", "cat"))
	require.Equal(t, "______ ______", BlankWord("word word", "word"))
}

func TestGenerateTest_Errors(t *testing.T) {
	rng := newRand(1)
	ok := TestOptions{MCQCount: 5, ShortCount: 3, MarkMCQ: 1, MarkShort: 2}

	_, err := GenerateTest(rng, "   ", ok)
	require.ErrorIs(t, err, ErrEmptyText)

	_, err = GenerateTest(rng, "Go. Hi.", ok)
	require.ErrorIs(t, err, ErrNoSentences)

	bad := ok
	bad.MCQCount = 51
	_, err = GenerateTest(rng, "The quick fox jumped.", bad)
	require.ErrorIs(t, err, ErrOutOfRange)

	bad = ok
	bad.MarkShort = 3
	_, err = GenerateTest(rng, "The quick fox jumped.", bad)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestGenerateTest_ShortQuestions(t *testing.T) {
	text := "Mitochondria produce energy for cells. Ribosomes build proteins from amino acids."
	test, err := GenerateTest(newRand(3), text, TestOptions{MCQCount: 2, ShortCount: 4, MarkMCQ: 2, MarkShort: 5})
	require.NoError(t, err)
	require.Len(t, test.Shorts, 4)
	for _, s := range test.Shorts {
		require.Equal(t, s.Question, s.Answer)
		require.Contains(t, Sentences(text), s.Question)
	}
	require.Equal(t, 2, test.MarkMCQ)
	require.Equal(t, 5, test.MarkShort)
}

func TestGrade(t *testing.T) {
	test := models.MockTest{
		MCQs: []models.MCQ{
			{Question: "The ______ fox.", Options: []string{"quick", "lazy"}, Answer: "quick"},
			{Question: "The ______ dog.", Options: []string{"quick", "lazy"}, Answer: "lazy"},
		},
		Shorts: []models.ShortQuestion{
			{Question: "a", Answer: "Plants convert light into chemical energy."},
			{Question: "b", Answer: "Plants convert light into chemical energy."},
			{Question: "c", Answer: "Plants convert light into chemical energy."},
		},
		MarkMCQ:   2,
		MarkShort: 5,
	}
	res := Grade(test, Answers{
		MCQ: []string{"quick", "quick"},
		Short: []string{
			"plants convert light into chemical energy",
			"Plants convert sunlight",
		},
	})

	require.Equal(t, 2*2+3*5, res.Max)
	require.Len(t, res.Questions, 5)

	require.Equal(t, models.VerdictCorrect, res.Questions[0].Verdict)
	require.Equal(t, 2, res.Questions[0].Marks)
	require.Equal(t, models.VerdictWrong, res.Questions[1].Verdict)
	require.Equal(t, "lazy", res.Questions[1].Correct)

	require.Equal(t, "S1", res.Questions[2].Label)
	require.Equal(t, models.VerdictGood, res.Questions[2].Verdict)
	require.Equal(t, 5, res.Questions[2].Marks)
	require.Equal(t, models.VerdictPartial, res.Questions[3].Verdict)
	require.Equal(t, 2, res.Questions[3].Marks, "half marks round down")
	require.Equal(t, models.VerdictPoor, res.Questions[4].Verdict, "missing answer is blank")

	require.Equal(t, 2+5+2, res.Total)
}

func TestSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, Similarity("Hello", "hello"), 1e-9)
	require.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	require.InDelta(t, 0.8, Similarity("abcde", "abcdf"), 1e-9)
}
