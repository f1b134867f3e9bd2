package study

import (
	"regexp"
	"strings"
)

// MinNoteLength is the number of characters a sentence must exceed to become a note.
const MinNoteLength = 20

// NoteBullet prefixes every generated note.
const NoteBullet = "• "

// NoteKeywords are highlighted in generated notes.
var NoteKeywords = []string{"important", "key", "must", "definition", "formula"}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	noteSplitRe  = regexp.MustCompile(`[.?!]`)
	keywordRes   = compileKeywords(NoteKeywords)
)

func compileKeywords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

// CollapseWhitespace replaces every whitespace run with one space.
func CollapseWhitespace(text string) string {
	return whitespaceRe.ReplaceAllString(text, " ")
}

// GenerateNotes splits text into sentences on '.', '?' and '!', keeps those longer than
// MinNoteLength after trimming, and returns them as bulleted markdown lines with the
// keywords highlighted.
func GenerateNotes(text string) []string {
	text = CollapseWhitespace(text)
	var notes []string
	for _, s := range noteSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) <= MinNoteLength {
			continue
		}
		notes = append(notes, NoteBullet+HighlightKeywords(s))
	}
	return notes
}

// HighlightKeywords wraps whole-word keyword matches as bold upper-case markdown.
func HighlightKeywords(s string) string {
	for i, re := range keywordRes {
		s = re.ReplaceAllString(s, "**"+strings.ToUpper(NoteKeywords[i])+"**")
	}
	return s
}

// NotesMarkdown joins notes into a markdown list body, one note per line.
func NotesMarkdown(notes []string) string {
	return strings.Join(notes, "\n")
}
