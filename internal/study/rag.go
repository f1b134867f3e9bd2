package study

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ChunkSize is the number of characters per retrieval chunk.
const ChunkSize = 500

// Chunk splits text into consecutive pieces of at most size characters.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = ChunkSize
	}
	var out []string
	for len(text) > 0 {
		n, i := 0, 0
		for i < len(text) && n < size {
			_, w := utf8.DecodeRuneInString(text[i:])
			i += w
			n++
		}
		out = append(out, text[:i])
		text = text[i:]
	}
	return out
}

func terms(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range Words(strings.ToLower(s)) {
		if utf8.RuneCountInString(w) > 2 {
			out[w] = true
		}
	}
	return out
}

// Retrieve returns up to k chunks ranked by how many distinct query terms they contain.
// Ties keep document order; chunks sharing no term are dropped unless nothing matches,
// in which case the first k chunks are returned.
func Retrieve(chunks []string, query string, k int) []string {
	q := terms(query)
	type scored struct {
		idx, score int
	}
	var hits []scored
	for i, c := range chunks {
		score := 0
		ct := terms(c)
		for t := range q {
			if ct[t] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{i, score})
		}
	}
	if len(hits) == 0 {
		return chunks[:min(k, len(chunks))]
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	out := make([]string, 0, min(k, len(hits)))
	for _, h := range hits[:min(k, len(hits))] {
		out = append(out, chunks[h.idx])
	}
	return out
}

// Answerer turns a question and retrieved context into an answer.
type Answerer interface {
	Answer(ctx context.Context, question string, context []string) (string, error)
}

// SimulatedAnswerer echoes the question in a fixed template.
type SimulatedAnswerer struct{}

func (SimulatedAnswerer) Answer(_ context.Context, question string, _ []string) (string, error) {
	return fmt.Sprintf("[Simulated AI Answer] Based on context, answer for: '%s'", question), nil
}
