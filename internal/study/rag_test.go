package study

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	text := strings.Repeat("a", 1200)
	chunks := Chunk(text, ChunkSize)
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], 500)
	require.Len(t, chunks[2], 200)
	require.Equal(t, text, strings.Join(chunks, ""))

	// Multi-byte runes are never split.
	chunks = Chunk("ééé", 2)
	require.Equal(t, []string{"éé", "é"}, chunks)

	require.Empty(t, Chunk("", 500))
}

func TestRetrieve(t *testing.T) {
	chunks := []string{
		"Cells divide by mitosis.",
		"Photosynthesis happens in chloroplasts using light.",
		"Light reactions produce ATP in chloroplasts.",
		"Unrelated history text.",
	}
	got := Retrieve(chunks, "Where do light reactions happen in chloroplasts?", 2)
	require.Equal(t, []string{chunks[2], chunks[1]}, got)

	// Nothing matches: fall back to the first chunks.
	got = Retrieve(chunks, "quantum", 3)
	require.Equal(t, chunks[:3], got)

	require.Empty(t, Retrieve(nil, "anything", 3))
}

func TestSimulatedAnswerer(t *testing.T) {
	got, err := SimulatedAnswerer{}.Answer(context.Background(), "What is ATP?", nil)
	require.NoError(t, err)
	require.Equal(t, "[Simulated AI Answer] Based on context, answer for: 'What is ATP?'", got)
}
