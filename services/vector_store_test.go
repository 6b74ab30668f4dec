package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, ChunkText("", ChunkSize, ChunkOverlap))
		assert.Nil(t, ChunkText("   \n  ", ChunkSize, ChunkOverlap))
	})

	t.Run("short text is a single chunk", func(t *testing.T) {
		text := "A short paragraph that fits in one chunk."
		chunks := ChunkText(text, ChunkSize, ChunkOverlap)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("long text splits with overlap at sentence boundaries", func(t *testing.T) {
		text := strings.TrimSpace(strings.Repeat("This sentence talks about effective study habits. ", 60))
		chunks := ChunkText(text, 1000, 200)

		require.Greater(t, len(chunks), 1)
		for i, chunk := range chunks {
			assert.LessOrEqual(t, len([]rune(chunk)), 1000, "chunk %d exceeds size", i)
			assert.NotEmpty(t, chunk)
		}

		// Cut lands just after a sentence end
		assert.True(t, strings.HasSuffix(chunks[0], "."), "chunk should end at a sentence boundary: %q", chunks[0][len(chunks[0])-20:])

		// Consecutive chunks share overlapping content
		prefix := string([]rune(chunks[1])[:30])
		assert.Contains(t, chunks[0], prefix)
	})

	t.Run("prefers paragraph breaks near the cut", func(t *testing.T) {
		para := strings.TrimSpace(strings.Repeat("Sentences fill the paragraph with text. ", 23)) // ~920 runes
		text := para + "\n\n" + para
		chunks := ChunkText(text, 1000, 200)

		require.Greater(t, len(chunks), 1)
		assert.Equal(t, para, chunks[0])
	})

	t.Run("invalid overlap falls back", func(t *testing.T) {
		text := strings.Repeat("word ", 500)
		chunks := ChunkText(text, 1000, 5000)
		assert.NotEmpty(t, chunks)
	})
}
