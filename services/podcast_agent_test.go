package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePodcastScript(t *testing.T) {
	t.Run("splits alternating speaker turns", func(t *testing.T) {
		script := `ALEX: Welcome to the show!
SAM: Thanks, glad to be here.
ALEX: Today we cover memory techniques.`

		segments := ParsePodcastScript(script)
		require.Len(t, segments, 3)
		assert.Equal(t, "ALEX", segments[0].Speaker)
		assert.Equal(t, "Welcome to the show!", segments[0].Text)
		assert.Equal(t, "SAM", segments[1].Speaker)
		assert.Equal(t, "ALEX", segments[2].Speaker)
	})

	t.Run("unlabeled lines continue the previous turn", func(t *testing.T) {
		script := `ALEX: First part of the thought
and here it continues.
SAM: Got it.`

		segments := ParsePodcastScript(script)
		require.Len(t, segments, 2)
		assert.Equal(t, "First part of the thought and here it continues.", segments[0].Text)
	})

	t.Run("leading text without a label is discarded", func(t *testing.T) {
		script := `Episode 12 - Study Skills

SAM: Let's get started.`

		segments := ParsePodcastScript(script)
		require.Len(t, segments, 1)
		assert.Equal(t, "SAM", segments[0].Speaker)
	})

	t.Run("empty labeled lines are skipped", func(t *testing.T) {
		script := "ALEX:\nSAM: Hello"

		segments := ParsePodcastScript(script)
		require.Len(t, segments, 1)
		assert.Equal(t, "SAM", segments[0].Speaker)
	})

	t.Run("empty script yields no segments", func(t *testing.T) {
		assert.Empty(t, ParsePodcastScript(""))
		assert.Empty(t, ParsePodcastScript("no speakers here at all"))
	})
}
