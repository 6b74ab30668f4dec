package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeAudioWithoutTTS(t *testing.T) {
	// Without an ElevenLabs key no synthesizer is wired; podcasts must still
	// complete as script-only instead of crashing the background worker.
	e := &StudyEndpoints{}

	path, duration, err := e.synthesizeAudio(context.Background(), "podcast-1", []PodcastSegment{
		{Speaker: "ALEX", Text: "Welcome to the show."},
		{Speaker: "SAM", Text: "Glad to be here."},
	})

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Zero(t, duration)
}
