package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoiceForSpeaker(t *testing.T) {
	cfg := &TTSConfig{AlexVoiceID: "alex-voice", SamVoiceID: "sam-voice"}

	t.Run("configured voices win", func(t *testing.T) {
		assert.Equal(t, "alex-voice", VoiceForSpeaker(cfg, "ALEX"))
		assert.Equal(t, "sam-voice", VoiceForSpeaker(cfg, "SAM"))
		assert.Equal(t, "alex-voice", VoiceForSpeaker(cfg, "alex"), "speaker matching is case-insensitive")
	})

	t.Run("unconfigured hosts fall back to stock voices", func(t *testing.T) {
		alex := VoiceForSpeaker(nil, "ALEX")
		sam := VoiceForSpeaker(nil, "SAM")

		assert.Contains(t, maleVoices, alex)
		assert.Contains(t, femaleVoices, sam)

		// Deterministic across calls
		assert.Equal(t, alex, VoiceForSpeaker(nil, "ALEX"))
		assert.Equal(t, sam, VoiceForSpeaker(nil, "SAM"))
	})

	t.Run("unknown speaker gets a deterministic voice", func(t *testing.T) {
		v1 := VoiceForSpeaker(cfg, "NARRATOR")
		v2 := VoiceForSpeaker(cfg, "NARRATOR")
		assert.Equal(t, v1, v2)
		assert.NotEmpty(t, v1)
	})
}

func TestPickDeterministicVoice(t *testing.T) {
	assert.Equal(t, PickDeterministicVoice("alex", "male"), PickDeterministicVoice("ALEX", "male"), "name matching is case-insensitive")
	assert.Contains(t, femaleVoices, PickDeterministicVoice("anyone", "female"))
	assert.Contains(t, maleVoices, PickDeterministicVoice("anyone", "male"))

	pool := append(append([]string{}, femaleVoices...), maleVoices...)
	assert.Contains(t, pool, PickDeterministicVoice("anyone", ""))
}
