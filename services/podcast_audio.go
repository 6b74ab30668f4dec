package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Average spoken words per minute, used to estimate episode length
const speechWordsPerMinute = 150

// PodcastAudioService turns a parsed podcast script into a single MP3 file,
// synthesizing each host turn with that host's voice.
type PodcastAudioService struct {
	tts      *ElevenLabsService
	cache    *AudioCache
	ttsCfg   *TTSConfig
	audioDir string
}

func NewPodcastAudioService(tts *ElevenLabsService, cache *AudioCache, ttsCfg *TTSConfig, audioDir string) *PodcastAudioService {
	if err := os.MkdirAll(audioDir, 0755); err != nil {
		slog.Error("Failed to create audio directory", "dir", audioDir, "error", err)
	}
	return &PodcastAudioService{
		tts:      tts,
		cache:    cache,
		ttsCfg:   ttsCfg,
		audioDir: audioDir,
	}
}

// Synthesize renders every segment and appends the MP3 streams into one
// episode file named after the podcast ID. Returns the file path and the
// estimated duration in seconds.
func (s *PodcastAudioService) Synthesize(ctx context.Context, podcastID string, segments []PodcastSegment) (string, int, error) {
	if len(segments) == 0 {
		return "", 0, fmt.Errorf("no segments to synthesize")
	}

	outPath := filepath.Join(s.audioDir, podcastID+".mp3")
	out, err := os.Create(outPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create audio file: %w", err)
	}
	defer out.Close()

	start := time.Now()
	totalWords := 0
	for i, seg := range segments {
		voiceID := VoiceForSpeaker(s.ttsCfg, seg.Speaker)

		audio, err := s.cache.GetOrGenerate(ctx, seg.Text, voiceID, func() (io.ReadCloser, error) {
			return s.tts.TextToSpeech(ctx, seg.Text, voiceID)
		})
		if err != nil {
			out.Close()
			os.Remove(outPath)
			return "", 0, fmt.Errorf("failed to synthesize segment %d: %w", i, err)
		}

		if _, err := out.Write(audio); err != nil {
			out.Close()
			os.Remove(outPath)
			return "", 0, fmt.Errorf("failed to write audio file: %w", err)
		}
		totalWords += len(strings.Fields(seg.Text))
	}

	duration := totalWords * 60 / speechWordsPerMinute
	slog.Info("Podcast audio synthesized",
		"podcast_id", podcastID,
		"segments", len(segments),
		"duration_seconds", duration,
		"elapsed", time.Since(start))

	return outPath, duration, nil
}
