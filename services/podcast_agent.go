package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/studywise/backend/models"
)

const podcastSystemPrompt = `You are an expert educational podcast script writer. Your role is to create engaging, natural-sounding conversational scripts between two podcast hosts who discuss educational topics.

## Hosts

- **ALEX**: The knowledgeable host who explains concepts clearly. Alex is enthusiastic and uses great analogies.
- **SAM**: The curious co-host who asks thoughtful questions, seeks clarification, and provides relatable examples. Sam represents the audience's perspective.

## Core Principles

1. **Natural Conversation**: The dialogue should feel like a real podcast conversation, not a lecture. Include reactions, follow-up questions, and natural transitions.

2. **Accuracy First**: Only discuss information present in the provided material. Never add external information or make assumptions.

3. **Engagement**: Use storytelling techniques, analogies, real-world examples (from the material), and humor where appropriate.

4. **Educational Value**: Ensure key concepts are explained clearly. Use the conversational format to break down complex ideas.

5. **Flow**: Start with an introduction, progress through the main topics, and end with a summary/takeaway.

## Output Format

Write the script with clear speaker labels. Each line MUST start with either ` + "`ALEX:` or `SAM:`" + ` followed by their dialogue. Example:

ALEX: Welcome to another episode! Today we're diving into something really fascinating.
SAM: I'm excited about this one! So what are we covering today?
ALEX: We're going to explore [topic]. Let me start with the basics...

## Important Rules

- Every line of dialogue MUST start with ` + "`ALEX:` or `SAM:`" + `
- Do NOT include stage directions, sound effects, or non-dialogue text
- Do NOT include episode numbers or timestamps
- Keep each speaker's turn concise (1-3 sentences typically)
- Alternate between speakers naturally
- End with a brief summary and sign-off`

// PodcastAgent generates two-host conversational scripts from documents
type PodcastAgent struct {
	gemini *GeminiService
}

// PodcastSegment is one speaker turn, ready for per-voice TTS synthesis
type PodcastSegment struct {
	Speaker string `json:"speaker"` // ALEX or SAM
	Text    string `json:"text"`
}

type PodcastScript struct {
	Script    string           `json:"script"`
	Level     string           `json:"level"`
	WordCount int              `json:"word_count"`
	Segments  []PodcastSegment `json:"segments"`
}

func NewPodcastAgent(gemini *GeminiService) *PodcastAgent {
	return &PodcastAgent{gemini: gemini}
}

func podcastLevelInstruction(level string) string {
	switch level {
	case models.PodcastLevelIntermediate:
		return "Create an intermediate-level podcast script (around 1200-1800 words). " +
			"Assume the listener has basic knowledge of the subject area. " +
			"Go deeper into concepts, explore relationships between ideas, and discuss " +
			"why things work the way they do. Use some technical terminology but still " +
			"explain complex terms. Include practical applications and examples."
	case models.PodcastLevelAdvanced:
		return "Create an advanced podcast script (around 1800-2500 words). " +
			"This is for listeners who are well-versed in the subject. " +
			"Dive deep into nuances, edge cases, advanced applications, and " +
			"critical analysis. Use appropriate technical terminology freely. " +
			"Discuss implications, comparisons to alternative approaches, and " +
			"cutting-edge aspects of the topic. Challenge the listener to think critically."
	default:
		return "Create a beginner-friendly podcast script (around 800-1200 words). " +
			"Explain concepts as if speaking to someone with no prior knowledge. " +
			"Use simple language, lots of analogies, and focus on the big picture. " +
			"Avoid jargon - if you must use technical terms, always explain them. " +
			"The tone should be welcoming and encouraging."
	}
}

// Generate produces a podcast script at the requested depth level and parses
// it into per-speaker segments.
func (a *PodcastAgent) Generate(ctx context.Context, content, level string) (*PodcastScript, error) {
	switch level {
	case models.PodcastLevelBeginner, models.PodcastLevelIntermediate, models.PodcastLevelAdvanced:
	default:
		level = models.PodcastLevelBeginner
	}

	script, err := a.gemini.GenerateText(ctx, buildAgentPrompt(content, podcastLevelInstruction(level)), GenerateOptions{
		Temperature:       0.75,
		MaxOutputTokens:   16384,
		SystemInstruction: podcastSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("podcast generation failed: %w", err)
	}

	segments := ParsePodcastScript(script)
	if len(segments) == 0 {
		return nil, fmt.Errorf("podcast script contained no speaker lines")
	}

	return &PodcastScript{
		Script:    script,
		Level:     level,
		WordCount: countWords(script),
		Segments:  segments,
	}, nil
}

// ParsePodcastScript splits a script into (speaker, text) turns. Lines
// without a speaker label continue the previous turn; leading text without
// any label is discarded.
func ParsePodcastScript(script string) []PodcastSegment {
	var segments []PodcastSegment

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var speaker string
		switch {
		case strings.HasPrefix(line, "ALEX:"):
			speaker = "ALEX"
			line = strings.TrimSpace(strings.TrimPrefix(line, "ALEX:"))
		case strings.HasPrefix(line, "SAM:"):
			speaker = "SAM"
			line = strings.TrimSpace(strings.TrimPrefix(line, "SAM:"))
		}

		if speaker == "" {
			if len(segments) > 0 && line != "" {
				segments[len(segments)-1].Text += " " + line
			}
			continue
		}
		if line == "" {
			continue
		}
		segments = append(segments, PodcastSegment{Speaker: speaker, Text: line})
	}

	return segments
}
