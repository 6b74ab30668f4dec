package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/studywise/backend/models"
)

const summarySystemPrompt = `You are an expert educational content summarizer designed to help students learn effectively. Your role is to create clear, comprehensive, and accurate summaries that make complex topics easy to understand.

## Core Principles

1. **Accuracy First**: Only include information that is directly present in the provided material. Never add external information or make assumptions.

2. **Clarity**: Use simple, accessible language. Avoid jargon unless it's essential to the topic, in which case define it clearly.

3. **Structure**: Organize information logically with clear sections, bullet points, and hierarchies that aid comprehension.

4. **Learning Focus**: Highlight key concepts, important definitions, and relationships between ideas. Help the reader build a mental model of the topic.

5. **Completeness**: Capture all important points from the material while avoiding unnecessary repetition or filler.

## Output Guidelines

- Start with a brief overview (2-3 sentences capturing the main theme)
- Use markdown formatting for better readability
- Bold **key terms** when first introduced
- Use bullet points and numbered lists for clarity
- Include section headings for longer summaries
- End with "Key Takeaways" for quick review

## Handling Unclear Content

If portions of the material are unclear, incomplete, or potentially contain errors:
- Acknowledge the limitation rather than guessing
- Summarize what IS clear
- Note areas that may need clarification`

// SummaryAgent generates educational summaries from document content
type SummaryAgent struct {
	gemini *GeminiService
}

type SummaryResult struct {
	Content   string `json:"content"`
	Type      string `json:"type"`
	WordCount int    `json:"word_count"`
}

func NewSummaryAgent(gemini *GeminiService) *SummaryAgent {
	return &SummaryAgent{gemini: gemini}
}

func (a *SummaryAgent) typeInstruction(summaryType string) string {
	switch summaryType {
	case models.SummaryTypeBrief:
		return "Create a brief summary (150-250 words) capturing the essential points."
	case models.SummaryTypeBullet:
		return "Create a bullet-point summary with hierarchical organization."
	default:
		return "Create a comprehensive summary covering all major topics and subtopics."
	}
}

// Generate produces a summary of the given type. focusAreas optionally
// narrows the summary to specific topics.
func (a *SummaryAgent) Generate(ctx context.Context, content, summaryType string, focusAreas []string) (*SummaryResult, error) {
	switch summaryType {
	case models.SummaryTypeBrief, models.SummaryTypeDetailed, models.SummaryTypeBullet:
	default:
		summaryType = models.SummaryTypeDetailed
	}

	instruction := a.typeInstruction(summaryType)
	if len(focusAreas) > 0 {
		instruction += fmt.Sprintf("\n\nPay special attention to these areas: %s", strings.Join(focusAreas, ", "))
	}

	summary, err := a.gemini.GenerateText(ctx, buildAgentPrompt(content, instruction), GenerateOptions{
		Temperature:       0.5,
		MaxOutputTokens:   8192,
		SystemInstruction: summarySystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}
	if strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("summary generation returned empty content")
	}

	return &SummaryResult{
		Content:   summary,
		Type:      summaryType,
		WordCount: countWords(summary),
	}, nil
}
