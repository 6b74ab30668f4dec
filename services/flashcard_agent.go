package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const flashcardSystemPrompt = `You are an expert educational content creator specializing in creating effective flashcards for learning and memorization. Your goal is to extract the most important concepts from educational material and create clear, concise flashcards.

## Core Principles

1. **Extract Key Concepts**: Identify the most important terms, definitions, concepts, facts, and relationships from the material.

2. **Priority-Based Selection**:
   - Priority 1 (Critical): Core concepts that are fundamental to understanding the topic
   - Priority 2 (Very Important): Key supporting concepts and definitions
   - Priority 3 (Important): Significant details and relationships
   - Priority 4 (Helpful): Useful supplementary information
   - Priority 5 (Supplementary): Additional details for deeper understanding

3. **Clear Card Design**:
   - **Front**: A clear question, term, or concept prompt (keep concise)
   - **Back**: A complete but concise answer or explanation

4. **Adaptive Detail**:
   - Fewer cards requested = Focus only on the most critical concepts
   - More cards requested = Include more detailed and supplementary information

5. **Learning Optimization**:
   - Each card should test ONE concept
   - Avoid overly complex or multi-part answers
   - Use clear, simple language

## Output Format

You MUST return a valid JSON object with this exact structure:
` + "```json" + `
{
    "flashcards": [
        {
            "front": "What is [concept]?",
            "back": "Clear, concise explanation or definition",
            "priority": 1
        }
    ]
}
` + "```" + `

## Important Rules

- Always return ONLY the JSON object, no additional text
- Priority must be an integer from 1 to 5
- Front should be concise (ideally under 100 characters)
- Back should be comprehensive but not overwhelming (under 300 characters)
- Order flashcards by priority (most important first)
- Only use information from the provided content`

// FlashcardAgent generates prioritized study cards from document content
type FlashcardAgent struct {
	gemini *GeminiService
}

type GeneratedCard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Priority int    `json:"priority"`
	Order    int    `json:"order"`
}

type FlashcardResult struct {
	Cards []GeneratedCard `json:"flashcards"`
}

func NewFlashcardAgent(gemini *GeminiService) *FlashcardAgent {
	return &FlashcardAgent{gemini: gemini}
}

func flashcardDetailInstruction(cardCount int) string {
	switch {
	case cardCount <= 5:
		return "Focus ONLY on the most critical and fundamental concepts. Each card must cover an absolutely essential point."
	case cardCount <= 10:
		return "Focus on critical and very important concepts. Cover the core material thoroughly."
	case cardCount <= 15:
		return "Include critical, very important, and important concepts. Provide good coverage of the material."
	case cardCount <= 20:
		return "Include all important concepts plus helpful supplementary information for comprehensive coverage."
	default:
		return "Create comprehensive coverage including all concepts from critical to supplementary. Include detailed information for thorough study."
	}
}

// Generate produces cardCount flashcards (clamped to 5-30), sorted most
// important first.
func (a *FlashcardAgent) Generate(ctx context.Context, content string, cardCount int) (*FlashcardResult, error) {
	if cardCount < 5 {
		cardCount = 5
	}
	if cardCount > 30 {
		cardCount = 30
	}

	instruction := fmt.Sprintf(`Generate exactly %d flashcards based on the content below.

%s

Guidelines:
- Start with the most important concepts (priority 1-2)
- Fill remaining cards with progressively less critical content
- Each flashcard should be self-contained and test one concept
- Front: Clear question or concept prompt
- Back: Concise but complete answer

Return ONLY a valid JSON object with the flashcards array.`,
		cardCount, flashcardDetailInstruction(cardCount))

	response, err := a.gemini.GenerateText(ctx, buildAgentPrompt(content, instruction), GenerateOptions{
		Temperature:       0.5,
		MaxOutputTokens:   8192,
		SystemInstruction: flashcardSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("flashcard generation failed: %w", err)
	}

	var parsed struct {
		Flashcards []GeneratedCard `json:"flashcards"`
	}
	if err := extractAgentJSON(response, "flashcards", &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse flashcard response: %w", err)
	}

	validated := validateFlashcards(parsed.Flashcards)
	if len(validated) == 0 {
		return nil, fmt.Errorf("no valid flashcards generated")
	}

	return &FlashcardResult{Cards: validated}, nil
}

func validateFlashcards(cards []GeneratedCard) []GeneratedCard {
	validated := make([]GeneratedCard, 0, len(cards))

	for i, card := range cards {
		card.Front = strings.TrimSpace(card.Front)
		card.Back = strings.TrimSpace(card.Back)
		if card.Front == "" || card.Back == "" {
			continue
		}

		if card.Priority < 1 || card.Priority > 5 {
			if card.Priority == 0 {
				card.Priority = 3
			} else if card.Priority < 1 {
				card.Priority = 1
			} else {
				card.Priority = 5
			}
		}

		card.Order = i
		validated = append(validated, card)
	}

	// Most important cards come first
	sort.SliceStable(validated, func(i, j int) bool {
		if validated[i].Priority != validated[j].Priority {
			return validated[i].Priority < validated[j].Priority
		}
		return validated[i].Order < validated[j].Order
	})
	for i := range validated {
		validated[i].Order = i
	}

	return validated
}
