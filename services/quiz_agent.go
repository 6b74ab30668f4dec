package services

import (
	"context"
	"fmt"
	"strings"
)

const quizSystemPrompt = `You are an expert educational quiz creator designed to help students test their knowledge effectively. Your role is to create clear, well-structured multiple choice questions that accurately assess understanding of the material.

## Core Principles

1. **Accuracy First**: Only create questions based on information directly present in the provided material. Never add external information or make assumptions.

2. **Clear Questions**: Write questions that are unambiguous and test genuine understanding, not trick questions or memorization of obscure details.

3. **Balanced Options**: Create four plausible answer options where incorrect answers (distractors) are reasonable but clearly wrong upon understanding.

4. **Difficulty Scaling**:
   - **Easy**: Basic recall and straightforward concepts
   - **Medium**: Understanding relationships and applying concepts
   - **Hard**: Analysis, synthesis, and complex problem-solving

5. **Helpful Explanations**: Provide brief explanations for why the correct answer is right.

## Output Format

You MUST return a valid JSON object with this exact structure:
` + "```json" + `
{
    "questions": [
        {
            "question": "The question text here?",
            "option_a": "First option",
            "option_b": "Second option",
            "option_c": "Third option",
            "option_d": "Fourth option",
            "correct_answer": "A",
            "explanation": "Brief explanation of why this is correct."
        }
    ]
}
` + "```" + `

## Important Rules

- Always return ONLY the JSON object, no additional text before or after
- The correct_answer field must be exactly one letter: A, B, C, or D
- Make sure all options are similar in length and style
- Avoid options like "All of the above" or "None of the above"
- Distribute correct answers randomly among A, B, C, D
- Do not number the questions in the question text itself`

// QuizAgent generates MCQ quizzes from document content
type QuizAgent struct {
	gemini *GeminiService
}

type GeneratedQuestion struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Order         int    `json:"order"`
}

type QuizResult struct {
	Questions  []GeneratedQuestion `json:"questions"`
	Difficulty string              `json:"difficulty"`
}

func NewQuizAgent(gemini *GeminiService) *QuizAgent {
	return &QuizAgent{gemini: gemini}
}

func quizDifficultyInstruction(difficulty string) string {
	switch difficulty {
	case "easy":
		return "Create EASY questions that test basic recall and understanding. Focus on main concepts and definitions."
	case "hard":
		return "Create HARD questions that require analysis, synthesis, or evaluation of concepts. Include questions that require connecting multiple ideas."
	default:
		return "Create MEDIUM difficulty questions that require understanding relationships between concepts and basic application."
	}
}

// Generate produces questionCount MCQs (clamped to 5-20) at the given
// difficulty. Malformed questions in the model output are dropped; an error
// is returned only when nothing valid remains.
func (a *QuizAgent) Generate(ctx context.Context, content, difficulty string, questionCount int) (*QuizResult, error) {
	difficulty = strings.ToLower(difficulty)
	switch difficulty {
	case "easy", "medium", "hard":
	default:
		difficulty = "medium"
	}
	if questionCount < 5 {
		questionCount = 5
	}
	if questionCount > 20 {
		questionCount = 20
	}

	instruction := fmt.Sprintf(`Generate exactly %d multiple choice questions based on the content below.

Difficulty Level: %s
%s

Remember to:
- Only use information from the provided content
- Make all 4 options plausible but only one correct
- Vary the correct answer position (A, B, C, D)
- Keep questions clear and concise

Return ONLY a valid JSON object with the questions array.`,
		questionCount, strings.ToUpper(difficulty), quizDifficultyInstruction(difficulty))

	response, err := a.gemini.GenerateText(ctx, buildAgentPrompt(content, instruction), GenerateOptions{
		Temperature:       0.6,
		MaxOutputTokens:   8192,
		SystemInstruction: quizSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	var parsed struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := extractAgentJSON(response, "questions", &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quiz response: %w", err)
	}

	validated := validateQuestions(parsed.Questions)
	if len(validated) == 0 {
		return nil, fmt.Errorf("no valid questions generated")
	}

	return &QuizResult{Questions: validated, Difficulty: difficulty}, nil
}

func validateQuestions(questions []GeneratedQuestion) []GeneratedQuestion {
	validated := make([]GeneratedQuestion, 0, len(questions))

	for i, q := range questions {
		q.Question = strings.TrimSpace(q.Question)
		q.OptionA = strings.TrimSpace(q.OptionA)
		q.OptionB = strings.TrimSpace(q.OptionB)
		q.OptionC = strings.TrimSpace(q.OptionC)
		q.OptionD = strings.TrimSpace(q.OptionD)
		q.Explanation = strings.TrimSpace(q.Explanation)
		q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))

		if q.Question == "" || q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
			continue
		}
		switch q.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			continue
		}

		q.Order = i
		validated = append(validated, q)
	}

	return validated
}
