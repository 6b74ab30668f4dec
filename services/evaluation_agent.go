package services

import (
	"context"
	"fmt"
	"strings"
)

const evaluationSystemPrompt = `You are an expert teacher and evaluator specializing in grading handwritten answer sheets.
Your role is to carefully analyze student submissions and provide fair, constructive feedback.`

const maxReferenceChars = 6000

// EvaluationAgent grades handwritten answer-sheet images through the vision
// model
type EvaluationAgent struct {
	gemini *GeminiService
}

type EvaluatedQuestion struct {
	QuestionText    string  `json:"question_text"`
	StudentAnswer   string  `json:"student_answer"`
	IdealAnswer     string  `json:"ideal_answer"`
	ScorePercentage float64 `json:"score_percentage"`
	Feedback        string  `json:"feedback"`
	Order           int     `json:"order"`
}

type EvaluationResult struct {
	Questions       []EvaluatedQuestion `json:"questions"`
	OverallScore    float64             `json:"overall_score"`
	GeneralFeedback string              `json:"general_feedback"`
}

func NewEvaluationAgent(gemini *GeminiService) *EvaluationAgent {
	return &EvaluationAgent{gemini: gemini}
}

var difficultyGuides = map[int]string{
	1:  "Be very lenient. Accept any reasonable attempt that shows understanding.",
	2:  "Be lenient. Focus on core concepts, ignore minor errors.",
	3:  "Be somewhat lenient. Accept partial answers that show effort.",
	4:  "Use standard grading. Balance accuracy with understanding.",
	5:  "Use standard grading. Expect correct answers with reasonable explanations.",
	6:  "Use standard grading. Look for completeness and accuracy.",
	7:  "Be strict. Expect precise and complete answers.",
	8:  "Be strict. Deduct points for incomplete or imprecise answers.",
	9:  "Be very strict. Expect near-perfect answers with proper terminology.",
	10: "Be extremely strict. Only perfect, comprehensive answers get full marks.",
}

func (a *EvaluationAgent) buildPrompt(difficulty int, referenceContent string) string {
	guide, ok := difficultyGuides[difficulty]
	if !ok {
		difficulty = 5
		guide = difficultyGuides[5]
	}

	referenceSection := ""
	if referenceContent != "" {
		if len(referenceContent) > maxReferenceChars {
			referenceContent = referenceContent[:maxReferenceChars] + "\n\n[... Reference truncated ...]"
		}
		referenceSection = fmt.Sprintf(`
## Reference Material
Use this reference material to evaluate the accuracy of answers:

%s

---
`, referenceContent)
	}

	return fmt.Sprintf(`You are an expert teacher evaluating a student's handwritten answer sheet.

## Your Task
1. Look at the uploaded image of the answer sheet
2. Identify each question and the student's written answer
3. Evaluate each answer based on correctness and completeness
4. Provide a percentage score (0-100) for each question
5. Give specific feedback for improvement

## Grading Guidelines
Difficulty Level: %d/10
%s

%s

## Response Format
You MUST respond with valid JSON in exactly this format:
{
    "questions": [
        {
            "question_text": "The question as you read it from the sheet",
            "student_answer": "What the student wrote",
            "ideal_answer": "What the correct/ideal answer should be",
            "score_percentage": 85,
            "feedback": "Specific feedback about this answer"
        }
    ],
    "overall_score": 78.5,
    "general_feedback": "Overall feedback about the student's performance"
}

## Important Notes
- Read the handwriting carefully, even if messy
- If you can't read something, note it in the feedback
- Score each question individually from 0-100
- The overall_score should be the average of all question scores
- Be constructive in your feedback
- If no questions are visible, return an error message

Analyze the answer sheet image now and provide your evaluation.`, difficulty, guide, referenceSection)
}

// Evaluate grades answer-sheet images. referenceContent optionally provides
// the source material answers are checked against.
func (a *EvaluationAgent) Evaluate(ctx context.Context, images [][]byte, mimeTypes []string, difficulty int, referenceContent string) (*EvaluationResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no answer sheet images provided")
	}
	if difficulty < 1 || difficulty > 10 {
		difficulty = 5
	}

	prompt := a.buildPrompt(difficulty, referenceContent)

	response, err := a.gemini.GenerateWithImages(ctx, prompt, images, mimeTypes, GenerateOptions{
		Temperature:       0.7,
		MaxOutputTokens:   8192,
		SystemInstruction: evaluationSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	var result EvaluationResult
	if err := extractAgentJSON(response, "questions", &result); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation response: %w", err)
	}
	if len(result.Questions) == 0 {
		return nil, fmt.Errorf("no questions found in the answer sheet")
	}

	normalizeEvaluation(&result)
	return &result, nil
}

// normalizeEvaluation clamps scores into 0-100, numbers the questions and
// fills the overall score with the per-question average when missing.
func normalizeEvaluation(result *EvaluationResult) {
	var total float64
	for i := range result.Questions {
		q := &result.Questions[i]
		if q.ScorePercentage < 0 {
			q.ScorePercentage = 0
		}
		if q.ScorePercentage > 100 {
			q.ScorePercentage = 100
		}
		q.Order = i + 1
		total += q.ScorePercentage
	}

	if result.OverallScore == 0 && len(result.Questions) > 0 {
		result.OverallScore = total / float64(len(result.Questions))
	}
	if result.OverallScore < 0 {
		result.OverallScore = 0
	}
	if result.OverallScore > 100 {
		result.OverallScore = 100
	}
	if strings.TrimSpace(result.GeneralFeedback) == "" {
		result.GeneralFeedback = "Evaluation complete."
	}
}
