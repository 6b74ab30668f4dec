package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEvaluation(t *testing.T) {
	t.Run("clamps scores and numbers questions", func(t *testing.T) {
		result := &EvaluationResult{
			Questions: []EvaluatedQuestion{
				{QuestionText: "Q1", ScorePercentage: -10},
				{QuestionText: "Q2", ScorePercentage: 150},
				{QuestionText: "Q3", ScorePercentage: 80},
			},
			OverallScore:    70,
			GeneralFeedback: "Good effort.",
		}

		normalizeEvaluation(result)

		assert.Equal(t, 0.0, result.Questions[0].ScorePercentage)
		assert.Equal(t, 100.0, result.Questions[1].ScorePercentage)
		assert.Equal(t, 80.0, result.Questions[2].ScorePercentage)

		assert.Equal(t, 1, result.Questions[0].Order)
		assert.Equal(t, 2, result.Questions[1].Order)
		assert.Equal(t, 3, result.Questions[2].Order)

		assert.Equal(t, 70.0, result.OverallScore, "provided overall score is kept")
	})

	t.Run("fills missing overall score with average", func(t *testing.T) {
		result := &EvaluationResult{
			Questions: []EvaluatedQuestion{
				{ScorePercentage: 60},
				{ScorePercentage: 80},
			},
			GeneralFeedback: "ok",
		}

		normalizeEvaluation(result)
		assert.Equal(t, 70.0, result.OverallScore)
	})

	t.Run("defaults empty general feedback", func(t *testing.T) {
		result := &EvaluationResult{
			Questions:       []EvaluatedQuestion{{ScorePercentage: 50}},
			GeneralFeedback: "   ",
		}

		normalizeEvaluation(result)
		assert.Equal(t, "Evaluation complete.", result.GeneralFeedback)
	})
}
