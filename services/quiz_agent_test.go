package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() GeneratedQuestion {
	return GeneratedQuestion{
		Question:      "What is photosynthesis?",
		OptionA:       "Energy conversion in plants",
		OptionB:       "Cell division",
		OptionC:       "Protein folding",
		OptionD:       "Water transport",
		CorrectAnswer: "A",
		Explanation:   "Plants convert light into chemical energy.",
	}
}

func TestValidateQuestions(t *testing.T) {
	t.Run("keeps valid questions and assigns order", func(t *testing.T) {
		q1 := validQuestion()
		q2 := validQuestion()
		q2.CorrectAnswer = "d"

		out := validateQuestions([]GeneratedQuestion{q1, q2})
		require.Len(t, out, 2)
		assert.Equal(t, 0, out[0].Order)
		assert.Equal(t, 1, out[1].Order)
		assert.Equal(t, "D", out[1].CorrectAnswer, "answer letter is normalized to upper case")
	})

	t.Run("drops question with missing option", func(t *testing.T) {
		q := validQuestion()
		q.OptionC = "   "

		out := validateQuestions([]GeneratedQuestion{q})
		assert.Empty(t, out)
	})

	t.Run("drops question with invalid answer letter", func(t *testing.T) {
		q := validQuestion()
		q.CorrectAnswer = "E"

		out := validateQuestions([]GeneratedQuestion{q})
		assert.Empty(t, out)
	})

	t.Run("drops empty question text", func(t *testing.T) {
		q := validQuestion()
		q.Question = ""

		out := validateQuestions([]GeneratedQuestion{q})
		assert.Empty(t, out)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		q := validQuestion()
		q.Question = "  What is photosynthesis?  "
		q.CorrectAnswer = " a "

		out := validateQuestions([]GeneratedQuestion{q})
		require.Len(t, out, 1)
		assert.Equal(t, "What is photosynthesis?", out[0].Question)
		assert.Equal(t, "A", out[0].CorrectAnswer)
	})
}
