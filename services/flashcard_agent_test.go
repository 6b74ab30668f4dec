package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFlashcards(t *testing.T) {
	t.Run("sorts by priority keeping original order within a tier", func(t *testing.T) {
		cards := []GeneratedCard{
			{Front: "supplementary", Back: "b", Priority: 5},
			{Front: "critical", Back: "b", Priority: 1},
			{Front: "important first", Back: "b", Priority: 3},
			{Front: "important second", Back: "b", Priority: 3},
		}

		out := validateFlashcards(cards)
		require.Len(t, out, 4)
		assert.Equal(t, "critical", out[0].Front)
		assert.Equal(t, "important first", out[1].Front)
		assert.Equal(t, "important second", out[2].Front)
		assert.Equal(t, "supplementary", out[3].Front)

		// Order is renumbered after sorting
		for i, card := range out {
			assert.Equal(t, i, card.Order)
		}
	})

	t.Run("clamps priority into 1-5", func(t *testing.T) {
		cards := []GeneratedCard{
			{Front: "missing", Back: "b", Priority: 0},
			{Front: "too low", Back: "b", Priority: -2},
			{Front: "too high", Back: "b", Priority: 9},
		}

		out := validateFlashcards(cards)
		require.Len(t, out, 3)

		priorities := map[string]int{}
		for _, c := range out {
			priorities[c.Front] = c.Priority
		}
		assert.Equal(t, 3, priorities["missing"], "zero priority defaults to middle")
		assert.Equal(t, 1, priorities["too low"])
		assert.Equal(t, 5, priorities["too high"])
	})

	t.Run("drops cards with empty sides", func(t *testing.T) {
		cards := []GeneratedCard{
			{Front: "", Back: "b", Priority: 1},
			{Front: "f", Back: "  ", Priority: 1},
			{Front: "keep", Back: "b", Priority: 1},
		}

		out := validateFlashcards(cards)
		require.Len(t, out, 1)
		assert.Equal(t, "keep", out[0].Front)
	})
}
