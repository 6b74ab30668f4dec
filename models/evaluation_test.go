package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{1, 1},
		{5, 5},
		{10, 10},
		{0, DefaultEvaluationDifficulty},
		{-3, DefaultEvaluationDifficulty},
		{11, DefaultEvaluationDifficulty},
		{100, DefaultEvaluationDifficulty},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeDifficulty(tt.input), "input=%d", tt.input)
	}
}
