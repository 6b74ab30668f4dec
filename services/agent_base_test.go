package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAgentJSON(t *testing.T) {
	type payload struct {
		Questions []string `json:"questions"`
	}

	tests := []struct {
		name     string
		response string
		wantErr  bool
		expected []string
	}{
		{
			name:     "bare JSON object",
			response: `{"questions": ["q1", "q2"]}`,
			expected: []string{"q1", "q2"},
		},
		{
			name:     "json code fence",
			response: "Here you go:\n```json\n{\"questions\": [\"q1\"]}\n```",
			expected: []string{"q1"},
		},
		{
			name:     "plain code fence",
			response: "```\n{\"questions\": [\"q1\"]}\n```",
			expected: []string{"q1"},
		},
		{
			name:     "JSON embedded in prose",
			response: `Sure! The result is {"questions": ["q1"]} as requested.`,
			expected: []string{"q1"},
		},
		{
			name:     "no JSON at all",
			response: "I cannot produce that.",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := extractAgentJSON(tt.response, "questions", &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Questions)
		})
	}
}

func TestBuildAgentPrompt(t *testing.T) {
	prompt := buildAgentPrompt("some document text", "make a quiz")
	assert.Contains(t, prompt, "## Content to Process")
	assert.Contains(t, prompt, "some document text")
	assert.Contains(t, prompt, "## User Request")
	assert.Contains(t, prompt, "make a quiz")

	// No user-request section without a request
	prompt = buildAgentPrompt("doc", "")
	assert.NotContains(t, prompt, "## User Request")
}

func TestBuildAgentPromptTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", maxAgentContextChars+500)
	prompt := buildAgentPrompt(long, "")

	assert.Contains(t, prompt, "[... Content truncated ...]")
	assert.Less(t, len(prompt), len(long))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, countWords(""))
	assert.Equal(t, 0, countWords("   \n "))
	assert.Equal(t, 3, countWords("one two three"))
	assert.Equal(t, 4, countWords("  spread \n across\tlines here "))
}
