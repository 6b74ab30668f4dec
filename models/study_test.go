package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFlowchartDetail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", FlowchartDetailSimple},
		{"medium", FlowchartDetailMedium},
		{"detailed", FlowchartDetailDetailed},
		{"DETAILED", FlowchartDetailDetailed},
		{" simple ", FlowchartDetailSimple},
		{"", FlowchartDetailMedium},
		{"extreme", FlowchartDetailMedium},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeFlowchartDetail(tt.input), "input=%q", tt.input)
	}
}

func TestNormalizePodcastLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"beginner", PodcastLevelBeginner},
		{"intermediate", PodcastLevelIntermediate},
		{"advanced", PodcastLevelAdvanced},
		{"Advanced", PodcastLevelAdvanced},
		{"", PodcastLevelBeginner},
		{"expert", PodcastLevelBeginner},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizePodcastLevel(tt.input), "input=%q", tt.input)
	}
}
