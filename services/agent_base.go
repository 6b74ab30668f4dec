package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Generation agents share the prompt layout of "content block + user
// request" and the JSON-from-markdown extraction below. Models frequently
// wrap JSON output in code fences despite instructions not to.

const maxAgentContextChars = 30000

var (
	jsonFenceRe  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	plainFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// buildAgentPrompt combines document content with an agent instruction
func buildAgentPrompt(content, userRequest string) string {
	parts := []string{
		"## Content to Process",
		truncateContent(content, maxAgentContextChars),
	}
	if userRequest != "" {
		parts = append(parts, "", "## User Request", userRequest)
	}
	return strings.Join(parts, "\n")
}

func truncateContent(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars] + "\n\n[... Content truncated ...]"
}

// extractAgentJSON pulls a JSON object out of a model response and unmarshals
// it into target. key is a field name expected in the object, used as the
// last-resort anchor when the response has prose around bare JSON.
func extractAgentJSON(response, key string, target interface{}) error {
	response = strings.TrimSpace(response)

	// Direct parse first
	if err := json.Unmarshal([]byte(response), target); err == nil {
		return nil
	}

	// Fenced code blocks
	for _, re := range []*regexp.Regexp{jsonFenceRe, plainFenceRe} {
		if match := re.FindStringSubmatch(response); match != nil {
			if err := json.Unmarshal([]byte(match[1]), target); err == nil {
				return nil
			}
		}
	}

	// Bare JSON object embedded in prose
	anchorRe, err := regexp.Compile(`(?s)\{.*"` + regexp.QuoteMeta(key) + `".*\}`)
	if err == nil {
		if match := anchorRe.FindString(response); match != "" {
			if err := json.Unmarshal([]byte(match), target); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("no parseable JSON object with %q found in response", key)
}

// countWords matches the word-count bookkeeping stored with summaries and
// podcast scripts
func countWords(s string) int {
	return len(strings.Fields(s))
}
