package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/studywise/backend/models"
)

const chatbotSystemPrompt = `You are an intelligent study assistant that helps students understand their learning materials through conversation. You answer questions ONLY based on the document content provided to you.

## Core Rules

1. **Document-Grounded**: ONLY answer questions using information from the provided document context. Never use external knowledge or make assumptions beyond what the document states.

2. **Honesty About Limitations**: If the user's question is NOT related to the document content, or the answer cannot be found in the document, respond with something like:
   "I couldn't find information about that in your document. This question appears to be outside the scope of the uploaded material. Could you ask something related to the document content?"

3. **Conversational & Helpful**: Be friendly, clear, and educational in your responses. Help the student understand concepts, not just recite facts.

4. **Cite Context**: When answering, naturally reference which part or topic of the document your answer comes from (e.g., "According to the section on X..." or "Based on what the document says about Y...").

5. **Markdown Formatting**: Use markdown for clarity:
   - **Bold** key terms
   - Use bullet points for lists
   - Use headings for long explanations
   - Use code blocks for any code or formulas

6. **Follow-up Awareness**: Consider the conversation history to understand follow-up questions. If the user says "explain more" or "what about...", relate it to the previous context.

## Response Style

- Keep answers concise but thorough
- Break down complex concepts into simpler parts
- Use examples from the document when possible
- If the document discusses a topic partially, answer what you can and note what's not covered`

// Phrases signalling the assistant declined because the document lacks the
// answer; used to decide whether retrieved chunks actually grounded the reply.
var declinePhrases = []string{
	"couldn't find information",
	"outside the scope",
	"not related to",
	"not covered in",
	"not mentioned in",
	"no relevant content found",
}

// ChatbotAgent answers document-grounded questions over retrieved context
type ChatbotAgent struct {
	gemini *GeminiService
}

type ChatReply struct {
	Response    string `json:"response"`
	SourcesUsed bool   `json:"sources_used"`
}

func NewChatbotAgent(gemini *GeminiService) *ChatbotAgent {
	return &ChatbotAgent{gemini: gemini}
}

// Respond generates an answer grounded on docContext, carrying the session's
// recent history for follow-up awareness.
func (a *ChatbotAgent) Respond(ctx context.Context, sessionID, docContext string, history []models.ChatMessage, userMessage string) (*ChatReply, error) {
	contextBlock := docContext
	if strings.TrimSpace(contextBlock) == "" {
		contextBlock = "(No relevant content found in the document)"
	}

	message := fmt.Sprintf(`## Document Context
The following are relevant excerpts from the user's uploaded document:

%s

## Current Question
%s`, contextBlock, userMessage)

	response, err := a.gemini.GenerateChatResponse(ctx, sessionID, chatbotSystemPrompt, history, message, GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return nil, fmt.Errorf("chatbot response failed: %w", err)
	}

	return &ChatReply{
		Response:    response,
		SourcesUsed: SourcesWereUsed(docContext, response),
	}, nil
}

// SourcesWereUsed reports whether the reply was grounded in retrieved
// context rather than a decline.
func SourcesWereUsed(docContext, response string) bool {
	if strings.TrimSpace(docContext) == "" {
		return false
	}
	lower := strings.ToLower(response)
	for _, phrase := range declinePhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}
