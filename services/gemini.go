package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studywise/backend/models"

	"google.golang.org/genai"
)

const (
	ModelName            = "gemini-2.5-flash"
	EmbeddingModelName   = "text-embedding-004"
	EmbeddingDimensions  = 768
	MaxConversationTurns = 20 // Maximum chat turns before summarization
)

// GenerateOptions tunes a single generation call. Zero values fall back to
// model defaults.
type GenerateOptions struct {
	Temperature       float32
	MaxOutputTokens   int32
	SystemInstruction string
}

// GeminiService handles all Gemini AI operations: artifact generation,
// vision OCR, embeddings and chat session management
type GeminiService struct {
	genaiClient *genai.Client

	// Per-session cache management for the chatbot
	sessionCaches map[string]*SessionCache
	cacheMutex    sync.RWMutex
}

// SessionCache tracks a chat session's rolling summary and turn count
type SessionCache struct {
	ConversationSummary string
	TurnCount           int
	LastActivity        time.Time
}

func NewGeminiService(apiKey string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	service := &GeminiService{
		genaiClient:   genaiClient,
		sessionCaches: make(map[string]*SessionCache),
	}

	// Start background cleanup of stale caches
	go service.cleanupStaleCaches()

	return service
}

func (g *GeminiService) generateConfig(opts GenerateOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		temp := opts.Temperature
		config.Temperature = &temp
	}
	if opts.MaxOutputTokens > 0 {
		config.MaxOutputTokens = opts.MaxOutputTokens
	}
	if opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	return config
}

// GenerateText runs a single prompt through the model
func (g *GeminiService) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		genai.Text(prompt),
		g.generateConfig(opts),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return result.Text(), nil
}

// GenerateWithImages runs a prompt plus inline images through the vision
// model. Used for answer-sheet evaluation and image OCR.
func (g *GeminiService) GenerateWithImages(ctx context.Context, prompt string, images [][]byte, mimeTypes []string, opts GenerateOptions) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}
	if len(images) != len(mimeTypes) {
		return "", fmt.Errorf("images and mime types length mismatch")
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for i, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: mimeTypes[i],
				Data:     img,
			},
		})
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		contents,
		g.generateConfig(opts),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate vision content: %w", err)
	}

	return result.Text(), nil
}

// EmbedTexts embeds a batch of texts for vector indexing
func (g *GeminiService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if g.genaiClient == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	result, err := g.genaiClient.Models.EmbedContent(ctx, EmbeddingModelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		vectors[i] = embedding.Values
	}
	return vectors, nil
}

// EmbedText embeds a single query string
func (g *GeminiService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GetOrCreateSessionCache gets or creates a cached session for a chat
func (g *GeminiService) GetOrCreateSessionCache(sessionID string) *SessionCache {
	g.cacheMutex.Lock()
	defer g.cacheMutex.Unlock()

	if cache, exists := g.sessionCaches[sessionID]; exists {
		cache.LastActivity = time.Now()
		return cache
	}

	sessionCache := &SessionCache{
		TurnCount:    0,
		LastActivity: time.Now(),
	}
	g.sessionCaches[sessionID] = sessionCache
	slog.Info("Created chat session cache", "session_id", sessionID)

	return sessionCache
}

// GenerateChatResponse generates a chat reply with conversation history and
// rolling summarization once the session gets long
func (g *GeminiService) GenerateChatResponse(ctx context.Context, sessionID, systemInstruction string, history []models.ChatMessage, userMessage string, opts GenerateOptions) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	sessionCache := g.GetOrCreateSessionCache(sessionID)

	if sessionCache.TurnCount >= MaxConversationTurns {
		slog.Info("Conversation too long, creating summary", "session_id", sessionID, "turns", sessionCache.TurnCount)
		if err := g.summarizeConversation(ctx, sessionID, history); err != nil {
			slog.Error("Failed to summarize conversation", "error", err, "session_id", sessionID)
			// Continue anyway with full history
		}
	}

	contents := g.buildConversationContents(history, sessionCache.ConversationSummary)

	if strings.TrimSpace(userMessage) != "" {
		contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))
	}
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("Hello", genai.RoleUser))
	}

	opts.SystemInstruction = systemInstruction
	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		contents,
		g.generateConfig(opts),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	response := result.Text()

	g.cacheMutex.Lock()
	sessionCache.TurnCount++
	sessionCache.LastActivity = time.Now()
	g.cacheMutex.Unlock()

	slog.Info("Generated chat response",
		"session_id", sessionID,
		"turns", sessionCache.TurnCount,
		"response_length", len(response))

	return response, nil
}

func (g *GeminiService) buildConversationContents(history []models.ChatMessage, summary string) []*genai.Content {
	var contents []*genai.Content

	// Add summary if exists
	if summary != "" {
		contents = append(contents, genai.NewContentFromText(
			fmt.Sprintf("Previous conversation summary: %s", summary),
			genai.RoleModel,
		))
	}

	// Keep the last 10 messages to avoid context bloat
	startIdx := 0
	if len(history) > 10 {
		startIdx = len(history) - 10
	}

	for _, message := range history[startIdx:] {
		if strings.TrimSpace(message.Content) == "" {
			continue
		}

		if message.Role == models.ChatRoleAssistant {
			contents = append(contents, genai.NewContentFromText(message.Content, genai.RoleModel))
		} else {
			contents = append(contents, genai.NewContentFromText(message.Content, genai.RoleUser))
		}
	}

	return contents
}

func (g *GeminiService) summarizeConversation(ctx context.Context, sessionID string, history []models.ChatMessage) error {
	g.cacheMutex.Lock()
	defer g.cacheMutex.Unlock()

	var conversationText strings.Builder
	for _, message := range history {
		conversationText.WriteString(fmt.Sprintf("%s: %s\n", message.Role, message.Content))
	}

	summaryPrompt := fmt.Sprintf(`Summarize the following study-session conversation concisely, focusing on:
- Concepts the student asked about
- Explanations already given
- Any topics that need follow-up

Conversation:
%s

Provide a clear, concise summary (max 500 words).`, conversationText.String())

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		genai.Text(summaryPrompt),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := result.Text()

	if sessionCache, exists := g.sessionCaches[sessionID]; exists {
		sessionCache.ConversationSummary = summary
		sessionCache.TurnCount = 0
		slog.Info("Updated session cache with summary", "session_id", sessionID, "summary_length", len(summary))
	}

	return nil
}

func (g *GeminiService) cleanupStaleCaches() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		g.cacheMutex.Lock()
		now := time.Now()
		for sessionID, cache := range g.sessionCaches {
			// Remove caches inactive for more than 2 hours
			if now.Sub(cache.LastActivity) > 2*time.Hour {
				delete(g.sessionCaches, sessionID)
				slog.Info("Cleaned up stale session cache", "session_id", sessionID)
			}
		}
		g.cacheMutex.Unlock()
	}
}

// ClearSessionCache removes a session cache (called when a chat is archived)
func (g *GeminiService) ClearSessionCache(sessionID string) {
	g.cacheMutex.Lock()
	defer g.cacheMutex.Unlock()

	delete(g.sessionCaches, sessionID)
	slog.Info("Cleared session cache", "session_id", sessionID)
}
