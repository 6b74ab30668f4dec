package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
	ws "github.com/studywise/backend/websocket"
)

// ChatMessageProcessor drives the document chat over a WebSocket connection:
// it persists both sides of the exchange and streams the assistant reply
// back to the client.
type ChatMessageProcessor struct {
	chatRepo     *repository.ChatRepository
	chatbotAgent *ChatbotAgent
	vectorStore  *VectorStore
	gamification *GamificationService
}

func NewChatMessageProcessor(chatRepo *repository.ChatRepository, chatbotAgent *ChatbotAgent, vectorStore *VectorStore, gamification *GamificationService) *ChatMessageProcessor {
	return &ChatMessageProcessor{
		chatRepo:     chatRepo,
		chatbotAgent: chatbotAgent,
		vectorStore:  vectorStore,
		gamification: gamification,
	}
}

// sendMessage sends a message to the WebSocket client
func (p *ChatMessageProcessor) sendMessage(client *ws.Client, msg ws.Message) {
	msg.SessionID = client.SessionID

	messageBytes, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal message", "error", err, "session_id", client.SessionID)
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		slog.Warn("Failed to send message - client channel full", "session_id", client.SessionID)
	}
}

func (p *ChatMessageProcessor) sendError(client *ws.Client, message string) {
	p.sendMessage(client, ws.Message{Type: "error", Content: message})
}

// ProcessChatMessage handles one user turn: persist, retrieve, respond
func (p *ChatMessageProcessor) ProcessChatMessage(client *ws.Client, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	content = strings.TrimSpace(content)
	if content == "" {
		p.sendError(client, "Message cannot be empty")
		return
	}

	session, err := p.chatRepo.GetSession(ctx, client.SessionID, client.UserID)
	if err != nil || session == nil {
		slog.Error("Failed to load chat session", "error", err, "session_id", client.SessionID)
		p.sendError(client, "Chat session not found")
		return
	}

	history, err := p.chatRepo.GetRecentMessages(ctx, client.SessionID, historyWindow)
	if err != nil {
		slog.Error("Failed to load chat history", "error", err, "session_id", client.SessionID)
		history = nil
	}

	userMessage := models.ChatMessage{
		SessionID: client.SessionID,
		Role:      models.ChatRoleUser,
		Content:   content,
	}
	if err := p.chatRepo.SaveMessage(ctx, &userMessage); err != nil {
		slog.Error("Failed to save user message", "error", err, "session_id", client.SessionID)
		p.sendError(client, "Failed to save message")
		return
	}

	p.sendMessage(client, ws.Message{Type: "typing"})

	docContext, err := p.vectorStore.ContextForGeneration(ctx, session.DocumentID, content)
	if err != nil {
		slog.Warn("Context retrieval failed, answering without document context", "error", err, "session_id", client.SessionID)
		docContext = ""
	}

	reply, err := p.chatbotAgent.Respond(ctx, client.SessionID, docContext, history, content)
	if err != nil {
		slog.Error("Chat response failed", "error", err, "session_id", client.SessionID)
		p.sendError(client, "Failed to generate response")
		return
	}

	assistantMessage := models.ChatMessage{
		SessionID:   client.SessionID,
		Role:        models.ChatRoleAssistant,
		Content:     reply.Response,
		SourcesUsed: reply.SourcesUsed,
	}
	if err := p.chatRepo.SaveMessage(ctx, &assistantMessage); err != nil {
		slog.Error("Failed to save assistant message", "error", err, "session_id", client.SessionID)
	}

	if _, err := p.gamification.AwardXP(ctx, client.UserID, XPChatMessage); err != nil {
		slog.Warn("Failed to award chat XP", "error", err, "user_id", client.UserID)
	}

	p.sendMessage(client, ws.Message{
		Type:        "message",
		Content:     reply.Response,
		SourcesUsed: reply.SourcesUsed,
	})

	slog.Info("Chat turn completed", "session_id", client.SessionID, "sources_used", reply.SourcesUsed)
}
