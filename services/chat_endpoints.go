package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

// historyWindow is how many prior messages are replayed to the model per turn
const historyWindow = 10

type ChatEndpoints struct {
	repo         *repository.GORMRepository
	chatRepo     *repository.ChatRepository
	chatbotAgent *ChatbotAgent
	vectorStore  *VectorStore
	gemini       *GeminiService
	gamification *GamificationService
}

type CreateChatSessionRequest struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

func NewChatEndpoints(repo *repository.GORMRepository, chatRepo *repository.ChatRepository, chatbotAgent *ChatbotAgent, vectorStore *VectorStore, gemini *GeminiService, gamification *GamificationService) *ChatEndpoints {
	return &ChatEndpoints{
		repo:         repo,
		chatRepo:     chatRepo,
		chatbotAgent: chatbotAgent,
		vectorStore:  vectorStore,
		gemini:       gemini,
		gamification: gamification,
	}
}

func (e *ChatEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/sessions", e.CreateSessionHandler)
		r.Get("/sessions", e.GetSessionsHandler)
		r.Get("/sessions/{id}", e.GetSessionHandler)
		r.Delete("/sessions/{id}", e.DeleteSessionHandler)
		r.Post("/sessions/{id}/messages", e.SendMessageHandler)
		r.Get("/stats", e.GetStatsHandler)
	})
}

func (e *ChatEndpoints) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreateChatSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		http.Error(w, "document_id is required", http.StatusBadRequest)
		return
	}

	doc, err := e.repo.GetDocumentByID(r.Context(), req.DocumentID, user.ID)
	if err != nil {
		slog.Error("Failed to get document for chat", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
		http.Error(w, "Failed to get document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Chat: " + doc.Title
	}

	session := models.ChatSession{
		UserID:     user.ID,
		DocumentID: doc.ID,
		Title:      title,
		IsActive:   true,
	}

	if err := e.chatRepo.CreateSession(r.Context(), &session); err != nil {
		slog.Error("Failed to create chat session", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session": session,
		"message": "Chat session created successfully",
	})

	slog.Info("Chat session created", "session_id", session.ID, "document_id", doc.ID, "user_id", user.ID)
}

func (e *ChatEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessions, err := e.chatRepo.GetSessionsByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get chat sessions", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (e *ChatEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.chatRepo.GetSession(r.Context(), sessionID, user.ID)
	if err != nil {
		slog.Error("Failed to get chat session", "error", err, "session_id", sessionID, "user_id", user.ID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	messages, err := e.chatRepo.GetSessionMessages(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to get session messages", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to get messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session":  session,
		"messages": messages,
		"count":    len(messages),
	})
}

func (e *ChatEndpoints) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.chatRepo.GetSession(r.Context(), sessionID, user.ID)
	if err != nil {
		slog.Error("Failed to get chat session for deletion", "error", err, "session_id", sessionID, "user_id", user.ID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := e.chatRepo.DeleteSessionMessages(r.Context(), sessionID); err != nil {
		slog.Error("Failed to delete session messages", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	if err := e.chatRepo.DeleteSession(r.Context(), sessionID); err != nil {
		slog.Error("Failed to delete chat session", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}

	e.gemini.ClearSessionCache(sessionID)

	w.WriteHeader(http.StatusNoContent)
	slog.Info("Chat session deleted", "session_id", sessionID, "user_id", user.ID)
}

func (e *ChatEndpoints) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := e.chatRepo.GetSession(r.Context(), sessionID, user.ID)
	if err != nil {
		slog.Error("Failed to get chat session", "error", err, "session_id", sessionID, "user_id", user.ID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	history, err := e.chatRepo.GetRecentMessages(r.Context(), sessionID, historyWindow)
	if err != nil {
		slog.Error("Failed to get chat history", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	userMessage := models.ChatMessage{
		SessionID: sessionID,
		Role:      models.ChatRoleUser,
		Content:   message,
	}
	if err := e.chatRepo.SaveMessage(r.Context(), &userMessage); err != nil {
		slog.Error("Failed to save user message", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	docContext, err := e.vectorStore.ContextForGeneration(r.Context(), session.DocumentID, message)
	if err != nil {
		slog.Warn("Context retrieval failed, answering without document context", "error", err, "session_id", sessionID)
		docContext = ""
	}

	reply, err := e.chatbotAgent.Respond(r.Context(), sessionID, docContext, history, message)
	if err != nil {
		slog.Error("Chat response failed", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to generate response", http.StatusBadGateway)
		return
	}

	assistantMessage := models.ChatMessage{
		SessionID:   sessionID,
		Role:        models.ChatRoleAssistant,
		Content:     reply.Response,
		SourcesUsed: reply.SourcesUsed,
	}
	if err := e.chatRepo.SaveMessage(r.Context(), &assistantMessage); err != nil {
		slog.Error("Failed to save assistant message", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to save response", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.AwardXP(r.Context(), user.ID, XPChatMessage)
	if err != nil {
		slog.Warn("Failed to award chat XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      assistantMessage,
		"sources_used": reply.SourcesUsed,
		"xp":           award,
	})
}

func (e *ChatEndpoints) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	stats, err := e.chatRepo.GetChatStats(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get chat stats", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stats": stats,
	})
}
