package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

type FlashcardEndpoints struct {
	repo           *repository.GORMRepository
	flashcardAgent *FlashcardAgent
	gamification   *GamificationService
}

type GenerateFlashcardsRequest struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	CardCount  int    `json:"card_count"`
}

type ReviewCardRequest struct {
	Mastered bool `json:"mastered"`
}

func NewFlashcardEndpoints(repo *repository.GORMRepository, flashcardAgent *FlashcardAgent, gamification *GamificationService) *FlashcardEndpoints {
	return &FlashcardEndpoints{
		repo:           repo,
		flashcardAgent: flashcardAgent,
		gamification:   gamification,
	}
}

func (e *FlashcardEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/flashcards", func(r chi.Router) {
		r.Post("/", e.GenerateSetHandler)
		r.Get("/", e.GetSetsHandler)
		r.Get("/{id}", e.GetSetHandler)
		r.Post("/cards/{cardID}/review", e.ReviewCardHandler)
	})
}

func (e *FlashcardEndpoints) GenerateSetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req GenerateFlashcardsRequest
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
		slog.Error("Failed to get document for flashcards", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
		http.Error(w, "Failed to get document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if !doc.HasText() {
		http.Error(w, "Document has no extractable text", http.StatusBadRequest)
		return
	}

	result, err := e.flashcardAgent.Generate(r.Context(), doc.ExtractedText, req.CardCount)
	if err != nil {
		slog.Error("Flashcard generation failed", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
		http.Error(w, "Flashcard generation failed", http.StatusBadGateway)
		return
	}
	cards := result.Cards

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Flashcards: " + doc.Title
	}

	set := models.FlashcardSet{
		DocumentID: doc.ID,
		Title:      title,
		CardCount:  len(cards),
		ModelUsed:  ModelName,
	}

	flashcards := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		flashcards = append(flashcards, models.Flashcard{
			Front:    c.Front,
			Back:     c.Back,
			Priority: c.Priority,
			Order:    c.Order,
		})
	}

	if err := e.repo.CreateFlashcardSet(r.Context(), &set, flashcards); err != nil {
		slog.Error("Failed to save flashcard set", "error", err, "document_id", req.DocumentID)
		http.Error(w, "Failed to save flashcard set", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.AwardXP(r.Context(), user.ID, XPFlashcardSet)
	if err != nil {
		slog.Warn("Failed to award flashcard XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"set":     set,
		"xp":      award,
		"message": "Flashcard set generated successfully",
	})

	slog.Info("Flashcard set generated", "set_id", set.ID, "document_id", doc.ID, "cards", len(flashcards))
}

func (e *FlashcardEndpoints) GetSetsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sets, err := e.repo.GetFlashcardSetsByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get flashcard sets", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get flashcard sets", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sets":  sets,
		"count": len(sets),
	})
}

func (e *FlashcardEndpoints) GetSetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	setID := chi.URLParam(r, "id")
	set, err := e.repo.GetFlashcardSetByID(r.Context(), setID, user.ID)
	if err != nil {
		slog.Error("Failed to get flashcard set", "error", err, "set_id", setID, "user_id", user.ID)
		http.Error(w, "Failed to get flashcard set", http.StatusInternalServerError)
		return
	}
	if set == nil {
		http.Error(w, "Flashcard set not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"set": set,
	})
}

func (e *FlashcardEndpoints) ReviewCardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	cardID := chi.URLParam(r, "cardID")
	card, err := e.repo.GetFlashcardByID(r.Context(), cardID)
	if err != nil {
		slog.Error("Failed to get flashcard", "error", err, "card_id", cardID, "user_id", user.ID)
		http.Error(w, "Failed to get flashcard", http.StatusInternalServerError)
		return
	}
	if card == nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	// Verify the card's set belongs to the user
	set, err := e.repo.GetFlashcardSetByID(r.Context(), card.SetID, user.ID)
	if err != nil || set == nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	var req ReviewCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	card.MarkReviewed(time.Now().UTC())
	card.IsMastered = req.Mastered

	if err := e.repo.SaveFlashcard(r.Context(), card); err != nil {
		slog.Error("Failed to save flashcard review", "error", err, "card_id", cardID)
		http.Error(w, "Failed to save review", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.RecordCardReviewed(r.Context(), user.ID, req.Mastered)
	if err != nil {
		slog.Warn("Failed to award review XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"card": card,
		"xp":   award,
	})
}
