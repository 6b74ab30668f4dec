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

type ProfileEndpoints struct {
	repo     *repository.GORMRepository
	chatRepo *repository.ChatRepository
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

func NewProfileEndpoints(repo *repository.GORMRepository, chatRepo *repository.ChatRepository) *ProfileEndpoints {
	return &ProfileEndpoints{repo: repo, chatRepo: chatRepo}
}

func (e *ProfileEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", e.GetProfileHandler)
		r.Put("/", e.UpdateProfileHandler)
		r.Get("/analytics", e.GetAnalyticsHandler)
	})
}

func (e *ProfileEndpoints) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	profile, err := e.repo.GetProfileByUserID(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get profile", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    user,
		"profile": profile,
	})
}

func (e *ProfileEndpoints) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	if err := e.repo.UpdateUser(r.Context(), user); err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":    user,
		"message": "Profile updated successfully",
	})

	slog.Info("Profile updated", "user_id", user.ID)
}

func (e *ProfileEndpoints) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	profile, err := e.repo.GetProfileByUserID(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get profile for analytics", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get analytics", http.StatusInternalServerError)
		return
	}

	counts, err := e.repo.GetArtifactCounts(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get artifact counts", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get analytics", http.StatusInternalServerError)
		return
	}

	chatStats, err := e.chatRepo.GetChatStats(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get chat stats for analytics", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profile":    profile,
		"artifacts":  counts,
		"chat_stats": chatStats,
	})
}
