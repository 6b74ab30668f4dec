package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studywise/backend/models"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateSession opens a new chat session against a document
func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create chat session", "error", err, "document_id", session.DocumentID)
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	slog.Info("Chat session created", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

// GetSession retrieves a session scoped to its owner
func (r *ChatRepository) GetSession(ctx context.Context, sessionID, userID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get chat session", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &session, nil
}

// GetSessionsByUser lists a user's sessions, most recent first
func (r *ChatRepository) GetSessionsByUser(ctx context.Context, userID string) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get chat sessions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get chat sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSession persists title/active changes
func (r *ChatRepository) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		slog.Error("Failed to update chat session", "error", err, "session_id", session.ID)
		return fmt.Errorf("failed to update chat session: %w", err)
	}
	return nil
}

// SaveMessage saves a message to the database using GORM
func (r *ChatRepository) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("Failed to save chat message", "error", err, "message_id", message.ID)
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	// Session recency drives the session list ordering.
	if err := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("id = ?", message.SessionID).
		Update("updated_at", time.Now()).Error; err != nil {
		slog.Error("Failed to touch chat session", "error", err, "session_id", message.SessionID)
	}
	return nil
}

// GetSessionMessages retrieves all messages for a session in order
func (r *ChatRepository) GetSessionMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		slog.Error("Failed to get session messages", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get session messages: %w", err)
	}
	return messages, nil
}

// GetRecentMessages retrieves the last `limit` messages of a session,
// oldest first, for prompt history
func (r *ChatRepository) GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		slog.Error("Failed to get recent messages", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	// reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetActiveSessions lists sessions still marked active, for the cleaner
func (r *ChatRepository) GetActiveSessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get active sessions", "error", err)
		return nil, fmt.Errorf("failed to get active sessions: %w", err)
	}
	return sessions, nil
}

// GetChatStats returns chat activity statistics for a user
func (r *ChatRepository) GetChatStats(ctx context.Context, userID string) (*models.ChatStats, error) {
	var stats models.ChatStats

	ownedSessions := r.db.Model(&models.ChatSession{}).Select("id").Where("user_id = ?", userID)

	if err := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("session_id IN (?)", ownedSessions).
		Count(&stats.TotalMessages).Error; err != nil {
		slog.Error("Failed to count chat messages", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to count chat messages: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.ChatSession{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalSessions).Error; err != nil {
		slog.Error("Failed to count chat sessions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to count chat sessions: %w", err)
	}

	var lastMessage models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("session_id IN (?)", ownedSessions).
		Order("created_at DESC").
		First(&lastMessage).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			slog.Error("Failed to get last chat activity", "error", err, "user_id", userID)
			return nil, fmt.Errorf("failed to get last chat activity: %w", err)
		}
		// No messages yet, last activity stays nil
	} else {
		stats.LastActivity = &lastMessage.CreatedAt
	}

	return &stats, nil
}

// DeleteSessionMessages removes a session's messages (used on session delete)
func (r *ChatRepository) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.ChatMessage{}).Error; err != nil {
		slog.Error("Failed to delete session messages", "error", err, "session_id", sessionID)
		return fmt.Errorf("failed to delete session messages: %w", err)
	}
	return nil
}

// DeleteSession removes a session and its messages
func (r *ChatRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.DeleteSessionMessages(ctx, sessionID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&models.ChatSession{}).Error; err != nil {
		slog.Error("Failed to delete chat session", "error", err, "session_id", sessionID)
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	slog.Info("Chat session deleted", "session_id", sessionID)
	return nil
}
