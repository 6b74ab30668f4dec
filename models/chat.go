package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatSession struct {
	ID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     string         `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID string         `gorm:"type:uuid;not null;index" json:"document_id"`
	Title      string         `gorm:"size:255" json:"title"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Document Document      `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	Messages []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID   string         `gorm:"type:uuid;not null;index" json:"session_id"`
	Role        string         `gorm:"size:10;not null;check:role IN ('user', 'assistant')" json:"role"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	SourcesUsed bool           `gorm:"default:false" json:"sources_used"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session ChatSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

// ChatStats aggregates a user's chat activity for the analytics endpoint.
type ChatStats struct {
	TotalMessages int64      `json:"total_messages"`
	TotalSessions int64      `json:"total_sessions"`
	LastActivity  *time.Time `json:"last_activity"`
}
