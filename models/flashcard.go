package models

import (
	"time"

	"gorm.io/gorm"
)

type FlashcardSet struct {
	ID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DocumentID string         `gorm:"type:uuid;not null;index" json:"document_id"`
	Title      string         `gorm:"size:255;not null" json:"title"`
	CardCount  int            `gorm:"default:0" json:"card_count"`
	ModelUsed  string         `gorm:"size:100" json:"model_used"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Document Document    `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	Cards    []Flashcard `gorm:"foreignKey:SetID" json:"cards,omitempty"`
}

type Flashcard struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SetID          string         `gorm:"type:uuid;not null;index" json:"set_id"`
	Front          string         `gorm:"type:text;not null" json:"front"`
	Back           string         `gorm:"type:text;not null" json:"back"`
	Priority       int            `gorm:"default:3;check:priority BETWEEN 1 AND 5" json:"priority"`
	Order          int            `gorm:"column:card_order;default:0" json:"order"`
	IsMastered     bool           `gorm:"default:false" json:"is_mastered"`
	TimesReviewed  int            `gorm:"default:0" json:"times_reviewed"`
	LastReviewedAt *time.Time     `json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Set FlashcardSet `gorm:"foreignKey:SetID" json:"set,omitempty"`
}

// MarkReviewed bumps the review counter and timestamp.
func (c *Flashcard) MarkReviewed(now time.Time) {
	c.TimesReviewed++
	c.LastReviewedAt = &now
}
