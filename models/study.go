package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	FlowchartDetailSimple   = "simple"
	FlowchartDetailMedium   = "medium"
	FlowchartDetailDetailed = "detailed"
)

// NormalizeFlowchartDetail maps empty or unknown detail levels to medium so
// the stored value always satisfies the column check.
func NormalizeFlowchartDetail(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case FlowchartDetailSimple:
		return FlowchartDetailSimple
	case FlowchartDetailDetailed:
		return FlowchartDetailDetailed
	default:
		return FlowchartDetailMedium
	}
}

// Flowchart stores the generated graph as JSON node/edge arrays; rendering
// is a frontend concern.
type Flowchart struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DocumentID  string         `gorm:"type:uuid;not null;index" json:"document_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	DetailLevel string         `gorm:"size:10;default:'medium';check:detail_level IN ('simple', 'medium', 'detailed')" json:"detail_level"`
	Nodes       string         `gorm:"type:jsonb;not null" json:"nodes"`
	Edges       string         `gorm:"type:jsonb;not null" json:"edges"`
	ModelUsed   string         `gorm:"size:100" json:"model_used"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Document Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
}

const (
	PodcastLevelBeginner     = "beginner"
	PodcastLevelIntermediate = "intermediate"
	PodcastLevelAdvanced     = "advanced"
)

// NormalizePodcastLevel maps empty or unknown levels to beginner so the
// stored value always satisfies the column check.
func NormalizePodcastLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case PodcastLevelIntermediate:
		return PodcastLevelIntermediate
	case PodcastLevelAdvanced:
		return PodcastLevelAdvanced
	default:
		return PodcastLevelBeginner
	}
}

const (
	PodcastStatusPending   = "pending"
	PodcastStatusGenerated = "generated"
	PodcastStatusFailed    = "failed"
)

type Podcast struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DocumentID      string         `gorm:"type:uuid;not null;index" json:"document_id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Level           string         `gorm:"size:15;default:'intermediate';check:level IN ('beginner', 'intermediate', 'advanced')" json:"level"`
	Script          string         `gorm:"type:text" json:"script"`
	AudioPath       string         `gorm:"size:500" json:"-"`
	DurationSeconds float64        `gorm:"default:0" json:"duration_seconds"`
	WordCount       int            `gorm:"default:0" json:"word_count"`
	Status          string         `gorm:"size:15;default:'pending';check:status IN ('pending', 'generated', 'failed')" json:"status"`
	ModelUsed       string         `gorm:"size:100" json:"model_used"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Document Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
}

// HasAudio reports whether TTS synthesis completed for this podcast.
func (p *Podcast) HasAudio() bool {
	return p.Status == PodcastStatusGenerated && p.AudioPath != ""
}
