package models

import (
	"time"

	"gorm.io/gorm"
)

// Supported upload types. Image uploads are OCR'd through the vision model.
const (
	FileTypePDF   = "pdf"
	FileTypeDocx  = "docx"
	FileTypeText  = "txt"
	FileTypeMD    = "md"
	FileTypeImage = "image"
)

// MaxUploadSize caps uploads at 10 MB.
const MaxUploadSize = 10 << 20

type Document struct {
	ID            string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID        string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	FilePath      string         `gorm:"size:500;not null" json:"-"`
	FileType      string         `gorm:"size:10;not null;check:file_type IN ('pdf', 'docx', 'txt', 'md', 'image')" json:"file_type"`
	FileSize      int64          `gorm:"not null" json:"file_size"`
	ExtractedText string         `gorm:"type:text" json:"-"`
	PageCount     int            `gorm:"default:0" json:"page_count"`
	IsIndexed     bool           `gorm:"default:false" json:"is_indexed"`
	ChunkCount    int            `gorm:"default:0" json:"chunk_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User          User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Summaries     []Summary      `gorm:"foreignKey:DocumentID" json:"summaries,omitempty"`
	Quizzes       []Quiz         `gorm:"foreignKey:DocumentID" json:"quizzes,omitempty"`
	FlashcardSets []FlashcardSet `gorm:"foreignKey:DocumentID" json:"flashcard_sets,omitempty"`
	Flowcharts    []Flowchart    `gorm:"foreignKey:DocumentID" json:"flowcharts,omitempty"`
	Podcasts      []Podcast      `gorm:"foreignKey:DocumentID" json:"podcasts,omitempty"`
	ChatSessions  []ChatSession  `gorm:"foreignKey:DocumentID" json:"chat_sessions,omitempty"`
}

// HasText reports whether extraction produced usable content.
func (d *Document) HasText() bool {
	return len(d.ExtractedText) > 0
}

const (
	SummaryTypeBrief    = "brief"
	SummaryTypeDetailed = "detailed"
	SummaryTypeBullet   = "bullet"
)

type Summary struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DocumentID     string         `gorm:"type:uuid;not null;index" json:"document_id"`
	SummaryType    string         `gorm:"size:20;not null;check:summary_type IN ('brief', 'detailed', 'bullet')" json:"summary_type"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	WordCount      int            `gorm:"default:0" json:"word_count"`
	ModelUsed      string         `gorm:"size:100" json:"model_used"`
	GenerationTime float64        `gorm:"default:0" json:"generation_time"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Document Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
}
