package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuizDifficultyEasy   = "easy"
	QuizDifficultyMedium = "medium"
	QuizDifficultyHard   = "hard"
)

type Quiz struct {
	ID            string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DocumentID    string         `gorm:"type:uuid;not null;index" json:"document_id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Difficulty    string         `gorm:"size:10;default:'medium';check:difficulty IN ('easy', 'medium', 'hard')" json:"difficulty"`
	QuestionCount int            `gorm:"default:0" json:"question_count"`
	ModelUsed     string         `gorm:"size:100" json:"model_used"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Document  Document       `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	Attempts  []QuizAttempt  `gorm:"foreignKey:QuizID" json:"attempts,omitempty"`
}

type QuizQuestion struct {
	ID            string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuizID        string         `gorm:"type:uuid;not null;index" json:"quiz_id"`
	QuestionText  string         `gorm:"type:text;not null" json:"question_text"`
	OptionA       string         `gorm:"type:text;not null" json:"option_a"`
	OptionB       string         `gorm:"type:text;not null" json:"option_b"`
	OptionC       string         `gorm:"type:text;not null" json:"option_c"`
	OptionD       string         `gorm:"type:text;not null" json:"option_d"`
	CorrectAnswer string         `gorm:"size:1;not null;check:correct_answer IN ('A', 'B', 'C', 'D')" json:"-"`
	Explanation   string         `gorm:"type:text" json:"-"`
	Order         int            `gorm:"column:question_order;default:0" json:"order"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Quiz Quiz `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
}

type QuizAttempt struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuizID         string         `gorm:"type:uuid;not null;index" json:"quiz_id"`
	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Score          int            `gorm:"default:0;check:score >= 0" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"total_questions"`
	Answers        string         `gorm:"type:jsonb" json:"answers"` // question id -> chosen letter
	CompletedAt    time.Time      `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Quiz Quiz `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Percentage returns the attempt score as 0-100.
func (a *QuizAttempt) Percentage() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalQuestions) * 100
}
