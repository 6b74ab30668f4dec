package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultEvaluationDifficulty is used when the request omits the grading
// strictness or puts it outside the scale.
const DefaultEvaluationDifficulty = 5

// NormalizeDifficulty keeps the grading strictness on the 1-10 scale the
// difficulty column enforces.
func NormalizeDifficulty(d int) int {
	if d < 1 || d > 10 {
		return DefaultEvaluationDifficulty
	}
	return d
}

// Evaluation is a graded answer sheet. The sheet images go through the
// vision model; DocumentID is set only when the sheet was also saved as a
// regular document.
type Evaluation struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          string         `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID      *string        `gorm:"type:uuid;index" json:"document_id,omitempty"`
	Subject         string         `gorm:"size:100" json:"subject"`
	Difficulty      int            `gorm:"default:5;check:difficulty BETWEEN 1 AND 10" json:"difficulty"`
	OverallScore    float64        `gorm:"default:0;check:overall_score >= 0 AND overall_score <= 100" json:"overall_score"`
	GeneralFeedback string         `gorm:"type:text" json:"general_feedback"`
	ModelUsed       string         `gorm:"size:100" json:"model_used"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User  User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []EvaluationItem `gorm:"foreignKey:EvaluationID" json:"items,omitempty"`
}

type EvaluationItem struct {
	ID              string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EvaluationID    string         `gorm:"type:uuid;not null;index" json:"evaluation_id"`
	QuestionText    string         `gorm:"type:text;not null" json:"question_text"`
	StudentAnswer   string         `gorm:"type:text" json:"student_answer"`
	IdealAnswer     string         `gorm:"type:text" json:"ideal_answer"`
	ScorePercentage float64        `gorm:"default:0;check:score_percentage >= 0 AND score_percentage <= 100" json:"score_percentage"`
	Feedback        string         `gorm:"type:text" json:"feedback"`
	Order           int            `gorm:"column:item_order;default:0" json:"order"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Evaluation Evaluation `gorm:"foreignKey:EvaluationID" json:"evaluation,omitempty"`
}
