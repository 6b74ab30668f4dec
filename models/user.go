package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Username  string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password (excluded from JSON)
	FirstName string         `gorm:"size:30" json:"first_name,omitempty"`
	LastName  string         `gorm:"size:30" json:"last_name,omitempty"`
	AvatarURL string         `gorm:"size:500" json:"avatar_url,omitempty"`
	Role      string         `gorm:"default:'user'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Profile       *UserProfile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Documents     []Document     `gorm:"foreignKey:UserID" json:"documents,omitempty"`
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"refresh_tokens,omitempty"`
}

// DisplayName prefers the first name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// XPPerLevel is the XP span of a single level; level = XP/XPPerLevel + 1.
const XPPerLevel = 1000

type UserProfile struct {
	ID               string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID           string         `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	XP               int            `gorm:"default:0;check:xp >= 0" json:"xp"`
	Level            int            `gorm:"default:1" json:"level"`
	CurrentStreak    int            `gorm:"default:0" json:"current_streak"`
	LongestStreak    int            `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time     `json:"last_activity_date,omitempty"`
	DocumentsCount   int            `gorm:"default:0" json:"documents_count"`
	QuizzesTaken     int            `gorm:"default:0" json:"quizzes_taken"`
	CardsReviewed    int            `gorm:"default:0" json:"cards_reviewed"`
	SummariesCount   int            `gorm:"default:0" json:"summaries_count"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// LevelForXP computes the level for a given XP total.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// AddXP adjusts the XP total (never below zero), recomputes the level and
// reports whether the user leveled up.
func (p *UserProfile) AddXP(points int) bool {
	p.XP += points
	if p.XP < 0 {
		p.XP = 0
	}
	newLevel := LevelForXP(p.XP)
	leveledUp := newLevel > p.Level
	p.Level = newLevel
	return leveledUp
}

// UpdateStreak advances the daily streak counters relative to now.
// Same-day activity is a no-op, consecutive days extend the streak and
// anything older resets it to 1. Days are compared as calendar dates in
// now's location, so DST-shortened days still count as a full day.
func (p *UserProfile) UpdateStreak(now time.Time) {
	today := truncateToDay(now)
	if p.LastActivityDate != nil {
		last := truncateToDay(p.LastActivityDate.In(now.Location()))
		switch {
		case !today.After(last):
			return
		case last.AddDate(0, 0, 1).Equal(today):
			p.CurrentStreak++
		default:
			p.CurrentStreak = 1
		}
	} else {
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastActivityDate = &today
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type RefreshToken struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string         `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type PermanentToken struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Token     string         `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
