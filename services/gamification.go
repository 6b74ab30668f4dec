package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

// XP awarded per activity
const (
	XPDocumentUpload    = 25
	XPSummaryGenerated  = 15
	XPQuizGenerated     = 20
	XPQuizAttempt       = 10
	XPPerCorrectAnswer  = 2
	XPFlashcardSet      = 20
	XPFlashcardMastered = 5
	XPFlowchart         = 15
	XPPodcast           = 30
	XPEvaluation        = 25
	XPChatMessage       = 2
)

// XPAward reports the outcome of an XP grant
type XPAward struct {
	Points    int  `json:"points"`
	TotalXP   int  `json:"total_xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// GamificationService tracks XP, levels and study streaks on user profiles
type GamificationService struct {
	repository *repository.GORMRepository
}

func NewGamificationService(repo *repository.GORMRepository) *GamificationService {
	return &GamificationService{repository: repo}
}

// AwardXP grants points to the user, updates their streak and persists the
// profile. Returns the resulting totals.
func (s *GamificationService) AwardXP(ctx context.Context, userID string, points int) (*XPAward, error) {
	profile, err := s.repository.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		// Profiles are created at signup; recover for accounts that predate that
		profile = &models.UserProfile{UserID: userID, Level: 1}
		if err := s.repository.CreateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	leveledUp := profile.AddXP(points)
	profile.UpdateStreak(time.Now().UTC())

	if err := s.repository.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if leveledUp {
		slog.Info("User leveled up", "user_id", userID, "level", profile.Level)
	}

	return &XPAward{
		Points:    points,
		TotalXP:   profile.XP,
		Level:     profile.Level,
		LeveledUp: leveledUp,
	}, nil
}

// AwardQuizAttempt grants the attempt base plus a bonus per correct answer
func (s *GamificationService) AwardQuizAttempt(ctx context.Context, userID string, correctAnswers int) (*XPAward, error) {
	if correctAnswers < 0 {
		correctAnswers = 0
	}
	return s.AwardXP(ctx, userID, XPQuizAttempt+correctAnswers*XPPerCorrectAnswer)
}

// The Record* helpers bump the matching profile counter before awarding XP

func (s *GamificationService) RecordUpload(ctx context.Context, userID string) (*XPAward, error) {
	if err := s.bumpCounter(ctx, userID, func(p *models.UserProfile) { p.DocumentsCount++ }); err != nil {
		return nil, err
	}
	return s.AwardXP(ctx, userID, XPDocumentUpload)
}

func (s *GamificationService) RecordSummary(ctx context.Context, userID string) (*XPAward, error) {
	if err := s.bumpCounter(ctx, userID, func(p *models.UserProfile) { p.SummariesCount++ }); err != nil {
		return nil, err
	}
	return s.AwardXP(ctx, userID, XPSummaryGenerated)
}

func (s *GamificationService) RecordQuizCompleted(ctx context.Context, userID string, correctAnswers int) (*XPAward, error) {
	if err := s.bumpCounter(ctx, userID, func(p *models.UserProfile) { p.QuizzesTaken++ }); err != nil {
		return nil, err
	}
	return s.AwardQuizAttempt(ctx, userID, correctAnswers)
}

func (s *GamificationService) RecordCardReviewed(ctx context.Context, userID string, mastered bool) (*XPAward, error) {
	if err := s.bumpCounter(ctx, userID, func(p *models.UserProfile) { p.CardsReviewed++ }); err != nil {
		return nil, err
	}
	if !mastered {
		return s.AwardXP(ctx, userID, 0)
	}
	return s.AwardXP(ctx, userID, XPFlashcardMastered)
}

func (s *GamificationService) bumpCounter(ctx context.Context, userID string, bump func(*models.UserProfile)) error {
	profile, err := s.repository.GetProfileByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil
	}
	bump(profile)
	if err := s.repository.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
