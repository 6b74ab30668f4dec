package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
	"golang.org/x/crypto/bcrypt"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo *repository.GORMRepository
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

const seedDocumentText = `Spaced repetition is a learning technique that schedules reviews of material at increasing intervals. Information is reviewed just before it would be forgotten, which strengthens the memory trace each time. The forgetting curve, described by Hermann Ebbinghaus, shows that retention drops sharply within days of learning unless the material is revisited.

Active recall complements spaced repetition: instead of re-reading notes, the learner retrieves the answer from memory. Testing yourself with questions or flashcards produces stronger retention than passive review.

Combining both techniques - retrieving answers from memory on a spaced schedule - is among the most effective study strategies known.`

// SeedDatabase seeds the database with demo data (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	// Hash default password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	users := []models.User{
		{
			Email:     "admin@example.com",
			Username:  "admin",
			Password:  string(hashedPassword),
			FirstName: "Admin",
			LastName:  "User",
			Role:      "admin",
		},
		{
			Email:     "test@example.com",
			Username:  "testuser",
			Password:  string(hashedPassword),
			FirstName: "Test",
			LastName:  "User",
			Role:      "user",
		},
		{
			Email:     "demo@example.com",
			Username:  "demouser",
			Password:  string(hashedPassword),
			FirstName: "Demo",
			LastName:  "User",
			Role:      "user",
		},
	}

	// Seed users with profiles (idempotent)
	for _, user := range users {
		if err := s.seedUser(ctx, user); err != nil {
			slog.Error("Failed to seed user", "email", user.Email, "error", err)
		}
	}

	// Give the demo user a sample document with a summary
	demoUser, err := s.repo.GetUserByEmail(ctx, "demo@example.com")
	if err != nil {
		return fmt.Errorf("failed to get demo user: %w", err)
	}
	if demoUser == nil {
		return fmt.Errorf("demo user not found")
	}

	if err := s.seedSampleDocument(ctx, demoUser.ID); err != nil {
		slog.Error("Failed to seed sample document", "error", err)
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// seedUser seeds a single user with an empty profile (idempotent)
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) error {
	existingUser, err := s.repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", user.Email, err)
	}
	if existingUser != nil {
		slog.Info("User already exists, skipping", "email", user.Email)
		return nil
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	profile := models.UserProfile{UserID: user.ID, Level: 1}
	if err := s.repo.CreateProfile(ctx, &profile); err != nil {
		return fmt.Errorf("failed to create profile for %s: %w", user.Email, err)
	}

	slog.Info("Created user", "email", user.Email)
	return nil
}

// seedSampleDocument gives a user a ready-made document and summary so the
// app is explorable without uploading anything (idempotent)
func (s *DatabaseSeeder) seedSampleDocument(ctx context.Context, userID string) error {
	docs, err := s.repo.GetDocuments(ctx, userID)
	if err != nil {
		return fmt.Errorf("error checking documents: %w", err)
	}
	for _, d := range docs {
		if d.Title == "Study Techniques.md" {
			slog.Info("Sample document already exists, skipping")
			return nil
		}
	}

	doc := models.Document{
		UserID:        userID,
		Title:         "Study Techniques.md",
		FilePath:      "seed/study-techniques.md",
		FileType:      models.FileTypeMD,
		FileSize:      int64(len(seedDocumentText)),
		ExtractedText: seedDocumentText,
	}
	if err := s.repo.CreateDocument(ctx, &doc); err != nil {
		return fmt.Errorf("failed to create sample document: %w", err)
	}

	summary := models.Summary{
		DocumentID:  doc.ID,
		SummaryType: models.SummaryTypeBrief,
		Content: "Spaced repetition schedules reviews at growing intervals to counter " +
			"the forgetting curve, while active recall replaces re-reading with " +
			"retrieving answers from memory. Used together they form one of the " +
			"most effective known study strategies.",
		WordCount: 41,
		ModelUsed: ModelName,
	}
	if err := s.repo.CreateSummary(ctx, &summary); err != nil {
		return fmt.Errorf("failed to create sample summary: %w", err)
	}

	slog.Info("Created sample document", "document_id", doc.ID, "user_id", userID)
	return nil
}
