package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/studywise/backend/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.RefreshToken{},
		&models.PermanentToken{},
		&models.Document{},
		&models.Summary{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.FlashcardSet{},
		&models.Flashcard{},
		&models.Flowchart{},
		&models.Podcast{},
		&models.Evaluation{},
		&models.EvaluationItem{},
		&models.ChatSession{},
		&models.ChatMessage{},
	)
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by username", "error", err, "username", username)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		slog.Error("Failed to update user", "error", err, "user_id", user.ID)
		return err
	}
	return nil
}

// Profile operations
func (r *GORMRepository) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		slog.Error("Failed to create profile", "error", err, "user_id", profile.UserID)
		return err
	}
	return nil
}

func (r *GORMRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get profile", "error", err, "user_id", userID)
		return nil, err
	}
	return &profile, nil
}

func (r *GORMRepository) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		slog.Error("Failed to save profile", "error", err, "user_id", profile.UserID)
		return err
	}
	return nil
}

// Token operations
func (r *GORMRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ? AND expires_at > ?", token, time.Now()).First(&refreshToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get refresh token", "error", err)
		return nil, err
	}
	return &refreshToken, nil
}

func (r *GORMRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete refresh token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) CreatePermanentToken(ctx context.Context, token *models.PermanentToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		slog.Error("Failed to create permanent token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) GetPermanentToken(ctx context.Context, token string) (*models.PermanentToken, error) {
	var permanentToken models.PermanentToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&permanentToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get permanent token", "error", err)
		return nil, err
	}
	return &permanentToken, nil
}

func (r *GORMRepository) DeletePermanentToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.PermanentToken{}).Error; err != nil {
		slog.Error("Failed to delete permanent token", "error", err)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteAllUserTokens(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		slog.Error("Failed to delete user refresh tokens", "error", err, "user_id", userID)
		return err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PermanentToken{}).Error; err != nil {
		slog.Error("Failed to delete user permanent tokens", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Document operations
func (r *GORMRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		slog.Error("Failed to create document", "error", err)
		return err
	}
	slog.Info("Document created", "document_id", doc.ID, "user_id", doc.UserID, "file_type", doc.FileType)
	return nil
}

func (r *GORMRepository) GetDocuments(ctx context.Context, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		slog.Error("Failed to get documents", "error", err, "user_id", userID)
		return nil, err
	}
	return docs, nil
}

// GetDocumentByID returns the document only when it belongs to the user.
func (r *GORMRepository) GetDocumentByID(ctx context.Context, documentID, userID string) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", documentID, userID).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get document by ID", "error", err, "document_id", documentID, "user_id", userID)
		return nil, err
	}
	return &doc, nil
}

func (r *GORMRepository) UpdateDocument(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		slog.Error("Failed to update document", "error", err, "document_id", doc.ID)
		return err
	}
	return nil
}

// MarkDocumentIndexed records the outcome of background chunk indexing
func (r *GORMRepository) MarkDocumentIndexed(ctx context.Context, documentID string, chunkCount int) error {
	err := r.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", documentID).
		Updates(map[string]interface{}{"is_indexed": true, "chunk_count": chunkCount}).Error
	if err != nil {
		slog.Error("Failed to mark document indexed", "error", err, "document_id", documentID)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteDocument(ctx context.Context, documentID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", documentID).Delete(&models.Document{}).Error; err != nil {
		slog.Error("Failed to delete document", "error", err, "document_id", documentID)
		return err
	}
	slog.Info("Document deleted", "document_id", documentID)
	return nil
}

// Summary operations
func (r *GORMRepository) CreateSummary(ctx context.Context, summary *models.Summary) error {
	if err := r.db.WithContext(ctx).Create(summary).Error; err != nil {
		slog.Error("Failed to create summary", "error", err)
		return err
	}
	slog.Info("Summary created", "summary_id", summary.ID, "document_id", summary.DocumentID, "type", summary.SummaryType)
	return nil
}

func (r *GORMRepository) GetSummariesByDocument(ctx context.Context, documentID string) ([]models.Summary, error) {
	var summaries []models.Summary
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&summaries).Error
	if err != nil {
		slog.Error("Failed to get summaries", "error", err, "document_id", documentID)
		return nil, err
	}
	return summaries, nil
}

// Quiz operations
func (r *GORMRepository) CreateQuizWithQuestions(ctx context.Context, quiz *models.Quiz, questions []models.QuizQuestion) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		return tx.Create(&questions).Error
	})
	if err != nil {
		slog.Error("Failed to create quiz", "error", err, "document_id", quiz.DocumentID)
		return err
	}
	slog.Info("Quiz created", "quiz_id", quiz.ID, "questions", len(questions))
	return nil
}

func (r *GORMRepository) GetQuizzesByUser(ctx context.Context, userID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = quizzes.document_id").
		Where("documents.user_id = ?", userID).
		Order("quizzes.created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		slog.Error("Failed to get quizzes", "error", err, "user_id", userID)
		return nil, err
	}
	return quizzes, nil
}

func (r *GORMRepository) GetQuizByID(ctx context.Context, quizID, userID string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = quizzes.document_id").
		Where("quizzes.id = ? AND documents.user_id = ?", quizID, userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		First(&quiz).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get quiz by ID", "error", err, "quiz_id", quizID, "user_id", userID)
		return nil, err
	}
	return &quiz, nil
}

func (r *GORMRepository) CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		slog.Error("Failed to create quiz attempt", "error", err, "quiz_id", attempt.QuizID)
		return err
	}
	slog.Info("Quiz attempt recorded", "attempt_id", attempt.ID, "quiz_id", attempt.QuizID, "score", attempt.Score)
	return nil
}

func (r *GORMRepository) GetQuizAttempts(ctx context.Context, quizID, userID string) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("created_at DESC").
		Find(&attempts).Error
	if err != nil {
		slog.Error("Failed to get quiz attempts", "error", err, "quiz_id", quizID, "user_id", userID)
		return nil, err
	}
	return attempts, nil
}

// Flashcard operations
func (r *GORMRepository) CreateFlashcardSet(ctx context.Context, set *models.FlashcardSet, cards []models.Flashcard) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(set).Error; err != nil {
			return err
		}
		for i := range cards {
			cards[i].SetID = set.ID
		}
		return tx.Create(&cards).Error
	})
	if err != nil {
		slog.Error("Failed to create flashcard set", "error", err, "document_id", set.DocumentID)
		return err
	}
	slog.Info("Flashcard set created", "set_id", set.ID, "cards", len(cards))
	return nil
}

func (r *GORMRepository) GetFlashcardSetsByUser(ctx context.Context, userID string) ([]models.FlashcardSet, error) {
	var sets []models.FlashcardSet
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = flashcard_sets.document_id").
		Where("documents.user_id = ?", userID).
		Order("flashcard_sets.created_at DESC").
		Find(&sets).Error
	if err != nil {
		slog.Error("Failed to get flashcard sets", "error", err, "user_id", userID)
		return nil, err
	}
	return sets, nil
}

func (r *GORMRepository) GetFlashcardSetByID(ctx context.Context, setID, userID string) (*models.FlashcardSet, error) {
	var set models.FlashcardSet
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = flashcard_sets.document_id").
		Where("flashcard_sets.id = ? AND documents.user_id = ?", setID, userID).
		Preload("Cards", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC, card_order ASC")
		}).
		First(&set).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get flashcard set", "error", err, "set_id", setID, "user_id", userID)
		return nil, err
	}
	return &set, nil
}

func (r *GORMRepository) GetFlashcardByID(ctx context.Context, cardID string) (*models.Flashcard, error) {
	var card models.Flashcard
	if err := r.db.WithContext(ctx).Where("id = ?", cardID).First(&card).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get flashcard", "error", err, "card_id", cardID)
		return nil, err
	}
	return &card, nil
}

func (r *GORMRepository) SaveFlashcard(ctx context.Context, card *models.Flashcard) error {
	if err := r.db.WithContext(ctx).Save(card).Error; err != nil {
		slog.Error("Failed to save flashcard", "error", err, "card_id", card.ID)
		return err
	}
	return nil
}

// Flowchart operations
func (r *GORMRepository) CreateFlowchart(ctx context.Context, flowchart *models.Flowchart) error {
	if err := r.db.WithContext(ctx).Create(flowchart).Error; err != nil {
		slog.Error("Failed to create flowchart", "error", err, "document_id", flowchart.DocumentID)
		return err
	}
	slog.Info("Flowchart created", "flowchart_id", flowchart.ID, "document_id", flowchart.DocumentID)
	return nil
}

func (r *GORMRepository) GetFlowchartsByUser(ctx context.Context, userID string) ([]models.Flowchart, error) {
	var flowcharts []models.Flowchart
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = flowcharts.document_id").
		Where("documents.user_id = ?", userID).
		Order("flowcharts.created_at DESC").
		Find(&flowcharts).Error
	if err != nil {
		slog.Error("Failed to get flowcharts", "error", err, "user_id", userID)
		return nil, err
	}
	return flowcharts, nil
}

func (r *GORMRepository) GetFlowchartByID(ctx context.Context, flowchartID, userID string) (*models.Flowchart, error) {
	var flowchart models.Flowchart
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = flowcharts.document_id").
		Where("flowcharts.id = ? AND documents.user_id = ?", flowchartID, userID).
		First(&flowchart).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get flowchart", "error", err, "flowchart_id", flowchartID, "user_id", userID)
		return nil, err
	}
	return &flowchart, nil
}

// Podcast operations
func (r *GORMRepository) CreatePodcast(ctx context.Context, podcast *models.Podcast) error {
	if err := r.db.WithContext(ctx).Create(podcast).Error; err != nil {
		slog.Error("Failed to create podcast", "error", err, "document_id", podcast.DocumentID)
		return err
	}
	slog.Info("Podcast created", "podcast_id", podcast.ID, "level", podcast.Level)
	return nil
}

func (r *GORMRepository) GetPodcastsByUser(ctx context.Context, userID string) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = podcasts.document_id").
		Where("documents.user_id = ?", userID).
		Order("podcasts.created_at DESC").
		Find(&podcasts).Error
	if err != nil {
		slog.Error("Failed to get podcasts", "error", err, "user_id", userID)
		return nil, err
	}
	return podcasts, nil
}

func (r *GORMRepository) GetPodcastByID(ctx context.Context, podcastID, userID string) (*models.Podcast, error) {
	var podcast models.Podcast
	err := r.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = podcasts.document_id").
		Where("podcasts.id = ? AND documents.user_id = ?", podcastID, userID).
		First(&podcast).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get podcast", "error", err, "podcast_id", podcastID, "user_id", userID)
		return nil, err
	}
	return &podcast, nil
}

func (r *GORMRepository) UpdatePodcast(ctx context.Context, podcast *models.Podcast) error {
	if err := r.db.WithContext(ctx).Save(podcast).Error; err != nil {
		slog.Error("Failed to update podcast", "error", err, "podcast_id", podcast.ID)
		return err
	}
	return nil
}

// Evaluation operations
func (r *GORMRepository) CreateEvaluationWithItems(ctx context.Context, evaluation *models.Evaluation, items []models.EvaluationItem) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evaluation).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].EvaluationID = evaluation.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		slog.Error("Failed to create evaluation", "error", err, "user_id", evaluation.UserID)
		return err
	}
	slog.Info("Evaluation created", "evaluation_id", evaluation.ID, "overall_score", evaluation.OverallScore)
	return nil
}

func (r *GORMRepository) GetEvaluationsByUser(ctx context.Context, userID string) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&evaluations).Error
	if err != nil {
		slog.Error("Failed to get evaluations", "error", err, "user_id", userID)
		return nil, err
	}
	return evaluations, nil
}

func (r *GORMRepository) GetEvaluationByID(ctx context.Context, evaluationID, userID string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", evaluationID, userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		}).
		First(&evaluation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get evaluation", "error", err, "evaluation_id", evaluationID, "user_id", userID)
		return nil, err
	}
	return &evaluation, nil
}

// ArtifactCounts aggregates per-type artifact totals for the analytics endpoint.
type ArtifactCounts struct {
	Documents   int64 `json:"documents"`
	Summaries   int64 `json:"summaries"`
	Quizzes     int64 `json:"quizzes"`
	Flashcards  int64 `json:"flashcard_sets"`
	Flowcharts  int64 `json:"flowcharts"`
	Podcasts    int64 `json:"podcasts"`
	Evaluations int64 `json:"evaluations"`
}

func (r *GORMRepository) GetArtifactCounts(ctx context.Context, userID string) (*ArtifactCounts, error) {
	var counts ArtifactCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Document{}).Where("user_id = ?", userID).Count(&counts.Documents).Error; err != nil {
		slog.Error("Failed to count documents", "error", err, "user_id", userID)
		return nil, err
	}

	ownedDocs := db.Model(&models.Document{}).Select("id").Where("user_id = ?", userID)
	if err := db.Model(&models.Summary{}).Where("document_id IN (?)", ownedDocs).Count(&counts.Summaries).Error; err != nil {
		slog.Error("Failed to count summaries", "error", err, "user_id", userID)
		return nil, err
	}
	if err := db.Model(&models.Quiz{}).Where("document_id IN (?)", ownedDocs).Count(&counts.Quizzes).Error; err != nil {
		slog.Error("Failed to count quizzes", "error", err, "user_id", userID)
		return nil, err
	}
	if err := db.Model(&models.FlashcardSet{}).Where("document_id IN (?)", ownedDocs).Count(&counts.Flashcards).Error; err != nil {
		slog.Error("Failed to count flashcard sets", "error", err, "user_id", userID)
		return nil, err
	}
	if err := db.Model(&models.Flowchart{}).Where("document_id IN (?)", ownedDocs).Count(&counts.Flowcharts).Error; err != nil {
		slog.Error("Failed to count flowcharts", "error", err, "user_id", userID)
		return nil, err
	}
	if err := db.Model(&models.Podcast{}).Where("document_id IN (?)", ownedDocs).Count(&counts.Podcasts).Error; err != nil {
		slog.Error("Failed to count podcasts", "error", err, "user_id", userID)
		return nil, err
	}
	if err := db.Model(&models.Evaluation{}).Where("user_id = ?", userID).Count(&counts.Evaluations).Error; err != nil {
		slog.Error("Failed to count evaluations", "error", err, "user_id", userID)
		return nil, err
	}

	return &counts, nil
}
