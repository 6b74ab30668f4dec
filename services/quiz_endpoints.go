package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

type QuizEndpoints struct {
	repo         *repository.GORMRepository
	quizAgent    *QuizAgent
	gamification *GamificationService
}

type GenerateQuizRequest struct {
	DocumentID    string `json:"document_id"`
	Title         string `json:"title"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count"`
}

type SubmitAttemptRequest struct {
	Answers map[string]string `json:"answers"` // question id -> chosen letter
}

// quizQuestionView hides the correct answer and explanation while a quiz is
// being taken
type quizQuestionView struct {
	ID           string `json:"id"`
	QuestionText string `json:"question_text"`
	OptionA      string `json:"option_a"`
	OptionB      string `json:"option_b"`
	OptionC      string `json:"option_c"`
	OptionD      string `json:"option_d"`
	Order        int    `json:"order"`
}

type questionResult struct {
	QuestionID    string `json:"question_id"`
	ChosenAnswer  string `json:"chosen_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation"`
}

func NewQuizEndpoints(repo *repository.GORMRepository, quizAgent *QuizAgent, gamification *GamificationService) *QuizEndpoints {
	return &QuizEndpoints{
		repo:         repo,
		quizAgent:    quizAgent,
		gamification: gamification,
	}
}

func (e *QuizEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/quizzes", func(r chi.Router) {
		r.Post("/", e.GenerateQuizHandler)
		r.Get("/", e.GetQuizzesHandler)
		r.Get("/{id}", e.GetQuizHandler)
		r.Post("/{id}/attempts", e.SubmitAttemptHandler)
		r.Get("/{id}/attempts", e.GetAttemptsHandler)
	})
}

func (e *QuizEndpoints) GenerateQuizHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		http.Error(w, "document_id is required", http.StatusBadRequest)
		return
	}

	doc, err := e.repo.GetDocumentByID(r.Context(), req.DocumentID, user.ID)
	if err != nil {
		slog.Error("Failed to get document for quiz", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
		http.Error(w, "Failed to get document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}
	if !doc.HasText() {
		http.Error(w, "Document has no extractable text", http.StatusBadRequest)
		return
	}

	result, err := e.quizAgent.Generate(r.Context(), doc.ExtractedText, req.Difficulty, req.QuestionCount)
	if err != nil {
		slog.Error("Quiz generation failed", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
		http.Error(w, "Quiz generation failed", http.StatusBadGateway)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Quiz: " + doc.Title
	}

	quiz := models.Quiz{
		DocumentID:    doc.ID,
		Title:         title,
		Difficulty:    result.Difficulty,
		QuestionCount: len(result.Questions),
		ModelUsed:     ModelName,
	}

	questions := make([]models.QuizQuestion, 0, len(result.Questions))
	for _, q := range result.Questions {
		questions = append(questions, models.QuizQuestion{
			QuestionText:  q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Order:         q.Order,
		})
	}

	if err := e.repo.CreateQuizWithQuestions(r.Context(), &quiz, questions); err != nil {
		slog.Error("Failed to save quiz", "error", err, "document_id", req.DocumentID)
		http.Error(w, "Failed to save quiz", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.AwardXP(r.Context(), user.ID, XPQuizGenerated)
	if err != nil {
		slog.Warn("Failed to award quiz XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"quiz":    quiz,
		"xp":      award,
		"message": "Quiz generated successfully",
	})

	slog.Info("Quiz generated", "quiz_id", quiz.ID, "document_id", doc.ID, "questions", len(questions), "difficulty", quiz.Difficulty)
}

func (e *QuizEndpoints) GetQuizzesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	quizzes, err := e.repo.GetQuizzesByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get quizzes", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get quizzes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"quizzes": quizzes,
		"count":   len(quizzes),
	})
}

func (e *QuizEndpoints) GetQuizHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	quizID := chi.URLParam(r, "id")
	quiz, err := e.repo.GetQuizByID(r.Context(), quizID, user.ID)
	if err != nil {
		slog.Error("Failed to get quiz", "error", err, "quiz_id", quizID, "user_id", user.ID)
		http.Error(w, "Failed to get quiz", http.StatusInternalServerError)
		return
	}
	if quiz == nil {
		http.Error(w, "Quiz not found", http.StatusNotFound)
		return
	}

	// Answers stay server-side until the attempt is graded
	views := make([]quizQuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		views = append(views, quizQuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
			Order:        q.Order,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"quiz": map[string]interface{}{
			"id":             quiz.ID,
			"document_id":    quiz.DocumentID,
			"title":          quiz.Title,
			"difficulty":     quiz.Difficulty,
			"question_count": quiz.QuestionCount,
			"created_at":     quiz.CreatedAt,
			"questions":      views,
		},
	})
}

func (e *QuizEndpoints) SubmitAttemptHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	quizID := chi.URLParam(r, "id")
	quiz, err := e.repo.GetQuizByID(r.Context(), quizID, user.ID)
	if err != nil {
		slog.Error("Failed to get quiz for attempt", "error", err, "quiz_id", quizID, "user_id", user.ID)
		http.Error(w, "Failed to get quiz", http.StatusInternalServerError)
		return
	}
	if quiz == nil {
		http.Error(w, "Quiz not found", http.StatusNotFound)
		return
	}

	var req SubmitAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Answers) == 0 {
		http.Error(w, "No answers submitted", http.StatusBadRequest)
		return
	}

	// Grade server-side against the stored correct answers
	score := 0
	results := make([]questionResult, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		chosen := strings.ToUpper(strings.TrimSpace(req.Answers[q.ID]))
		correct := chosen == q.CorrectAnswer
		if correct {
			score++
		}
		results = append(results, questionResult{
			QuestionID:    q.ID,
			ChosenAnswer:  chosen,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
			Explanation:   q.Explanation,
		})
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		http.Error(w, "Invalid answers", http.StatusBadRequest)
		return
	}

	attempt := models.QuizAttempt{
		QuizID:         quiz.ID,
		UserID:         user.ID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Answers:        string(answersJSON),
		CompletedAt:    time.Now().UTC(),
	}

	if err := e.repo.CreateQuizAttempt(r.Context(), &attempt); err != nil {
		slog.Error("Failed to save quiz attempt", "error", err, "quiz_id", quizID, "user_id", user.ID)
		http.Error(w, "Failed to save attempt", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.RecordQuizCompleted(r.Context(), user.ID, score)
	if err != nil {
		slog.Warn("Failed to award attempt XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"attempt":    attempt,
		"percentage": attempt.Percentage(),
		"results":    results,
		"xp":         award,
	})

	slog.Info("Quiz attempt submitted", "quiz_id", quizID, "user_id", user.ID, "score", score, "total", len(quiz.Questions))
}

func (e *QuizEndpoints) GetAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	quizID := chi.URLParam(r, "id")
	attempts, err := e.repo.GetQuizAttempts(r.Context(), quizID, user.ID)
	if err != nil {
		slog.Error("Failed to get quiz attempts", "error", err, "quiz_id", quizID, "user_id", user.ID)
		http.Error(w, "Failed to get attempts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
