package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

// StudyEndpoints serves flowcharts, podcasts and answer-sheet evaluations
type StudyEndpoints struct {
	repo            *repository.GORMRepository
	flowchartAgent  *FlowchartAgent
	podcastAgent    *PodcastAgent
	evaluationAgent *EvaluationAgent
	podcastAudio    *PodcastAudioService
	gamification    *GamificationService
}

type GenerateFlowchartRequest struct {
	DocumentID  string `json:"document_id"`
	DetailLevel string `json:"detail_level"`
}

type GeneratePodcastRequest struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Level      string `json:"level"`
}

func NewStudyEndpoints(repo *repository.GORMRepository, flowchartAgent *FlowchartAgent, podcastAgent *PodcastAgent, evaluationAgent *EvaluationAgent, podcastAudio *PodcastAudioService, gamification *GamificationService) *StudyEndpoints {
	return &StudyEndpoints{
		repo:            repo,
		flowchartAgent:  flowchartAgent,
		podcastAgent:    podcastAgent,
		evaluationAgent: evaluationAgent,
		podcastAudio:    podcastAudio,
		gamification:    gamification,
	}
}

func (e *StudyEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/flowcharts", func(r chi.Router) {
		r.Post("/", e.GenerateFlowchartHandler)
		r.Get("/", e.GetFlowchartsHandler)
		r.Get("/{id}", e.GetFlowchartHandler)
	})

	r.Route("/podcasts", func(r chi.Router) {
		r.Post("/", e.GeneratePodcastHandler)
		r.Get("/", e.GetPodcastsHandler)
		r.Get("/{id}", e.GetPodcastHandler)
		r.Get("/{id}/audio", e.GetPodcastAudioHandler)
	})

	r.Route("/evaluations", func(r chi.Router) {
		r.Post("/", e.CreateEvaluationHandler)
		r.Get("/", e.GetEvaluationsHandler)
		r.Get("/{id}", e.GetEvaluationHandler)
	})
}

func (e *StudyEndpoints) GenerateFlowchartHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req GenerateFlowchartRequest
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
		slog.Error("Failed to get document for flowchart", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
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

	detailLevel := models.NormalizeFlowchartDetail(req.DetailLevel)
	result, err := e.flowchartAgent.Generate(r.Context(), doc.ExtractedText, detailLevel)
	if err != nil {
		slog.Error("Flowchart generation failed", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
		http.Error(w, "Flowchart generation failed", http.StatusBadGateway)
		return
	}

	saved := make([]models.Flowchart, 0, len(result.Flowcharts))
	for _, fc := range result.Flowcharts {
		nodesJSON, err := json.Marshal(fc.Nodes)
		if err != nil {
			continue
		}
		edgesJSON, err := json.Marshal(fc.Edges)
		if err != nil {
			continue
		}

		flowchart := models.Flowchart{
			DocumentID:  doc.ID,
			Title:       fc.Title,
			Description: fc.Description,
			DetailLevel: detailLevel,
			Nodes:       string(nodesJSON),
			Edges:       string(edgesJSON),
			ModelUsed:   ModelName,
		}

		if err := e.repo.CreateFlowchart(r.Context(), &flowchart); err != nil {
			slog.Error("Failed to save flowchart", "error", err, "document_id", doc.ID)
			continue
		}
		saved = append(saved, flowchart)
	}
	if len(saved) == 0 {
		http.Error(w, "Failed to save flowcharts", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.AwardXP(r.Context(), user.ID, XPFlowchart)
	if err != nil {
		slog.Warn("Failed to award flowchart XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"flowcharts": saved,
		"count":      len(saved),
		"xp":         award,
		"message":    "Flowcharts generated successfully",
	})

	slog.Info("Flowcharts generated", "document_id", doc.ID, "count", len(saved), "user_id", user.ID)
}

func (e *StudyEndpoints) GetFlowchartsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	flowcharts, err := e.repo.GetFlowchartsByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get flowcharts", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get flowcharts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"flowcharts": flowcharts,
		"count":      len(flowcharts),
	})
}

func (e *StudyEndpoints) GetFlowchartHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	flowchartID := chi.URLParam(r, "id")
	flowchart, err := e.repo.GetFlowchartByID(r.Context(), flowchartID, user.ID)
	if err != nil {
		slog.Error("Failed to get flowchart", "error", err, "flowchart_id", flowchartID, "user_id", user.ID)
		http.Error(w, "Failed to get flowchart", http.StatusInternalServerError)
		return
	}
	if flowchart == nil {
		http.Error(w, "Flowchart not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"flowchart": flowchart,
	})
}

func (e *StudyEndpoints) GeneratePodcastHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req GeneratePodcastRequest
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
		slog.Error("Failed to get document for podcast", "error", err, "document_id", req.DocumentID, "user_id", user.ID)
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

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Podcast: " + doc.Title
	}

	podcast := models.Podcast{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Title:      title,
		Level:      models.NormalizePodcastLevel(req.Level),
		Status:     models.PodcastStatusPending,
		ModelUsed:  ModelName,
	}

	if err := e.repo.CreatePodcast(r.Context(), &podcast); err != nil {
		slog.Error("Failed to create podcast", "error", err, "document_id", doc.ID)
		http.Error(w, "Failed to create podcast", http.StatusInternalServerError)
		return
	}

	// Script and audio generation take minutes; run in the background and
	// let the client poll the status
	go e.generatePodcast(podcast.ID, user.ID, doc.ExtractedText, podcast.Level)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"podcast": podcast,
		"message": "Podcast generation started. Poll the podcast status for completion.",
	})

	slog.Info("Podcast generation started", "podcast_id", podcast.ID, "document_id", doc.ID, "level", podcast.Level)
}

func (e *StudyEndpoints) generatePodcast(podcastID, userID, content, level string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	podcast, err := e.repo.GetPodcastByID(ctx, podcastID, userID)
	if err != nil || podcast == nil {
		slog.Error("Failed to reload podcast for generation", "error", err, "podcast_id", podcastID)
		return
	}

	fail := func(stage string, err error) {
		slog.Error("Podcast generation failed", "stage", stage, "error", err, "podcast_id", podcastID)
		podcast.Status = models.PodcastStatusFailed
		if err := e.repo.UpdatePodcast(ctx, podcast); err != nil {
			slog.Error("Failed to mark podcast failed", "error", err, "podcast_id", podcastID)
		}
	}

	script, err := e.podcastAgent.Generate(ctx, content, level)
	if err != nil {
		fail("script", err)
		return
	}

	podcast.Script = script.Script
	podcast.WordCount = script.WordCount

	audioPath, duration, err := e.synthesizeAudio(ctx, podcastID, script.Segments)
	if err != nil {
		// Keep the script even when TTS fails so the user can read it
		fail("audio", err)
		return
	}

	podcast.AudioPath = audioPath
	podcast.DurationSeconds = float64(duration)
	podcast.Status = models.PodcastStatusGenerated

	if err := e.repo.UpdatePodcast(ctx, podcast); err != nil {
		slog.Error("Failed to save generated podcast", "error", err, "podcast_id", podcastID)
		return
	}

	if _, err := e.gamification.AwardXP(ctx, userID, XPPodcast); err != nil {
		slog.Warn("Failed to award podcast XP", "error", err, "user_id", userID)
	}

	slog.Info("Podcast generated", "podcast_id", podcastID, "words", script.WordCount, "duration_seconds", duration)
}

// synthesizeAudio runs TTS when a synthesizer is configured. Without one the
// podcast degrades to script-only and still completes.
func (e *StudyEndpoints) synthesizeAudio(ctx context.Context, podcastID string, segments []PodcastSegment) (string, int, error) {
	if e.podcastAudio == nil {
		slog.Info("TTS not configured, keeping script-only podcast", "podcast_id", podcastID)
		return "", 0, nil
	}
	return e.podcastAudio.Synthesize(ctx, podcastID, segments)
}

func (e *StudyEndpoints) GetPodcastsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	podcasts, err := e.repo.GetPodcastsByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get podcasts", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get podcasts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"podcasts": podcasts,
		"count":    len(podcasts),
	})
}

func (e *StudyEndpoints) GetPodcastHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	podcastID := chi.URLParam(r, "id")
	podcast, err := e.repo.GetPodcastByID(r.Context(), podcastID, user.ID)
	if err != nil {
		slog.Error("Failed to get podcast", "error", err, "podcast_id", podcastID, "user_id", user.ID)
		http.Error(w, "Failed to get podcast", http.StatusInternalServerError)
		return
	}
	if podcast == nil {
		http.Error(w, "Podcast not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"podcast":   podcast,
		"has_audio": podcast.HasAudio(),
	})
}

func (e *StudyEndpoints) GetPodcastAudioHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	podcastID := chi.URLParam(r, "id")
	podcast, err := e.repo.GetPodcastByID(r.Context(), podcastID, user.ID)
	if err != nil {
		slog.Error("Failed to get podcast audio", "error", err, "podcast_id", podcastID, "user_id", user.ID)
		http.Error(w, "Failed to get podcast", http.StatusInternalServerError)
		return
	}
	if podcast == nil {
		http.Error(w, "Podcast not found", http.StatusNotFound)
		return
	}
	if !podcast.HasAudio() {
		http.Error(w, "Audio not available yet", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, podcast.AudioPath)
}

func (e *StudyEndpoints) CreateEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(models.MaxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		http.Error(w, "At least one answer sheet image is required", http.StatusBadRequest)
		return
	}

	images := make([][]byte, 0, len(files))
	mimeTypes := make([]string, 0, len(files))
	for _, header := range files {
		if header.Size > models.MaxUploadSize {
			http.Error(w, "Image exceeds the 10 MB upload limit", http.StatusBadRequest)
			return
		}
		f, err := header.Open()
		if err != nil {
			http.Error(w, "Failed to read image", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "Failed to read image", http.StatusBadRequest)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/jpeg"
		}
		images = append(images, data)
		mimeTypes = append(mimeTypes, mimeType)
	}

	difficulty := models.DefaultEvaluationDifficulty
	if v := r.FormValue("difficulty"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			difficulty = models.NormalizeDifficulty(d)
		}
	}
	subject := r.FormValue("subject")

	// Optionally grade against one of the user's documents
	referenceContent := ""
	var documentID *string
	if docID := r.FormValue("document_id"); docID != "" {
		doc, err := e.repo.GetDocumentByID(r.Context(), docID, user.ID)
		if err != nil {
			slog.Error("Failed to get reference document", "error", err, "document_id", docID, "user_id", user.ID)
			http.Error(w, "Failed to get reference document", http.StatusInternalServerError)
			return
		}
		if doc == nil {
			http.Error(w, "Reference document not found", http.StatusNotFound)
			return
		}
		referenceContent = doc.ExtractedText
		documentID = &doc.ID
	}

	result, err := e.evaluationAgent.Evaluate(r.Context(), images, mimeTypes, difficulty, referenceContent)
	if err != nil {
		slog.Error("Evaluation failed", "error", err, "user_id", user.ID)
		http.Error(w, "Evaluation failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	evaluation := models.Evaluation{
		UserID:          user.ID,
		DocumentID:      documentID,
		Subject:         subject,
		Difficulty:      difficulty,
		OverallScore:    result.OverallScore,
		GeneralFeedback: result.GeneralFeedback,
		ModelUsed:       ModelName,
	}

	items := make([]models.EvaluationItem, 0, len(result.Questions))
	for _, q := range result.Questions {
		items = append(items, models.EvaluationItem{
			QuestionText:    q.QuestionText,
			StudentAnswer:   q.StudentAnswer,
			IdealAnswer:     q.IdealAnswer,
			ScorePercentage: q.ScorePercentage,
			Feedback:        q.Feedback,
			Order:           q.Order,
		})
	}

	if err := e.repo.CreateEvaluationWithItems(r.Context(), &evaluation, items); err != nil {
		slog.Error("Failed to save evaluation", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to save evaluation", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.AwardXP(r.Context(), user.ID, XPEvaluation)
	if err != nil {
		slog.Warn("Failed to award evaluation XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"evaluation": evaluation,
		"items":      items,
		"xp":         award,
		"message":    "Answer sheet evaluated successfully",
	})

	slog.Info("Evaluation created", "evaluation_id", evaluation.ID, "user_id", user.ID, "score", evaluation.OverallScore, "questions", len(items))
}

func (e *StudyEndpoints) GetEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	evaluations, err := e.repo.GetEvaluationsByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get evaluations", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get evaluations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"evaluations": evaluations,
		"count":       len(evaluations),
	})
}

func (e *StudyEndpoints) GetEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	evaluationID := chi.URLParam(r, "id")
	evaluation, err := e.repo.GetEvaluationByID(r.Context(), evaluationID, user.ID)
	if err != nil {
		slog.Error("Failed to get evaluation", "error", err, "evaluation_id", evaluationID, "user_id", user.ID)
		http.Error(w, "Failed to get evaluation", http.StatusInternalServerError)
		return
	}
	if evaluation == nil {
		http.Error(w, "Evaluation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"evaluation": evaluation,
	})
}
