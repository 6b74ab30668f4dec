package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

type DocumentEndpoints struct {
	repo         *repository.GORMRepository
	processor    *DocumentProcessor
	vectorStore  *VectorStore
	summaryAgent *SummaryAgent
	gamification *GamificationService
	uploadDir    string
}

type GetDocumentsResponse struct {
	Documents []models.Document `json:"documents"`
	Count     int               `json:"count"`
}

type GenerateSummaryRequest struct {
	SummaryType string   `json:"summary_type"`
	FocusAreas  []string `json:"focus_areas"`
}

func NewDocumentEndpoints(repo *repository.GORMRepository, processor *DocumentProcessor, vectorStore *VectorStore, summaryAgent *SummaryAgent, gamification *GamificationService, uploadDir string) *DocumentEndpoints {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		slog.Error("Failed to create upload directory", "dir", uploadDir, "error", err)
	}
	return &DocumentEndpoints{
		repo:         repo,
		processor:    processor,
		vectorStore:  vectorStore,
		summaryAgent: summaryAgent,
		gamification: gamification,
		uploadDir:    uploadDir,
	}
}

func (e *DocumentEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", e.UploadDocumentHandler)
		r.Get("/", e.GetDocumentsHandler)
		r.Get("/{id}", e.GetDocumentHandler)
		r.Delete("/{id}", e.DeleteDocumentHandler)
		r.Post("/{id}/summaries", e.GenerateSummaryHandler)
		r.Get("/{id}/summaries", e.GetSummariesHandler)
	})
}

func (e *DocumentEndpoints) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(models.MaxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileType, err := e.processor.ValidateUpload(header.Filename, header.Size)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, models.MaxUploadSize+1))
	if err != nil {
		slog.Error("Failed to read upload", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > models.MaxUploadSize {
		http.Error(w, "file exceeds the 10 MB upload limit", http.StatusBadRequest)
		return
	}

	text, pageCount, err := e.processor.ExtractText(r.Context(), fileType, header.Filename, data)
	if err != nil {
		slog.Error("Text extraction failed", "error", err, "filename", header.Filename, "user_id", user.ID)
		http.Error(w, "Could not extract text from the file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	docID := uuid.New().String()
	storedPath := filepath.Join(e.uploadDir, docID+filepath.Ext(header.Filename))
	if err := os.WriteFile(storedPath, data, 0644); err != nil {
		slog.Error("Failed to store upload", "error", err, "path", storedPath)
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	doc := models.Document{
		ID:            docID,
		UserID:        user.ID,
		Title:         header.Filename,
		FilePath:      storedPath,
		FileType:      fileType,
		FileSize:      int64(len(data)),
		ExtractedText: text,
		PageCount:     pageCount,
	}

	if err := e.repo.CreateDocument(r.Context(), &doc); err != nil {
		slog.Error("Failed to create document", "error", err, "user_id", user.ID)
		os.Remove(storedPath)
		http.Error(w, "Failed to save document", http.StatusInternalServerError)
		return
	}

	// Index for retrieval in the background so the upload returns quickly
	go e.indexDocument(doc.ID, text)

	award, err := e.gamification.RecordUpload(r.Context(), user.ID)
	if err != nil {
		slog.Warn("Failed to award upload XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"document": doc,
		"xp":       award,
		"message":  "Document uploaded successfully",
	})

	slog.Info("Document uploaded", "document_id", doc.ID, "user_id", user.ID, "file_type", fileType, "size", len(data))
}

func (e *DocumentEndpoints) indexDocument(documentID, text string) {
	if e.vectorStore == nil {
		slog.Info("Vector store not configured, skipping indexing", "document_id", documentID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	chunks, err := e.vectorStore.IndexDocument(ctx, documentID, text)
	if err != nil {
		slog.Error("Background indexing failed", "error", err, "document_id", documentID)
		return
	}

	if err := e.repo.MarkDocumentIndexed(ctx, documentID, chunks); err != nil {
		slog.Error("Failed to record indexing result", "error", err, "document_id", documentID)
	}
}

func (e *DocumentEndpoints) GetDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	documents, err := e.repo.GetDocuments(r.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to get documents", "error", err, "user_id", user.ID)
		http.Error(w, "Failed to get documents", http.StatusInternalServerError)
		return
	}

	response := GetDocumentsResponse{
		Documents: documents,
		Count:     len(documents),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *DocumentEndpoints) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	documentID := chi.URLParam(r, "id")
	doc, err := e.repo.GetDocumentByID(r.Context(), documentID, user.ID)
	if err != nil {
		slog.Error("Failed to get document", "error", err, "document_id", documentID, "user_id", user.ID)
		http.Error(w, "Failed to get document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"document": doc,
	})
}

func (e *DocumentEndpoints) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	documentID := chi.URLParam(r, "id")
	doc, err := e.repo.GetDocumentByID(r.Context(), documentID, user.ID)
	if err != nil {
		slog.Error("Failed to get document for deletion", "error", err, "document_id", documentID, "user_id", user.ID)
		http.Error(w, "Failed to get document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	if err := e.repo.DeleteDocument(r.Context(), documentID); err != nil {
		slog.Error("Failed to delete document", "error", err, "document_id", documentID, "user_id", user.ID)
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}

	if e.vectorStore != nil {
		if err := e.vectorStore.RemoveDocument(r.Context(), documentID); err != nil {
			slog.Warn("Failed to remove document chunks", "error", err, "document_id", documentID)
		}
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove stored file", "error", err, "path", doc.FilePath)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Document deleted successfully",
	})

	slog.Info("Document deleted", "document_id", documentID, "user_id", user.ID)
}

func (e *DocumentEndpoints) GenerateSummaryHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	documentID := chi.URLParam(r, "id")
	doc, err := e.repo.GetDocumentByID(r.Context(), documentID, user.ID)
	if err != nil {
		slog.Error("Failed to get document for summary", "error", err, "document_id", documentID, "user_id", user.ID)
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

	var req GenerateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := e.summaryAgent.Generate(r.Context(), doc.ExtractedText, req.SummaryType, req.FocusAreas)
	if err != nil {
		slog.Error("Summary generation failed", "error", err, "document_id", documentID, "user_id", user.ID)
		http.Error(w, "Summary generation failed", http.StatusBadGateway)
		return
	}

	summary := models.Summary{
		DocumentID:     documentID,
		Content:        result.Content,
		SummaryType:    result.Type,
		WordCount:      result.WordCount,
		ModelUsed:      ModelName,
		GenerationTime: time.Since(start).Seconds(),
	}

	if err := e.repo.CreateSummary(r.Context(), &summary); err != nil {
		slog.Error("Failed to save summary", "error", err, "document_id", documentID)
		http.Error(w, "Failed to save summary", http.StatusInternalServerError)
		return
	}

	award, err := e.gamification.RecordSummary(r.Context(), user.ID)
	if err != nil {
		slog.Warn("Failed to award summary XP", "error", err, "user_id", user.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summary": summary,
		"xp":      award,
		"message": "Summary generated successfully",
	})

	slog.Info("Summary generated", "summary_id", summary.ID, "document_id", documentID, "type", result.Type, "words", result.WordCount)
}

func (e *DocumentEndpoints) GetSummariesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	documentID := chi.URLParam(r, "id")
	doc, err := e.repo.GetDocumentByID(r.Context(), documentID, user.ID)
	if err != nil {
		slog.Error("Failed to get document", "error", err, "document_id", documentID, "user_id", user.ID)
		http.Error(w, "Failed to get document", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	summaries, err := e.repo.GetSummariesByDocument(r.Context(), documentID)
	if err != nil {
		slog.Error("Failed to get summaries", "error", err, "document_id", documentID)
		http.Error(w, "Failed to get summaries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"summaries": summaries,
		"count":     len(summaries),
	})
}
