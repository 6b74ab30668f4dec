package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, UserProfile, RefreshToken, PermanentToken from user.go
// - Document, Summary from document.go
// - Quiz, QuizQuestion, QuizAttempt from quiz.go
// - FlashcardSet, Flashcard from flashcard.go
// - Flowchart, Podcast from study.go
// - Evaluation, EvaluationItem from evaluation.go
// - ChatSession, ChatMessage from chat.go

// Database schema overview:
// 1. users / user_profiles - Cookie-based auth plus XP, level and streak counters
// 2. documents - Uploaded study material with extracted text and index state
// 3. summaries / quizzes / flashcard_sets / flowcharts / podcasts - AI-generated
//    learning artifacts, each tied to a source document
// 4. evaluations - Vision-graded answer sheets with per-question items
// 5. chat_sessions / chat_messages - Document-grounded chatbot conversations
// 6. document_chunks - pgvector-backed chunk embeddings (created by raw DDL,
//    queried through pgx rather than GORM)
