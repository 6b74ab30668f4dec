package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
	ws "github.com/studywise/backend/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config     *Config
	gormDB     *repository.GORMRepository
	chatRepo   *repository.ChatRepository
	rawDB      interface{} // Store the raw GORM DB for the health check
	vectorPool *pgxpool.Pool

	geminiService     *GeminiService
	elevenLabsService *ElevenLabsService
	audioCache        *AudioCache
	podcastAudio      *PodcastAudioService
	documentProcessor *DocumentProcessor
	vectorStore       *VectorStore
	gamification      *GamificationService

	summaryAgent    *SummaryAgent
	quizAgent       *QuizAgent
	flashcardAgent  *FlashcardAgent
	flowchartAgent  *FlowchartAgent
	podcastAgent    *PodcastAgent
	evaluationAgent *EvaluationAgent
	chatbotAgent    *ChatbotAgent

	chatProcessor    *ChatMessageProcessor
	sessionCleaner   *SessionCleaner
	websocketHandler *WebSocketHandler

	authService        *AuthService
	authEndpoints      *AuthEndpoints
	documentEndpoints  *DocumentEndpoints
	quizEndpoints      *QuizEndpoints
	flashcardEndpoints *FlashcardEndpoints
	studyEndpoints     *StudyEndpoints
	chatEndpoints      *ChatEndpoints
	profileEndpoints   *ProfileEndpoints

	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(db *repository.GORMRepository, chatRepo *repository.ChatRepository, rawDB interface{}) {
	s.gormDB = db
	s.chatRepo = chatRepo
	s.rawDB = rawDB
}

// SetVectorPool sets the pgx pool used for vector search
func (s *Server) SetVectorPool(pool *pgxpool.Pool) {
	s.vectorPool = pool
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.Database.URL == "" {
		slog.Warn("Database URL not configured, running without database")
	}

	// AI services
	if s.config.AI.GeminiAPIKey != "" {
		s.geminiService = NewGeminiService(s.config.AI.GeminiAPIKey)
		slog.Info("Gemini service initialized")
	}

	if s.config.TTS.ElevenLabsKey != "" {
		s.elevenLabsService = NewElevenLabsService(s.config.TTS.ElevenLabsKey)
		slog.Info("ElevenLabs service initialized")
	}

	// Document pipeline
	s.documentProcessor = NewDocumentProcessor(s.geminiService)

	if s.vectorPool != nil && s.geminiService != nil {
		s.vectorStore = NewVectorStore(s.vectorPool, s.geminiService)
		slog.Info("Vector store initialized")
	} else {
		slog.Warn("Vector store not available, chat will run without document retrieval")
	}

	// Generation agents
	if s.geminiService != nil {
		s.summaryAgent = NewSummaryAgent(s.geminiService)
		s.quizAgent = NewQuizAgent(s.geminiService)
		s.flashcardAgent = NewFlashcardAgent(s.geminiService)
		s.flowchartAgent = NewFlowchartAgent(s.geminiService)
		s.podcastAgent = NewPodcastAgent(s.geminiService)
		s.evaluationAgent = NewEvaluationAgent(s.geminiService)
		s.chatbotAgent = NewChatbotAgent(s.geminiService)
		slog.Info("Generation agents initialized")
	}

	// Podcast audio synthesis
	if s.elevenLabsService != nil {
		s.audioCache = NewAudioCache(s.config.Storage.AudioDir + "/cache")
		s.podcastAudio = NewPodcastAudioService(s.elevenLabsService, s.audioCache, &s.config.TTS, s.config.Storage.AudioDir)
		slog.Info("Podcast audio service initialized")
	}

	// Gamification
	if s.gormDB != nil {
		s.gamification = NewGamificationService(s.gormDB)
		slog.Info("Gamification service initialized")
	}

	// Chat over WebSocket
	if s.chatRepo != nil && s.chatbotAgent != nil && s.gamification != nil {
		s.chatProcessor = NewChatMessageProcessor(s.chatRepo, s.chatbotAgent, s.vectorStore, s.gamification)
		s.sessionCleaner = NewSessionCleaner(s.chatRepo, s.geminiService)
		s.websocketHandler = NewWebSocketHandler(s.chatProcessor, s.sessionCleaner)
		slog.Info("Chat message processor initialized")
	}

	// Authentication and endpoints
	if s.config.JWT.Secret != "" && s.gormDB != nil {
		s.authService = NewAuthService(s.gormDB, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		slog.Info("Authentication service initialized")
	}

	if s.gormDB != nil && s.gamification != nil {
		s.documentEndpoints = NewDocumentEndpoints(s.gormDB, s.documentProcessor, s.vectorStore, s.summaryAgent, s.gamification, s.config.Storage.UploadDir)
		s.quizEndpoints = NewQuizEndpoints(s.gormDB, s.quizAgent, s.gamification)
		s.flashcardEndpoints = NewFlashcardEndpoints(s.gormDB, s.flashcardAgent, s.gamification)
		s.studyEndpoints = NewStudyEndpoints(s.gormDB, s.flowchartAgent, s.podcastAgent, s.evaluationAgent, s.podcastAudio, s.gamification)
		slog.Info("Study endpoints initialized")
	}

	if s.gormDB != nil && s.chatRepo != nil {
		s.chatEndpoints = NewChatEndpoints(s.gormDB, s.chatRepo, s.chatbotAgent, s.vectorStore, s.geminiService, s.gamification)
		s.profileEndpoints = NewProfileEndpoints(s.gormDB, s.chatRepo)
		slog.Info("Chat and profile endpoints initialized")
	}

	// WebSocket hub
	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// EnsureVectorSchema creates the document chunk table when vector search is enabled
func (s *Server) EnsureVectorSchema(ctx context.Context) error {
	if s.vectorStore == nil {
		return nil
	}
	return s.vectorStore.EnsureSchema(ctx)
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		// Authentication routes
		if s.authEndpoints != nil {
			r.Route("/auth", func(r chi.Router) {
				// Public auth routes (no middleware)
				r.Post("/login", s.authEndpoints.LoginHandler)
				r.Post("/register", s.authEndpoints.RegisterHandler)
				r.Post("/refresh", s.authEndpoints.RefreshHandler)

				// Protected auth routes (with middleware)
				r.Group(func(r chi.Router) {
					r.Use(s.authService.Middleware)
					r.Post("/logout", s.authEndpoints.LogoutHandler)
					r.Get("/me", s.authEndpoints.MeHandler)
				})
			})
		}

		// Everything else requires authentication
		if s.authService == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)

			r.Get("/ws", s.websocketHandlerFunc)

			if s.documentEndpoints != nil {
				s.documentEndpoints.RegisterRoutes(r)
			}
			if s.quizEndpoints != nil {
				s.quizEndpoints.RegisterRoutes(r)
			}
			if s.flashcardEndpoints != nil {
				s.flashcardEndpoints.RegisterRoutes(r)
			}
			if s.studyEndpoints != nil {
				s.studyEndpoints.RegisterRoutes(r)
			}
			if s.chatEndpoints != nil {
				s.chatEndpoints.RegisterRoutes(r)
			}
			if s.profileEndpoints != nil {
				s.profileEndpoints.RegisterRoutes(r)
			}
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// checkOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func checkOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")

	// Trim whitespace from origins
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	// Check if origin is in allowed list
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		if gormDB, ok := s.rawDB.(*gorm.DB); ok {
			if sqlDB, err := gormDB.DB(); err == nil {
				if err := sqlDB.Ping(); err != nil {
					dbStatus = "down"
					status = "degraded"
				} else {
					dbStatus = "up"
				}
			} else {
				dbStatus = "down"
				status = "degraded"
			}
		}
	}

	vectorStatus := "not configured"
	if s.vectorPool != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.vectorPool.Ping(ctx); err != nil {
			vectorStatus = "down"
			status = "degraded"
		} else {
			vectorStatus = "up"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `","vector_store":"` + vectorStatus + `"}`))
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	// Get user from context (set by auth middleware)
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// The connection is bound to an existing chat session
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id query parameter is required", http.StatusBadRequest)
		return
	}

	if s.chatRepo != nil {
		session, err := s.chatRepo.GetSession(r.Context(), sessionID, user.ID)
		if err != nil {
			slog.Error("Failed to load chat session", "error", err, "session_id", sessionID)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if session == nil {
			http.Error(w, "Chat session not found", http.StatusNotFound)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "session_id", sessionID)

	// Register client with hub
	client := s.wsHub.RegisterClient(conn, user.ID, sessionID)

	if s.websocketHandler != nil {
		client.MessageHandler = func(c *ws.Client, messageBytes []byte) {
			s.websocketHandler.HandleWebSocketMessage(c, messageBytes)
		}
		s.websocketHandler.HandleWebSocketConnection(client)
	}

	// Start goroutines for reading and writing
	go client.WritePump()
	client.ReadPump()
}
