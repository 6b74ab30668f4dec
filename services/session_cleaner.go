package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/studywise/backend/models"
	"github.com/studywise/backend/repository"
)

const (
	// Chat sessions with no activity for this long get archived
	SessionIdleTimeout = 30 * time.Minute
	cleanerInterval    = 5 * time.Minute
)

// SessionCleaner archives idle chat sessions and gives untitled ones a
// short Gemini-generated title based on the opening exchange.
type SessionCleaner struct {
	chatRepo *repository.ChatRepository
	gemini   *GeminiService

	lastActivity map[string]time.Time
	mutex        sync.RWMutex
}

func NewSessionCleaner(chatRepo *repository.ChatRepository, gemini *GeminiService) *SessionCleaner {
	cleaner := &SessionCleaner{
		chatRepo:     chatRepo,
		gemini:       gemini,
		lastActivity: make(map[string]time.Time),
	}

	go cleaner.run()
	return cleaner
}

// TouchSession records activity on a session
func (s *SessionCleaner) TouchSession(sessionID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActivity[sessionID] = time.Now()
}

func (s *SessionCleaner) run() {
	ticker := time.NewTicker(cleanerInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.sweep()
	}
}

func (s *SessionCleaner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sessions, err := s.chatRepo.GetActiveSessions(ctx)
	if err != nil {
		slog.Error("Session sweep failed to list active sessions", "error", err)
		return
	}

	now := time.Now()
	for i := range sessions {
		session := &sessions[i]

		s.mutex.RLock()
		last, tracked := s.lastActivity[session.ID]
		s.mutex.RUnlock()
		if !tracked {
			last = session.UpdatedAt
		}

		if now.Sub(last) < SessionIdleTimeout {
			continue
		}

		slog.Info("Archiving idle chat session", "session_id", session.ID, "idle", now.Sub(last))
		s.archive(ctx, session)
	}
}

// ArchiveSession archives a session immediately (user ended the chat)
func (s *SessionCleaner) ArchiveSession(sessionID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	session, err := s.chatRepo.GetSession(ctx, sessionID, userID)
	if err != nil || session == nil {
		slog.Warn("ArchiveSession called for unknown session", "session_id", sessionID, "error", err)
		return
	}
	s.archive(ctx, session)
}

func (s *SessionCleaner) archive(ctx context.Context, session *models.ChatSession) {
	if title := s.generateTitle(ctx, session); title != "" {
		session.Title = title
	}
	session.IsActive = false

	if err := s.chatRepo.UpdateSession(ctx, session); err != nil {
		slog.Error("Failed to archive chat session", "error", err, "session_id", session.ID)
		return
	}

	if s.gemini != nil {
		s.gemini.ClearSessionCache(session.ID)
	}

	s.mutex.Lock()
	delete(s.lastActivity, session.ID)
	s.mutex.Unlock()
}

// generateTitle asks the model for a short descriptive title when the
// session still carries its default "Chat: ..." name. Best effort; the
// default title stays on any failure.
func (s *SessionCleaner) generateTitle(ctx context.Context, session *models.ChatSession) string {
	if s.gemini == nil || !strings.HasPrefix(session.Title, "Chat: ") {
		return ""
	}

	messages, err := s.chatRepo.GetRecentMessages(ctx, session.ID, 6)
	if err != nil || len(messages) == 0 {
		return ""
	}

	var transcript strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}

	prompt := fmt.Sprintf(`Generate a short title (at most 6 words) describing what this study chat was about. Return only the title, no quotes or punctuation around it.

%s`, transcript.String())

	title, err := s.gemini.GenerateText(ctx, prompt, GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 64,
	})
	if err != nil {
		slog.Warn("Failed to generate session title", "error", err, "session_id", session.ID)
		return ""
	}

	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"'`))
	if title == "" || len(title) > 120 {
		return ""
	}
	return title
}
