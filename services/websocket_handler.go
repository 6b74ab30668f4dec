package services

import (
	"encoding/json"
	"log/slog"
	"time"

	ws "github.com/studywise/backend/websocket"
)

// safeSend tries to send a message to the client channel, recovers if closed
func safeSend(ch chan<- []byte, msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			// Channel is closed, ignore
		}
	}()
	select {
	case ch <- msg:
		// sent
	default:
		// channel full or closed
	}
}

type WebSocketHandler struct {
	processor *ChatMessageProcessor
	cleaner   *SessionCleaner
}

func NewWebSocketHandler(processor *ChatMessageProcessor, cleaner *SessionCleaner) *WebSocketHandler {
	return &WebSocketHandler{
		processor: processor,
		cleaner:   cleaner,
	}
}

// HandleWebSocketConnection is invoked when a chat client connects
func (h *WebSocketHandler) HandleWebSocketConnection(client *ws.Client) {
	slog.Info("WebSocket connection handled", "user_id", client.UserID, "session_id", client.SessionID)

	if h.cleaner != nil {
		h.cleaner.TouchSession(client.SessionID)
	}
}

// HandleWebSocketMessage routes incoming WebSocket messages
func (h *WebSocketHandler) HandleWebSocketMessage(client *ws.Client, messageBytes []byte) {
	var msg ws.Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		slog.Error("Failed to unmarshal WebSocket message", "error", err)
		return
	}

	slog.Info("WebSocket message received", "type", msg.Type, "user_id", client.UserID, "session_id", client.SessionID)

	if h.cleaner != nil {
		h.cleaner.TouchSession(client.SessionID)
	}

	switch msg.Type {
	case "chat", "text":
		if h.processor != nil {
			h.processor.ProcessChatMessage(client, msg.Content)
		} else {
			slog.Warn("Chat processor not available", "session_id", client.SessionID)
		}
	case "end_session":
		slog.Info("Received end_session request", "session_id", client.SessionID)
		endMsg := ws.Message{
			Type:      "end_session",
			Content:   "Chat session closed.",
			SessionID: client.SessionID,
		}
		if b, err := json.Marshal(endMsg); err == nil {
			safeSend(client.Send, b)
		}
		if h.cleaner != nil {
			h.cleaner.ArchiveSession(client.SessionID, client.UserID)
		}
		// Close after a short delay so the confirmation reaches the client
		go func() {
			<-time.After(200 * time.Millisecond)
			client.Conn.Close()
		}()
	default:
		slog.Warn("Unknown message type", "type", msg.Type, "session_id", client.SessionID)
	}
}
