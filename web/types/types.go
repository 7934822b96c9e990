package types

import (
	"time"

	"persona-agent/content"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" form:"message" binding:"required,max=2000"`
}

// ChatResponse is the outcome of one turn.
type ChatResponse struct {
	SessionID     string `json:"session_id"`
	Reply         string `json:"reply"`
	UsedRemote    bool   `json:"used_remote"`
	MatchedUnitID string `json:"matched_unit_id,omitempty"`
}

// SessionResponse acknowledges a session lifecycle call.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// ChatMessage is a history entry as sent to clients. HTML is only filled
// when the client asks for rendered output.
type ChatMessage struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	HTML       string    `json:"html,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	UnitID     string    `json:"unit_id,omitempty"`
	UsedRemote bool      `json:"used_remote,omitempty"`
}

type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

type TopicsResponse struct {
	SessionID string          `json:"session_id"`
	Topics    []content.Topic `json:"topics"`
}
