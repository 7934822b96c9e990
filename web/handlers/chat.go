package handlers

import (
	"net/http"
	"strings"

	"persona-agent/agent"
	"persona-agent/web/format"
	"persona-agent/web/middleware"
	"persona-agent/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	agent  *agent.Agent
	logger *zap.Logger
}

func NewChatHandler(agent *agent.Agent, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		agent:  agent,
		logger: logger,
	}
}

// SendMessage runs one turn, creating the session on first contact.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var req types.ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "Message is required and must be at most 2000 characters")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondWithClientError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.agent.EnsureSession(ctx, sessionID); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to start session", h.logger,
			zap.String("session_id", sessionID))
		return
	}

	result, err := h.agent.ProcessTurn(ctx, sessionID, message)
	if err != nil {
		respondWithLookupError(c, err, h.logger, sessionID)
		return
	}

	c.JSON(http.StatusOK, types.ChatResponse{
		SessionID:     sessionID,
		Reply:         result.Reply,
		UsedRemote:    result.UsedRemote,
		MatchedUnitID: result.MatchedUnitID,
	})
}

// CreateSession starts (or restarts) the caller's session.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if err := h.agent.CreateSession(c.Request.Context(), sessionID); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to create session", h.logger,
			zap.String("session_id", sessionID))
		return
	}
	c.JSON(http.StatusCreated, types.SessionResponse{SessionID: sessionID, Status: "created"})
}

// ResetSession clears the caller's conversation.
func (h *ChatHandler) ResetSession(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if err := h.agent.ResetSession(c.Request.Context(), sessionID); err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "Failed to reset session", h.logger,
			zap.String("session_id", sessionID))
		return
	}
	c.JSON(http.StatusOK, types.SessionResponse{SessionID: sessionID, Status: "reset"})
}

// History returns the conversation so far; ?format=html adds rendered text.
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	history, err := h.agent.GetHistory(c.Request.Context(), sessionID)
	if err != nil {
		respondWithLookupError(c, err, h.logger, sessionID)
		return
	}

	renderHTML := c.Query("format") == "html"
	messages := make([]types.ChatMessage, 0, len(history))
	for _, msg := range history {
		view := types.ChatMessage{
			ID:         msg.ID,
			Role:       string(msg.Role),
			Content:    msg.Content,
			Timestamp:  msg.Timestamp,
			UnitID:     msg.UnitID,
			UsedRemote: msg.UsedRemote,
		}
		if renderHTML {
			view.HTML = format.ToHTML(msg.Content)
		}
		messages = append(messages, view)
	}

	c.JSON(http.StatusOK, types.HistoryResponse{SessionID: sessionID, Messages: messages})
}

// Topics lists the topics the conversation has touched.
func (h *ChatHandler) Topics(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	topics, err := h.agent.GetTopicsDiscussed(c.Request.Context(), sessionID)
	if err != nil {
		respondWithLookupError(c, err, h.logger, sessionID)
		return
	}
	c.JSON(http.StatusOK, types.TopicsResponse{SessionID: sessionID, Topics: topics})
}

// Health reports liveness and whether the remote path is still open.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"remote_enabled": h.agent.RemoteEnabled(),
	})
}
