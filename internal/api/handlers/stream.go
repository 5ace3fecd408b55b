package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"streammeter/internal/core"
)

// SessionManager interface for all session lifecycle operations
type SessionManager interface {
	StartSession(userID, contentID string) (*core.StartResult, error)
	StopSession(sessionID, userID string) (*core.StopResult, error)
	SessionStatus(sessionID string) (*core.SessionStatus, error)
	ListActive() []core.SessionStatus
}

// StreamHandler handles streaming session requests
type StreamHandler struct {
	manager SessionManager
	logger  *slog.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(manager SessionManager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		logger:  logger,
	}
}

// StartStream opens a new streaming session
// POST /api/stream/start
func (h *StreamHandler) StartStream(c *gin.Context) {
	var req struct {
		UserID    string `json:"userId" binding:"required"`
		ContentID string `json:"contentId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "userId and contentId are required",
			"code":  "MISSING_FIELDS",
		})
		return
	}

	result, err := h.manager.StartSession(req.UserID, req.ContentID)
	if err != nil {
		if errors.Is(err, core.ErrPublisherNotReady) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Service is still initializing",
				"code":  "NOT_READY",
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "SESSION_START_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":      result.SessionID,
		"pricePerSecond": result.PricePerSecond,
		"startTime":      result.StartTime,
		"message":        "Streaming session started",
	})
}

// StopStream closes a streaming session and returns its final cost
// POST /api/stream/stop
func (h *StreamHandler) StopStream(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
		UserID    string `json:"userId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "sessionId and userId are required",
			"code":  "MISSING_FIELDS",
		})
		return
	}

	result, err := h.manager.StopSession(req.SessionID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
				"code":  "SESSION_NOT_FOUND",
			})
		case errors.Is(err, core.ErrNotSessionOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Session does not belong to this user",
				"code":  "FORBIDDEN",
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "SESSION_STOP_FAILED",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":        result.SessionID,
		"sessionSeconds":   result.SessionSeconds,
		"sessionCost":      result.SessionCost,
		"userTotalSeconds": result.UserTotalSeconds,
		"pricePerSecond":   result.PricePerSecond,
		"message":          "Streaming session stopped",
	})
}

// GetStatus returns a live projection of a single session
// GET /api/stream/status/:sessionId
func (h *StreamHandler) GetStatus(c *gin.Context) {
	sessionID := c.Param("sessionId")

	status, err := h.manager.SessionStatus(sessionID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
				"code":  "SESSION_NOT_FOUND",
			})
			return
		}

		h.logger.Error("Failed to get session status",
			"component", "api",
			"session_id", sessionID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve session",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListSessions returns all active sessions
// GET /api/stream/sessions
func (h *StreamHandler) ListSessions(c *gin.Context) {
	sessions := h.manager.ListActive()

	c.JSON(http.StatusOK, gin.H{
		"totalSessions": len(sessions),
		"sessions":      sessions,
	})
}
