package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"streammeter/internal/storage"
)

const (
	defaultPublishLimit = 20
	maxPublishLimit     = 100
)

// PublishStore interface for reading the publish audit trail
type PublishStore interface {
	ListRecentPublishes(ctx context.Context, limit int) ([]*storage.PublishRecord, error)
}

// PublishesHandler handles publish audit trail requests
type PublishesHandler struct {
	store  PublishStore
	logger *slog.Logger
}

// NewPublishesHandler creates a new publishes handler
func NewPublishesHandler(store PublishStore, logger *slog.Logger) *PublishesHandler {
	return &PublishesHandler{
		store:  store,
		logger: logger,
	}
}

// ListPublishes returns the most recent ledger publishes, newest first
// GET /api/publishes?limit=
func (h *PublishesHandler) ListPublishes(c *gin.Context) {
	limit := defaultPublishLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
				"code":  "INVALID_LIMIT",
			})
			return
		}
		limit = parsed
	}
	if limit > maxPublishLimit {
		limit = maxPublishLimit
	}

	records, err := h.store.ListRecentPublishes(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list publishes",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve publishes",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(records))
	for _, record := range records {
		response = append(response, gin.H{
			"txId":         record.TxID,
			"publishedAt":  record.PublishedAt.UnixMilli(),
			"users":        record.Users,
			"totalSeconds": record.TotalSeconds,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalPublishes": len(response),
		"publishes":      response,
	})
}
