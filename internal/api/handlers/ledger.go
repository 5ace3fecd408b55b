package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streammeter/internal/core"
)

// LedgerReader interface for read access to the user ledger
type LedgerReader interface {
	Snapshot() core.LedgerSnapshot
}

// LedgerHandler handles ledger view requests
type LedgerHandler struct {
	ledger LedgerReader
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger LedgerReader) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// GetLedger returns the current ledger snapshot
// GET /api/ledger
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	snapshot := h.ledger.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"totalUsers": len(snapshot),
		"entries":    snapshot,
	})
}
