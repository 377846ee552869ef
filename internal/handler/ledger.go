package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/agrodist/agrodist/internal/ledger"
	"github.com/agrodist/agrodist/internal/system"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LedgerHandler exposes read-only HTTP endpoints for the audit ledger.
type LedgerHandler struct {
	rt     *system.Runtime
	logger *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(rt *system.Runtime, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{rt: rt, logger: logger}
}

// Register mounts the ledger routes on the given router group.
func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	l := rg.Group("/ledger")
	{
		l.GET("", h.Overview)
		l.GET("/verify", h.Verify)
		l.GET("/entries/:idx", h.GetEntry)
		l.GET("/blocks", h.Blocks)
	}
}

// Overview handles GET /ledger. It returns the chain length and current root hash.
func (h *LedgerHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	l := h.rt.Current().Ledger

	count, err := l.Len(ctx)
	if err != nil {
		h.logger.Error("ledger Len", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}

	root, err := l.Root(ctx)
	if err != nil {
		h.logger.Error("ledger Root", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger root"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": count,
		"root":    root,
	})
}

// Verify handles GET /ledger/verify. It walks the full chain and reports
// integrity. ?audit=true also recomputes every block hash.
func (h *LedgerHandler) Verify(c *gin.Context) {
	ctx := c.Request.Context()
	l := h.rt.Current().Ledger

	check := l.Verify
	if c.Query("audit") == "true" {
		check = func(ctx context.Context) error { return ledger.Audit(ctx, l) }
	}
	if err := check(ctx); err != nil {
		h.logger.Warn("ledger integrity check failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// GetEntry handles GET /ledger/entries/:idx. It returns a single block.
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idx must be a non-negative integer"})
		return
	}

	entry, err := h.rt.Current().Ledger.Get(c.Request.Context(), idx)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Blocks handles GET /ledger/blocks. It returns the whole chain.
func (h *LedgerHandler) Blocks(c *gin.Context) {
	blocks, err := h.rt.Current().Ledger.Blocks(c.Request.Context())
	if err != nil {
		h.logger.Error("ledger Blocks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query ledger"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks, "count": len(blocks)})
}
