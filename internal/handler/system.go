package handler

import (
	"net/http"

	"github.com/agrodist/agrodist/internal/auth"
	"github.com/agrodist/agrodist/internal/system"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SystemHandler serves save, load and reset of the whole engine state.
type SystemHandler struct {
	rt     *system.Runtime
	logger *zap.Logger
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(rt *system.Runtime, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{rt: rt, logger: logger}
}

// Register mounts the system routes, all behind guard.
func (h *SystemHandler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	s := rg.Group("/system", guard)
	{
		s.POST("/save", h.Save)
		s.POST("/load", h.Load)
		s.POST("/reset", h.Reset)
	}
}

// Save handles POST /system/save.
func (h *SystemHandler) Save(c *gin.Context) {
	if err := h.rt.Save(c.Request.Context()); err != nil {
		writeError(c, h.logger, err, "failed to save system")
		return
	}
	h.respond(c, "saved")
}

// Load handles POST /system/load.
func (h *SystemHandler) Load(c *gin.Context) {
	if err := h.rt.Load(c.Request.Context()); err != nil {
		writeError(c, h.logger, err, "failed to load system")
		return
	}
	h.respond(c, "loaded")
}

// Reset handles POST /system/reset.
func (h *SystemHandler) Reset(c *gin.Context) {
	if _, err := h.rt.Reset(c.Request.Context()); err != nil {
		writeError(c, h.logger, err, "failed to reset system")
		return
	}
	h.logger.Info("system reset requested", zap.String("operator", auth.OperatorFromCtx(c)))
	h.respond(c, "reset")
}

func (h *SystemHandler) respond(c *gin.Context, status string) {
	ctx := c.Request.Context()
	l := h.rt.Current().Ledger
	n, _ := l.Len(ctx)
	root, _ := l.Root(ctx)
	c.JSON(http.StatusOK, gin.H{"status": status, "entries": n, "root": root})
}
