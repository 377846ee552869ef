package handler

import (
	"net/http"

	"github.com/agrodist/agrodist/internal/distribution/route"
	"github.com/agrodist/agrodist/internal/system"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InventoryRequest is the payload of POST /inventory/optimize.
type InventoryRequest struct {
	ProductID int  `json:"product_id" binding:"required"`
	Confirm   bool `json:"confirm"`
}

// OptimizeHandler serves the route and inventory optimizers.
type OptimizeHandler struct {
	rt     *system.Runtime
	logger *zap.Logger
}

// NewOptimizeHandler creates a new OptimizeHandler.
func NewOptimizeHandler(rt *system.Runtime, logger *zap.Logger) *OptimizeHandler {
	return &OptimizeHandler{rt: rt, logger: logger}
}

// Register mounts the optimizer routes. Both append to the ledger, so both
// sit behind guard.
func (h *OptimizeHandler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.POST("/routes/optimize", guard, h.Route)
	rg.POST("/inventory/optimize", guard, h.Inventory)
}

// Route handles POST /routes/optimize.
func (h *OptimizeHandler) Route(c *gin.Context) {
	var req route.Request
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.rt.Current().Routes.Optimize(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "failed to optimize route")
		return
	}
	RecordRouteOptimization()
	c.JSON(http.StatusOK, plan)
}

// Inventory handles POST /inventory/optimize. The plan is advisory; it is
// written to the ledger only when confirm is set.
func (h *OptimizeHandler) Inventory(c *gin.Context) {
	var req InventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	sys := h.rt.Current()
	ctx := c.Request.Context()

	plan, err := sys.Inventory.Plan(ctx, req.ProductID)
	if err != nil {
		writeError(c, h.logger, err, "failed to optimize inventory")
		return
	}
	resp := gin.H{"plan": plan, "recorded": false}
	if req.Confirm {
		b, err := sys.Inventory.Record(ctx, plan)
		if err != nil {
			writeError(c, h.logger, err, "failed to record inventory plan")
			return
		}
		resp["recorded"] = true
		resp["block"] = b
	}
	RecordInventoryOptimization(req.Confirm)
	c.JSON(http.StatusOK, resp)
}
