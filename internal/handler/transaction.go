package handler

import (
	"net/http"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/distribution/settlement"
	"github.com/agrodist/agrodist/internal/system"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransactionHandler serves settlement, the transaction history, the
// distribution report and the seasonal simulation.
type TransactionHandler struct {
	rt     *system.Runtime
	logger *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(rt *system.Runtime, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{rt: rt, logger: logger}
}

// Register mounts the transaction routes. guard runs before every mutating
// route.
func (h *TransactionHandler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	tx := rg.Group("/transactions")
	{
		tx.GET("", h.List)
		tx.POST("", guard, h.Create)
		tx.GET("/:id", h.Get)
	}
	rg.GET("/reports/distribution", h.Report)
	rg.POST("/simulations/seasonal", guard, h.Seasonal)
}

// Create handles POST /transactions. Rule and credit rejections are recorded
// outcomes and come back as 201 with status Failed; precondition failures
// record nothing and return 400 or 404.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req settlement.Request
	if !bindJSON(c, &req) {
		return
	}
	tx, err := h.rt.Current().Settlement.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "failed to create transaction")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// List handles GET /transactions, optionally filtered by ?status=.
func (h *TransactionHandler) List(c *gin.Context) {
	var status model.TransactionStatus
	if s := c.Query("status"); s != "" {
		parsed, err := model.ParseStatus(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = parsed
	}

	txs, err := h.rt.Current().History.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "failed to list transactions")
		return
	}
	out := make([]*model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if status == "" || tx.Status == status {
			out = append(out, tx)
		}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out, "count": len(out)})
}

// Get handles GET /transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tx, err := h.rt.Current().History.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err, "failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Report handles GET /reports/distribution.
func (h *TransactionHandler) Report(c *gin.Context) {
	rep, err := h.rt.Current().Settlement.Report(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "failed to build report")
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Seasonal handles POST /simulations/seasonal. An empty body runs the
// default scenario.
func (h *TransactionHandler) Seasonal(c *gin.Context) {
	sc := settlement.DefaultScenario()
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &sc) {
			return
		}
	}
	res := h.rt.Current().Settlement.RunSeasonal(c.Request.Context(), sc)
	c.JSON(http.StatusOK, res)
}
