package handler

import (
	"net/http"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/system"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EntityHandler serves the product, supplier, retailer and transporter
// registries.
type EntityHandler struct {
	rt     *system.Runtime
	logger *zap.Logger
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(rt *system.Runtime, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{rt: rt, logger: logger}
}

// Register mounts the entity routes. guard runs before every mutating route.
func (h *EntityHandler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	p := rg.Group("/products")
	{
		p.GET("", h.ListProducts)
		p.POST("", guard, h.CreateProduct)
		p.GET("/:id", h.GetProduct)
		p.POST("/:id/stock", guard, h.AdjustStock)
	}
	s := rg.Group("/suppliers")
	{
		s.GET("", h.ListSuppliers)
		s.POST("", guard, h.CreateSupplier)
		s.GET("/:id", h.GetSupplier)
		s.POST("/:id/products", guard, h.LinkSupplierProduct)
	}
	r := rg.Group("/retailers")
	{
		r.GET("", h.ListRetailers)
		r.POST("", guard, h.CreateRetailer)
		r.GET("/:id", h.GetRetailer)
		r.POST("/:id/credit", guard, h.AddCredit)
		r.POST("/:id/products", guard, h.LinkRetailerProduct)
	}
	t := rg.Group("/transporters")
	{
		t.GET("", h.ListTransporters)
		t.POST("", guard, h.CreateTransporter)
		t.GET("/:id", h.GetTransporter)
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

// ListProducts handles GET /products.
func (h *EntityHandler) ListProducts(c *gin.Context) {
	products := h.rt.Current().Registry.Products()
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// CreateProduct handles POST /products.
func (h *EntityHandler) CreateProduct(c *gin.Context) {
	var req model.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.rt.Current().Registry.AddProduct(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GetProduct handles GET /products/:id.
func (h *EntityHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.rt.Current().Registry.Product(id)
	if err != nil {
		writeError(c, h.logger, err, "failed to get product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// AdjustStock handles POST /products/:id/stock.
func (h *EntityHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.StockAdjustment
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.rt.Current().Registry.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		writeError(c, h.logger, err, "failed to adjust stock")
		return
	}
	c.JSON(http.StatusOK, p)
}

// ── Suppliers ────────────────────────────────────────────────────────────────

// ListSuppliers handles GET /suppliers.
func (h *EntityHandler) ListSuppliers(c *gin.Context) {
	suppliers := h.rt.Current().Registry.Suppliers()
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers, "count": len(suppliers)})
}

// CreateSupplier handles POST /suppliers.
func (h *EntityHandler) CreateSupplier(c *gin.Context) {
	var req model.CreateSupplierRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.rt.Current().Registry.AddSupplier(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "failed to create supplier")
		return
	}
	c.JSON(http.StatusCreated, s)
}

// GetSupplier handles GET /suppliers/:id.
func (h *EntityHandler) GetSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.rt.Current().Registry.Supplier(id)
	if err != nil {
		writeError(c, h.logger, err, "failed to get supplier")
		return
	}
	c.JSON(http.StatusOK, s)
}

// LinkSupplierProduct handles POST /suppliers/:id/products.
func (h *EntityHandler) LinkSupplierProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ProductLink
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.rt.Current().Registry.LinkSupplierProduct(c.Request.Context(), id, req.ProductID)
	if err != nil {
		writeError(c, h.logger, err, "failed to link product")
		return
	}
	c.JSON(http.StatusOK, s)
}

// ── Retailers ────────────────────────────────────────────────────────────────

// ListRetailers handles GET /retailers.
func (h *EntityHandler) ListRetailers(c *gin.Context) {
	retailers := h.rt.Current().Registry.Retailers()
	c.JSON(http.StatusOK, gin.H{"retailers": retailers, "count": len(retailers)})
}

// CreateRetailer handles POST /retailers.
func (h *EntityHandler) CreateRetailer(c *gin.Context) {
	var req model.CreateRetailerRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.rt.Current().Registry.AddRetailer(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "failed to create retailer")
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetRetailer handles GET /retailers/:id.
func (h *EntityHandler) GetRetailer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.rt.Current().Registry.Retailer(id)
	if err != nil {
		writeError(c, h.logger, err, "failed to get retailer")
		return
	}
	c.JSON(http.StatusOK, r)
}

// AddCredit handles POST /retailers/:id/credit.
func (h *EntityHandler) AddCredit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.CreditTopUp
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.rt.Current().Registry.AddCredit(c.Request.Context(), id, req.Amount)
	if err != nil {
		writeError(c, h.logger, err, "failed to add credit")
		return
	}
	c.JSON(http.StatusOK, r)
}

// LinkRetailerProduct handles POST /retailers/:id/products.
func (h *EntityHandler) LinkRetailerProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.ProductLink
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.rt.Current().Registry.LinkRetailerProduct(c.Request.Context(), id, req.ProductID)
	if err != nil {
		writeError(c, h.logger, err, "failed to link product")
		return
	}
	c.JSON(http.StatusOK, r)
}

// ── Transporters ─────────────────────────────────────────────────────────────

// ListTransporters handles GET /transporters.
func (h *EntityHandler) ListTransporters(c *gin.Context) {
	transporters := h.rt.Current().Registry.Transporters()
	c.JSON(http.StatusOK, gin.H{"transporters": transporters, "count": len(transporters)})
}

// CreateTransporter handles POST /transporters.
func (h *EntityHandler) CreateTransporter(c *gin.Context) {
	var req model.CreateTransporterRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.rt.Current().Registry.AddTransporter(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, "failed to create transporter")
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTransporter handles GET /transporters/:id.
func (h *EntityHandler) GetTransporter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.rt.Current().Registry.Transporter(id)
	if err != nil {
		writeError(c, h.logger, err, "failed to get transporter")
		return
	}
	c.JSON(http.StatusOK, t)
}
