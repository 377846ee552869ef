package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/geo"
	"go.uber.org/zap"
)

// AddProduct validates req, stores a new product and records it.
func (r *Registry) AddProduct(ctx context.Context, req model.CreateProductRequest) (model.Product, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return model.Product{}, model.Invalid("product name is required")
	case req.Price < 0:
		return model.Product{}, model.Invalid("price must not be negative")
	case req.Stock < 0:
		return model.Product{}, model.Invalid("stock must not be negative")
	}

	r.mu.Lock()
	p := model.Product{ID: r.next.Product, Name: name, Price: req.Price, Stock: req.Stock}
	r.next.Product++
	r.products[p.ID] = &productSlot{p: p}
	r.mu.Unlock()

	r.logger.Info("product added", zap.Int("product_id", p.ID), zap.String("name", p.Name))
	r.appendLedger(ctx, "Added Product | "+p.String())
	return p, nil
}

// AddSupplier validates req, stores a new supplier and records it. Every
// listed product must exist.
func (r *Registry) AddSupplier(ctx context.Context, req model.CreateSupplierRequest) (*model.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.Invalid("supplier name is required")
	}
	if err := validPoint(req.Lat, req.Lon); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if err := r.checkProductsLocked(req.ProductIDs); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	s := &model.Supplier{
		ID:       r.next.Supplier,
		Name:     name,
		Location: req.Location,
		Branch:   req.Branch,
		Lat:      req.Lat,
		Lon:      req.Lon,
	}
	for _, pid := range req.ProductIDs {
		s.AddProduct(pid)
	}
	r.next.Supplier++
	r.suppliers[s.ID] = s
	out := s.Clone()
	r.mu.Unlock()

	r.logger.Info("supplier added", zap.Int("supplier_id", out.ID), zap.String("name", out.Name))
	r.appendLedger(ctx, "Added Supplier | "+out.String())
	return out, nil
}

// AddRetailer validates req, stores a new retailer and records it.
func (r *Registry) AddRetailer(ctx context.Context, req model.CreateRetailerRequest) (*model.Retailer, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, model.Invalid("retailer name is required")
	case req.CreditBalance < 0 || req.AnnualCreditBalance < 0:
		return nil, model.Invalid("credit balances must not be negative")
	}
	if err := validPoint(req.Lat, req.Lon); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if err := r.checkProductsLocked(req.ProductIDs); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	rt := model.Retailer{
		ID:                  r.next.Retailer,
		Name:                name,
		Location:            req.Location,
		Lat:                 req.Lat,
		Lon:                 req.Lon,
		CreditBalance:       req.CreditBalance,
		AnnualCreditBalance: req.AnnualCreditBalance,
	}
	for _, pid := range req.ProductIDs {
		rt.AddProduct(pid)
	}
	r.next.Retailer++
	r.retailers[rt.ID] = &retailerSlot{r: rt}
	out := rt.Clone()
	r.mu.Unlock()

	r.logger.Info("retailer added", zap.Int("retailer_id", out.ID), zap.String("name", out.Name))
	r.appendLedger(ctx, "Added Retailer | "+out.String())
	return out, nil
}

// AddTransporter validates req, stores a new transporter and records it.
func (r *Registry) AddTransporter(ctx context.Context, req model.CreateTransporterRequest) (model.Transporter, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return model.Transporter{}, model.Invalid("transporter name is required")
	case req.CostPerKm < 0:
		return model.Transporter{}, model.Invalid("cost per km must not be negative")
	case req.MaxCapacityKg < 0:
		return model.Transporter{}, model.Invalid("max capacity must not be negative")
	}

	r.mu.Lock()
	t := &model.Transporter{
		ID:            r.next.Transporter,
		Name:          name,
		Type:          req.Type,
		CostPerKm:     req.CostPerKm,
		MaxCapacityKg: req.MaxCapacityKg,
	}
	r.next.Transporter++
	r.transporters[t.ID] = t
	out := *t
	r.mu.Unlock()

	r.logger.Info("transporter added", zap.Int("transporter_id", out.ID), zap.String("name", out.Name))
	r.appendLedger(ctx, "Added Transporter | "+out.String())
	return out, nil
}

// LinkSupplierProduct adds productID to the supplier's product set.
func (r *Registry) LinkSupplierProduct(ctx context.Context, supplierID, productID int) (*model.Supplier, error) {
	r.mu.Lock()
	s, ok := r.suppliers[supplierID]
	if !ok {
		r.mu.Unlock()
		return nil, model.NotFound(model.KindSupplier, supplierID)
	}
	if _, ok := r.products[productID]; !ok {
		r.mu.Unlock()
		return nil, model.NotFound(model.KindProduct, productID)
	}
	s.AddProduct(productID)
	out := s.Clone()
	r.mu.Unlock()

	r.appendLedger(ctx, fmt.Sprintf("Linked Product | Supplier ID: %d | Product ID: %d", supplierID, productID))
	return out, nil
}

// LinkRetailerProduct adds productID to the retailer's product set.
func (r *Registry) LinkRetailerProduct(ctx context.Context, retailerID, productID int) (*model.Retailer, error) {
	r.mu.RLock()
	slot, ok := r.retailers[retailerID]
	_, hasProduct := r.products[productID]
	r.mu.RUnlock()
	if !ok {
		return nil, model.NotFound(model.KindRetailer, retailerID)
	}
	if !hasProduct {
		return nil, model.NotFound(model.KindProduct, productID)
	}

	slot.mu.Lock()
	slot.r.AddProduct(productID)
	out := slot.r.Clone()
	slot.mu.Unlock()

	r.appendLedger(ctx, fmt.Sprintf("Linked Product | Retailer ID: %d | Product ID: %d", retailerID, productID))
	return out, nil
}

// AdjustStock applies delta to a product's stock. The result must not go
// below zero.
func (r *Registry) AdjustStock(ctx context.Context, productID, delta int) (model.Product, error) {
	if delta == 0 {
		return model.Product{}, model.Invalid("stock delta must not be zero")
	}
	r.mu.RLock()
	slot, ok := r.products[productID]
	r.mu.RUnlock()
	if !ok {
		return model.Product{}, model.NotFound(model.KindProduct, productID)
	}

	slot.mu.Lock()
	if err := slot.p.UpdateStock(delta); err != nil {
		stock := slot.p.Stock
		slot.mu.Unlock()
		return model.Product{}, model.InvalidBecause(err, "product %d has %d units, cannot apply %d", productID, stock, delta)
	}
	out := slot.p
	slot.mu.Unlock()

	r.appendLedger(ctx, fmt.Sprintf("Stock Adjustment | Product ID: %d | Delta: %d | Stock: %d", productID, delta, out.Stock))
	return out, nil
}

// AddCredit tops up a retailer's credit and annual credit balances.
func (r *Registry) AddCredit(ctx context.Context, retailerID int, amount float64) (*model.Retailer, error) {
	if amount <= 0 {
		return nil, model.Invalid("credit amount must be positive")
	}
	r.mu.RLock()
	slot, ok := r.retailers[retailerID]
	r.mu.RUnlock()
	if !ok {
		return nil, model.NotFound(model.KindRetailer, retailerID)
	}

	slot.mu.Lock()
	slot.r.AddCredit(amount)
	out := slot.r.Clone()
	slot.mu.Unlock()

	r.appendLedger(ctx, fmt.Sprintf("Credit Top-up | Retailer ID: %d | Amount: RM%.2f | Credit Balance: RM%.2f",
		retailerID, amount, out.CreditBalance))
	return out, nil
}

// checkProductsLocked returns NotFound for the first unknown product id.
// Callers hold r.mu.
func (r *Registry) checkProductsLocked(ids []int) error {
	for _, id := range ids {
		if _, ok := r.products[id]; !ok {
			return model.NotFound(model.KindProduct, id)
		}
	}
	return nil
}

func validPoint(lat, lon float64) error {
	if !(geo.Point{Lat: lat, Lon: lon}).Valid() {
		return model.Invalid("coordinates out of range: lat %.6f lon %.6f", lat, lon)
	}
	return nil
}
