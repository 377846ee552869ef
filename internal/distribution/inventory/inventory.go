// Package inventory computes advisory per-retailer stock allocations from
// completed transaction history.
package inventory

import (
	"context"
	"fmt"

	"github.com/agrodist/agrodist/internal/distribution/history"
	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/ledger"
	"go.uber.org/zap"
)

const (
	// SafetyStock is the minimum allocation per retailer before rescaling.
	SafetyStock = 10

	// HoldingCostRate is the annual holding cost as a fraction of unit price.
	HoldingCostRate = 0.2
)

// Entities is the read-only view of the registry the allocator needs.
type Entities interface {
	Product(id int) (model.Product, error)
	Retailers() []*model.Retailer
}

// Allocation is one retailer's share of the stock.
type Allocation struct {
	RetailerID       int    `json:"retailer_id"`
	RetailerName     string `json:"retailer_name"`
	HistoricalDemand int    `json:"historical_demand"`
	Units            int    `json:"units"`
}

// Plan is an advisory allocation of a product's stock across retailers.
type Plan struct {
	ProductID   int          `json:"product_id"`
	ProductName string       `json:"product_name"`
	Stock       int          `json:"stock"`
	TotalDemand int          `json:"total_demand"`
	Allocations []Allocation `json:"allocations"`
	// Rescaled is set when the floored allocations exceeded the stock and
	// were scaled down. Rescaled allocations may sit below SafetyStock.
	Rescaled             bool    `json:"rescaled"`
	HoldingCostPerUnit   float64 `json:"holding_cost_per_unit"`
	BaselineHoldingCost  float64 `json:"baseline_holding_cost"`
	OptimizedHoldingCost float64 `json:"optimized_holding_cost"`
	Savings              float64 `json:"savings"`
}

// Summary is the ledger payload recorded when a plan is confirmed.
func (p *Plan) Summary() string {
	return fmt.Sprintf("Inventory Optimization | Product: %d | Total Stock: %d | Optimization Savings: %.2f",
		p.ProductID, p.Stock, p.Savings)
}

// Allocator plans and records inventory allocations.
type Allocator struct {
	entities Entities
	history  history.Store
	ledger   ledger.Ledger
	logger   *zap.Logger
}

// NewAllocator creates an Allocator.
func NewAllocator(entities Entities, store history.Store, l ledger.Ledger, logger *zap.Logger) *Allocator {
	return &Allocator{entities: entities, history: store, ledger: l, logger: logger}
}

// Plan computes the allocation for productID over a consistent snapshot of
// the retailers. Nothing is recorded; see Record.
func (a *Allocator) Plan(ctx context.Context, productID int) (*Plan, error) {
	product, err := a.entities.Product(productID)
	if err != nil {
		return nil, err
	}
	retailers := a.entities.Retailers()
	if len(retailers) == 0 {
		return nil, model.Invalid("inventory planning needs at least one retailer")
	}

	txs, err := a.history.ListCompletedByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list completed transactions: %w", err)
	}
	byRetailer := make(map[int]int)
	total := 0
	for _, tx := range txs {
		byRetailer[tx.RetailerID] += tx.Quantity
		total += tx.Quantity
	}

	demand := make([]int, len(retailers))
	for i, r := range retailers {
		demand[i] = byRetailer[r.ID]
	}
	units, rescaled := Allocate(product.Stock, demand, total)

	plan := &Plan{
		ProductID:          product.ID,
		ProductName:        product.Name,
		Stock:              product.Stock,
		TotalDemand:        total,
		Allocations:        make([]Allocation, len(retailers)),
		Rescaled:           rescaled,
		HoldingCostPerUnit: product.Price * HoldingCostRate,
	}
	equal := product.Stock / len(retailers)
	allocated := 0
	for i, r := range retailers {
		plan.Allocations[i] = Allocation{
			RetailerID:       r.ID,
			RetailerName:     r.Name,
			HistoricalDemand: demand[i],
			Units:            units[i],
		}
		allocated += units[i]
	}
	plan.BaselineHoldingCost = float64(equal*len(retailers)) * plan.HoldingCostPerUnit
	plan.OptimizedHoldingCost = float64(allocated) * plan.HoldingCostPerUnit
	plan.Savings = plan.BaselineHoldingCost - plan.OptimizedHoldingCost
	return plan, nil
}

// Record appends the confirmed plan to the ledger. No stock moves.
func (a *Allocator) Record(ctx context.Context, plan *Plan) (*ledger.Block, error) {
	b, err := a.ledger.Append(ctx, plan.Summary())
	if err != nil {
		return nil, fmt.Errorf("record inventory plan: %w", err)
	}
	a.logger.Info("inventory plan recorded",
		zap.Int("product_id", plan.ProductID),
		zap.Float64("savings", plan.Savings),
		zap.Int("block", b.Index),
	)
	return b, nil
}

// Allocate splits stock across retailers in proportion to demand, where
// totalDemand is the sum of all historical demand for the product. With no
// demand the stock is split equally. Every share is raised to SafetyStock;
// if the shares then exceed stock they are scaled down by stock/sum with
// integer truncation and rescaled is true. The result never sums above
// stock and is never negative.
func Allocate(stock int, demand []int, totalDemand int) (units []int, rescaled bool) {
	n := len(demand)
	units = make([]int, n)
	if n == 0 {
		return units, false
	}
	stock = max(stock, 0)

	sum := 0
	for i, d := range demand {
		var u int
		if totalDemand > 0 {
			u = stock * d / totalDemand
		} else {
			u = stock / n
		}
		u = max(u, SafetyStock)
		units[i] = u
		sum += u
	}

	if sum > stock {
		for i := range units {
			units[i] = units[i] * stock / sum
		}
		rescaled = true
	}
	return units, rescaled
}
