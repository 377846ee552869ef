package settlement

import (
	"context"
	"fmt"
	"slices"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"go.uber.org/zap"
)

// ProductVolume is the completed quantity for one product.
type ProductVolume struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Report summarises the transaction history.
type Report struct {
	Completed    int             `json:"completed"`
	Failed       int             `json:"failed"`
	TotalRevenue float64         `json:"total_revenue"`
	Products     []ProductVolume `json:"products"`
}

// Report aggregates completed and failed counts, revenue from completed
// transactions, and completed quantity per product in product id order.
func (e *Engine) Report(ctx context.Context) (*Report, error) {
	txs, err := e.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	rep := &Report{Products: []ProductVolume{}}
	quantities := make(map[int]int)
	for _, tx := range txs {
		switch tx.Status {
		case model.StatusCompleted:
			rep.Completed++
			rep.TotalRevenue += tx.TotalCost
			quantities[tx.ProductID] += tx.Quantity
		case model.StatusFailed:
			rep.Failed++
		}
	}

	ids := make([]int, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		v := ProductVolume{ProductID: id, Quantity: quantities[id]}
		if p, err := e.entities.Product(id); err == nil {
			v.Name = p.Name
		}
		rep.Products = append(rep.Products, v)
	}
	return rep, nil
}

// Leg is one order placed for every retailer during a seasonal run.
type Leg struct {
	SupplierID    int `json:"supplier_id"`
	ProductID     int `json:"product_id"`
	TransporterID int `json:"transporter_id"`
	Quantity      int `json:"quantity"`
}

// Scenario is a seasonal demand run: a high-demand and a normal-demand
// order for each retailer.
type Scenario struct {
	HighDemand   Leg `json:"high_demand"`
	NormalDemand Leg `json:"normal_demand"`
}

// DefaultScenario orders 100 units of product 1 from supplier 1 on
// transporter 1 and 50 units of product 2 from supplier 2 on transporter 2.
func DefaultScenario() Scenario {
	return Scenario{
		HighDemand:   Leg{SupplierID: 1, ProductID: 1, TransporterID: 1, Quantity: 100},
		NormalDemand: Leg{SupplierID: 2, ProductID: 2, TransporterID: 2, Quantity: 50},
	}
}

// SeasonalResult lists the transactions a seasonal run recorded and the
// requests it could not place.
type SeasonalResult struct {
	Transactions []*model.Transaction `json:"transactions"`
	Errors       []string             `json:"errors"`
}

// RunSeasonal places the scenario's two Seasonal orders for every retailer,
// in retailer id order. A precondition failure for one order is collected
// and the run continues.
func (e *Engine) RunSeasonal(ctx context.Context, sc Scenario) *SeasonalResult {
	res := &SeasonalResult{Transactions: []*model.Transaction{}, Errors: []string{}}
	for _, rt := range e.entities.Retailers() {
		for _, leg := range []Leg{sc.HighDemand, sc.NormalDemand} {
			tx, err := e.CreateTransaction(ctx, Request{
				SupplierID:    leg.SupplierID,
				RetailerID:    rt.ID,
				ProductID:     leg.ProductID,
				TransporterID: leg.TransporterID,
				Quantity:      leg.Quantity,
				OrderType:     string(model.OrderSeasonal),
			})
			if err != nil {
				e.logger.Warn("seasonal order skipped", zap.Int("retailer_id", rt.ID), zap.Error(err))
				res.Errors = append(res.Errors, fmt.Sprintf("retailer %d: %v", rt.ID, err))
				continue
			}
			res.Transactions = append(res.Transactions, tx)
		}
	}
	return res
}
