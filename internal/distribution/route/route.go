// Package route plans delivery loops from a supplier through a set of
// retailers with a greedy nearest-neighbour heuristic. Plans are not optimal
// tours.
package route

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/geo"
	"github.com/agrodist/agrodist/internal/ledger"
	"go.uber.org/zap"
)

// Entities is the read-only view of the registry the optimizer needs.
type Entities interface {
	Supplier(id int) (*model.Supplier, error)
	Transporter(id int) (model.Transporter, error)
	Retailers() []*model.Retailer
}

// Request selects the supplier, the transporter pricing the loop, and the
// retailers to visit. No RetailerIDs means every retailer.
type Request struct {
	SupplierID    int   `json:"supplier_id"`
	TransporterID int   `json:"transporter_id"`
	RetailerIDs   []int `json:"retailer_ids,omitempty"`
}

// Plan is a closed delivery loop supplier → retailers → supplier.
type Plan struct {
	SupplierID int   `json:"supplier_id"`
	Route      []int `json:"route"`
	// LegsKm holds supplier→first, each consecutive hop, and last→supplier.
	LegsKm          []float64 `json:"legs_km"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	TransporterID   int       `json:"transporter_id"`
	TransportCost   float64   `json:"transport_cost"`
}

// Stop is a place the loop must visit.
type Stop struct {
	ID    int
	Point geo.Point
}

// Optimizer builds and records route plans.
type Optimizer struct {
	entities Entities
	ledger   ledger.Ledger
	logger   *zap.Logger
}

// NewOptimizer creates an Optimizer.
func NewOptimizer(entities Entities, l ledger.Ledger, logger *zap.Logger) *Optimizer {
	return &Optimizer{entities: entities, ledger: l, logger: logger}
}

// Optimize plans the loop for req and appends one summary block to the
// ledger. It never mutates stock or credit.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Plan, error) {
	supplier, err := o.entities.Supplier(req.SupplierID)
	if err != nil {
		return nil, err
	}
	transporter, err := o.entities.Transporter(req.TransporterID)
	if err != nil {
		return nil, err
	}
	stops, err := o.selectStops(req.RetailerIDs)
	if err != nil {
		return nil, err
	}
	if len(stops) < 2 {
		return nil, model.InvalidBecause(model.ErrInsufficientRetailers,
			"route planning needs at least 2 retailers, got %d", len(stops))
	}

	order, legs, total := NearestNeighbor(supplier.Point(), stops)
	plan := &Plan{
		SupplierID:      supplier.ID,
		Route:           order,
		LegsKm:          legs,
		TotalDistanceKm: total,
		TransporterID:   transporter.ID,
		TransportCost:   transporter.CostPerKm * total,
	}

	if _, err := o.ledger.Append(ctx, plan.Summary()); err != nil {
		o.logger.Error("ledger append failed (non-fatal)", zap.String("kind", "route"), zap.Error(err))
	}
	o.logger.Info("route optimized",
		zap.Int("supplier_id", plan.SupplierID),
		zap.Ints("route", plan.Route),
		zap.Float64("distance_km", plan.TotalDistanceKm),
	)
	return plan, nil
}

// selectStops resolves ids against one consistent retailer snapshot, in the
// order given. Duplicate ids are visited once.
func (o *Optimizer) selectStops(ids []int) ([]Stop, error) {
	retailers := o.entities.Retailers()
	if len(ids) == 0 {
		stops := make([]Stop, len(retailers))
		for i, r := range retailers {
			stops[i] = Stop{ID: r.ID, Point: r.Point()}
		}
		return stops, nil
	}

	byID := make(map[int]*model.Retailer, len(retailers))
	for _, r := range retailers {
		byID[r.ID] = r
	}
	seen := make(map[int]bool, len(ids))
	stops := make([]Stop, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		r, ok := byID[id]
		if !ok {
			return nil, model.NotFound(model.KindRetailer, id)
		}
		seen[id] = true
		stops = append(stops, Stop{ID: r.ID, Point: r.Point()})
	}
	return stops, nil
}

// Summary is the ledger payload for the plan.
func (p *Plan) Summary() string {
	ids := make([]string, len(p.Route))
	for i, id := range p.Route {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("Optimized Route | Supplier: %d | Retailers: %s | Distance: %.2f | Transporter: %d | Cost: %.2f",
		p.SupplierID, strings.Join(ids, ","), p.TotalDistanceKm, p.TransporterID, p.TransportCost)
}

// NearestNeighbor orders stops starting from the one closest to origin and
// then repeatedly hopping to the closest unvisited stop. Ties go to the stop
// that comes first in stops. It returns the visiting order, the leg lengths
// including the return to origin, and the loop length.
func NearestNeighbor(origin geo.Point, stops []Stop) (order []int, legs []float64, total float64) {
	if len(stops) == 0 {
		return []int{}, []float64{}, 0
	}
	visited := make([]bool, len(stops))
	order = make([]int, 0, len(stops))
	legs = make([]float64, 0, len(stops)+1)

	cur := origin
	for range stops {
		next, best := -1, math.MaxFloat64
		for j, s := range stops {
			if visited[j] {
				continue
			}
			if d := geo.DistanceKm(cur, s.Point); d < best {
				next, best = j, d
			}
		}
		visited[next] = true
		order = append(order, stops[next].ID)
		legs = append(legs, best)
		total += best
		cur = stops[next].Point
	}
	back := geo.DistanceKm(cur, origin)
	legs = append(legs, back)
	total += back
	return order, legs, total
}
