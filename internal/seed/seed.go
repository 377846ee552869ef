// Package seed loads the sample catalogue used for demos and fresh
// installations: three products, two suppliers, three Klang Valley retailers
// and two transporters.
package seed

import (
	"context"
	"fmt"

	"github.com/agrodist/agrodist/internal/distribution/model"
)

// Registry is the subset of *registry.Registry the seeder writes through.
type Registry interface {
	AddProduct(ctx context.Context, req model.CreateProductRequest) (model.Product, error)
	AddSupplier(ctx context.Context, req model.CreateSupplierRequest) (*model.Supplier, error)
	AddRetailer(ctx context.Context, req model.CreateRetailerRequest) (*model.Retailer, error)
	AddTransporter(ctx context.Context, req model.CreateTransporterRequest) (model.Transporter, error)
}

// ── Sample data ──────────────────────────────────────────────────────────────

var products = []model.CreateProductRequest{
	{Name: "Rice", Price: 5.50, Stock: 1000},
	{Name: "Vegetables", Price: 3.20, Stock: 800},
	{Name: "Fruits", Price: 4.75, Stock: 600},
}

// Product ids refer to the order of products above, starting at 1.
var suppliers = []model.CreateSupplierRequest{
	{
		Name:       "Malayan Agro",
		Location:   "Lot 348, Kampung Datuk Keramat, 50400 Kuala Lumpur",
		Branch:     "Federal Territory of Kuala Lumpur",
		Lat:        3.168,
		Lon:        101.708,
		ProductIDs: []int{1, 2},
	},
	{
		Name:       "Farm Fresh Produce",
		Location:   "Jalan Tun Razak, 55000 Kuala Lumpur",
		Branch:     "Federal Territory of Kuala Lumpur",
		Lat:        3.161,
		Lon:        101.720,
		ProductIDs: []int{2, 3},
	},
}

var retailers = []model.CreateRetailerRequest{
	{Name: "SuperMart", Location: "Bukit Bintang, 55100 Kuala Lumpur", Lat: 3.148, Lon: 101.698, CreditBalance: 10000, AnnualCreditBalance: 100000},
	{Name: "FreshMart", Location: "Petaling Jaya, 47800 Selangor", Lat: 3.107, Lon: 101.607, CreditBalance: 8000, AnnualCreditBalance: 80000},
	{Name: "QuickMart", Location: "Shah Alam, 40000 Selangor", Lat: 3.073, Lon: 101.518, CreditBalance: 5000, AnnualCreditBalance: 50000},
}

var transporters = []model.CreateTransporterRequest{
	{Name: "FastTruck", Type: "Ordinary Ground Transfer", CostPerKm: 2.50, MaxCapacityKg: 2000},
	{Name: "SpeedyDel", Type: "Express Delivery", CostPerKm: 3.75, MaxCapacityKg: 1500},
}

// Load adds the sample catalogue to an empty registry. Product ids in the
// supplier definitions assume the registry assigns ids from 1.
func Load(ctx context.Context, reg Registry) error {
	for _, p := range products {
		if _, err := reg.AddProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	for _, s := range suppliers {
		if _, err := reg.AddSupplier(ctx, s); err != nil {
			return fmt.Errorf("seed supplier %q: %w", s.Name, err)
		}
	}
	for _, r := range retailers {
		if _, err := reg.AddRetailer(ctx, r); err != nil {
			return fmt.Errorf("seed retailer %q: %w", r.Name, err)
		}
	}
	for _, t := range transporters {
		if _, err := reg.AddTransporter(ctx, t); err != nil {
			return fmt.Errorf("seed transporter %q: %w", t.Name, err)
		}
	}
	return nil
}
