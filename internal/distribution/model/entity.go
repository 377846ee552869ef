package model

import (
	"fmt"
	"slices"

	"github.com/agrodist/agrodist/internal/geo"
)

// Product is a stocked agricultural good.
type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// HasEnoughStock reports whether the product can cover quantity.
func (p *Product) HasEnoughStock(quantity int) bool {
	return p.Stock >= quantity
}

// UpdateStock applies delta to the stock level. A result below zero is
// rejected and leaves the stock unchanged.
func (p *Product) UpdateStock(delta int) error {
	if p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

// String renders the product as it appears in ledger entries.
func (p *Product) String() string {
	return fmt.Sprintf("Product ID: %d | Name: %s | Price: RM%.2f | Stock: %d", p.ID, p.Name, p.Price, p.Stock)
}

// Supplier ships products from a fixed location.
type Supplier struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Branch     string  `json:"branch"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ProductIDs []int   `json:"product_ids"`
}

// Point returns the supplier's coordinates.
func (s *Supplier) Point() geo.Point { return geo.Point{Lat: s.Lat, Lon: s.Lon} }

// Supplies reports whether productID is in the supplier's product set.
func (s *Supplier) Supplies(productID int) bool {
	return slices.Contains(s.ProductIDs, productID)
}

// AddProduct links productID to the supplier. Duplicates are ignored.
func (s *Supplier) AddProduct(productID int) {
	s.ProductIDs = addID(s.ProductIDs, productID)
}

func (s *Supplier) String() string {
	return fmt.Sprintf("Supplier ID: %d | Name: %s | Location: %s | Branch: %s", s.ID, s.Name, s.Location, s.Branch)
}

// Clone returns a deep copy.
func (s *Supplier) Clone() *Supplier {
	c := *s
	c.ProductIDs = slices.Clone(s.ProductIDs)
	return &c
}

// Retailer buys products on credit.
type Retailer struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
	Location            string  `json:"location"`
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	CreditBalance       float64 `json:"credit_balance"`
	AnnualCreditBalance float64 `json:"annual_credit_balance"`
	ProductIDs          []int   `json:"product_ids"`
}

// Point returns the retailer's coordinates.
func (r *Retailer) Point() geo.Point { return geo.Point{Lat: r.Lat, Lon: r.Lon} }

// DeductCredit charges amount against both balances. It succeeds only when
// the current credit balance covers the amount; otherwise nothing changes.
func (r *Retailer) DeductCredit(amount float64) bool {
	if r.CreditBalance < amount {
		return false
	}
	r.CreditBalance -= amount
	r.AnnualCreditBalance -= amount
	return true
}

// AddCredit tops up both balances.
func (r *Retailer) AddCredit(amount float64) {
	r.CreditBalance += amount
	r.AnnualCreditBalance += amount
}

// AddProduct links productID to the retailer. Duplicates are ignored.
func (r *Retailer) AddProduct(productID int) {
	r.ProductIDs = addID(r.ProductIDs, productID)
}

func (r *Retailer) String() string {
	return fmt.Sprintf("Retailer ID: %d | Name: %s | Location: %s | Credit Balance: RM%.2f | Annual Credit Balance: RM%.2f",
		r.ID, r.Name, r.Location, r.CreditBalance, r.AnnualCreditBalance)
}

// Clone returns a deep copy.
func (r *Retailer) Clone() *Retailer {
	c := *r
	c.ProductIDs = slices.Clone(r.ProductIDs)
	return &c
}

// Transporter moves goods at a per-kilometre rate.
type Transporter struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	CostPerKm     float64 `json:"cost_per_km"`
	MaxCapacityKg int     `json:"max_capacity_kg"`
}

func (t *Transporter) String() string {
	return fmt.Sprintf("Transporter ID: %d | Name: %s | Type: %s | Cost/km: RM%.2f | Max Capacity: %dkg",
		t.ID, t.Name, t.Type, t.CostPerKm, t.MaxCapacityKg)
}

func addID(ids []int, id int) []int {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
