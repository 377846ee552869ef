package rules

import (
	"fmt"

	"github.com/agrodist/agrodist/internal/distribution/model"
)

// DefaultPriceCeiling is the total-cost limit applied when none is configured.
const DefaultPriceCeiling = 4000.0

// PriceCeiling rejects transactions whose total cost exceeds Max.
type PriceCeiling struct {
	Max float64
}

// Validate implements Validator.
func (c PriceCeiling) Validate(tx *model.Transaction, _ Lookup) bool {
	return tx.TotalCost <= c.Max
}

// Describe implements Validator.
func (c PriceCeiling) Describe() string {
	return fmt.Sprintf("Price Threshold Contract: Maximum allowed cost is RM%.2f", c.Max)
}

// MaxQuantity rejects transactions ordering more than Limit units.
type MaxQuantity struct {
	Limit int
}

// Validate implements Validator.
func (q MaxQuantity) Validate(tx *model.Transaction, _ Lookup) bool {
	return tx.Quantity <= q.Limit
}

// Describe implements Validator.
func (q MaxQuantity) Describe() string {
	return fmt.Sprintf("Quantity Limit Contract: Maximum quantity per order is %d units", q.Limit)
}

// TransporterCapacity rejects loads heavier than the chosen transporter can
// carry. Load weight is quantity × UnitWeightKg.
type TransporterCapacity struct {
	UnitWeightKg float64
}

// Validate implements Validator. An unknown transporter fails the rule.
func (c TransporterCapacity) Validate(tx *model.Transaction, lookup Lookup) bool {
	if lookup == nil {
		return false
	}
	t, err := lookup.Transporter(tx.TransporterID)
	if err != nil {
		return false
	}
	return float64(tx.Quantity)*c.UnitWeightKg <= float64(t.MaxCapacityKg)
}

// Describe implements Validator.
func (c TransporterCapacity) Describe() string {
	return fmt.Sprintf("Transporter Capacity Contract: load of %.2fkg per unit must fit the transporter", c.UnitWeightKg)
}

// Config selects the validators built by FromConfig. Zero values disable the
// optional rules.
type Config struct {
	PriceCeiling float64
	MaxQuantity  int
	UnitWeightKg float64
}

// FromConfig builds the default engine: the price ceiling first, then any
// enabled optional rules.
func FromConfig(lookup Lookup, cfg Config) *Engine {
	ceiling := cfg.PriceCeiling
	if ceiling <= 0 {
		ceiling = DefaultPriceCeiling
	}
	vs := []Validator{PriceCeiling{Max: ceiling}}
	if cfg.MaxQuantity > 0 {
		vs = append(vs, MaxQuantity{Limit: cfg.MaxQuantity})
	}
	if cfg.UnitWeightKg > 0 {
		vs = append(vs, TransporterCapacity{UnitWeightKg: cfg.UnitWeightKg})
	}
	return NewEngine(lookup, vs...)
}
