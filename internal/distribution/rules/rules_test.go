package rules_test

import (
	"testing"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/distribution/rules"
)

type stubLookup struct {
	transporters map[int]model.Transporter
}

func (s stubLookup) Product(id int) (model.Product, error) {
	return model.Product{}, model.NotFound(model.KindProduct, id)
}

func (s stubLookup) Transporter(id int) (model.Transporter, error) {
	t, ok := s.transporters[id]
	if !ok {
		return model.Transporter{}, model.NotFound(model.KindTransporter, id)
	}
	return t, nil
}

type countingValidator struct {
	ok    bool
	desc  string
	calls *int
}

func (c countingValidator) Validate(*model.Transaction, rules.Lookup) bool {
	*c.calls++
	return c.ok
}

func (c countingValidator) Describe() string { return c.desc }

func TestPriceCeiling(t *testing.T) {
	v := rules.PriceCeiling{Max: 4000}
	if !v.Validate(&model.Transaction{TotalCost: 4000}, nil) {
		t.Error("cost equal to the ceiling must pass")
	}
	if v.Validate(&model.Transaction{TotalCost: 4000.01}, nil) {
		t.Error("cost above the ceiling must fail")
	}
	want := "Price Threshold Contract: Maximum allowed cost is RM4000.00"
	if v.Describe() != want {
		t.Errorf("Describe() = %q", v.Describe())
	}
}

func TestCheckAll_failFast(t *testing.T) {
	var first, second, third int
	e := rules.NewEngine(nil,
		countingValidator{ok: true, desc: "a", calls: &first},
		countingValidator{ok: false, desc: "b", calls: &second},
		countingValidator{ok: false, desc: "c", calls: &third},
	)
	ok, reason := e.CheckAll(&model.Transaction{})
	if ok || reason != "b" {
		t.Errorf("CheckAll() = %v, %q; want false, \"b\"", ok, reason)
	}
	if first != 1 || second != 1 || third != 0 {
		t.Errorf("calls = %d/%d/%d; evaluation must stop at the first failure", first, second, third)
	}
}

func TestCheckAll_allPass(t *testing.T) {
	e := rules.NewEngine(nil, rules.PriceCeiling{Max: 100}, rules.MaxQuantity{Limit: 5})
	ok, reason := e.CheckAll(&model.Transaction{TotalCost: 99, Quantity: 5})
	if !ok || reason != "" {
		t.Errorf("CheckAll() = %v, %q", ok, reason)
	}
}

func TestTransporterCapacity(t *testing.T) {
	lookup := stubLookup{transporters: map[int]model.Transporter{
		1: {ID: 1, MaxCapacityKg: 2000},
	}}
	v := rules.TransporterCapacity{UnitWeightKg: 10}
	tests := []struct {
		name string
		tx   model.Transaction
		want bool
	}{
		{"fits", model.Transaction{TransporterID: 1, Quantity: 200}, true},
		{"too heavy", model.Transaction{TransporterID: 1, Quantity: 201}, false},
		{"unknown transporter", model.Transaction{TransporterID: 9, Quantity: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(&tt.tx, lookup); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	e := rules.FromConfig(nil, rules.Config{})
	got := e.Describe()
	if len(got) != 1 || got[0] != "Price Threshold Contract: Maximum allowed cost is RM4000.00" {
		t.Errorf("default rules: %v", got)
	}

	e = rules.FromConfig(nil, rules.Config{PriceCeiling: 500, MaxQuantity: 50, UnitWeightKg: 1})
	if n := len(e.Describe()); n != 3 {
		t.Errorf("expected 3 rules, got %d", n)
	}
	ok, reason := e.CheckAll(&model.Transaction{TotalCost: 10, Quantity: 51})
	if ok || reason != "Quantity Limit Contract: Maximum quantity per order is 50 units" {
		t.Errorf("CheckAll() = %v, %q", ok, reason)
	}
}
