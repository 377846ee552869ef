package model_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/agrodist/agrodist/internal/distribution/model"
)

func TestProductUpdateStock(t *testing.T) {
	p := &model.Product{ID: 1, Name: "Rice", Price: 5.5, Stock: 10}
	if err := p.UpdateStock(-20); !errors.Is(err, model.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if p.Stock != 10 {
		t.Errorf("stock changed on rejected update: %d", p.Stock)
	}
	if err := p.UpdateStock(-10); err != nil {
		t.Fatal(err)
	}
	if p.Stock != 0 || p.HasEnoughStock(1) {
		t.Errorf("stock = %d", p.Stock)
	}
}

func TestRetailerDeductCredit(t *testing.T) {
	r := &model.Retailer{CreditBalance: 100, AnnualCreditBalance: 1000}
	if r.DeductCredit(100.01) {
		t.Fatal("deduction above balance must fail")
	}
	if r.CreditBalance != 100 || r.AnnualCreditBalance != 1000 {
		t.Errorf("balances changed on failed deduction")
	}
	if !r.DeductCredit(40) {
		t.Fatal("deduction within balance must succeed")
	}
	if r.CreditBalance != 60 || r.AnnualCreditBalance != 960 {
		t.Errorf("balances: %v / %v", r.CreditBalance, r.AnnualCreditBalance)
	}
	r.AddCredit(15)
	if r.CreditBalance != 75 || r.AnnualCreditBalance != 975 {
		t.Errorf("after top-up: %v / %v", r.CreditBalance, r.AnnualCreditBalance)
	}
}

func TestSupplierProducts(t *testing.T) {
	s := &model.Supplier{}
	s.AddProduct(2)
	s.AddProduct(2)
	s.AddProduct(1)
	if !reflect.DeepEqual(s.ProductIDs, []int{2, 1}) {
		t.Errorf("ProductIDs = %v", s.ProductIDs)
	}
	if !s.Supplies(1) || s.Supplies(3) {
		t.Error("Supplies() mismatch")
	}
	c := s.Clone()
	c.AddProduct(9)
	if s.Supplies(9) {
		t.Error("Clone shares product slice")
	}
}

func TestParseOrderType(t *testing.T) {
	tests := []struct {
		in      string
		want    model.OrderType
		wantErr bool
	}{
		{"", model.OrderRegular, false},
		{"Regular", model.OrderRegular, false},
		{"seasonal", model.OrderSeasonal, false},
		{"Express", "", true},
	}
	for _, tt := range tests {
		got, err := model.ParseOrderType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrderType(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOrderType(%q) = %q, want %q", tt.in, got, tt.want)
		}
		var inv *model.InvalidRequestError
		if tt.wantErr && !errors.As(err, &inv) {
			t.Errorf("expected InvalidRequestError, got %T", err)
		}
	}
}

func TestErrorsClassify(t *testing.T) {
	err := model.InvalidBecause(model.ErrInsufficientStock, "product 1 has 10 units, 20 requested")
	var inv *model.InvalidRequestError
	if !errors.As(err, &inv) {
		t.Fatal("expected InvalidRequestError")
	}
	if !errors.Is(err, model.ErrInsufficientStock) {
		t.Error("sentinel must be reachable through Unwrap")
	}
	if err.Error() != "product 1 has 10 units, 20 requested" {
		t.Errorf("message: %q", err.Error())
	}

	nf := model.NotFound(model.KindRetailer, 7)
	var nfe *model.NotFoundError
	if !errors.As(nf, &nfe) || nfe.Kind != model.KindRetailer || nfe.ID != 7 {
		t.Errorf("NotFound: %v", nf)
	}
	if nf.Error() != "Retailer 7 not found" {
		t.Errorf("message: %q", nf.Error())
	}
}

func TestTransactionSummary(t *testing.T) {
	tx := &model.Transaction{
		ID: 3, SupplierID: 1, RetailerID: 2, ProductID: 1, TransporterID: 1,
		Quantity: 100, TotalCost: 565.391, CreatedAt: "20250314:09:26",
		Status: model.StatusCompleted, OrderType: model.OrderRegular,
	}
	want := "Transaction ID: 3 | Supplier ID: 1 | Retailer ID: 2 | Product ID: 1 | Quantity: 100 | Total Cost: RM565.39 | Timestamp: 20250314:09:26 | Status: Completed | Order Type: Regular"
	if got := tx.Summary(); got != want {
		t.Errorf("Summary()\n got %q\nwant %q", got, want)
	}
}
