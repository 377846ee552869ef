package registry_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/distribution/registry"
	"go.uber.org/zap"
)

func TestSaveLoad_roundTrip(t *testing.T) {
	dir := t.TempDir()
	r, _ := newRegistry(t)
	rice := mustProduct(t, r, "Rice | Grade A", 5.5, 1000)
	_, _ = r.AddSupplier(ctx, model.CreateSupplierRequest{Name: "Malayan Agro", Location: "Kuala Lumpur", Branch: "Main",
		Lat: 3.168, Lon: 101.708, ProductIDs: []int{rice.ID}})
	_, _ = r.AddRetailer(ctx, model.CreateRetailerRequest{Name: "SuperMart", Lat: 3.148, Lon: 101.698,
		CreditBalance: 10000, AnnualCreditBalance: 100000})
	_, _ = r.AddTransporter(ctx, model.CreateTransporterRequest{Name: "FastTruck", Type: "Ordinary Ground Transfer",
		CostPerKm: 2.5, MaxCapacityKg: 2000})
	r.NextTransactionID()

	if err := r.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded := registry.New(nil, zap.NewNop())
	if err := loaded.Load(dir); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded.Products(), r.Products()) {
		t.Errorf("products: %+v", loaded.Products())
	}
	if !reflect.DeepEqual(loaded.Suppliers(), r.Suppliers()) {
		t.Errorf("suppliers: %+v", loaded.Suppliers())
	}
	if !reflect.DeepEqual(loaded.Retailers(), r.Retailers()) {
		t.Errorf("retailers: %+v", loaded.Retailers())
	}
	if !reflect.DeepEqual(loaded.Transporters(), r.Transporters()) {
		t.Errorf("transporters: %+v", loaded.Transporters())
	}
	if got := loaded.NextTransactionID(); got != 2 {
		t.Errorf("next transaction id = %d, want 2", got)
	}
	p, _ := loaded.AddProduct(ctx, model.CreateProductRequest{Name: "Fruits", Price: 4.75, Stock: 600})
	if p.ID != 2 {
		t.Errorf("next product id = %d, want 2", p.ID)
	}
}

func TestLoad_malformedKeepsState(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, registry.ProductsFile), []byte("1|Rice|5.5|10\n2|Broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, _ := newRegistry(t)
	mustProduct(t, r, "Keep", 1, 1)

	if err := r.Load(dir); err == nil {
		t.Fatal("expected error")
	}
	ps := r.Products()
	if len(ps) != 1 || ps[0].Name != "Keep" {
		t.Errorf("registry changed after failed load: %+v", ps)
	}
}

func TestLoad_emptyDir(t *testing.T) {
	r, _ := newRegistry(t)
	mustProduct(t, r, "Rice", 1, 1)
	if err := r.Load(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if len(r.Products()) != 0 {
		t.Error("expected empty registry")
	}
}
