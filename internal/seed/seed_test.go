package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/agrodist/agrodist/internal/distribution/registry"
	"github.com/agrodist/agrodist/internal/ledger"
	"github.com/agrodist/agrodist/internal/seed"
	"go.uber.org/zap"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	l := ledger.New()
	reg := registry.New(l, zap.NewNop())

	if err := seed.Load(ctx, reg); err != nil {
		t.Fatal(err)
	}
	if n := len(reg.Products()); n != 3 {
		t.Errorf("products = %d", n)
	}
	if n := len(reg.Retailers()); n != 3 {
		t.Errorf("retailers = %d", n)
	}
	if n := len(reg.Transporters()); n != 2 {
		t.Errorf("transporters = %d", n)
	}
	s2, err := reg.Supplier(2)
	if err != nil {
		t.Fatal(err)
	}
	if !s2.Supplies(2) || !s2.Supplies(3) || s2.Supplies(1) {
		t.Errorf("supplier 2 products = %v", s2.ProductIDs)
	}

	blocks, _ := l.Blocks(ctx)
	if len(blocks) != 1+3+2+3+2 {
		t.Errorf("expected one ledger entry per seeded entity, got %d blocks", len(blocks))
	}
	if !strings.HasPrefix(blocks[1].Payload, "Added Product | Product ID: 1 | Name: Rice") {
		t.Errorf("first entry = %q", blocks[1].Payload)
	}
}
