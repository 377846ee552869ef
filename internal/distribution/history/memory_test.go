package history_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/agrodist/agrodist/internal/distribution/history"
	"github.com/agrodist/agrodist/internal/distribution/model"
)

var ctx = context.Background()

// compile-time check
var (
	_ history.Store = (*history.MemoryStore)(nil)
	_ history.Store = (*history.PostgresStore)(nil)
)

func tx(id, product int, status model.TransactionStatus) *model.Transaction {
	return &model.Transaction{
		ID: id, SupplierID: 1, RetailerID: 1, ProductID: product, TransporterID: 1,
		Quantity: 10, ProductCost: 55, TransportCost: 5, TotalCost: 60,
		CreatedAt: "20250314:09:26", Status: status, OrderType: model.OrderRegular,
	}
}

func TestMemoryStore_appendGetList(t *testing.T) {
	s := history.NewMemoryStore()
	_ = s.Append(ctx, tx(1, 1, model.StatusCompleted))
	_ = s.Append(ctx, tx(2, 1, model.StatusFailed))
	_ = s.Append(ctx, tx(3, 2, model.StatusCompleted))
	_ = s.Append(ctx, tx(4, 1, model.StatusCompleted))

	if err := s.Append(ctx, tx(2, 1, model.StatusCompleted)); err == nil {
		t.Error("duplicate id must be rejected")
	}

	got, err := s.Get(ctx, 3)
	if err != nil || got.ProductID != 2 {
		t.Fatalf("Get(3) = %+v, %v", got, err)
	}
	got.Quantity = 999
	again, _ := s.Get(ctx, 3)
	if again.Quantity != 10 {
		t.Error("Get must return a copy")
	}

	var nf *model.NotFoundError
	if _, err := s.Get(ctx, 42); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	completed, _ := s.ListCompletedByProduct(ctx, 1)
	if len(completed) != 2 || completed[0].ID != 1 || completed[1].ID != 4 {
		t.Errorf("completed for product 1: %+v", completed)
	}
	all, _ := s.List(ctx)
	if n, _ := s.Len(ctx); n != 4 || len(all) != 4 {
		t.Errorf("Len = %d, List = %d", n, len(all))
	}
	if s.MaxID() != 4 {
		t.Errorf("MaxID = %d", s.MaxID())
	}
}

func TestMemoryStore_fileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), history.FileName)
	s := history.NewMemoryStore()
	failed := tx(2, 1, model.StatusFailed)
	failed.FailureReason = model.ReasonInsufficientCredit
	_ = s.Append(ctx, tx(1, 1, model.StatusCompleted))
	_ = s.Append(ctx, failed)

	if err := s.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	loaded := history.NewMemoryStore()
	if err := loaded.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	want, _ := s.List(ctx)
	got, _ := loaded.List(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMemoryStore_loadMalformedKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), history.FileName)
	if err := os.WriteFile(path, []byte("garbage\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := history.NewMemoryStore()
	_ = s.Append(ctx, tx(1, 1, model.StatusCompleted))
	if err := s.LoadFile(path); err == nil {
		t.Fatal("expected error")
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("history changed: %d records", n)
	}
}
