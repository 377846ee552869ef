package settlement_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agrodist/agrodist/internal/distribution/history"
	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/distribution/registry"
	"github.com/agrodist/agrodist/internal/distribution/rules"
	"github.com/agrodist/agrodist/internal/distribution/settlement"
	"github.com/agrodist/agrodist/internal/geo"
	"github.com/agrodist/agrodist/internal/ledger"
	"go.uber.org/zap"
)

var ctx = context.Background()

type fixture struct {
	reg     *registry.Registry
	ledger  *ledger.MemoryLedger
	history *history.MemoryStore
	engine  *settlement.Engine
}

// newFixture builds the §8 scenario: one transporter, supplier, retailer and
// product, each with id 1. Entity creation is done on a separate ledger so
// tests can count settlement blocks from a clean chain.
func newFixture(t *testing.T, credit float64, stock int, ruleset ...rules.Validator) *fixture {
	t.Helper()
	reg := registry.New(nil, zap.NewNop())
	if _, err := reg.AddTransporter(ctx, model.CreateTransporterRequest{Name: "FastTruck", CostPerKm: 2.5, MaxCapacityKg: 2000}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.AddProduct(ctx, model.CreateProductRequest{Name: "Rice", Price: 5.5, Stock: stock}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.AddSupplier(ctx, model.CreateSupplierRequest{Name: "Malayan Agro", Lat: 3.168, Lon: 101.708, ProductIDs: []int{1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.AddRetailer(ctx, model.CreateRetailerRequest{Name: "SuperMart", Lat: 3.148, Lon: 101.698,
		CreditBalance: credit, AnnualCreditBalance: credit * 10}); err != nil {
		t.Fatal(err)
	}

	if len(ruleset) == 0 {
		ruleset = []rules.Validator{rules.PriceCeiling{Max: rules.DefaultPriceCeiling}}
	}
	l := ledger.New()
	h := history.NewMemoryStore()
	clock := func() time.Time { return time.Date(2025, 3, 14, 9, 26, 0, 0, time.Local) }
	e := settlement.New(reg, rules.NewEngine(reg, ruleset...), h, l, zap.NewNop(), settlement.WithClock(clock))
	return &fixture{reg: reg, ledger: l, history: h, engine: e}
}

func (f *fixture) state(t *testing.T) (int, float64) {
	t.Helper()
	p, err := f.reg.Product(1)
	if err != nil {
		t.Fatal(err)
	}
	r, err := f.reg.Retailer(1)
	if err != nil {
		t.Fatal(err)
	}
	return p.Stock, r.CreditBalance
}

func request(quantity int) settlement.Request {
	return settlement.Request{SupplierID: 1, RetailerID: 1, ProductID: 1, TransporterID: 1, Quantity: quantity}
}

func TestCreateTransaction_completed(t *testing.T) {
	f := newFixture(t, 10000, 1000)
	d := geo.DistanceKm(geo.Point{Lat: 3.168, Lon: 101.708}, geo.Point{Lat: 3.148, Lon: 101.698})

	tx, err := f.engine.CreateTransaction(ctx, request(100))
	if err != nil {
		t.Fatal(err)
	}
	if tx.Status != model.StatusCompleted {
		t.Fatalf("status = %s (%s)", tx.Status, tx.FailureReason)
	}
	if tx.ID != 1 || tx.OrderType != model.OrderRegular {
		t.Errorf("id/order type: %d %s", tx.ID, tx.OrderType)
	}
	if tx.ProductCost != 550 {
		t.Errorf("product cost = %v, want 550", tx.ProductCost)
	}
	if tx.TransportCost != 2.5*d {
		t.Errorf("transport cost = %v, want %v", tx.TransportCost, 2.5*d)
	}
	if tx.TotalCost != tx.ProductCost+tx.TransportCost {
		t.Errorf("total cost %v is not the sum of its parts", tx.TotalCost)
	}

	stock, credit := f.state(t)
	if stock != 900 {
		t.Errorf("stock = %d, want 900", stock)
	}
	if math.Abs((10000-credit)-(550+2.5*d)) > 1e-9 {
		t.Errorf("credit decreased by %v, want %v", 10000-credit, 550+2.5*d)
	}
	rt, _ := f.reg.Retailer(1)
	if math.Abs((100000-rt.AnnualCreditBalance)-(550+2.5*d)) > 1e-9 {
		t.Errorf("annual credit not charged: %v", rt.AnnualCreditBalance)
	}

	n, _ := f.ledger.Len(ctx)
	if n != 2 {
		t.Fatalf("expected exactly one new block, ledger has %d", n)
	}
	blk, _ := f.ledger.Get(ctx, 1)
	if !strings.HasPrefix(blk.Payload, "Completed Transaction") {
		t.Errorf("payload = %q", blk.Payload)
	}
	if !strings.Contains(blk.Payload, "Timestamp: 20250314:09:26") {
		t.Errorf("payload missing timestamp: %q", blk.Payload)
	}

	stored, err := f.history.Get(ctx, tx.ID)
	if err != nil || stored.Status != model.StatusCompleted {
		t.Errorf("history record: %+v %v", stored, err)
	}
}

func TestCreateTransaction_ruleViolationLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, 100000, 1000, rules.PriceCeiling{Max: 100})
	stock, credit := f.state(t)

	tx, err := f.engine.CreateTransaction(ctx, request(100))
	if err != nil {
		t.Fatal(err)
	}
	if tx.Status != model.StatusFailed {
		t.Fatalf("status = %s", tx.Status)
	}
	if tx.FailureReason != "Price Threshold Contract: Maximum allowed cost is RM100.00" {
		t.Errorf("reason = %q", tx.FailureReason)
	}
	gotStock, gotCredit := f.state(t)
	if gotStock != stock || gotCredit != credit {
		t.Errorf("state changed: stock %d→%d credit %v→%v", stock, gotStock, credit, gotCredit)
	}
	blk, _ := f.ledger.Get(ctx, 1)
	if !strings.HasPrefix(blk.Payload, "Failed Transaction | ") {
		t.Errorf("payload = %q", blk.Payload)
	}
	if n, _ := f.history.Len(ctx); n != 1 {
		t.Errorf("failed transaction must be recorded, history has %d", n)
	}
}

func TestCreateTransaction_insufficientCreditLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, 100, 1000)
	stock, credit := f.state(t)

	tx, err := f.engine.CreateTransaction(ctx, request(100))
	if err != nil {
		t.Fatal(err)
	}
	if tx.Status != model.StatusFailed || tx.FailureReason != model.ReasonInsufficientCredit {
		t.Fatalf("tx = %+v", tx)
	}
	gotStock, gotCredit := f.state(t)
	if gotStock != stock || gotCredit != credit {
		t.Errorf("state changed: stock %d→%d credit %v→%v", stock, gotStock, credit, gotCredit)
	}
	blk, _ := f.ledger.Get(ctx, 1)
	if !strings.HasPrefix(blk.Payload, "Failed Transaction (Credit) | ") {
		t.Errorf("payload = %q", blk.Payload)
	}
}

func TestCreateTransaction_insufficientStock(t *testing.T) {
	f := newFixture(t, 10000, 10)

	tx, err := f.engine.CreateTransaction(ctx, request(20))
	if tx != nil {
		t.Errorf("no transaction may be created, got %+v", tx)
	}
	var inv *model.InvalidRequestError
	if !errors.As(err, &inv) || !errors.Is(err, model.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock InvalidRequest, got %v", err)
	}
	if n, _ := f.ledger.Len(ctx); n != 1 {
		t.Errorf("ledger length changed: %d", n)
	}
	if n, _ := f.history.Len(ctx); n != 0 {
		t.Errorf("history changed: %d", n)
	}
	if id := f.reg.NextTransactionID(); id != 1 {
		t.Errorf("transaction id consumed by a rejected request: next is %d", id)
	}
}

func TestCreateTransaction_preconditions(t *testing.T) {
	f := newFixture(t, 10000, 1000)
	_, _ = f.reg.AddProduct(ctx, model.CreateProductRequest{Name: "Fruits", Price: 4.75, Stock: 600})

	tests := []struct {
		name     string
		req      settlement.Request
		wantKind string
		sentinel error
	}{
		{"supplier checked first", settlement.Request{SupplierID: 9, RetailerID: 9, ProductID: 9, TransporterID: 9, Quantity: 1}, model.KindSupplier, nil},
		{"retailer", settlement.Request{SupplierID: 1, RetailerID: 9, ProductID: 9, TransporterID: 9, Quantity: 1}, model.KindRetailer, nil},
		{"product", settlement.Request{SupplierID: 1, RetailerID: 1, ProductID: 9, TransporterID: 9, Quantity: 1}, model.KindProduct, nil},
		{"transporter", settlement.Request{SupplierID: 1, RetailerID: 1, ProductID: 1, TransporterID: 9, Quantity: 1}, model.KindTransporter, nil},
		{"supplier lacks product", settlement.Request{SupplierID: 1, RetailerID: 1, ProductID: 2, TransporterID: 1, Quantity: 1}, "", model.ErrSupplierLacksProduct},
		{"zero quantity", settlement.Request{SupplierID: 1, RetailerID: 1, ProductID: 1, TransporterID: 1, Quantity: 0}, "", nil},
		{"unknown order type", settlement.Request{SupplierID: 1, RetailerID: 1, ProductID: 1, TransporterID: 1, Quantity: 1, OrderType: "Rush"}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateTransaction(ctx, tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantKind != "" {
				var nf *model.NotFoundError
				if !errors.As(err, &nf) || nf.Kind != tt.wantKind {
					t.Errorf("expected %s not found, got %v", tt.wantKind, err)
				}
				return
			}
			var inv *model.InvalidRequestError
			if !errors.As(err, &inv) {
				t.Errorf("expected InvalidRequestError, got %v", err)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
	if n, _ := f.ledger.Len(ctx); n != 1 {
		t.Errorf("precondition failures must not be ledgered, got %d blocks", n)
	}
}

func TestCreateTransaction_concurrentNeverOversells(t *testing.T) {
	f := newFixture(t, 1e9, 1000)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := f.engine.CreateTransaction(ctx, request(30))
			if err != nil {
				if !errors.Is(err, model.ErrInsufficientStock) {
					t.Error(err)
				}
				return
			}
			if tx.Status == model.StatusCompleted {
				mu.Lock()
				completed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stock, _ := f.state(t)
	if completed != 33 || stock != 10 {
		t.Errorf("completed = %d, stock = %d; want 33 and 10", completed, stock)
	}
	if err := f.ledger.Verify(ctx); err != nil {
		t.Errorf("ledger broken after concurrent settlement: %v", err)
	}
}

type failingLedger struct{ ledger.Ledger }

func (failingLedger) Append(context.Context, string) (*ledger.Block, error) {
	return nil, errors.New("disk full")
}

func TestCreateTransaction_ledgerFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, 10000, 1000)
	var hookErr error
	e := settlement.New(f.reg, rules.NewEngine(f.reg, rules.PriceCeiling{Max: 4000}), f.history,
		failingLedger{}, zap.NewNop(), settlement.WithLedgerErrorHook(func(err error) { hookErr = err }))

	tx, err := e.CreateTransaction(ctx, request(10))
	if err != nil {
		t.Fatal(err)
	}
	if tx.Status != model.StatusCompleted {
		t.Errorf("status = %s", tx.Status)
	}
	if hookErr == nil {
		t.Error("ledger error hook not called")
	}
	if n, _ := f.history.Len(ctx); n != 1 {
		t.Errorf("history must still hold the record, has %d", n)
	}
}

func TestReport(t *testing.T) {
	f := newFixture(t, 2000, 1000)
	var outcomes []model.TransactionStatus
	e := settlement.New(f.reg, rules.NewEngine(f.reg, rules.PriceCeiling{Max: 4000}), f.history, f.ledger,
		zap.NewNop(), settlement.WithOutcomeHook(func(tx *model.Transaction) { outcomes = append(outcomes, tx.Status) }))

	a, _ := e.CreateTransaction(ctx, request(100))
	b, _ := e.CreateTransaction(ctx, request(100))
	_, _ = e.CreateTransaction(ctx, request(800)) // over the ceiling

	rep, err := e.Report(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Completed != 2 || rep.Failed != 1 {
		t.Errorf("counts: %d completed, %d failed", rep.Completed, rep.Failed)
	}
	if math.Abs(rep.TotalRevenue-(a.TotalCost+b.TotalCost)) > 1e-9 {
		t.Errorf("revenue = %v", rep.TotalRevenue)
	}
	if len(rep.Products) != 1 || rep.Products[0].Name != "Rice" || rep.Products[0].Quantity != 200 {
		t.Errorf("products: %+v", rep.Products)
	}
	if len(outcomes) != 3 {
		t.Errorf("outcome hook saw %d transactions", len(outcomes))
	}
}

func TestRunSeasonal(t *testing.T) {
	f := newFixture(t, 100000, 1000)
	_, _ = f.reg.AddRetailer(ctx, model.CreateRetailerRequest{Name: "FreshMart", Lat: 3.107, Lon: 101.607, CreditBalance: 8000})

	res := f.engine.RunSeasonal(ctx, settlement.Scenario{
		HighDemand:   settlement.Leg{SupplierID: 1, ProductID: 1, TransporterID: 1, Quantity: 100},
		NormalDemand: settlement.Leg{SupplierID: 2, ProductID: 2, TransporterID: 2, Quantity: 50},
	})
	if len(res.Transactions) != 2 {
		t.Fatalf("expected one order per retailer to settle, got %d", len(res.Transactions))
	}
	for _, tx := range res.Transactions {
		if tx.OrderType != model.OrderSeasonal {
			t.Errorf("order type = %s", tx.OrderType)
		}
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected the missing supplier to be reported per retailer, got %v", res.Errors)
	}
	if res.Transactions[0].RetailerID != 1 || res.Transactions[1].RetailerID != 2 {
		t.Errorf("retailer order: %d, %d", res.Transactions[0].RetailerID, res.Transactions[1].RetailerID)
	}
}

// minStockAfter rejects orders that would leave fewer than Floor units. It
// reads the product through the lookup like an operator-supplied rule would.
type minStockAfter struct{ Floor int }

func (m minStockAfter) Validate(tx *model.Transaction, lookup rules.Lookup) bool {
	p, err := lookup.Product(tx.ProductID)
	if err != nil {
		return false
	}
	return p.Stock-tx.Quantity >= m.Floor
}

func (m minStockAfter) Describe() string { return "Safety Stock Contract" }

func TestCreateTransaction_validatorMayLookUpProduct(t *testing.T) {
	f := newFixture(t, 10000, 1000, minStockAfter{Floor: 850})

	type result struct {
		tx  *model.Transaction
		err error
	}
	settle := func(q int) result {
		done := make(chan result, 1)
		go func() {
			tx, err := f.engine.CreateTransaction(ctx, request(q))
			done <- result{tx, err}
		}()
		select {
		case r := <-done:
			return r
		case <-time.After(2 * time.Second):
			t.Fatalf("CreateTransaction(%d) did not return", q)
			return result{}
		}
	}

	ok := settle(100)
	if ok.err != nil || ok.tx.Status != model.StatusCompleted {
		t.Fatalf("first order: tx=%+v err=%v", ok.tx, ok.err)
	}
	rejected := settle(100)
	if rejected.err != nil || rejected.tx.Status != model.StatusFailed {
		t.Fatalf("second order: tx=%+v err=%v", rejected.tx, rejected.err)
	}
	if rejected.tx.FailureReason != "Safety Stock Contract" {
		t.Errorf("reason = %q", rejected.tx.FailureReason)
	}
	if stock, _ := f.state(t); stock != 900 {
		t.Errorf("stock = %d, want 900", stock)
	}
}

// failingStore refuses every append.
type failingStore struct{ *history.MemoryStore }

func (failingStore) Append(context.Context, *model.Transaction) error {
	return errors.New("disk full")
}

func TestCreateTransaction_historyFailureRestoresState(t *testing.T) {
	f := newFixture(t, 10000, 1000)
	e := settlement.New(f.reg, rules.NewEngine(f.reg, rules.PriceCeiling{Max: rules.DefaultPriceCeiling}),
		failingStore{history.NewMemoryStore()}, f.ledger, zap.NewNop())
	stock, credit := f.state(t)
	r, _ := f.reg.Retailer(1)
	annual := r.AnnualCreditBalance

	if _, err := e.CreateTransaction(ctx, request(100)); err == nil {
		t.Fatal("expected an error when the transaction cannot be recorded")
	}
	gotStock, gotCredit := f.state(t)
	if gotStock != stock || gotCredit != credit {
		t.Errorf("state changed: stock %d→%d credit %v→%v", stock, gotStock, credit, gotCredit)
	}
	if r, _ := f.reg.Retailer(1); r.AnnualCreditBalance != annual {
		t.Errorf("annual credit changed: %v→%v", annual, r.AnnualCreditBalance)
	}
	if n, _ := f.ledger.Len(ctx); n != 1 {
		t.Errorf("ledger length = %d, want genesis only", n)
	}
}
