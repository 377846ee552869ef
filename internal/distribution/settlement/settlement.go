// Package settlement validates, prices and commits distribution
// transactions. It is the only writer of transaction records.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/agrodist/agrodist/internal/distribution/history"
	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/distribution/rules"
	"github.com/agrodist/agrodist/internal/geo"
	"github.com/agrodist/agrodist/internal/ledger"
	"go.uber.org/zap"
)

// Ledger payload prefixes for each settlement outcome.
const (
	PrefixCompleted    = "Completed Transaction | "
	PrefixFailed       = "Failed Transaction | "
	PrefixFailedCredit = "Failed Transaction (Credit) | "
)

// Request describes one settlement attempt.
type Request = model.TransactionRequest

// Entities is the slice of the entity registry the engine reads and mutates.
// *registry.Registry satisfies it.
type Entities interface {
	rules.Lookup
	Supplier(id int) (*model.Supplier, error)
	Retailer(id int) (*model.Retailer, error)
	Retailers() []*model.Retailer
	Settle(productID, retailerID int, fn func(p *model.Product, rt *model.Retailer) error) error
	NextTransactionID() int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOutcomeHook registers fn to be called with every recorded transaction.
func WithOutcomeHook(fn func(*model.Transaction)) Option {
	return func(e *Engine) { e.onOutcome = fn }
}

// WithLedgerErrorHook registers fn to be called when a ledger append fails.
func WithLedgerErrorHook(fn func(error)) Option {
	return func(e *Engine) { e.onLedgerError = fn }
}

// Engine settles transactions against the registry.
type Engine struct {
	entities Entities
	rules    *rules.Engine
	history  history.Store
	ledger   ledger.Ledger
	logger   *zap.Logger
	now      func() time.Time

	onOutcome     func(*model.Transaction)
	onLedgerError func(error)
}

// New creates an Engine.
func New(entities Entities, ruleEngine *rules.Engine, store history.Store, l ledger.Ledger, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		entities: entities,
		rules:    ruleEngine,
		history:  store,
		ledger:   l,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateTransaction runs one settlement.
//
// Precondition failures (unknown entity, supplier not carrying the product,
// insufficient stock, malformed request) return an error and record nothing.
// Rule and credit rejections are not errors: the returned transaction has
// Status Failed and a FailureReason, and it is recorded like any other.
// Stock and credit change only on the Completed path.
func (e *Engine) CreateTransaction(ctx context.Context, req Request) (*model.Transaction, error) {
	if req.Quantity <= 0 {
		return nil, model.Invalid("quantity must be positive, got %d", req.Quantity)
	}
	orderType, err := model.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}

	supplier, err := e.entities.Supplier(req.SupplierID)
	if err != nil {
		return nil, err
	}
	retailer, err := e.entities.Retailer(req.RetailerID)
	if err != nil {
		return nil, err
	}
	product, err := e.entities.Product(req.ProductID)
	if err != nil {
		return nil, err
	}
	transporter, err := e.entities.Transporter(req.TransporterID)
	if err != nil {
		return nil, err
	}
	if !supplier.Supplies(product.ID) {
		return nil, model.InvalidBecause(model.ErrSupplierLacksProduct,
			"supplier %d does not supply product %d", supplier.ID, product.ID)
	}
	if !product.HasEnoughStock(req.Quantity) {
		return nil, insufficientStock(product.ID, product.Stock, req.Quantity)
	}

	distance := geo.DistanceKm(supplier.Point(), retailer.Point())
	tx := &model.Transaction{
		SupplierID:    supplier.ID,
		RetailerID:    retailer.ID,
		ProductID:     product.ID,
		TransporterID: transporter.ID,
		Quantity:      req.Quantity,
		ProductCost:   product.Price * float64(req.Quantity),
		TransportCost: transporter.CostPerKm * distance,
		Status:        model.StatusPending,
		OrderType:     orderType,
	}
	tx.TotalCost = tx.ProductCost + tx.TransportCost
	tx.CreatedAt = e.now().Local().Format(ledger.TimestampLayout)

	// Rules run before any slot is locked so validators may use every lookup.
	rulesOK, reason := e.rules.CheckAll(tx)

	err = e.entities.Settle(product.ID, retailer.ID, func(p *model.Product, rt *model.Retailer) error {
		// Another settlement may have drained the stock since the check above.
		if !p.HasEnoughStock(tx.Quantity) {
			return insufficientStock(p.ID, p.Stock, tx.Quantity)
		}
		tx.ID = e.entities.NextTransactionID()
		prevProduct, prevRetailer := *p, *rt

		if !rulesOK {
			tx.Status = model.StatusFailed
			tx.FailureReason = reason
		} else if err := e.commit(p, rt, tx); err != nil {
			return err
		}

		if err := e.history.Append(ctx, tx); err != nil {
			*p, *rt = prevProduct, prevRetailer
			return fmt.Errorf("record transaction %d: %w", tx.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.appendLedger(ctx, ledgerPayload(tx))
	e.logOutcome(tx)
	if e.onOutcome != nil {
		e.onOutcome(tx)
	}
	return tx, nil
}

// commit moves stock and credit for a rule-approved transaction and sets its
// status. A retailer short of credit leaves both untouched and fails tx.
// Callers hold the product and retailer slots.
func (e *Engine) commit(p *model.Product, rt *model.Retailer, tx *model.Transaction) error {
	if err := p.UpdateStock(-tx.Quantity); err != nil {
		return insufficientStock(p.ID, p.Stock, tx.Quantity)
	}
	if !rt.DeductCredit(tx.TotalCost) {
		p.Stock += tx.Quantity
		tx.Status = model.StatusFailed
		tx.FailureReason = model.ReasonInsufficientCredit
		return nil
	}
	tx.Status = model.StatusCompleted
	return nil
}

// ledgerPayload picks the audit prefix for tx's outcome.
func ledgerPayload(tx *model.Transaction) string {
	switch {
	case tx.Status == model.StatusCompleted:
		return PrefixCompleted + tx.Summary()
	case tx.FailureReason == model.ReasonInsufficientCredit:
		return PrefixFailedCredit + tx.Summary()
	default:
		return PrefixFailed + tx.Summary()
	}
}

func (e *Engine) logOutcome(tx *model.Transaction) {
	fields := []zap.Field{
		zap.Int("tx_id", tx.ID),
		zap.String("status", string(tx.Status)),
		zap.Int("product_id", tx.ProductID),
		zap.Int("retailer_id", tx.RetailerID),
		zap.Float64("total_cost", tx.TotalCost),
	}
	if tx.Status == model.StatusFailed {
		fields = append(fields, zap.String("reason", tx.FailureReason))
		e.logger.Info("transaction rejected", fields...)
		return
	}
	e.logger.Info("transaction completed", fields...)
}

// appendLedger records payload in the ledger. Failures are logged and
// reported to the ledger error hook; the history record stays canonical.
func (e *Engine) appendLedger(ctx context.Context, payload string) {
	if e.ledger == nil {
		return
	}
	if _, err := e.ledger.Append(ctx, payload); err != nil {
		e.logger.Error("ledger append failed (non-fatal)",
			zap.String("payload", payload),
			zap.Error(err),
		)
		if e.onLedgerError != nil {
			e.onLedgerError(err)
		}
	}
}

func insufficientStock(productID, stock, quantity int) error {
	return model.InvalidBecause(model.ErrInsufficientStock,
		"product %d has %d units in stock, %d requested", productID, stock, quantity)
}
