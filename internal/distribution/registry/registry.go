// Package registry holds the in-memory entity stores: products, suppliers,
// retailers and transporters, keyed by monotonically assigned integer ids.
//
// Products and retailers carry their own lock so that stock and credit
// mutations are serialised per entity. Settle runs a callback with both locks
// held, which is how the settlement engine makes check-then-mutate atomic.
package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/ledger"
	"go.uber.org/zap"
)

type productSlot struct {
	mu sync.Mutex
	p  model.Product
}

type retailerSlot struct {
	mu sync.Mutex
	r  model.Retailer
}

// counters holds the next id to assign per kind.
type counters struct {
	Product     int
	Supplier    int
	Retailer    int
	Transporter int
	Transaction int
}

func freshCounters() counters {
	return counters{Product: 1, Supplier: 1, Retailer: 1, Transporter: 1, Transaction: 1}
}

// Registry is the entity store. The zero value is not usable; call New.
type Registry struct {
	// mu guards the maps, the counters, suppliers and transporters. Product
	// and retailer fields are guarded by their slot locks.
	mu           sync.RWMutex
	products     map[int]*productSlot
	suppliers    map[int]*model.Supplier
	retailers    map[int]*retailerSlot
	transporters map[int]*model.Transporter
	next         counters

	ledger ledger.Ledger
	logger *zap.Logger
}

// New creates an empty Registry. Entity changes are recorded in l when it is
// non-nil.
func New(l ledger.Ledger, logger *zap.Logger) *Registry {
	return &Registry{
		products:     make(map[int]*productSlot),
		suppliers:    make(map[int]*model.Supplier),
		retailers:    make(map[int]*retailerSlot),
		transporters: make(map[int]*model.Transporter),
		next:         freshCounters(),
		ledger:       l,
		logger:       logger,
	}
}

// appendLedger records payload in the ledger. Failures are logged and
// swallowed; the registry state is authoritative.
func (r *Registry) appendLedger(ctx context.Context, payload string) {
	if r.ledger == nil {
		return
	}
	if _, err := r.ledger.Append(ctx, payload); err != nil {
		r.logger.Error("ledger append failed (non-fatal)",
			zap.String("payload", payload),
			zap.Error(err),
		)
	}
}

// Product returns a copy of the product with the given id.
func (r *Registry) Product(id int) (model.Product, error) {
	r.mu.RLock()
	slot, ok := r.products[id]
	r.mu.RUnlock()
	if !ok {
		return model.Product{}, model.NotFound(model.KindProduct, id)
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.p, nil
}

// Supplier returns a copy of the supplier with the given id.
func (r *Registry) Supplier(id int) (*model.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suppliers[id]
	if !ok {
		return nil, model.NotFound(model.KindSupplier, id)
	}
	return s.Clone(), nil
}

// Retailer returns a copy of the retailer with the given id.
func (r *Registry) Retailer(id int) (*model.Retailer, error) {
	r.mu.RLock()
	slot, ok := r.retailers[id]
	r.mu.RUnlock()
	if !ok {
		return nil, model.NotFound(model.KindRetailer, id)
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.r.Clone(), nil
}

// Transporter returns a copy of the transporter with the given id.
func (r *Registry) Transporter(id int) (model.Transporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transporters[id]
	if !ok {
		return model.Transporter{}, model.NotFound(model.KindTransporter, id)
	}
	return *t, nil
}

// Products returns a snapshot of all products in id order.
func (r *Registry) Products() []model.Product {
	slots := r.productSlots()
	out := make([]model.Product, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		out = append(out, slot.p)
		slot.mu.Unlock()
	}
	return out
}

// Suppliers returns a snapshot of all suppliers in id order.
func (r *Registry) Suppliers() []*model.Supplier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Supplier, 0, len(r.suppliers))
	for _, id := range sortedKeys(r.suppliers) {
		out = append(out, r.suppliers[id].Clone())
	}
	return out
}

// Retailers returns a consistent snapshot of all retailers in id order. Every
// retailer lock is held while copying, so no settlement can land half way
// through the list.
func (r *Registry) Retailers() []*model.Retailer {
	slots := r.retailerSlots()
	for _, slot := range slots {
		slot.mu.Lock()
	}
	out := make([]*model.Retailer, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.r.Clone())
	}
	for _, slot := range slots {
		slot.mu.Unlock()
	}
	return out
}

// Transporters returns a snapshot of all transporters in id order.
func (r *Registry) Transporters() []model.Transporter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Transporter, 0, len(r.transporters))
	for _, id := range sortedKeys(r.transporters) {
		out = append(out, *r.transporters[id])
	}
	return out
}

// Settle runs fn with exclusive access to one product and one retailer. The
// product lock is always taken before the retailer lock. Changes fn makes
// through the pointers are kept whether or not it returns an error, so fn
// must only mutate once every check has passed. fn may call
// NextTransactionID, Supplier and Transporter. Product, Retailer and every
// snapshot take slot locks and must not be called from fn.
func (r *Registry) Settle(productID, retailerID int, fn func(p *model.Product, rt *model.Retailer) error) error {
	r.mu.RLock()
	ps, ok := r.products[productID]
	if !ok {
		r.mu.RUnlock()
		return model.NotFound(model.KindProduct, productID)
	}
	rs, ok := r.retailers[retailerID]
	r.mu.RUnlock()
	if !ok {
		return model.NotFound(model.KindRetailer, retailerID)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return fn(&ps.p, &rs.r)
}

// NextTransactionID reserves and returns the next transaction id.
func (r *Registry) NextTransactionID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next.Transaction
	r.next.Transaction++
	return id
}

// productSlots and retailerSlots return the slots in id order. The registry
// lock is released before any slot lock is taken: slot holders may need r.mu,
// so r.mu is never held while waiting on a slot.
func (r *Registry) productSlots() []*productSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*productSlot, 0, len(r.products))
	for _, id := range sortedKeys(r.products) {
		out = append(out, r.products[id])
	}
	return out
}

func (r *Registry) retailerSlots() []*retailerSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*retailerSlot, 0, len(r.retailers))
	for _, id := range sortedKeys(r.retailers) {
		out = append(out, r.retailers[id])
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
