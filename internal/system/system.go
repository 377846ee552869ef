// Package system wires the registry, ledger, transaction history and the
// engines that operate on them into one explicitly constructed context.
// Nothing in the process holds this state globally: a reset builds a fresh
// Context and swaps it into the Runtime.
package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agrodist/agrodist/internal/distribution/history"
	"github.com/agrodist/agrodist/internal/distribution/inventory"
	"github.com/agrodist/agrodist/internal/distribution/registry"
	"github.com/agrodist/agrodist/internal/distribution/route"
	"github.com/agrodist/agrodist/internal/distribution/rules"
	"github.com/agrodist/agrodist/internal/distribution/settlement"
	"github.com/agrodist/agrodist/internal/ledger"
	"github.com/agrodist/agrodist/internal/seed"
	"go.uber.org/zap"
)

// LedgerFile is the name of the persisted chain inside the data directory.
const LedgerFile = "blockchain.dat"

// ErrResetUnsupported is returned by Reset when the ledger or history lives in
// a database, where the audit trail cannot be discarded.
var ErrResetUnsupported = errors.New("reset requires in-memory storage")

// Config holds the settings a Context is built from.
type Config struct {
	DataDir        string
	Rules          rules.Config
	ResetOnCorrupt bool
	SeedSampleData bool
}

// Option customises how a Context is built.
type Option func(*settings)

type settings struct {
	ledger     ledger.Ledger
	history    history.Store
	observers  []func(ledger.Block)
	settleOpts []settlement.Option
	now        func() time.Time
}

// WithLedger uses l instead of a fresh MemoryLedger.
func WithLedger(l ledger.Ledger) Option {
	return func(s *settings) { s.ledger = l }
}

// WithHistory uses store instead of a fresh MemoryStore.
func WithHistory(store history.Store) Option {
	return func(s *settings) { s.history = store }
}

// WithObserver registers fn for every block appended to the ledger.
func WithObserver(fn func(ledger.Block)) Option {
	return func(s *settings) { s.observers = append(s.observers, fn) }
}

// WithSettlementOptions passes opts to the settlement engine.
func WithSettlementOptions(opts ...settlement.Option) Option {
	return func(s *settings) { s.settleOpts = append(s.settleOpts, opts...) }
}

// WithClock overrides the time source of the in-memory ledger and the
// settlement engine.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// Context is one fully wired instance of the engine.
type Context struct {
	Registry   *registry.Registry
	Ledger     ledger.Ledger
	History    history.Store
	Rules      *rules.Engine
	Settlement *settlement.Engine
	Routes     *route.Optimizer
	Inventory  *inventory.Allocator

	cfg    Config
	logger *zap.Logger
}

// New builds an empty Context: a genesis-only ledger (unless one is supplied),
// an empty registry and history, and the engines on top of them.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Context {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	l := s.ledger
	if l == nil {
		var lopts []ledger.Option
		if s.now != nil {
			lopts = append(lopts, ledger.WithClock(s.now))
		}
		l = ledger.New(lopts...)
	}
	l = ledger.Observe(l, s.observers...)

	store := s.history
	if store == nil {
		store = history.NewMemoryStore()
	}

	settleOpts := s.settleOpts
	if s.now != nil {
		settleOpts = append([]settlement.Option{settlement.WithClock(s.now)}, settleOpts...)
	}

	reg := registry.New(l, logger)
	ruleEngine := rules.FromConfig(reg, cfg.Rules)
	return &Context{
		Registry:   reg,
		Ledger:     l,
		History:    store,
		Rules:      ruleEngine,
		Settlement: settlement.New(reg, ruleEngine, store, l, logger, settleOpts...),
		Routes:     route.NewOptimizer(reg, l, logger),
		Inventory:  inventory.NewAllocator(reg, store, l, logger),
		cfg:        cfg,
		logger:     logger,
	}
}

// Open builds a Context and loads the data directory into it. When nothing
// was stored and sample data is enabled, the registry is seeded.
func Open(ctx context.Context, cfg Config, logger *zap.Logger, opts ...Option) (*Context, error) {
	c := New(cfg, logger, opts...)
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	if cfg.SeedSampleData && c.empty() {
		if err := seed.Load(ctx, c.Registry); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
		logger.Info("sample data loaded")
	}
	return c, nil
}

// Save writes the registry and, for in-memory backends, the ledger and the
// transaction history to the data directory.
func (c *Context) Save(ctx context.Context) error {
	dir := c.cfg.DataDir
	if err := c.Registry.Save(dir); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	if ml, ok := c.Ledger.(*ledger.MemoryLedger); ok {
		if err := ml.SaveFile(filepath.Join(dir, LedgerFile)); err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
	}
	if ms, ok := c.History.(*history.MemoryStore); ok {
		if err := ms.SaveFile(filepath.Join(dir, history.FileName)); err != nil {
			return fmt.Errorf("save transactions: %w", err)
		}
	}
	n, _ := c.Ledger.Len(ctx)
	c.logger.Info("system saved", zap.String("dir", dir), zap.Int("blocks", n))
	return nil
}

// load fills a freshly built context from the data directory. A missing
// ledger file starts a fresh chain. A malformed one does too when
// ResetOnCorrupt is set; otherwise the error is returned. On error the
// context is partially filled and must be discarded.
func (c *Context) load(ctx context.Context) error {
	dir := c.cfg.DataDir
	if ml, ok := c.Ledger.(*ledger.MemoryLedger); ok {
		if err := c.loadLedger(ml, filepath.Join(dir, LedgerFile)); err != nil {
			return err
		}
	}
	if err := c.Registry.Load(dir); err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	if ms, ok := c.History.(*history.MemoryStore); ok {
		if err := ms.LoadFile(filepath.Join(dir, history.FileName)); err != nil {
			return err
		}
	}

	maxID, err := maxTransactionID(ctx, c.History)
	if err != nil {
		return err
	}
	c.Registry.EnsureTransactionID(maxID)

	if err := c.Ledger.Verify(ctx); err != nil {
		c.logger.Warn("loaded ledger fails verification", zap.Error(err))
	}
	n, _ := c.Ledger.Len(ctx)
	c.logger.Info("system loaded", zap.String("dir", dir), zap.Int("blocks", n))
	return nil
}

func (c *Context) loadLedger(ml *ledger.MemoryLedger, path string) error {
	err := ml.LoadFile(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		ml.Reset()
		return nil
	case errors.Is(err, ledger.ErrMalformedRecord) && c.cfg.ResetOnCorrupt:
		c.logger.Warn("ledger file unreadable, starting a new chain", zap.String("path", path), zap.Error(err))
		ml.Reset()
		return nil
	default:
		return fmt.Errorf("load ledger: %w", err)
	}
}

// Resettable reports whether Reset may discard this context's state.
func (c *Context) Resettable() bool {
	_, memLedger := c.Ledger.(*ledger.MemoryLedger)
	_, memHistory := c.History.(*history.MemoryStore)
	return memLedger && memHistory
}

func (c *Context) empty() bool {
	return len(c.Registry.Products()) == 0 &&
		len(c.Registry.Suppliers()) == 0 &&
		len(c.Registry.Retailers()) == 0 &&
		len(c.Registry.Transporters()) == 0
}

func maxTransactionID(ctx context.Context, store history.Store) (int, error) {
	switch s := store.(type) {
	case *history.MemoryStore:
		return s.MaxID(), nil
	case *history.PostgresStore:
		id, err := s.MaxID(ctx)
		if err != nil {
			return 0, fmt.Errorf("read last transaction id: %w", err)
		}
		return id, nil
	}
	txs, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	var id int
	for _, tx := range txs {
		id = max(id, tx.ID)
	}
	return id, nil
}
