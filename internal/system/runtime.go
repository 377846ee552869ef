package system

import (
	"context"
	"fmt"
	"sync"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/seed"
	"go.uber.org/zap"
)

// Runtime holds the current Context and replaces it on Reset. Callers fetch
// the context per request with Current and never cache it.
type Runtime struct {
	mu     sync.RWMutex
	cur    *Context
	cfg    Config
	opts   []Option
	logger *zap.Logger
}

// NewRuntime wraps c. cfg and opts are reused to build the replacement
// context on Reset.
func NewRuntime(c *Context, cfg Config, logger *zap.Logger, opts ...Option) *Runtime {
	return &Runtime{cur: c, cfg: cfg, opts: opts, logger: logger}
}

// Current returns the active context.
func (r *Runtime) Current() *Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur
}

// Save persists the active context.
func (r *Runtime) Save(ctx context.Context) error {
	return r.Current().Save(ctx)
}

// Load builds a new context from the data directory and swaps it in only
// when the ledger, registry and history all loaded. On error the current
// context is untouched.
func (r *Runtime) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fresh := New(r.cfg, r.logger, r.opts...)
	if err := fresh.load(ctx); err != nil {
		return err
	}
	r.cur = fresh
	return nil
}

// Reset discards all state: a fresh context with a genesis-only ledger,
// empty history and, if configured, the sample catalogue takes the place of
// the current one. Nothing is written to the data directory.
func (r *Runtime) Reset(ctx context.Context) (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cur.Resettable() {
		return nil, model.InvalidBecause(ErrResetUnsupported, "system reset is not available with database storage")
	}
	fresh := New(r.cfg, r.logger, r.opts...)
	if r.cfg.SeedSampleData {
		if err := seed.Load(ctx, fresh.Registry); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
	}
	r.cur = fresh
	r.logger.Info("system reset", zap.Bool("sample_data", r.cfg.SeedSampleData))
	return fresh, nil
}
