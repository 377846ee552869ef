package ledger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/agrodist/agrodist/internal/record"
)

// MemoryLedger is an in-memory, thread-safe Ledger implementation.
// Appends are serialised by a single writer lock, so two concurrent appends
// never observe the same tip. The chain can be persisted to and restored from
// the pipe-delimited flat-file format.
type MemoryLedger struct {
	mu        sync.RWMutex
	blocks    []*Block
	now       func() time.Time
	observers []func(Block)
}

// Option configures a MemoryLedger.
type Option func(*MemoryLedger)

// WithClock overrides the time source used for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *MemoryLedger) { l.now = now }
}

// New creates a MemoryLedger initialised with a genesis block.
func New(opts ...Option) *MemoryLedger {
	l := &MemoryLedger{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	l.blocks = []*Block{genesisBlock(l.now())}
	return l
}

// OnAppend registers fn to be called with every appended block. Observers run
// after the write lock is released, in registration order.
func (l *MemoryLedger) OnAppend(fn func(Block)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Append implements Ledger.
func (l *MemoryLedger) Append(_ context.Context, payload string) (*Block, error) {
	l.mu.Lock()
	if len(l.blocks) == 0 {
		l.mu.Unlock()
		return nil, fmt.Errorf("append: no tip: %w", ErrChainCorrupt)
	}
	prev := l.blocks[len(l.blocks)-1]
	b := newBlock(prev.Index+1, prev.Hash, payload, l.now())
	l.blocks = append(l.blocks, b)
	observers := l.observers
	l.mu.Unlock()

	out := *b
	for _, fn := range observers {
		fn(out)
	}
	return &out, nil
}

// Get implements Ledger.
func (l *MemoryLedger) Get(_ context.Context, index int) (*Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.blocks) {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	b := *l.blocks[index]
	return &b, nil
}

// Len implements Ledger.
func (l *MemoryLedger) Len(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks), nil
}

// Blocks implements Ledger.
func (l *MemoryLedger) Blocks(_ context.Context) ([]Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot(), nil
}

// Verify implements Ledger. It checks that every non-genesis block's PrevHash
// equals its predecessor's Hash; hash contents are not recomputed (see Audit).
func (l *MemoryLedger) Verify(_ context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := 1; i < len(l.blocks); i++ {
		if l.blocks[i].PrevHash != l.blocks[i-1].Hash {
			return &BrokenLinkError{Index: l.blocks[i].Index}
		}
	}
	return nil
}

// Root implements Ledger.
func (l *MemoryLedger) Root(_ context.Context) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.blocks) == 0 {
		return "", nil
	}
	return l.blocks[len(l.blocks)-1].Hash, nil
}

// Reset discards the chain and starts over from a fresh genesis block.
func (l *MemoryLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocks = []*Block{genesisBlock(l.now())}
}

// Persist writes the chain to w, one block per line.
func (l *MemoryLedger) Persist(w io.Writer) error {
	l.mu.RLock()
	blocks := l.snapshot()
	l.mu.RUnlock()
	if err := writeBlocks(w, blocks); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Restore replaces the chain with the blocks read from r. The whole source is
// decoded before anything is swapped in: on a malformed line the current chain
// is left untouched and the error wraps ErrMalformedRecord. An empty source
// yields a fresh genesis chain.
func (l *MemoryLedger) Restore(r io.Reader) error {
	blocks, err := readBlocks(r)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(blocks) == 0 {
		l.blocks = []*Block{genesisBlock(l.now())}
		return nil
	}
	chain := make([]*Block, len(blocks))
	for i := range blocks {
		b := blocks[i]
		chain[i] = &b
	}
	l.blocks = chain
	return nil
}

// SaveFile persists the chain to path, replacing it atomically.
func (l *MemoryLedger) SaveFile(path string) error {
	return record.WriteFileAtomic(path, l.Persist)
}

// LoadFile restores the chain from path. The file is closed on every exit
// path, including a parse failure.
func (l *MemoryLedger) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()
	return l.Restore(f)
}

// snapshot copies the chain; callers hold at least the read lock.
func (l *MemoryLedger) snapshot() []Block {
	out := make([]Block, len(l.blocks))
	for i, b := range l.blocks {
		out[i] = *b
	}
	return out
}
