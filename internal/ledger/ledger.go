package ledger

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrChainCorrupt is returned when the chain has no tip to link to or a
	// stored link does not match its predecessor.
	ErrChainCorrupt = errors.New("ledger chain corrupt")

	// ErrMalformedRecord is returned by Restore when a persisted line cannot be
	// decoded into a block.
	ErrMalformedRecord = errors.New("malformed ledger record")
)

// BrokenLinkError identifies the first block whose PrevHash does not match
// its predecessor's Hash.
type BrokenLinkError struct {
	Index int
}

func (e *BrokenLinkError) Error() string {
	return fmt.Sprintf("hash chain broken at index %d", e.Index)
}

func (e *BrokenLinkError) Unwrap() error { return ErrChainCorrupt }

// Ledger is the interface for the append-only audit chain.
// Both MemoryLedger and PostgresLedger implement this interface.
type Ledger interface {
	// Append adds a new block holding payload, chained to the current tip.
	Append(ctx context.Context, payload string) (*Block, error)

	// Get returns the block at the given zero-based index.
	Get(ctx context.Context, index int) (*Block, error)

	// Len returns the total number of blocks (including genesis).
	Len(ctx context.Context) (int, error)

	// Blocks returns a copy of the whole chain in index order.
	Blocks(ctx context.Context) ([]Block, error)

	// Verify walks the chain and checks PrevHash linkage.
	// Returns nil if every link is intact.
	Verify(ctx context.Context) error

	// Root returns the hash of the most recent block (the chain tip).
	Root(ctx context.Context) (string, error)
}

// Valid reports whether l passes Verify.
func Valid(ctx context.Context, l Ledger) bool {
	return l.Verify(ctx) == nil
}

// Audit verifies linkage and additionally recomputes every block hash, so a
// payload edited in storage is detected even when the links still match.
func Audit(ctx context.Context, l Ledger) error {
	blocks, err := l.Blocks(ctx)
	if err != nil {
		return err
	}
	if err := verifyLinks(blocks); err != nil {
		return err
	}
	for i := range blocks {
		if blocks[i].Hash != hashBlock(&blocks[i]) {
			return fmt.Errorf("block %d has invalid hash: %w", blocks[i].Index, ErrChainCorrupt)
		}
	}
	return nil
}

func verifyLinks(blocks []Block) error {
	for i := 1; i < len(blocks); i++ {
		if blocks[i].PrevHash != blocks[i-1].Hash {
			return &BrokenLinkError{Index: blocks[i].Index}
		}
	}
	return nil
}
