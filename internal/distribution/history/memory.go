package history

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/record"
)

// FileName is the data file used by MemoryStore.SaveFile and LoadFile.
const FileName = "transactions.dat"

// MemoryStore is an in-memory Store that keeps records in insertion order.
type MemoryStore struct {
	mu   sync.RWMutex
	txs  []*model.Transaction
	byID map[int]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int]int)}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[tx.ID]; dup {
		return fmt.Errorf("transaction %d already recorded", tx.ID)
	}
	c := *tx
	s.byID[c.ID] = len(s.txs)
	s.txs = append(s.txs, &c)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id int) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, model.NotFound(model.KindTransaction, id)
	}
	c := *s.txs[i]
	return &c, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(*model.Transaction) bool { return true }), nil
}

// ListCompletedByProduct implements Store.
func (s *MemoryStore) ListCompletedByProduct(_ context.Context, productID int) ([]*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(tx *model.Transaction) bool {
		return tx.ProductID == productID && tx.Status == model.StatusCompleted
	}), nil
}

// Len implements Store.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs), nil
}

// MaxID returns the highest recorded transaction id, or 0.
func (s *MemoryStore) MaxID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := 0
	for id := range s.byID {
		m = max(m, id)
	}
	return m
}

// Reset drops every record.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = nil
	s.byID = make(map[int]int)
}

// Persist writes every record to w, one line each.
func (s *MemoryStore) Persist(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if _, err := io.WriteString(w, model.EncodeTransaction(tx)+"\n"); err != nil {
			return fmt.Errorf("persist transactions: %w", err)
		}
	}
	return nil
}

// SaveFile writes the history to path atomically.
func (s *MemoryStore) SaveFile(path string) error {
	return record.WriteFileAtomic(path, s.Persist)
}

// LoadFile replaces the history with the records in path. A missing file
// yields an empty history; a malformed line leaves the history unchanged.
func (s *MemoryStore) LoadFile(path string) error {
	var txs []*model.Transaction
	if _, err := record.ReadFile(path, func(line string) error {
		tx, err := model.DecodeTransaction(line)
		if err != nil {
			return err
		}
		txs = append(txs, tx)
		return nil
	}); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	byID := make(map[int]int, len(txs))
	for i, tx := range txs {
		byID[tx.ID] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = txs
	s.byID = byID
	return nil
}

func (s *MemoryStore) filter(keep func(*model.Transaction) bool) []*model.Transaction {
	out := make([]*model.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if keep(tx) {
			c := *tx
			out = append(out, &c)
		}
	}
	return out
}
