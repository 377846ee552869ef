// Package history stores the canonical transaction records written by the
// settlement engine.
package history

import (
	"context"

	"github.com/agrodist/agrodist/internal/distribution/model"
)

// Store is the transaction history repository. Records are appended once
// and never updated.
type Store interface {
	Append(ctx context.Context, tx *model.Transaction) error
	Get(ctx context.Context, id int) (*model.Transaction, error)
	List(ctx context.Context) ([]*model.Transaction, error)
	ListCompletedByProduct(ctx context.Context, productID int) ([]*model.Transaction, error)
	Len(ctx context.Context) (int, error)
}
