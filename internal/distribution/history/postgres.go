package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store backed by the transactions table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `
	SELECT id, supplier_id, retailer_id, product_id, transporter_id, quantity,
	       product_cost, transport_cost, total_cost, created_at, status,
	       order_type, failure_reason
	FROM transactions`

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, tx *model.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, supplier_id, retailer_id, product_id, transporter_id, quantity,
			product_cost, transport_cost, total_cost, created_at, status,
			order_type, failure_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.db.Exec(ctx, query,
		tx.ID, tx.SupplierID, tx.RetailerID, tx.ProductID, tx.TransporterID, tx.Quantity,
		tx.ProductCost, tx.TransportCost, tx.TotalCost, tx.CreatedAt, string(tx.Status),
		string(tx.OrderType), tx.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("insert transaction %d: %w", tx.ID, err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id int) (*model.Transaction, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NotFound(model.KindTransaction, id)
	}
	return tx, err
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context) ([]*model.Transaction, error) {
	return s.query(ctx, selectColumns+` ORDER BY id`)
}

// ListCompletedByProduct implements Store.
func (s *PostgresStore) ListCompletedByProduct(ctx context.Context, productID int) ([]*model.Transaction, error) {
	return s.query(ctx, selectColumns+` WHERE product_id = $1 AND status = $2 ORDER BY id`,
		productID, string(model.StatusCompleted))
}

// Len implements Store.
func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// MaxID returns the highest stored transaction id, or 0.
func (s *PostgresStore) MaxID(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("max transaction id: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*model.Transaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []*model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		tx        model.Transaction
		status    string
		orderType string
	)
	err := row.Scan(
		&tx.ID, &tx.SupplierID, &tx.RetailerID, &tx.ProductID, &tx.TransporterID, &tx.Quantity,
		&tx.ProductCost, &tx.TransportCost, &tx.TotalCost, &tx.CreatedAt, &status,
		&orderType, &tx.FailureReason,
	)
	if err != nil {
		return nil, err
	}
	tx.Status = model.TransactionStatus(status)
	tx.OrderType = model.OrderType(orderType)
	return &tx, nil
}
