package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// advisoryLockKey is a stable PostgreSQL advisory lock key used to serialise
// concurrent Append calls across every agrod instance sharing the database.
const advisoryLockKey = int64(7_305_112_019)

// PostgresLedger persists the audit chain to the ledger_blocks table.
// It implements the Ledger interface.
type PostgresLedger struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	now    func() time.Time
}

// NewPostgresLedger creates a PostgresLedger backed by the given connection pool.
// Call EnsureGenesis once before the first Append.
func NewPostgresLedger(pool *pgxpool.Pool, logger *zap.Logger) *PostgresLedger {
	return &PostgresLedger{pool: pool, logger: logger, now: time.Now}
}

// EnsureGenesis inserts the genesis block when the table is empty.
func (l *PostgresLedger) EnsureGenesis(ctx context.Context) error {
	g := genesisBlock(l.now())
	if _, err := l.pool.Exec(ctx,
		`INSERT INTO ledger_blocks (idx, hash, prev_hash, ts, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (idx) DO NOTHING`,
		g.Index, g.Hash, g.PrevHash, g.Timestamp, g.Payload,
	); err != nil {
		return fmt.Errorf("insert genesis block: %w", err)
	}
	return nil
}

// Append implements Ledger.
// It acquires a PostgreSQL advisory lock, reads the chain tail, computes the
// new block hash, and inserts it, all within a single transaction.
func (l *PostgresLedger) Append(ctx context.Context, payload string) (*Block, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Released automatically when the transaction commits or rolls back.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey); err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	var prevIdx int
	var prevHash string
	if err := tx.QueryRow(ctx,
		"SELECT idx, hash FROM ledger_blocks ORDER BY idx DESC LIMIT 1",
	).Scan(&prevIdx, &prevHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("append: no tip: %w", ErrChainCorrupt)
		}
		return nil, fmt.Errorf("read ledger tail: %w", err)
	}

	b := newBlock(prevIdx+1, prevHash, payload, l.now())
	if _, err := tx.Exec(ctx,
		`INSERT INTO ledger_blocks (idx, hash, prev_hash, ts, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.Index, b.Hash, b.PrevHash, b.Timestamp, b.Payload,
	); err != nil {
		return nil, fmt.Errorf("insert ledger block: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}

	l.logger.Debug("ledger block appended",
		zap.Int("idx", b.Index),
		zap.String("hash", b.Hash),
	)
	return b, nil
}

// Get implements Ledger.
func (l *PostgresLedger) Get(ctx context.Context, index int) (*Block, error) {
	b := &Block{}
	if err := l.pool.QueryRow(ctx,
		`SELECT idx, hash, prev_hash, ts, payload FROM ledger_blocks WHERE idx = $1`, index,
	).Scan(&b.Index, &b.Hash, &b.PrevHash, &b.Timestamp, &b.Payload); err != nil {
		return nil, fmt.Errorf("get ledger block %d: %w", index, err)
	}
	return b, nil
}

// Len implements Ledger.
func (l *PostgresLedger) Len(ctx context.Context) (int, error) {
	var n int
	if err := l.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_blocks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger blocks: %w", err)
	}
	return n, nil
}

// Blocks implements Ledger.
func (l *PostgresLedger) Blocks(ctx context.Context) ([]Block, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT idx, hash, prev_hash, ts, payload FROM ledger_blocks ORDER BY idx ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.Index, &b.Hash, &b.PrevHash, &b.Timestamp, &b.Payload); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Verify implements Ledger. It streams all rows ordered by idx and validates
// linkage. O(n) in ledger length.
func (l *PostgresLedger) Verify(ctx context.Context) error {
	rows, err := l.pool.Query(ctx,
		`SELECT idx, hash, prev_hash FROM ledger_blocks ORDER BY idx ASC`,
	)
	if err != nil {
		return fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var prevHash string
	first := true
	for rows.Next() {
		var idx int
		var hash, prev string
		if err := rows.Scan(&idx, &hash, &prev); err != nil {
			return fmt.Errorf("scan ledger row: %w", err)
		}
		if !first && prev != prevHash {
			return &BrokenLinkError{Index: idx}
		}
		first = false
		prevHash = hash
	}
	return rows.Err()
}

// Root implements Ledger.
func (l *PostgresLedger) Root(ctx context.Context) (string, error) {
	var hash string
	if err := l.pool.QueryRow(ctx,
		"SELECT hash FROM ledger_blocks ORDER BY idx DESC LIMIT 1",
	).Scan(&hash); err != nil {
		return "", fmt.Errorf("get ledger root: %w", err)
	}
	return hash, nil
}
