package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure PostgresStore implements model.SubscriptionStore.
var _ model.SubscriptionStore = (*PostgresStore)(nil)

// PostgresStore reads subscriptions from a PostgreSQL database. The
// subscriptions table is expected to exist:
//
//	CREATE TABLE subscriptions (
//		id            TEXT PRIMARY KEY,
//		email         TEXT NOT NULL,
//		criteria      JSONB NOT NULL DEFAULT '[]',
//		last_notified TIMESTAMPTZ
//	);
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates and verifies a pgx connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Begin acquires a connection and starts the transaction a run works in.
// The connection goes back to the pool on Commit or Rollback.
func (s *PostgresStore) Begin(ctx context.Context) (model.SubscriptionTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning postgres transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// Close logs pool statistics and closes every connection.
func (s *PostgresStore) Close() error {
	stat := s.pool.Stat()
	s.logger.Debug("pgx pool statistics",
		"acquire_count", stat.AcquireCount(),
		"acquire_duration", stat.AcquireDuration(),
		"total_conns", stat.TotalConns(),
		"idle_conns", stat.IdleConns(),
	)
	s.pool.Close()
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

type subscriptionRow struct {
	ID           string
	Email        string
	Criteria     []byte
	LastNotified *time.Time
}

func (t *pgTx) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, email, criteria, last_notified FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[subscriptionRow])
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	subs := make([]model.Subscription, 0, len(records))
	for _, r := range records {
		sub := model.Subscription{ID: r.ID, Email: r.Email}
		if r.LastNotified != nil {
			sub.LastNotified = *r.LastNotified
		}
		sub.Criteria, sub.CriteriaErr = model.DecodeCriteria(r.Criteria)
		subs = append(subs, sub)
	}
	return subs, nil
}

// UpdateLastNotified runs the update inside a savepoint. A failed statement
// aborts a PostgreSQL transaction, so the savepoint is rolled back on error
// and later subscriptions can still be updated in the same run.
func (t *pgTx) UpdateLastNotified(ctx context.Context, id string, at time.Time) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint for %s: %w", id, err)
	}

	_, err = sp.Exec(ctx,
		`UPDATE subscriptions SET last_notified = $1 WHERE id = $2`, at, id)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		return fmt.Errorf("updating last_notified for %s: %w", id, err)
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("releasing savepoint for %s: %w", id, err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing postgres transaction: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rolling back postgres transaction: %w", err)
	}
	return nil
}
