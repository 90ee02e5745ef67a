package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/jobwatch/internal/model"

	_ "modernc.org/sqlite"
)

// Ensure SQLiteStore implements model.SubscriptionStore.
var _ model.SubscriptionStore = (*SQLiteStore)(nil)

// SQLiteStore keeps subscriptions in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// busyTimeout is how long a statement waits on a lock held by another
// writer before failing with SQLITE_BUSY.
const busyTimeout = 5000 // milliseconds

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the subscriptions table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS subscriptions (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL,
		criteria      TEXT NOT NULL DEFAULT '[]',
		last_notified DATETIME
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating subscriptions table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// sqliteDSN adds the busy_timeout pragma so every pooled connection waits
// for concurrent writers.
func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dbPath, sep, busyTimeout)
}

// Begin starts the transaction a run works in.
func (s *SQLiteStore) Begin(ctx context.Context) (model.SubscriptionTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning sqlite transaction: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id, email, criteria, last_notified FROM subscriptions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var (
			sub          model.Subscription
			criteria     string
			lastNotified sql.NullTime
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &criteria, &lastNotified); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		if lastNotified.Valid {
			sub.LastNotified = lastNotified.Time
		}
		sub.Criteria, sub.CriteriaErr = model.DecodeCriteria([]byte(criteria))
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}

func (t *sqliteTx) UpdateLastNotified(ctx context.Context, id string, at time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE subscriptions SET last_notified = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating last_notified for %s: %w", id, err)
	}
	return nil
}

func (t *sqliteTx) Commit(context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing sqlite transaction: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("rolling back sqlite transaction: %w", err)
	}
	return nil
}
