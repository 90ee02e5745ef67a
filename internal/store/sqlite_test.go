package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insert(t *testing.T, s *SQLiteStore, id, email, criteria string, lastNotified any) {
	t.Helper()
	_, err := s.db.Exec(
		"INSERT INTO subscriptions (id, email, criteria, last_notified) VALUES (?, ?, ?, ?)",
		id, email, criteria, lastNotified,
	)
	if err != nil {
		t.Fatalf("inserting %s: %v", id, err)
	}
}

func TestListSubscriptions_DecodesCriteria(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	watermark := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	insert(t, s, "a", "a@example.com", `[{"type":"company","value":"acme"}]`, watermark)
	insert(t, s, "b", "b@example.com", `not json`, nil)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)

	subs, err := tx.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(subs))
	}

	a := subs[0]
	if a.ID != "a" || a.Email != "a@example.com" {
		t.Errorf("unexpected subscription: %+v", a)
	}
	if len(a.Criteria) != 1 || a.Criteria[0].Value != "acme" {
		t.Errorf("Criteria = %+v", a.Criteria)
	}
	if a.CriteriaErr != nil {
		t.Errorf("CriteriaErr = %v, want nil", a.CriteriaErr)
	}
	if !a.LastNotified.Equal(watermark) {
		t.Errorf("LastNotified = %v, want %v", a.LastNotified, watermark)
	}

	b := subs[1]
	if b.CriteriaErr == nil {
		t.Error("expected CriteriaErr for malformed criteria")
	}
	if !b.LastNotified.IsZero() {
		t.Errorf("LastNotified = %v, want zero for NULL", b.LastNotified)
	}
}

func TestUpdateLastNotified_CommitPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insert(t, s, "a", "a@example.com", `[]`, nil)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.UpdateLastNotified(ctx, "a", now); err != nil {
		t.Fatalf("UpdateLastNotified: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	// Rollback after commit is a no-op.
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("Rollback after Commit: %v", err)
	}

	tx, err = s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)
	subs, err := tx.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if !subs[0].LastNotified.Equal(now) {
		t.Errorf("LastNotified = %v, want %v", subs[0].LastNotified, now)
	}
}

func TestUpdateLastNotified_RollbackDiscards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insert(t, s, "a", "a@example.com", `[]`, nil)

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.UpdateLastNotified(ctx, "a", time.Now()); err != nil {
		t.Fatalf("UpdateLastNotified: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM subscriptions WHERE last_notified IS NOT NULL").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback to discard update, %d rows changed", count)
	}
}

func TestOpen_SQLitePath(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "open.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open returned %T, want *SQLiteStore", s)
	}
}

func TestIsPostgres(t *testing.T) {
	tests := map[string]bool{
		"postgres://u:p@localhost/db":   true,
		"postgresql://localhost/db":     true,
		"jobwatch.db":                   false,
		"/var/lib/jobwatch/jobwatch.db": false,
	}
	for dsn, want := range tests {
		if got := IsPostgres(dsn); got != want {
			t.Errorf("IsPostgres(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestNewSQLiteStore_SetsBusyTimeout(t *testing.T) {
	s := newTestStore(t)

	var timeout int
	if err := s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if timeout != busyTimeout {
		t.Errorf("busy_timeout = %d, want %d", timeout, busyTimeout)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"jobwatch.db", "jobwatch.db?_pragma=busy_timeout(5000)"},
		{"file:jobwatch.db?mode=rwc", "file:jobwatch.db?mode=rwc&_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.path); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
