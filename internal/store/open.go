package store

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amishk599/jobwatch/internal/model"
)

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs use
// PostgreSQL, anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (model.SubscriptionStore, error) {
	if IsPostgres(dsn) {
		return NewPostgresStore(ctx, dsn, logger)
	}
	return NewSQLiteStore(dsn)
}

// IsPostgres reports whether dsn names a PostgreSQL database.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
