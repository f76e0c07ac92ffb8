// Package db persists enriched wines and batch runs in SQLite or PostgreSQL.
package db

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the append-only wine store.
type Store interface {
	// CreateRun records the start of a batch run.
	CreateRun(ctx context.Context, runID, source string) error
	// CompleteRun records the outcome of a batch run.
	CompleteRun(ctx context.Context, run *Run) error
	// GetRun returns a run by id.
	GetRun(ctx context.Context, runID string) (*Run, error)
	// SaveWine appends a wine and returns its id.
	SaveWine(ctx context.Context, w *Wine) (int64, error)
	// ListWines returns stored wines, most recent first.
	ListWines(ctx context.Context, opts ListOptions) ([]Wine, error)
	// FindMatches returns wines whose producer and name contain the query's.
	FindMatches(ctx context.Context, q MatchQuery) ([]Wine, error)
	Close() error
}

// Open connects to the configured store and applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite, "sqlite3":
		return OpenSQLite(ctx, dsn)
	case DriverPostgres, "postgresql", "pgx":
		return Connect(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
