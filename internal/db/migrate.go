package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for the dialect to db.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect) error {
	dir := "migrations/sqlite"
	if dialect == goose.DialectPostgres {
		dir = "migrations/postgres"
	}

	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
