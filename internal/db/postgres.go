package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and migrates it
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	if err := Migrate(ctx, sqlDB, goose.DialectPostgres); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

func pgPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// CreateRun records the start of a batch run
func (db *DB) CreateRun(ctx context.Context, runID, source string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO runs (id, source, status) VALUES ($1, $2, $3)`,
		runID, source, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a batch run as finished with its counts
func (db *DB) CompleteRun(ctx context.Context, run *Run) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE runs SET status = $1, total = $2, succeeded = $3, failed = $4, skipped = $5, completed_at = NOW()
		 WHERE id = $6`,
		run.Status, run.Total, run.Succeeded, run.Failed, run.Skipped, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun returns a run by id
func (db *DB) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id::text, source, status, total, succeeded, failed, skipped, created_at, completed_at
		 FROM runs WHERE id = $1`, runID,
	).Scan(&run.ID, &run.Source, &run.Status, &run.Total, &run.Succeeded, &run.Failed, &run.Skipped,
		&run.CreatedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// SaveWine appends a wine and returns its id
func (db *DB) SaveWine(ctx context.Context, w *Wine) (int64, error) {
	args, err := wineArgs(w)
	if err != nil {
		return 0, err
	}
	args = append(args, time.Now())

	var id int64
	if err := db.pool.QueryRow(ctx, insertWineSQL(pgPlaceholder), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to save wine: %w", err)
	}
	return id, nil
}

// ListWines returns wines, most recent first
func (db *DB) ListWines(ctx context.Context, opts ListOptions) ([]Wine, error) {
	query := "SELECT " + selectWineColumns("run_id::text") + " FROM wines"
	var args []any
	if opts.RunID != "" {
		args = append(args, opts.RunID)
		query += fmt.Sprintf(" WHERE run_id = $%d", len(args))
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return db.queryWines(ctx, query, args...)
}

// FindMatches returns wines matching producer and name, most recent first
func (db *DB) FindMatches(ctx context.Context, q MatchQuery) ([]Wine, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + selectWineColumns("run_id::text") + " FROM wines")
	sb.WriteString(` WHERE LOWER(COALESCE(producer, '')) LIKE $1`)
	sb.WriteString(` AND LOWER(COALESCE(wine_name, '')) LIKE $2`)
	sb.WriteString(" ORDER BY id DESC")
	args := []any{likePattern(q.Producer), likePattern(q.WineName)}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT $3")
		args = append(args, q.Limit)
	}
	return db.queryWines(ctx, sb.String(), args...)
}

func (db *DB) queryWines(ctx context.Context, query string, args ...any) ([]Wine, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wines: %w", err)
	}
	defer rows.Close()

	var wines []Wine
	for rows.Next() {
		var sw scannedWine
		var createdAt time.Time
		if err := rows.Scan(sw.dest(&createdAt)...); err != nil {
			return nil, fmt.Errorf("failed to scan wine: %w", err)
		}
		w, err := sw.wine()
		if err != nil {
			return nil, err
		}
		w.CreatedAt = createdAt
		wines = append(wines, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wines: %w", err)
	}
	return wines, nil
}
