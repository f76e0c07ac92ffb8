package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default file-backed store.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "wines.db"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if err := Migrate(ctx, db, goose.DialectSQLite3); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqlitePlaceholder(int) string { return "?" }

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreateRun records the start of a batch run
func (s *SQLiteStore) CreateRun(ctx context.Context, runID, source string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, created_at) VALUES (?, ?, ?, ?)`,
		runID, source, RunStatusRunning, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun stores a run's final status and counts
func (s *SQLiteStore) CompleteRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, total = ?, succeeded = ?, failed = ?, skipped = ?, completed_at = ?
		 WHERE id = ?`,
		run.Status, run.Total, run.Succeeded, run.Failed, run.Skipped, formatTime(time.Now()), run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun returns a run by id
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	var createdAt string
	var completedAt *string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, status, total, succeeded, failed, skipped, created_at, completed_at
		 FROM runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Source, &run.Status, &run.Total, &run.Succeeded, &run.Failed, &run.Skipped,
		&createdAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.CreatedAt = parseTime(createdAt)
	if completedAt != nil {
		t := parseTime(*completedAt)
		run.CompletedAt = &t
	}
	return &run, nil
}

// SaveWine appends a wine and returns its id
func (s *SQLiteStore) SaveWine(ctx context.Context, w *Wine) (int64, error) {
	args, err := wineArgs(w)
	if err != nil {
		return 0, err
	}
	args = append(args, formatTime(time.Now()))

	var id int64
	if err := s.db.QueryRowContext(ctx, insertWineSQL(sqlitePlaceholder), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to save wine: %w", err)
	}
	return id, nil
}

// ListWines returns wines, most recent first
func (s *SQLiteStore) ListWines(ctx context.Context, opts ListOptions) ([]Wine, error) {
	query := "SELECT " + selectWineColumns("run_id") + " FROM wines"
	var args []any
	if opts.RunID != "" {
		query += " WHERE run_id = ?"
		args = append(args, opts.RunID)
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	return s.queryWines(ctx, query, args...)
}

// FindMatches returns wines matching producer and name, most recent first
func (s *SQLiteStore) FindMatches(ctx context.Context, q MatchQuery) ([]Wine, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + selectWineColumns("run_id") + " FROM wines")
	sb.WriteString(` WHERE LOWER(COALESCE(producer, '')) LIKE ? ESCAPE '\'`)
	sb.WriteString(` AND LOWER(COALESCE(wine_name, '')) LIKE ? ESCAPE '\'`)
	sb.WriteString(" ORDER BY id DESC")
	args := []any{likePattern(q.Producer), likePattern(q.WineName)}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return s.queryWines(ctx, sb.String(), args...)
}

func (s *SQLiteStore) queryWines(ctx context.Context, query string, args ...any) ([]Wine, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wines: %w", err)
	}
	defer rows.Close()

	var wines []Wine
	for rows.Next() {
		var sw scannedWine
		var createdAt string
		if err := rows.Scan(sw.dest(&createdAt)...); err != nil {
			return nil, fmt.Errorf("failed to scan wine: %w", err)
		}
		w, err := sw.wine()
		if err != nil {
			return nil, err
		}
		w.CreatedAt = parseTime(createdAt)
		wines = append(wines, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wines: %w", err)
	}
	return wines, nil
}
