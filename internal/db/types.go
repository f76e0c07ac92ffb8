package db

import (
	"time"

	"github.com/jonathan/wine-enricher/internal/types"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCancelled = "cancelled"
)

// Run represents a batch run record
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Succeeded   int        `json:"succeeded"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Wine is one stored enrichment: the identifying input plus the finalized record.
type Wine struct {
	ID          int64             `json:"id"`
	RunID       string            `json:"run_id,omitempty"`
	Producer    string            `json:"producer,omitempty"` // as queried; the record's producer wins when known
	WineName    string            `json:"wine_name"`
	VintageHint string            `json:"vintage_hint,omitempty"`
	FullRow     string            `json:"full_row,omitempty"`
	City        string            `json:"city,omitempty"`
	Restaurant  string            `json:"restaurant,omitempty"`
	Record      *types.WineRecord `json:"record"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ListOptions filters ListWines.
type ListOptions struct {
	RunID string
	Limit int // 0 means no limit
}

// MatchQuery is a case-insensitive substring match on producer and wine name.
type MatchQuery struct {
	Producer string `json:"producer" validate:"required"`
	WineName string `json:"wine_name" validate:"required"`
	Limit    int    `json:"limit,omitempty"`
}
