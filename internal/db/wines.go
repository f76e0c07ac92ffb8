package db

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// recordColumns are the record fields stored in their own column. The producer
// column is shared with the query producer.
var recordColumns = func() []string {
	var cols []string
	for _, name := range schemas.ScalarFieldNames(schemas.StorageFields()) {
		if name != schemas.FieldProducer {
			cols = append(cols, name)
		}
	}
	return cols
}()

var insertColumns = append([]string{
	"run_id", "producer", "wine_name", "vintage_hint", "full_row", "city", "restaurant",
}, append(append([]string(nil), recordColumns...), "sources", "created_at")...)

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// insertWineSQL renders the insert statement with the dialect's placeholders.
func insertWineSQL(placeholder func(int) string) string {
	marks := make([]string, len(insertColumns))
	for i := range insertColumns {
		marks[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO wines (%s) VALUES (%s) RETURNING id",
		strings.Join(insertColumns, ", "), strings.Join(marks, ", "))
}

// selectWineColumns lists the columns read back, with runIDExpr selecting run_id as text.
func selectWineColumns(runIDExpr string) string {
	cols := make([]string, 0, len(insertColumns)+1)
	cols = append(cols, "id")
	for _, c := range insertColumns {
		if c == "run_id" {
			c = runIDExpr
		}
		cols = append(cols, c)
	}
	return strings.Join(cols, ", ")
}

// wineArgs returns insert arguments in insertColumns order, without created_at.
func wineArgs(w *Wine) ([]any, error) {
	record := w.Record
	if record == nil {
		record = schemas.NewRecord(schemas.StorageFields())
	}

	producer := record.Get(schemas.FieldProducer)
	if producer == nil {
		producer = types.StringPtr(w.Producer)
	}

	args := []any{
		types.StringPtr(w.RunID), producer, w.WineName, types.StringPtr(w.VintageHint),
		w.FullRow, w.City, w.Restaurant,
	}
	for _, col := range recordColumns {
		args = append(args, record.Get(col))
	}

	sources, err := json.Marshal(record.Sources())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sources: %w", err)
	}
	return append(args, string(sources)), nil
}

// scannedWine holds scan destinations for one row. createdAt is dialect specific.
type scannedWine struct {
	id          int64
	runID       *string
	producer    *string
	wineName    *string
	vintageHint *string
	fullRow     *string
	city        *string
	restaurant  *string
	record      []*string
	sources     []byte
}

func (s *scannedWine) dest(createdAt any) []any {
	s.record = make([]*string, len(recordColumns))
	d := []any{&s.id, &s.runID, &s.producer, &s.wineName, &s.vintageHint, &s.fullRow, &s.city, &s.restaurant}
	for i := range s.record {
		d = append(d, &s.record[i])
	}
	return append(d, &s.sources, createdAt)
}

func (s *scannedWine) wine() (Wine, error) {
	record := schemas.NewRecord(schemas.StorageFields())
	record.Set(schemas.FieldProducer, s.producer)
	for i, col := range recordColumns {
		record.Set(col, s.record[i])
	}

	var sources []string
	if len(s.sources) > 0 {
		if err := json.Unmarshal(s.sources, &sources); err != nil {
			return Wine{}, fmt.Errorf("failed to unmarshal sources for wine %d: %w", s.id, err)
		}
	}
	record.SetSources(sources)

	return Wine{
		ID:          s.id,
		RunID:       types.Deref(s.runID),
		Producer:    types.Deref(s.producer),
		WineName:    types.Deref(s.wineName),
		VintageHint: types.Deref(s.vintageHint),
		FullRow:     types.Deref(s.fullRow),
		City:        types.Deref(s.city),
		Restaurant:  types.Deref(s.restaurant),
		Record:      record,
	}, nil
}

// likePattern wraps a lowercased term for a substring LIKE match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
