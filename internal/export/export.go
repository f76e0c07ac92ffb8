// Package export writes enriched wines as CSV or XLSX tables and reads them back.
package export

import (
	"fmt"
	"strings"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// Context column headers written before the record fields.
const (
	HeaderCity       = "City"
	HeaderRestaurant = "Restaurant"
	HeaderMenuName   = "Menu Wine Name"
	HeaderReason     = "Reason"
)

// SourcesSeparator joins sources into one cell.
const SourcesSeparator = "; "

// Row is one exported wine.
type Row struct {
	City       string
	Restaurant string
	MenuName   string
	Record     *types.WineRecord
}

// Label returns the column header for a field name ("wine_type" -> "Wine Type").
func Label(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Headers returns the fixed header list for a schema.
func Headers(fields []schemas.Field) []string {
	headers := []string{HeaderCity, HeaderRestaurant, HeaderMenuName}
	for _, f := range fields {
		headers = append(headers, Label(f.Name))
	}
	return headers
}

// Values renders a row in header order.
func Values(row Row, fields []schemas.Field) []string {
	values := []string{row.City, row.Restaurant, row.MenuName}
	for _, f := range fields {
		switch {
		case row.Record == nil:
			values = append(values, "")
		case f.Type == schemas.TypeStringList:
			values = append(values, strings.Join(row.Record.Sources(), SourcesSeparator))
		default:
			values = append(values, row.Record.Value(f.Name))
		}
	}
	return values
}

// RowsFromBatch returns the finalized rows of a batch in input order.
func RowsFromBatch(result *types.BatchResult) []Row {
	rows := make([]Row, 0, len(result.Succeeded))
	for _, r := range result.Succeeded {
		rows = append(rows, Row{
			City:       r.Input.City,
			Restaurant: r.Input.Restaurant,
			MenuName:   r.Input.Text,
			Record:     r.Record,
		})
	}
	return rows
}

// RowsFromWines converts stored wines. The menu name is the original row when known.
func RowsFromWines(wines []db.Wine) []Row {
	rows := make([]Row, 0, len(wines))
	for _, w := range wines {
		name := w.FullRow
		if name == "" {
			name = w.WineName
		}
		rows = append(rows, Row{City: w.City, Restaurant: w.Restaurant, MenuName: name, Record: w.Record})
	}
	return rows
}

// FailuresPath returns the companion failures file for an export path.
func FailuresPath(out string) string {
	if i := strings.LastIndex(out, "."); i > strings.LastIndexAny(out, `/\`) {
		out = out[:i]
	}
	return out + ".failures.csv"
}

// rowFromValues maps a table row back onto a record using its header.
func rowFromValues(header, values []string, fields []schemas.Field) (Row, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(name string) string {
		if i, ok := index[strings.ToLower(name)]; ok && i < len(values) {
			return strings.TrimSpace(values[i])
		}
		return ""
	}

	menuCol := HeaderMenuName
	if _, ok := index[strings.ToLower(menuCol)]; !ok {
		return Row{}, fmt.Errorf("missing %q column", HeaderMenuName)
	}

	record := schemas.NewRecord(fields)
	for _, f := range fields {
		v := cell(Label(f.Name))
		if f.Type == schemas.TypeStringList {
			record.SetSources(strings.Split(v, ";"))
			continue
		}
		record.Set(f.Name, types.StringPtr(v))
	}
	return Row{
		City:       cell(HeaderCity),
		Restaurant: cell(HeaderRestaurant),
		MenuName:   cell(menuCol),
		Record:     record,
	}, nil
}
