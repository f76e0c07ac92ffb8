package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// WriteCSV writes rows under the schema's header.
func WriteCSV(w io.Writer, fields []schemas.Field, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(fields)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(Values(row, fields)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFailuresCSV writes failed rows with their reasons so they can be re-run.
func WriteFailuresCSV(w io.Writer, failures []types.RowFailure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{HeaderCity, HeaderRestaurant, HeaderMenuName, HeaderReason}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, f := range failures {
		if err := cw.Write([]string{f.Input.City, f.Input.Restaurant, f.Input.Text, f.Reason}); err != nil {
			return fmt.Errorf("failed to write failure: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads an exported table back into rows.
func ReadCSV(r io.Reader, fields []schemas.Field) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []Row
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		row, err := rowFromValues(header, values, fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
