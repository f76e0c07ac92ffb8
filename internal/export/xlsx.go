package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/wine-enricher/internal/schemas"
)

// SheetName is the worksheet holding exported wines.
const SheetName = "Wines"

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, fields []schemas.Field, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	writeRow := func(row int, values []string) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	headers := Headers(fields)
	if err := writeRow(1, headers); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(i+2, Values(row, fields)); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	// Widen the free-text columns
	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(SheetName, "A", "B", 18)
	_ = f.SetColWidth(SheetName, "C", "C", 40)
	_ = f.SetColWidth(SheetName, "D", last, 20)
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("xlsx panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// ReadXLSX reads the first sheet of an exported workbook back into rows.
func ReadXLSX(r io.Reader, fields []schemas.Field) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(table) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, len(table)-1)
	for _, values := range table[1:] {
		row, err := rowFromValues(table[0], values, fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
