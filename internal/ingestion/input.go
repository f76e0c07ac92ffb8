package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/wine-enricher/internal/types"
)

// ErrNoTextColumn is returned when a tabular input has no recognizable wine text column.
var ErrNoTextColumn = errors.New("no wine text column")

// header aliases, compared after normalizeHeader
var (
	textHeaders       = []string{"text", "menu wine name", "wine name", "full row", "menu line", "wine", "line", "name"}
	cityHeaders       = []string{"city"}
	restaurantHeaders = []string{"restaurant", "restaurant name"}
	sectionHeaders    = []string{"section", "wine section"}
)

// ReadLines reads batch input rows from a .csv, .xlsx or plain text file.
// Text files hold one wine per line. Tabular files need a header row naming the
// wine text column (text, wine_name, Menu Wine Name, ...); city and restaurant are optional.
// Rows that are entirely blank are skipped.
func ReadLines(path string) ([]types.RawMenuLine, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSVLines(f)
	case ".xlsx":
		return readXLSXLines(path)
	default:
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return textLines(string(content)), nil
	}
}

// ReadCSVLines reads rows from CSV with a header row.
func ReadCSVLines(r io.Reader) ([]types.RawMenuLine, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return tableLines(records)
}

// WriteCSVLines writes lines with a text, city, restaurant, section header that
// ReadCSVLines reads back.
func WriteCSVLines(w io.Writer, lines []types.RawMenuLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"text", "city", "restaurant", "section"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, l := range lines {
		if err := cw.Write([]string{l.Text, l.City, l.Restaurant, l.Section}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func readXLSXLines(path string) ([]types.RawMenuLine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return tableLines(rows)
}

func tableLines(rows [][]string) ([]types.RawMenuLine, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	textCol := findColumn(header, textHeaders)
	if textCol < 0 {
		return nil, fmt.Errorf("%w: header is %q", ErrNoTextColumn, header)
	}
	cityCol := findColumn(header, cityHeaders)
	restaurantCol := findColumn(header, restaurantHeaders)
	sectionCol := findColumn(header, sectionHeaders)

	lines := make([]types.RawMenuLine, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		lines = append(lines, types.RawMenuLine{
			Text:       cell(row, textCol),
			City:       cell(row, cityCol),
			Restaurant: cell(row, restaurantCol),
			Section:    cell(row, sectionCol),
		})
	}
	return lines, nil
}

func textLines(content string) []types.RawMenuLine {
	var lines []types.RawMenuLine
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, types.RawMenuLine{Text: line})
		}
	}
	return lines
}

// findColumn returns the index of the first alias present in header, in alias order.
func findColumn(header []string, aliases []string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}
	for _, alias := range aliases {
		for i, h := range normalized {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(h))
	return strings.Join(strings.Fields(h), " ")
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
