package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// Exporter writes export files, choosing the format from the file extension.
type Exporter struct {
	fields []schemas.Field
	logger *slog.Logger
}

// NewExporter creates an exporter for the schema.
func NewExporter(fields []schemas.Field, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{fields: fields, logger: logger}
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// WriteFile writes rows to path as XLSX when it ends in .xlsx, CSV otherwise.
func (e *Exporter) WriteFile(path string, rows []Row) error {
	start := time.Now()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	format := "csv"
	if isXLSX(path) {
		format = "xlsx"
		err = WriteXLSX(f, e.fields, rows)
	} else {
		err = WriteCSV(f, e.fields, rows)
	}
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	e.logger.Info("export."+format+".ok",
		"path", path,
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// WriteFailures writes the failures file next to out. Nothing is written when there
// are no failures; the returned path is then empty.
func (e *Exporter) WriteFailures(out string, failures []types.RowFailure) (string, error) {
	if len(failures) == 0 {
		return "", nil
	}
	path := FailuresPath(out)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteFailuresCSV(f, failures); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	e.logger.Info("export.failures.ok", "path", path, "rows", len(failures))
	return path, nil
}

// ReadFile reads an export written by WriteFile.
func (e *Exporter) ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if isXLSX(path) {
		return ReadXLSX(f, e.fields)
	}
	return ReadCSV(f, e.fields)
}
