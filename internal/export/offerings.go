package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/wine-enricher/internal/types"
)

var offeringColumns = []string{"name", "website", "wine_menu_url", "status"}

// WriteOfferingsCSV writes one row per restaurant with where its wine list was found.
func WriteOfferingsCSV(w io.Writer, offerings []types.WineOffering) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(offeringColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, o := range offerings {
		if err := cw.Write([]string{o.Name, o.Website, o.WineMenuURL, o.Status}); err != nil {
			return fmt.Errorf("failed to write offering: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOfferings writes offerings to a CSV file at path.
func (e *Exporter) WriteOfferings(path string, offerings []types.WineOffering) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteOfferingsCSV(f, offerings); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	e.logger.Info("export.offerings.ok", "path", path, "rows", len(offerings))
	return nil
}
