package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/wine-enricher/internal/types"
)

// ErrNoNameColumn is returned when a restaurant list has no name column.
var ErrNoNameColumn = errors.New("no restaurant name column")

var restaurantColumns = []string{"name", "description", "address", "phone", "website", "image"}

var (
	restaurantNameHeaders = []string{"name", "restaurant", "restaurant name"}
	websiteHeaders        = []string{"website", "url", "site", "homepage"}
)

// ReadRestaurants reads a restaurant list CSV such as the one `restaurants` writes.
// Only the name column is required; a missing website column leaves every website empty.
func ReadRestaurants(path string) ([]types.Restaurant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open restaurant list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadRestaurantsCSV(f)
}

// ReadRestaurantsCSV reads restaurants from CSV with a header row. Blank rows are skipped.
func ReadRestaurantsCSV(r io.Reader) ([]types.Restaurant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	nameCol := findColumn(header, restaurantNameHeaders)
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: header is %q", ErrNoNameColumn, header)
	}
	descCol := findColumn(header, []string{"description"})
	addrCol := findColumn(header, []string{"address"})
	phoneCol := findColumn(header, []string{"phone"})
	siteCol := findColumn(header, websiteHeaders)
	imageCol := findColumn(header, []string{"image"})

	restaurants := make([]types.Restaurant, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		restaurants = append(restaurants, types.Restaurant{
			Name:        cell(row, nameCol),
			Description: cell(row, descCol),
			Address:     cell(row, addrCol),
			Phone:       cell(row, phoneCol),
			Website:     cell(row, siteCol),
			Image:       cell(row, imageCol),
		})
	}
	return restaurants, nil
}

// WriteRestaurantsCSV writes restaurants under a name, description, address,
// phone, website, image header.
func WriteRestaurantsCSV(w io.Writer, restaurants []types.Restaurant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(restaurantColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range restaurants {
		if err := cw.Write([]string{r.Name, r.Description, r.Address, r.Phone, r.Website, r.Image}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
