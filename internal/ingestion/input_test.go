package ingestion

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/wine-enricher/internal/types"
)

func TestReadCSVLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.RawMenuLine
	}{
		{
			name:  "text column",
			input: "text,city,restaurant\nCakebread Chardonnay 2021 $18,Napa,Bistro\n",
			want:  []types.RawMenuLine{{Text: "Cakebread Chardonnay 2021 $18", City: "Napa", Restaurant: "Bistro"}},
		},
		{
			name:  "export header",
			input: "City,Restaurant,Menu Wine Name,Reason\nSF,Zuni,Ridge Geyserville,transport\n",
			want:  []types.RawMenuLine{{Text: "Ridge Geyserville", City: "SF", Restaurant: "Zuni"}},
		},
		{
			name:  "snake case with BOM and section",
			input: "\ufeffwine_name,wine_section\nBarolo 2016,By the Bottle\n",
			want:  []types.RawMenuLine{{Text: "Barolo 2016", Section: "By the Bottle"}},
		},
		{
			name:  "blank rows skipped, empty text kept",
			input: "text,city\n,,\n,Portland\nChablis,\n",
			want:  []types.RawMenuLine{{City: "Portland"}, {Text: "Chablis"}},
		},
		{
			name:  "header only",
			input: "text\n",
			want:  []types.RawMenuLine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSVLines(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSVLines_NoTextColumn(t *testing.T) {
	_, err := ReadCSVLines(strings.NewReader("city,restaurant\nNapa,Bistro\n"))
	require.ErrorIs(t, err, ErrNoTextColumn)
}

func TestReadLines_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.txt")
	require.NoError(t, os.WriteFile(path, []byte("Chablis 18\r\n\n  Sancerre 16  \n"), 0o644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []types.RawMenuLine{{Text: "Chablis 18"}, {Text: "Sancerre 16"}}, lines)
}

func TestReadLines_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wines.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"City", "Restaurant", "Menu Wine Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Napa", "Bistro", "Cakebread Chardonnay"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []types.RawMenuLine{{Text: "Cakebread Chardonnay", City: "Napa", Restaurant: "Bistro"}}, lines)
}

func TestReadLines_Missing(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestWriteCSVLines_RoundTrip(t *testing.T) {
	lines := []types.RawMenuLine{
		{Text: "Chablis, Domaine Laroche 2021 18", City: "Austin", Restaurant: "Uchi", Section: "By the Glass"},
		{Text: "Barolo \"Cannubi\" 2018 120", City: "Austin", Restaurant: "Uchi"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSVLines(&buf, lines))
	assert.True(t, strings.HasPrefix(buf.String(), "text,city,restaurant,section\n"))

	got, err := ReadCSVLines(&buf)
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}
