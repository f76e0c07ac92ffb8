package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wine-enricher/internal/schemas"
)

var singleFields = schemas.WineFields(schemas.PriceSingle)

func TestParseRecord_IgnoresProseAndFillsMissing(t *testing.T) {
	raw := "Here you go:\n```json\n{\"region\": \"Napa Valley\", \"country\": \"USA\", \"vintage_notes\": \"drop me\"}\n```\nEnjoy!"

	rec, err := ParseRecord(raw, singleFields)
	require.NoError(t, err)

	assert.Equal(t, "Napa Valley", rec.Value(schemas.FieldRegion))
	assert.Equal(t, "USA", rec.Value(schemas.FieldCountry))
	assert.Nil(t, rec.Get(schemas.FieldBody))
	assert.Nil(t, rec.Get(schemas.FieldPrice))
	assert.Empty(t, rec.Sources())
	assert.Equal(t, schemas.FieldNames(singleFields), rec.Keys())
	assert.False(t, rec.Has("vintage_notes"))
}

func TestParseRecord_NoBraces(t *testing.T) {
	_, err := ParseRecord("Sorry, I don't know that wine.", singleFields)

	var mre *MalformedResponseError
	require.ErrorAs(t, err, &mre)
	assert.Contains(t, mre.Error(), "no JSON object found")
}

func TestParseRecord_Coercion(t *testing.T) {
	raw := `{
		"typical_vintage": 2019,
		"price": 45.5,
		"varietal": ["Cabernet Sauvignon", "Merlot"],
		"wine_type": "red wine",
		"body": "Full-bodied",
		"state": "N/A",
		"Taste Profile": "dark fruit",
		"sources": "https://a.example; https://b.example; https://a.example"
	}`

	rec, err := ParseRecord(raw, singleFields)
	require.NoError(t, err)

	assert.Equal(t, "2019", rec.Value(schemas.FieldTypicalVintage))
	assert.Equal(t, "45.5", rec.Value(schemas.FieldPrice))
	assert.Equal(t, "Cabernet Sauvignon, Merlot", rec.Value(schemas.FieldVarietal))
	assert.Equal(t, "Red", rec.Value(schemas.FieldWineType))
	assert.Equal(t, "Full", rec.Value(schemas.FieldBody))
	assert.Nil(t, rec.Get(schemas.FieldState))
	assert.Equal(t, "dark fruit", rec.Value(schemas.FieldTasteProfile))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, rec.Sources())
}

func TestParseRecord_RejectsNestedObjectValue(t *testing.T) {
	_, err := ParseRecord(`{"region": {"name": "Napa"}}`, singleFields)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, schemas.FieldRegion, ve.Field)
}

func TestParseRecords(t *testing.T) {
	fields := schemas.WineFields(schemas.PriceSplit)

	t.Run("array of candidates", func(t *testing.T) {
		raw := `Candidates:
[
  {"producer": "Ridge", "price_glass": "$18"},
  "not an object",
  {"producer": "Ridge Vineyards", "price_bottle": "$72"}
]`
		recs, err := ParseRecords(raw, fields)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "Ridge", recs[0].Value(schemas.FieldProducer))
		assert.Equal(t, "$18", recs[0].Value(schemas.FieldPriceGlass))
		assert.Equal(t, "$72", recs[1].Value(schemas.FieldPriceBottle))
	})

	t.Run("single object accepted", func(t *testing.T) {
		recs, err := ParseRecords(`{"producer": "Ridge"}`, fields)
		require.NoError(t, err)
		require.Len(t, recs, 1)
	})

	t.Run("single object with sources list", func(t *testing.T) {
		raw := `Here you go: {"region": "Napa Valley", "country": "USA", "sources": ["wine-searcher.com", "decanter.com"]}`
		recs, err := ParseRecords(raw, fields)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Napa Valley", recs[0].Value(schemas.FieldRegion))
		assert.Equal(t, []string{"wine-searcher.com", "decanter.com"}, recs[0].Sources())
	})

	t.Run("string array before object", func(t *testing.T) {
		raw := `Sources ["a.com"] and the profile {"producer": "Ridge"}`
		recs, err := ParseRecords(raw, fields)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Ridge", recs[0].Value(schemas.FieldProducer))
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, err := ParseRecords("no data", fields)
		var mre *MalformedResponseError
		assert.ErrorAs(t, err, &mre)
	})

	t.Run("empty array", func(t *testing.T) {
		_, err := ParseRecords("[]", fields)
		var mre *MalformedResponseError
		assert.ErrorAs(t, err, &mre)
	})
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		input    string
		expected *string
	}{
		{"placeholder unknown", schemas.FieldRegion, "Unknown", nil},
		{"blank", schemas.FieldRegion, "   ", nil},
		{"collapses whitespace", schemas.FieldRegion, "  Napa   Valley ", strPtr("Napa Valley")},
		{"rose", schemas.FieldWineType, "rose", strPtr("Rosé")},
		{"unlisted type kept", schemas.FieldWineType, "Skin-contact", strPtr("Skin-contact")},
		{"body", schemas.FieldBody, "medium bodied", strPtr("Medium")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeValue(tt.field, tt.input))
		})
	}
}

func strPtr(s string) *string { return &s }
