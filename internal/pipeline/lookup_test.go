package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/llm/llmtest"
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

func TestLookup_Single(t *testing.T) {
	client := llmtest.New(llmtest.Reply{Text: modelJSON(t, nil)})
	r, _ := newTestRunner(t, client, nil)

	records, err := r.Lookup(context.Background(), types.WineQuery{
		Producer:    "Cakebread",
		WineName:    "Chardonnay",
		VintageHint: "2019",
	}, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2019", records[0].Value(schemas.FieldTypicalVintage))

	require.Len(t, client.Calls, 1)
	assert.Contains(t, client.Calls[0].Prompt, "Producer: Cakebread")
	assert.Contains(t, client.Calls[0].Prompt, "Vintage hint: 2019")
}

func TestLookup_Candidates(t *testing.T) {
	store, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	reply := "[" +
		`{"producer": "Ridge Vineyards", "region": "Sonoma County", "typical_vintage": "2019", "sources": []},` +
		`{"producer": "Ridge Vineyards", "region": "Dry Creek Valley", "sources": ["https://ridgewine.com"]},` +
		`{"producer": "Ridge Vineyards", "region": "Alexander Valley"},` +
		`{"producer": "Ridge Vineyards", "region": "Paso Robles"}` +
		"]"
	client := llmtest.New(llmtest.Reply{Text: reply})
	r, _ := newTestRunner(t, client, func(o *Options) { o.Store = store })

	records, err := r.Lookup(context.Background(), types.WineQuery{Producer: "Ridge", WineName: "Geyserville 2021"}, 5)
	require.NoError(t, err)

	// capped at three candidates and a single call despite missing fields
	require.Len(t, records, 3)
	assert.Equal(t, 1, client.CallCount())
	assert.Equal(t, "Sonoma County", records[0].Value(schemas.FieldRegion))
	// vintage in the name wins over the model's
	assert.Equal(t, "2021", records[0].Value(schemas.FieldTypicalVintage))
	assert.Equal(t, []string{"https://ridgewine.com"}, records[1].Sources())

	wines, err := store.ListWines(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, wines, 3)
	assert.Equal(t, "Geyserville 2021", wines[0].WineName)
}

func TestLookup_RequiresName(t *testing.T) {
	r, _ := newTestRunner(t, llmtest.New(), nil)

	_, err := r.Lookup(context.Background(), types.WineQuery{Producer: "Ridge", WineName: "  "}, 1)
	var re *RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, types.FailureInput, re.Kind)
}

func TestFill(t *testing.T) {
	fields := schemas.WineFields(schemas.PriceSingle)

	record := schemas.NewRecord(fields)
	record.Set(schemas.FieldProducer, types.StringPtr("Ridge Vineyards"))
	record.Set(schemas.FieldCountry, types.StringPtr("USA"))
	record.Set(schemas.FieldPrice, types.StringPtr("$95"))

	client := llmtest.New(llmtest.Reply{Text: `{
		"producer": "Someone Else",
		"country": "United States",
		"region": "Sonoma County",
		"varietal": "Zinfandel",
		"price": "$60",
		"sources": ["https://ridgewine.com"]
	}`})
	r, sleeps := newTestRunner(t, client, nil)

	filled, keys, err := r.Fill(context.Background(), record)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{schemas.FieldRegion, schemas.FieldVarietal, schemas.FieldSources}, keys)
	assert.Equal(t, "Ridge Vineyards", filled.Value(schemas.FieldProducer))
	assert.Equal(t, "USA", filled.Value(schemas.FieldCountry))
	assert.Equal(t, "$95", filled.Value(schemas.FieldPrice))
	assert.Equal(t, "Sonoma County", filled.Value(schemas.FieldRegion))
	assert.Nil(t, filled.Get(schemas.FieldBody))
	// the input is untouched
	assert.Nil(t, record.Get(schemas.FieldRegion))

	assert.Contains(t, client.Calls[0].Prompt, `"producer": "Ridge Vineyards"`)
	assert.Len(t, sleeps.calls, 1)
}

func TestFill_NothingMissing(t *testing.T) {
	fields := schemas.WineFields(schemas.PriceSingle)
	record := schemas.NewRecord(fields)
	for _, name := range schemas.ScalarFieldNames(fields) {
		record.Set(name, types.StringPtr("x"))
	}
	record.SetSources([]string{"https://example.com"})

	client := llmtest.New()
	r, _ := newTestRunner(t, client, nil)

	filled, keys, err := r.Fill(context.Background(), record)
	require.NoError(t, err)
	assert.Same(t, record, filled)
	assert.Empty(t, keys)
	assert.Equal(t, 0, client.CallCount())
}
