package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

func TestBuildLinePrompt(t *testing.T) {
	fields := schemas.WineFields(schemas.PriceSingle)
	prompt := BuildLinePrompt("Cakebread Chardonnay", fields)

	assert.Contains(t, prompt, "master sommelier")
	assert.Contains(t, prompt, "Do not add extra keys")
	assert.Contains(t, prompt, "Use null for unknown values")
	assert.Contains(t, prompt, `"Cakebread Chardonnay"`)
	assert.Contains(t, prompt, `"sources": string[]`)
	assert.Contains(t, prompt, `"price": string|null`)
}

func TestBuildLinePrompt_FieldOrderMatchesSchema(t *testing.T) {
	fields := schemas.WineFields(schemas.PriceSplit)
	prompt := BuildLinePrompt("x", fields)

	last := -1
	for _, name := range schemas.FieldNames(fields) {
		idx := strings.Index(prompt, `"`+name+`":`)
		require.NotEqual(t, -1, idx, "field %s missing from prompt", name)
		assert.Greater(t, idx, last, "field %s out of order", name)
		last = idx
	}
	assert.NotContains(t, prompt, `"price":`)
}

func TestBuildWinePrompt_Query(t *testing.T) {
	prompt := BuildWinePrompt(types.WineQuery{WineName: "Monte Bello"}, schemas.WineFields(schemas.PriceSingle))

	assert.Contains(t, prompt, "Producer: unknown")
	assert.Contains(t, prompt, "Wine / Label: Monte Bello")
	assert.Contains(t, prompt, "Vintage hint: none")
}

func TestBuildCandidatesPrompt_ClampsLimit(t *testing.T) {
	q := types.WineQuery{Producer: "Ridge", WineName: "Zinfandel", VintageHint: "2019"}

	prompt := BuildCandidatesPrompt(q, schemas.WineFields(schemas.PriceSingle), 10)
	assert.Contains(t, prompt, "at most 3 objects")
	assert.Contains(t, prompt, "Producer: Ridge")

	prompt = BuildCandidatesPrompt(q, schemas.WineFields(schemas.PriceSingle), 2)
	assert.Contains(t, prompt, "at most 2 objects")
}

func TestWithRetryNote(t *testing.T) {
	assert.Equal(t, "base", WithRetryNote("base", nil))

	prompt := WithRetryNote("base", []string{"region", "body"})
	assert.True(t, strings.HasPrefix(prompt, "base\n\n"))
	assert.Contains(t, prompt, "region, body")
}

func TestBuildFillPrompt(t *testing.T) {
	fields := schemas.WineFields(schemas.PriceSingle)
	record := schemas.NewRecord(fields)
	record.Set(schemas.FieldProducer, types.StringPtr("Ridge"))

	prompt, err := BuildFillPrompt(record, fields)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Keep existing values")
	assert.Contains(t, prompt, `"producer": "Ridge"`)
	assert.Contains(t, prompt, `"region": null`)
}
