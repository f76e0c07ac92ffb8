package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/wine-enricher/internal/export"
	"github.com/jonathan/wine-enricher/internal/pipeline"
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// scriptedFiller fills the region of every record, failing for names in fail.
type scriptedFiller struct {
	fail  map[string]error
	calls int
}

func (f *scriptedFiller) Fill(_ context.Context, record *types.WineRecord) (*types.WineRecord, []string, error) {
	f.calls++
	if err := f.fail[record.Value(schemas.FieldProducer)]; err != nil {
		return nil, nil, err
	}
	filled := record.Clone()
	filled.Set(schemas.FieldRegion, types.StringPtr("Napa Valley"))
	return filled, []string{schemas.FieldRegion}, nil
}

func exportRow(producer string) export.Row {
	record := schemas.NewRecord(schemas.WineFields(schemas.PriceSingle))
	record.Set(schemas.FieldProducer, types.StringPtr(producer))
	return export.Row{City: "Austin", Restaurant: "Uchi", MenuName: producer + " Cabernet", Record: record}
}

func TestFillRows(t *testing.T) {
	f := &scriptedFiller{fail: map[string]error{
		"Ridge": &pipeline.RowError{Kind: types.FailureMalformed, Cause: errors.New("no JSON object")},
	}}
	rows := []export.Row{exportRow("Caymus"), exportRow("Ridge"), exportRow("Silver Oak")}

	out, failures, filled, err := fillRows(context.Background(), f, rows)
	require.NoError(t, err)

	assert.Equal(t, 3, f.calls)
	assert.Equal(t, 2, filled)
	assert.Equal(t, "Napa Valley", out[0].Record.Value(schemas.FieldRegion))
	assert.Equal(t, "", out[1].Record.Value(schemas.FieldRegion))
	assert.Equal(t, "Napa Valley", out[2].Record.Value(schemas.FieldRegion))
	// the input rows are untouched
	assert.Equal(t, "", rows[0].Record.Value(schemas.FieldRegion))

	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Index)
	assert.Equal(t, types.FailureMalformed, failures[0].Kind)
	assert.Equal(t, "Ridge Cabernet", failures[0].Input.Text)
}

func TestFillRows_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &scriptedFiller{}
	rows := []export.Row{exportRow("Caymus")}
	out, _, _, err := fillRows(ctx, f, rows)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.calls)
	assert.Len(t, out, 1)
}

func TestFillRows_UnclassifiedError(t *testing.T) {
	f := &scriptedFiller{fail: map[string]error{"Caymus": errors.New("boom")}}

	_, failures, _, err := fillRows(context.Background(), f, []export.Row{exportRow("Caymus")})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, types.FailureTransport, failures[0].Kind)
}
