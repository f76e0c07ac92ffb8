// Package reconcile merges deterministic menu signals with model answers
// and decides when an incomplete answer earns another model call.
package reconcile

import (
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// DefaultRetryBudget is the number of completeness retries per row.
const DefaultRetryBudget = 1

// Reconciler applies signal precedence and the completeness retry policy.
type Reconciler struct {
	fields      []schemas.Field
	mustFill    []string
	retryBudget int
}

// New creates a reconciler for a schema. An empty mustFill means every scalar field.
// A negative retryBudget is treated as zero.
func New(fields []schemas.Field, mustFill []string, retryBudget int) *Reconciler {
	if len(mustFill) == 0 {
		mustFill = schemas.ScalarFieldNames(fields)
	}
	if retryBudget < 0 {
		retryBudget = 0
	}
	return &Reconciler{
		fields:      fields,
		mustFill:    append([]string(nil), mustFill...),
		retryBudget: retryBudget,
	}
}

// Fields returns the schema the reconciler emits.
func (r *Reconciler) Fields() []schemas.Field { return r.fields }

// RetryBudget returns the number of completeness retries allowed per row.
func (r *Reconciler) RetryBudget() int { return r.retryBudget }

// Reconcile builds the final record for one attempt. Extracted signals win over the
// model's values for the same field; unknown model fields fall back to previous, the
// record from an earlier attempt for the same row (nil on the first attempt).
// needsRetry is true when a must-fill field is still missing and fewer than the
// budgeted retries have been used.
func (r *Reconciler) Reconcile(signals types.ExtractedSignals, model, previous *types.WineRecord, retriesUsed int) (*types.WineRecord, bool) {
	record := schemas.NewRecord(r.fields)

	if model != nil {
		for _, key := range record.Keys() {
			if key == types.SourcesField {
				record.SetSources(model.Sources())
				continue
			}
			record.Set(key, blankToNil(model.Get(key)))
		}
	}

	if previous != nil {
		for _, key := range record.Keys() {
			if key == types.SourcesField {
				if len(record.Sources()) == 0 {
					record.SetSources(previous.Sources())
				}
				continue
			}
			if record.Get(key) == nil {
				record.Set(key, blankToNil(previous.Get(key)))
			}
		}
	}

	applySignals(record, signals)

	missing := r.Missing(record)
	return record, len(missing) > 0 && retriesUsed < r.retryBudget
}

// Missing lists the must-fill fields that are null or blank in record.
func (r *Reconciler) Missing(record *types.WineRecord) []string {
	return record.Missing(r.mustFill)
}

// applySignals writes extracted prices and vintage into whichever price fields the
// schema carries. A record with a single price field takes the single price, or else
// the bottle price, or else the glass price. A split record takes a lone single price
// as its bottle price.
func applySignals(record *types.WineRecord, s types.ExtractedSignals) {
	if record.Has(schemas.FieldPrice) {
		switch {
		case s.Price != nil:
			record.Set(schemas.FieldPrice, s.Price)
		case s.PriceBottle != nil:
			record.Set(schemas.FieldPrice, s.PriceBottle)
		case s.PriceGlass != nil:
			record.Set(schemas.FieldPrice, s.PriceGlass)
		}
	}

	if s.PriceGlass != nil {
		record.Set(schemas.FieldPriceGlass, s.PriceGlass)
	}
	switch {
	case s.PriceBottle != nil:
		record.Set(schemas.FieldPriceBottle, s.PriceBottle)
	case s.Price != nil && !s.HasSplitPrice():
		record.Set(schemas.FieldPriceBottle, s.Price)
	}

	if s.Vintage != nil {
		record.Set(schemas.FieldTypicalVintage, s.Vintage)
	}
}

func blankToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
