package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/parsing"
	"github.com/jonathan/wine-enricher/internal/prompts"
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/signals"
	"github.com/jonathan/wine-enricher/internal/types"
)

// Lookup describes a wine identified by producer, name and vintage. With limit > 1 the
// model may offer up to that many candidate profiles (at most prompts.MaxCandidates).
// Every returned record is persisted when a store is configured.
func (r *Runner) Lookup(ctx context.Context, q types.WineQuery, limit int) ([]*types.WineRecord, error) {
	q.Producer = strings.TrimSpace(q.Producer)
	q.WineName = strings.TrimSpace(q.WineName)
	q.VintageHint = strings.TrimSpace(q.VintageHint)
	if q.WineName == "" {
		return nil, &RowError{Kind: types.FailureInput, Cause: fmt.Errorf("wine name is required")}
	}

	sig := signals.Extract(q.WineName)
	if q.VintageHint != "" {
		sig.Vintage = &q.VintageHint
	}
	logger := r.logger.With("producer", q.Producer, "wine", q.WineName)

	var records []*types.WineRecord
	if limit <= 1 {
		record, attempts, err := r.completeRecord(ctx, prompts.BuildWinePrompt(q, r.fields), sig, logger)
		if err != nil {
			return nil, rowError(err)
		}
		logger.Info("lookup.done", "attempts", attempts, "complete", len(r.reconciler.Missing(record)) == 0)
		records = []*types.WineRecord{record}
	} else {
		if limit > prompts.MaxCandidates {
			limit = prompts.MaxCandidates
		}
		raw, err := r.call(ctx, prompts.BuildCandidatesPrompt(q, r.fields, limit))
		if err != nil {
			return nil, rowError(err)
		}
		candidates, err := parsing.ParseRecords(raw, r.fields)
		if err != nil {
			return nil, rowError(err)
		}
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		for _, c := range candidates {
			// candidates are alternatives, so no completeness retry
			record, _ := r.reconciler.Reconcile(sig, c, nil, r.reconciler.RetryBudget())
			records = append(records, record)
		}
		logger.Info("lookup.done", "candidates", len(records))
	}

	for _, record := range records {
		r.save(ctx, &db.Wine{
			Producer:    q.Producer,
			WineName:    q.WineName,
			VintageHint: q.VintageHint,
			FullRow:     strings.TrimSpace(q.Producer + " " + q.WineName + " " + q.VintageHint),
			Record:      record,
		}, logger)
	}
	return records, nil
}

// Fill asks the model for the unknown fields of record. Known values are never
// overwritten. It returns the completed copy and the keys that were filled; a record
// with nothing missing is returned unchanged without a model call.
func (r *Runner) Fill(ctx context.Context, record *types.WineRecord) (*types.WineRecord, []string, error) {
	missing := record.Missing(record.Keys())
	if len(missing) == 0 {
		return record, nil, nil
	}

	prompt, err := prompts.BuildFillPrompt(record, r.fields)
	if err != nil {
		return nil, nil, err
	}
	raw, err := r.call(ctx, prompt)
	if err != nil {
		return nil, nil, rowError(err)
	}
	answer, err := parsing.ParseRecord(raw, r.fields)
	if err != nil {
		return nil, nil, rowError(err)
	}

	filled := record.Clone()
	var keys []string
	for _, key := range missing {
		if key == schemas.FieldSources {
			if src := answer.Sources(); len(src) > 0 {
				filled.SetSources(src)
				keys = append(keys, key)
			}
			continue
		}
		if v := answer.Get(key); v != nil && strings.TrimSpace(*v) != "" {
			filled.Set(key, v)
			keys = append(keys, key)
		}
	}
	r.logger.Debug("fill.done", "missing", len(missing), "filled", len(keys))
	return filled, keys, nil
}
