// Package pipeline drives menu lines through classification, signal extraction,
// model calls, parsing and reconciliation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/wine-enricher/internal/classify"
	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/llm"
	"github.com/jonathan/wine-enricher/internal/parsing"
	"github.com/jonathan/wine-enricher/internal/prompts"
	"github.com/jonathan/wine-enricher/internal/reconcile"
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/signals"
	"github.com/jonathan/wine-enricher/internal/types"
)

// DefaultDelay is the pause after every model call.
const DefaultDelay = 500 * time.Millisecond

// ProgressEvent reports a row reaching a terminal state.
type ProgressEvent struct {
	RunID  string            `json:"run_id"`
	Index  int               `json:"index"`
	Total  int               `json:"total"`
	Status types.RowStatus   `json:"status"`
	Input  types.RawMenuLine `json:"input"`
	Record *types.WineRecord `json:"record,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

// ProgressCallback is called after each row is finalized, skipped or failed
type ProgressCallback func(event ProgressEvent)

// Store is the persistence the runner needs. db.Store satisfies it.
type Store interface {
	CreateRun(ctx context.Context, runID, source string) error
	CompleteRun(ctx context.Context, run *db.Run) error
	SaveWine(ctx context.Context, w *db.Wine) (int64, error)
}

// Options configures a Runner
type Options struct {
	Model       string
	Temperature float64
	Delay       time.Duration
	Variant     schemas.PriceVariant
	MustFill    []string // empty means every scalar field
	RetryBudget int
	Source      string // recorded with the run, e.g. the input path

	Classifier *classify.Classifier
	Store      Store
	Logger     *slog.Logger
	// Sleep waits between model calls; tests replace it.
	Sleep func(ctx context.Context, d time.Duration)
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Temperature: llm.DefaultTemperature,
		Delay:       DefaultDelay,
		Variant:     schemas.PriceSingle,
		RetryBudget: reconcile.DefaultRetryBudget,
	}
}

// Runner enriches menu lines one at a time.
type Runner struct {
	client     llm.Client
	opts       Options
	fields     []schemas.Field
	reconciler *reconcile.Reconciler
	classifier *classify.Classifier
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration)
}

// NewRunner creates a runner. It fails when must-fill names a field the schema lacks.
func NewRunner(client llm.Client, opts Options) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("completion client is required")
	}

	fields := schemas.WineFields(opts.Variant)
	known := make(map[string]bool, len(fields))
	for _, name := range schemas.FieldNames(fields) {
		known[name] = true
	}
	for _, name := range opts.MustFill {
		if !known[name] {
			return nil, fmt.Errorf("must-fill field %q is not in the %s schema", name, opts.Variant)
		}
	}

	r := &Runner{
		client:     client,
		opts:       opts,
		fields:     fields,
		reconciler: reconcile.New(fields, opts.MustFill, opts.RetryBudget),
		classifier: opts.Classifier,
		logger:     opts.Logger,
		sleep:      opts.Sleep,
	}
	if r.classifier == nil {
		r.classifier = classify.New(classify.DefaultKeywords)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.sleep == nil {
		r.sleep = sleepContext
	}
	return r, nil
}

// Fields returns the record schema the runner emits.
func (r *Runner) Fields() []schemas.Field { return r.fields }

// Run processes rows strictly in order and never aborts on a row failure. It stops
// early only when ctx is cancelled, checked between rows, and then returns the
// partial result with ctx's error.
func (r *Runner) Run(ctx context.Context, rows []types.RawMenuLine, onProgress ProgressCallback) (*types.BatchResult, error) {
	result := &types.BatchResult{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", result.RunID)

	if r.opts.Store != nil {
		if err := r.opts.Store.CreateRun(ctx, result.RunID, r.opts.Source); err != nil {
			logger.Warn("batch.run.create_failed", "error", err)
		}
	}
	logger.Info("batch.start", "rows", len(rows), "model", r.opts.Model, "delay", r.opts.Delay)

	emit := func(ev ProgressEvent) {
		if onProgress != nil {
			ev.RunID = result.RunID
			ev.Total = len(rows)
			onProgress(ev)
		}
	}

	var runErr error
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch.cancelled", "processed", i, "remaining", len(rows)-i)
			runErr = err
			break
		}

		enriched, err := r.enrich(ctx, row, result.RunID, logger.With("row", i))
		switch {
		case errors.Is(err, ErrSkipped):
			result.Skipped = append(result.Skipped, types.SkippedRow{Index: i, Input: row})
			emit(ProgressEvent{Index: i, Status: types.RowSkipped, Input: row})
		case err != nil:
			re := rowError(err)
			result.Failed = append(result.Failed, types.RowFailure{
				Index:  i,
				Input:  row,
				Kind:   re.Kind,
				Reason: re.Cause.Error(),
			})
			emit(ProgressEvent{Index: i, Status: types.RowFailed, Input: row, Reason: re.Cause.Error()})
		default:
			enriched.Index = i
			result.Succeeded = append(result.Succeeded, *enriched)
			emit(ProgressEvent{Index: i, Status: types.RowFinalized, Input: row, Record: enriched.Record})
		}
	}

	logger.Info("batch.done",
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
		"skipped", len(result.Skipped),
		"incomplete", result.Incomplete(),
	)
	r.completeRun(ctx, result, runErr != nil, logger)
	return result, runErr
}

// EnrichLine runs a single line through the same steps as a batch row.
// It returns ErrSkipped for non-wine lines and a *RowError on failure.
func (r *Runner) EnrichLine(ctx context.Context, line types.RawMenuLine) (*types.EnrichedRow, error) {
	row, err := r.enrich(ctx, line, "", r.logger)
	if err != nil && !errors.Is(err, ErrSkipped) {
		return nil, rowError(err)
	}
	return row, err
}

func (r *Runner) enrich(ctx context.Context, line types.RawMenuLine, runID string, logger *slog.Logger) (*types.EnrichedRow, error) {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return nil, &RowError{Kind: types.FailureInput, Cause: fmt.Errorf("empty menu line")}
	}
	if r.classifier.IsLikelyNonWine(text) {
		logger.Debug("batch.row.skipped", "text", text)
		return nil, ErrSkipped
	}

	sig := signals.Extract(text)
	if sig.CleanedName == "" {
		return nil, &RowError{Kind: types.FailureInput, Cause: fmt.Errorf("no wine name left in %q after removing prices", text)}
	}

	basePrompt := prompts.BuildLinePrompt(sig.CleanedName, r.fields)
	record, attempts, err := r.completeRecord(ctx, basePrompt, sig, logger)
	if err != nil {
		return nil, err
	}

	row := &types.EnrichedRow{
		Input:    line,
		Signals:  sig,
		Record:   record,
		Attempts: attempts,
		Complete: len(r.reconciler.Missing(record)) == 0,
	}
	r.save(ctx, &db.Wine{
		RunID:       runID,
		WineName:    sig.CleanedName,
		VintageHint: types.Deref(sig.Vintage),
		FullRow:     line.Text,
		City:        line.City,
		Restaurant:  line.Restaurant,
		Record:      record,
	}, logger)

	logger.Info("batch.row.finalized", "name", sig.CleanedName, "attempts", attempts, "complete", row.Complete)
	return row, nil
}

// completeRecord asks for a record and reconciles it with the signals, retrying once
// per budgeted retry while must-fill fields stay missing. A failure on a retry keeps
// the record from the earlier attempt.
func (r *Runner) completeRecord(ctx context.Context, basePrompt string, sig types.ExtractedSignals, logger *slog.Logger) (*types.WineRecord, int, error) {
	prompt := basePrompt
	var previous *types.WineRecord

	for attempt := 0; ; attempt++ {
		model, err := r.callRecord(ctx, prompt)
		if err != nil {
			if previous != nil {
				logger.Warn("batch.row.retry_failed", "attempt", attempt+1, "error", err)
				return previous, attempt + 1, nil
			}
			logger.Warn("batch.row.failed", "error", err)
			return nil, attempt + 1, err
		}

		record, needsRetry := r.reconciler.Reconcile(sig, model, previous, attempt)
		if !needsRetry {
			return record, attempt + 1, nil
		}

		missing := r.reconciler.Missing(record)
		logger.Debug("batch.row.retry", "attempt", attempt+1, "missing", missing)
		prompt = prompts.WithRetryNote(basePrompt, missing)
		previous = record
	}
}

// callRecord makes one paced model call and parses a single record from it.
func (r *Runner) callRecord(ctx context.Context, prompt string) (*types.WineRecord, error) {
	raw, err := r.call(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parsing.ParseRecord(raw, r.fields)
}

// call sends one prompt and then waits the pacing delay, whatever the outcome.
// The call itself is not cancelled when ctx is; cancellation takes effect between rows.
func (r *Runner) call(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	raw, err := r.client.Complete(context.WithoutCancel(ctx), prompt, r.opts.Model, r.opts.Temperature)
	r.logger.Debug("llm.complete", "provider", r.client.Provider(), "duration", time.Since(start), "ok", err == nil)

	if r.opts.Delay > 0 {
		r.sleep(ctx, r.opts.Delay)
	}
	return raw, err
}

func (r *Runner) save(ctx context.Context, w *db.Wine, logger *slog.Logger) {
	if r.opts.Store == nil {
		return
	}
	id, err := r.opts.Store.SaveWine(context.WithoutCancel(ctx), w)
	if err != nil {
		logger.Warn("store.wine.save_failed", "error", err)
		return
	}
	logger.Debug("store.wine.saved", "id", id)
}

func (r *Runner) completeRun(ctx context.Context, result *types.BatchResult, cancelled bool, logger *slog.Logger) {
	if r.opts.Store == nil {
		return
	}
	status := db.RunStatusCompleted
	if cancelled {
		status = db.RunStatusCancelled
	}
	err := r.opts.Store.CompleteRun(context.WithoutCancel(ctx), &db.Run{
		ID:        result.RunID,
		Status:    status,
		Total:     result.Total(),
		Succeeded: len(result.Succeeded),
		Failed:    len(result.Failed),
		Skipped:   len(result.Skipped),
	})
	if err != nil {
		logger.Warn("batch.run.complete_failed", "error", err)
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
