package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/export"
	"github.com/jonathan/wine-enricher/internal/pipeline"
	"github.com/jonathan/wine-enricher/internal/types"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill empty fields of an existing export",
	Long: `Re-reads an export written by enrich or export and, for every row with empty
fields, asks the model for those fields only. Values already present are never
overwritten. Calls are paced like a batch run.`,
	RunE: runFill,
}

var (
	fillInput  string
	fillOutput string
)

func init() {
	fillCmd.Flags().StringVarP(&fillInput, "input", "i", "", "Export file to complete (.csv or .xlsx, required)")
	fillCmd.Flags().StringVarP(&fillOutput, "out", "o", "", "Output file (defaults to overwriting the input)")
	_ = fillCmd.MarkFlagRequired("input")
	addModelFlags(fillCmd)

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, appNeeds{client: true})
	if err != nil {
		return err
	}
	defer a.Close()

	runner, err := a.runner(fillInput)
	if err != nil {
		return err
	}
	exporter := export.NewExporter(runner.Fields(), a.logger)

	rows, err := exporter.ReadFile(fillInput)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	filledRows, failures, filled, runErr := fillRows(ctx, runner, rows)
	a.logger.Info("fill.done", "rows", len(rows), "fields_filled", filled, "failed", len(failures))

	out := fillOutput
	if out == "" {
		out = fillInput
	}
	if err := exporter.WriteFile(out, filledRows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	failuresPath, err := exporter.WriteFailures(out, failures)
	if err != nil {
		return fmt.Errorf("failed to write failures: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Filled %d fields across %d rows; %d rows failed\n", filled, len(rows), len(failures))
	if failuresPath != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Failures: %s\n", failuresPath)
	}
	return runErr
}

// filler is the part of the runner fillRows needs.
type filler interface {
	Fill(ctx context.Context, record *types.WineRecord) (*types.WineRecord, []string, error)
}

// fillRows completes rows in order. A failed row keeps its values and is reported.
// Cancellation is honored between rows; the remaining rows are kept unchanged.
func fillRows(ctx context.Context, f filler, rows []export.Row) ([]export.Row, []types.RowFailure, int, error) {
	out := make([]export.Row, len(rows))
	copy(out, rows)

	var (
		failures []types.RowFailure
		filled   int
	)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, failures, filled, fmt.Errorf("fill interrupted at row %d: %w", i+1, err)
		}
		if row.Record == nil {
			continue
		}

		record, keys, err := f.Fill(ctx, row.Record)
		if err != nil {
			kind := types.FailureTransport
			var re *pipeline.RowError
			if errors.As(err, &re) {
				kind = re.Kind
			}
			failures = append(failures, types.RowFailure{
				Index:  i,
				Input:  types.RawMenuLine{Text: row.MenuName, City: row.City, Restaurant: row.Restaurant},
				Kind:   kind,
				Reason: err.Error(),
			})
			continue
		}
		out[i].Record = record
		filled += len(keys)
	}
	return out, failures, filled, nil
}
