package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/export"
	"github.com/jonathan/wine-enricher/internal/ingestion"
	"github.com/jonathan/wine-enricher/internal/observability"
	"github.com/jonathan/wine-enricher/internal/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich every wine line of an input file or menu page",
	Long: `Reads menu lines from a CSV, XLSX or text file (or extracts them from a menu URL),
runs each through classification, signal extraction and the model, and writes the
finalized records as CSV or XLSX. Rows that fail are written to <out>.failures.csv.

Interrupting the run stops it after the current row; the partial result is still written.`,
	RunE: runEnrich,
}

var (
	enrichInput      string
	enrichURL        string
	enrichOutput     string
	enrichCity       string
	enrichRestaurant string
)

func init() {
	enrichCmd.Flags().StringVarP(&enrichInput, "input", "i", "", "Input file (.csv, .xlsx or one wine per line)")
	enrichCmd.Flags().StringVar(&enrichURL, "url", "", "Menu page URL to extract lines from instead of a file")
	enrichCmd.Flags().StringVarP(&enrichOutput, "out", "o", "", "Output file (.csv or .xlsx, default enriched.csv)")
	enrichCmd.Flags().StringVar(&enrichCity, "city", "", "City for rows that have none")
	enrichCmd.Flags().StringVar(&enrichRestaurant, "restaurant", "", "Restaurant for rows that have none")
	addModelFlags(enrichCmd)

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, appNeeds{client: true, store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	input := enrichInput
	if input == "" && enrichURL == "" {
		input = a.cfg.Input
	}
	if input == "" && enrichURL == "" {
		return fmt.Errorf("either --input or --url must be provided (via flag or config)")
	}
	if input != "" && enrichURL != "" {
		return fmt.Errorf("--input and --url are mutually exclusive; provide only one")
	}

	out := enrichOutput
	if out == "" {
		out = a.cfg.Output
	}
	if out == "" {
		out = "enriched.csv"
	}

	// an unreadable input is a configuration error: fail before any row runs
	var rows []types.RawMenuLine
	source := input
	if enrichURL != "" {
		source = enrichURL
		rows, err = ingestion.FetchMenu(ctx, enrichURL, ingestion.FetchOptions{
			Menu:       ingestion.MenuOptions{City: enrichCity, Restaurant: enrichRestaurant},
			Getter:     a.getter(),
			UseBrowser: a.cfg.UseBrowser,
			Logger:     a.logger,
		})
	} else {
		rows, err = ingestion.ReadLines(input)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	applyContext(rows, enrichCity, enrichRestaurant)

	runner, err := a.runner(source)
	if err != nil {
		return err
	}
	result, runErr := runner.Run(ctx, rows, nil)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	exporter := export.NewExporter(runner.Fields(), a.logger)
	if err := exporter.WriteFile(out, export.RowsFromBatch(result)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	failuresPath, err := exporter.WriteFailures(out, result.Failed)
	if err != nil {
		return fmt.Errorf("failed to write failures: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintBatchSummary(result)
	_, _ = fmt.Fprintf(os.Stdout, "Output:   %s\n", out)
	if failuresPath != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Failures: %s\n", failuresPath)
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted after %d of %d rows: %w", result.Total(), len(rows), runErr)
	}
	return nil
}

// applyContext fills city and restaurant on rows that lack them.
func applyContext(rows []types.RawMenuLine, city, restaurant string) {
	city = strings.TrimSpace(city)
	restaurant = strings.TrimSpace(restaurant)
	for i := range rows {
		if rows[i].City == "" {
			rows[i].City = city
		}
		if rows[i].Restaurant == "" {
			rows[i].Restaurant = restaurant
		}
	}
}

