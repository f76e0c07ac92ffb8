package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/export"
	"github.com/jonathan/wine-enricher/internal/schemas"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored wines as CSV or XLSX",
	Long: `Writes stored wines with the fixed export header. The format follows the output
extension (.xlsx or .csv). The price columns follow the configured price variant.`,
	RunE: runExport,
}

var (
	exportOutput string
	exportRunID  string
	exportLimit  int
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (.csv or .xlsx, required)")
	exportCmd.Flags().StringVar(&exportRunID, "run-id", "", "Only wines from this batch run")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 0, "Maximum wines to export (0 for all)")
	exportCmd.Flags().StringVar(&settings.priceVariant, "price-variant", "", "Price columns: single or split")
	_ = exportCmd.MarkFlagRequired("out")
	addStoreFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	wines, err := a.store.ListWines(ctx, db.ListOptions{RunID: exportRunID, Limit: exportLimit})
	if err != nil {
		return fmt.Errorf("failed to list wines: %w", err)
	}

	exporter := export.NewExporter(schemas.WineFields(a.cfg.Variant()), a.logger)
	if err := exporter.WriteFile(exportOutput, export.RowsFromWines(wines)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Exported %d wines to %s\n", len(wines), exportOutput)
	return nil
}
