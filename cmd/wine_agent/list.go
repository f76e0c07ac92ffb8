package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/observability"
	"github.com/jonathan/wine-enricher/internal/schemas"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored wines, most recent first",
	RunE:  runList,
}

var (
	listRunID string
	listLimit int
	listJSON  bool
)

func init() {
	listCmd.Flags().StringVar(&listRunID, "run-id", "", "Only wines from this batch run")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum wines to list (0 for all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print wines as JSON")
	addStoreFlags(listCmd)

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	wines, err := a.store.ListWines(ctx, db.ListOptions{RunID: listRunID, Limit: listLimit})
	if err != nil {
		return fmt.Errorf("failed to list wines: %w", err)
	}

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(wines)
	}

	if len(wines) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No wines stored.")
		return nil
	}
	printer := observability.NewPrinter(os.Stdout)
	fields := schemas.StorageFields()
	for _, w := range wines {
		title := fmt.Sprintf("#%d %s", w.ID, w.WineName)
		printer.PrintWineCard(title, w.Record, fields)
	}
	return nil
}
