package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/observability"
	"github.com/jonathan/wine-enricher/internal/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Describe one wine by producer, name and vintage",
	Long: `Asks the model for a structured profile of one wine. With --limit above one the
model may return up to three candidate profiles, for example different vintages or
sub-labels. Every returned profile is stored.`,
	RunE: runLookup,
}

var (
	lookupProducer string
	lookupWine     string
	lookupVintage  string
	lookupLimit    int
	lookupJSON     bool
)

func init() {
	lookupCmd.Flags().StringVarP(&lookupProducer, "producer", "p", "", "Producer or winery")
	lookupCmd.Flags().StringVarP(&lookupWine, "wine", "w", "", "Wine name or label (required)")
	lookupCmd.Flags().StringVar(&lookupVintage, "vintage", "", "Vintage year hint")
	lookupCmd.Flags().IntVarP(&lookupLimit, "limit", "n", 1, "Number of candidate profiles (1-3)")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print records as JSON")
	_ = lookupCmd.MarkFlagRequired("wine")
	addModelFlags(lookupCmd)

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{client: true, store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	runner, err := a.runner("lookup")
	if err != nil {
		return err
	}

	records, err := runner.Lookup(ctx, types.WineQuery{
		Producer:    lookupProducer,
		WineName:    lookupWine,
		VintageHint: lookupVintage,
	}, lookupLimit)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	printer := observability.NewPrinter(os.Stdout)
	title := strings.TrimSpace(lookupProducer + " " + lookupWine)
	for i, record := range records {
		cardTitle := title
		if len(records) > 1 {
			cardTitle = fmt.Sprintf("%s (%d/%d)", title, i+1, len(records))
		}
		printer.PrintWineCard(cardTitle, record, runner.Fields())
	}
	return nil
}
