package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/ingestion"
	"github.com/jonathan/wine-enricher/internal/observability"
)

var restaurantsCmd = &cobra.Command{
	Use:   "restaurants <list-url>",
	Short: "Scrape a restaurant list page into a restaurants CSV",
	Long: `Reads a "best restaurants" map page and writes one row per restaurant with its
name, description, address, phone, website and image. Repeated cards are written once.
The CSV feeds discover --input.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestaurants,
}

var restaurantsOutput string

func init() {
	restaurantsCmd.Flags().StringVarP(&restaurantsOutput, "out", "o", "restaurants.csv", "Output CSV path")
	restaurantsCmd.Flags().StringVar(&settings.redisURL, "redis-url", "", "Redis URL for the page cache")
	restaurantsCmd.Flags().BoolVarP(&settings.verbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(restaurantsCmd)
}

func runRestaurants(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{cache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	restaurants, err := fetch.FetchRestaurants(ctx, args[0], a.getter())
	if err != nil {
		return fmt.Errorf("failed to fetch restaurant list: %w", err)
	}
	a.logger.Info("restaurants.extracted", "url", args[0], "count", len(restaurants))

	f, err := os.Create(restaurantsOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := ingestion.WriteRestaurantsCSV(f, restaurants); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintRestaurants(restaurants)
	_, _ = fmt.Fprintf(os.Stdout, "Restaurants written to %s\n", restaurantsOutput)
	return nil
}
