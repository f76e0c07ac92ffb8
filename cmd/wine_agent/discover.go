package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/export"
	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/ingestion"
	"github.com/jonathan/wine-enricher/internal/observability"
	"github.com/jonathan/wine-enricher/internal/types"
)

const defaultOfferingsOutput = "restaurant_wine_offerings.csv"

var discoverCmd = &cobra.Command{
	Use:   "discover [homepage-url...]",
	Short: "Find the wine list page of restaurant websites",
	Long: `Looks for each restaurant's wine list starting from its homepage: links naming
wine first, then menu, dinner and drinks pages scanned for wine words, then PDF links.
robots.txt is respected for every page opened.

With --input, reads a restaurants CSV (see the restaurants command) and writes one
row per restaurant (name, website, wine_menu_url, status) to --out. Homepages given
as arguments are added to the list; --out alone writes rows for them only.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if discoverInput == "" && len(args) == 0 {
			return errors.New("give at least one homepage URL or --input")
		}
		return nil
	},
	RunE: runDiscover,
}

var (
	discoverMaxPages int
	discoverInput    string
	discoverOutput   string
)

func init() {
	discoverCmd.Flags().IntVar(&discoverMaxPages, "max-pages", fetch.DefaultMaxMenuPages, "Menu pages to scan when no wine link is found")
	discoverCmd.Flags().StringVarP(&discoverInput, "input", "i", "", "Restaurants CSV with name and website columns")
	discoverCmd.Flags().StringVarP(&discoverOutput, "out", "o", "", "Offerings CSV path (default "+defaultOfferingsOutput+" with --input)")
	discoverCmd.Flags().StringVar(&settings.redisURL, "redis-url", "", "Redis URL for the page cache")
	discoverCmd.Flags().BoolVarP(&settings.verbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{cache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	opts := fetch.DiscoverOptions{
		Getter:       a.getter(),
		Robots:       fetch.NewRobotsChecker(fetch.DefaultOptions()),
		MaxMenuPages: discoverMaxPages,
		Logger:       a.logger,
	}
	printer := observability.NewPrinter(os.Stdout)

	if discoverInput != "" || discoverOutput != "" {
		var restaurants []types.Restaurant
		if discoverInput != "" {
			if restaurants, err = ingestion.ReadRestaurants(discoverInput); err != nil {
				return err
			}
		}
		restaurants = append(restaurants, homepageRestaurants(args)...)

		// a cancelled run still writes the rows it finished
		offerings, runErr := discoverRestaurants(ctx, restaurants, opts)
		out := discoverOutput
		if out == "" {
			out = defaultOfferingsOutput
		}
		if err := export.NewExporter(nil, a.logger).WriteOfferings(out, offerings); err != nil {
			return err
		}
		printer.PrintOfferings(offerings)
		_, _ = fmt.Fprintf(os.Stdout, "Offerings written to %s\n", out)
		return runErr
	}

	failed := 0
	for _, home := range args {
		d, err := fetch.DiscoverMenuLinks(ctx, home, opts)
		if err != nil {
			a.logger.Warn("discover.failed", "url", home, "error", err)
			failed++
			continue
		}
		printer.PrintDiscovery(d)
	}
	if failed == len(args) {
		return fmt.Errorf("no homepage could be fetched")
	}
	return nil
}

// discoverRestaurants returns one offering per restaurant, in order. It stops
// early when ctx is cancelled and returns what it has with the context error.
func discoverRestaurants(ctx context.Context, restaurants []types.Restaurant, opts fetch.DiscoverOptions) ([]types.WineOffering, error) {
	offerings := make([]types.WineOffering, 0, len(restaurants))
	for _, r := range restaurants {
		if err := ctx.Err(); err != nil {
			return offerings, err
		}
		o := fetch.DiscoverOffering(ctx, r, opts)
		if opts.Logger != nil {
			opts.Logger.Info("discover.restaurant", "name", o.Name, "status", o.Status, "menu_url", o.WineMenuURL)
		}
		offerings = append(offerings, o)
	}
	return offerings, nil
}

// homepageRestaurants names each bare homepage after its URL.
func homepageRestaurants(homes []string) []types.Restaurant {
	restaurants := make([]types.Restaurant, 0, len(homes))
	for _, h := range homes {
		restaurants = append(restaurants, types.Restaurant{Name: h, Website: h})
	}
	return restaurants
}
