package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/ingestion"
	"github.com/jonathan/wine-enricher/internal/observability"
	"github.com/jonathan/wine-enricher/internal/types"
)

var extractMenuCmd = &cobra.Command{
	Use:   "extract-menu <url-or-file>",
	Short: "Extract wine lines from a menu page",
	Long: `Turns a restaurant menu (a URL, or a local HTML or text file) into one line per
wine, tracking glass and bottle sections and stopping at beer, cocktail and spirits
sections. The lines can be written as CSV for the enrich command.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtractMenu,
}

var (
	extractOutput     string
	extractCity       string
	extractRestaurant string
)

func init() {
	extractMenuCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Write lines as CSV (text, city, restaurant, section)")
	extractMenuCmd.Flags().StringVar(&extractCity, "city", "", "City recorded on every line")
	extractMenuCmd.Flags().StringVar(&extractRestaurant, "restaurant", "", "Restaurant recorded on every line")
	extractMenuCmd.Flags().StringVar(&settings.redisURL, "redis-url", "", "Redis URL for the page cache")
	extractMenuCmd.Flags().BoolVar(&settings.useBrowser, "use-browser", false, "Render script-heavy menu pages with headless Chrome")
	extractMenuCmd.Flags().BoolVarP(&settings.verbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(extractMenuCmd)
}

func runExtractMenu(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{cache: true})
	if err != nil {
		return err
	}
	defer a.Close()

	src := args[0]
	menuOpts := ingestion.MenuOptions{City: extractCity, Restaurant: extractRestaurant}

	var lines []types.RawMenuLine
	if isURL(src) {
		lines, err = ingestion.FetchMenu(ctx, src, ingestion.FetchOptions{
			Menu:       menuOpts,
			Getter:     a.getter(),
			UseBrowser: a.cfg.UseBrowser,
			Logger:     a.logger,
		})
	} else {
		lines, err = ingestion.ReadMenuFile(src, menuOpts)
	}
	if err != nil {
		return fmt.Errorf("failed to extract menu: %w", err)
	}

	if extractOutput != "" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := ingestion.WriteCSVLines(f, lines); err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		a.logger.Info("extract.lines.written", "path", extractOutput, "lines", len(lines))
	}

	observability.NewPrinter(os.Stdout).PrintMenuLines(lines)
	return nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
