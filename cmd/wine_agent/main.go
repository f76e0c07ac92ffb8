// Package main provides the wine_agent command line: batch enrichment, lookups,
// menu extraction and discovery, exports and the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debugLog   bool
	quietLog   bool
	jsonLog    bool
)

var rootCmd = &cobra.Command{
	Use:          "wine_agent",
	Short:        "Wine menu enrichment",
	Long:         "wine_agent turns free-text restaurant wine list entries into structured wine records using an LLM, and stores, exports and serves them.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (flags override its values)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Log debug events")
	rootCmd.PersistentFlags().BoolVarP(&quietLog, "quiet", "q", false, "Log warnings and errors only")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "log-json", false, "Log JSON lines instead of text")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
