package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and print the effective settings",
	Long: `Loads the config file, environment and flags the same way the other commands do,
validates the result and prints it as JSON. Secrets are never printed.`,
	RunE: runValidate,
}

func init() {
	addModelFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return err
	}

	if cfg.APIKey() == "" {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: no API key set for provider %s\n", cfg.Provider)
	}
	return nil
}
