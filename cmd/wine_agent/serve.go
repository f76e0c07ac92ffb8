package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing POST /wine-info, POST /enrich-line, GET /wines,
POST /find-matches, GET /ping and GET /health. Clients are rate limited per IP.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 3000)")
	addModelFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd, appNeeds{client: true, store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	runner, err := a.runner("api")
	if err != nil {
		return err
	}

	port := a.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:      port,
		RateLimit: a.cfg.RateLimit,
		RateBurst: a.cfg.RateBurst,
		Logger:    a.logger,
	}, runner, a.store)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
