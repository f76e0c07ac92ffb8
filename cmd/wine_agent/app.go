package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/wine-enricher/internal/config"
	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/llm"
	"github.com/jonathan/wine-enricher/internal/observability"
	"github.com/jonathan/wine-enricher/internal/pipeline"
)

// settingsFlags are the config overrides shared by commands that call the model or the store.
type settingsFlags struct {
	provider     string
	model        string
	temperature  float64
	delay        time.Duration
	retryBudget  int
	mustFill     []string
	priceVariant string
	dbURL        string
	redisURL     string
	useBrowser   bool
	verbose      bool
}

var settings settingsFlags

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&settings.provider, "provider", "", "LLM provider: openai, gemini or anthropic")
	cmd.Flags().StringVarP(&settings.model, "model", "m", "", "Model identifier (defaults per provider)")
	cmd.Flags().Float64Var(&settings.temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().DurationVar(&settings.delay, "delay", 0, "Pause after every model call")
	cmd.Flags().IntVar(&settings.retryBudget, "retry-budget", 0, "Extra calls allowed while must-fill fields are missing")
	cmd.Flags().StringSliceVar(&settings.mustFill, "must-fill", nil, "Fields that trigger a completeness retry when unknown")
	cmd.Flags().StringVar(&settings.priceVariant, "price-variant", "", "Price columns: single or split")
	cmd.Flags().StringVar(&settings.redisURL, "redis-url", "", "Redis URL for the completion and page cache")
	cmd.Flags().BoolVar(&settings.useBrowser, "use-browser", false, "Render script-heavy menu pages with headless Chrome")
	addStoreFlags(cmd)
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&settings.dbURL, "db-url", "", "SQLite path or PostgreSQL URL (defaults to wines.db)")
	cmd.Flags().BoolVarP(&settings.verbose, "verbose", "v", false, "Print detailed debug information")
}

// loadSettings reads the config file and environment, lets changed flags win, and validates.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := config.Config{
		Provider:     settings.provider,
		Model:        settings.model,
		Delay:        settings.delay,
		MustFill:     settings.mustFill,
		PriceVariant: settings.priceVariant,
		DatabaseURL:  settings.dbURL,
		RedisURL:     settings.redisURL,
	}
	cfg := overrides.MergeWithDefaults(*loaded)

	// zero and false are meaningful here, so only explicit flags override
	cfg.RetryBudget = loaded.RetryBudget
	cfg.UseBrowser = loaded.UseBrowser
	cfg.Verbose = loaded.Verbose
	flags := cmd.Flags()
	if flags.Changed("temperature") {
		cfg.Temperature = settings.temperature
	}
	if flags.Changed("retry-budget") {
		cfg.RetryBudget = settings.retryBudget
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = settings.useBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = settings.verbose
	}
	if flags.Changed("db-url") {
		cfg.DBDriver = config.InferDriver("", cfg.DatabaseURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := observability.NewLogger(observability.Options{
		Debug:  debugLog || cfg.Verbose,
		Quiet:  quietLog,
		JSON:   jsonLog,
		Output: os.Stderr,
	})
	slog.SetDefault(logger)
	return logger
}

// app holds the collaborators a command needs. Close releases them.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	client llm.Client
	store  db.Store
	cache  *llm.RedisCache
}

type appNeeds struct {
	client bool
	store  bool
	cache  bool
}

func newApp(ctx context.Context, cmd *cobra.Command, needs appNeeds) (*app, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: newLogger(cfg)}

	if (needs.cache || needs.client) && cfg.RedisURL != "" {
		cache, err := llm.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			a.logger.Warn("cache.redis.unavailable", "error", err)
		} else {
			a.cache = cache
		}
	}

	if needs.client {
		llmCfg, err := cfg.LLMConfig()
		if err != nil {
			a.Close()
			return nil, err
		}
		if llmCfg.APIKey == "" {
			a.Close()
			return nil, fmt.Errorf("no API key for provider %s (set %s_API_KEY)", llmCfg.Provider, envKeyName(llmCfg.Provider))
		}
		client, err := llm.NewClient(ctx, llmCfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
		}
		if a.cache != nil {
			client = llm.NewCachedClient(client, a.cache, cfg.CacheTTL, a.logger)
		}
		a.client = client
	}

	if needs.store {
		store, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open wine store: %w", err)
		}
		a.store = store
	}

	return a, nil
}

func envKeyName(p llm.Provider) string {
	switch p {
	case llm.ProviderGemini:
		return "GEMINI"
	case llm.ProviderAnthropic:
		return "ANTHROPIC"
	default:
		return "OPENAI"
	}
}

// runner builds the batch runner over the app's client and store.
func (a *app) runner(source string) (*pipeline.Runner, error) {
	opts := pipeline.DefaultOptions()
	opts.Model = a.cfg.Model
	opts.Temperature = a.cfg.Temperature
	opts.Delay = a.cfg.Delay
	opts.Variant = a.cfg.Variant()
	opts.MustFill = a.cfg.MustFill
	opts.RetryBudget = a.cfg.RetryBudget
	opts.Source = source
	opts.Logger = a.logger
	if a.store != nil {
		opts.Store = a.store
	}
	return pipeline.NewRunner(a.client, opts)
}

// getter fetches pages through the redis page cache when one is connected.
func (a *app) getter() fetch.Getter {
	if a.cache == nil {
		return fetch.HTTPGetter{}
	}
	return fetch.NewCachedFetcher(a.cache, &fetch.CachedFetcherConfig{Logger: a.logger})
}

func (a *app) Close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}
