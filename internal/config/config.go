// Package config loads and validates wine enricher settings from a file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/wine-enricher/internal/db"
	"github.com/jonathan/wine-enricher/internal/llm"
	"github.com/jonathan/wine-enricher/internal/schemas"
)

// EnvPrefix prefixes every environment override, e.g. WINE_MODEL.
const EnvPrefix = "WINE"

// Defaults
const (
	DefaultProvider     = "openai"
	DefaultTemperature  = llm.DefaultTemperature
	DefaultDelay        = 500 * time.Millisecond
	DefaultRetryBudget  = 1
	DefaultPriceVariant = "single"
	DefaultDBDriver     = db.DriverSQLite
	DefaultDatabaseURL  = "wines.db"
	DefaultCacheTTL     = 7 * 24 * time.Hour
	DefaultPort         = 3000
	DefaultRateLimit    = 2.0
	DefaultRateBurst    = 5
	DefaultCallTimeout  = 60 * time.Second
)

// Config holds every setting the commands and the server read.
// Zero values are replaced by defaults in LoadConfig.
type Config struct {
	// Model
	Provider    string        `mapstructure:"provider" json:"provider,omitempty" validate:"omitempty,oneof=openai gemini anthropic"`
	Model       string        `mapstructure:"model" json:"model,omitempty"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url,omitempty" validate:"omitempty,url"`
	Temperature float64       `mapstructure:"temperature" json:"temperature" validate:"gte=0,lte=2"`
	CallTimeout time.Duration `mapstructure:"call_timeout" json:"call_timeout,omitempty" validate:"gte=0"`

	// API keys; the conventional unprefixed variables are honored too
	OpenAIAPIKey    string `mapstructure:"openai_api_key" json:"-"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key" json:"-"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" json:"-"`

	// Batch
	Delay        time.Duration `mapstructure:"delay" json:"delay" validate:"gte=0"`
	RetryBudget  int           `mapstructure:"retry_budget" json:"retry_budget" validate:"gte=0,lte=5"`
	MustFill     []string      `mapstructure:"must_fill" json:"must_fill,omitempty"`
	PriceVariant string        `mapstructure:"price_variant" json:"price_variant" validate:"oneof=single split"`

	// Storage and cache
	DBDriver    string        `mapstructure:"db_driver" json:"db_driver" validate:"oneof=sqlite postgres"`
	DatabaseURL string        `mapstructure:"database_url" json:"-"`
	RedisURL    string        `mapstructure:"redis_url" json:"-"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" validate:"gte=0"`

	// Server
	Port      int     `mapstructure:"port" json:"port" validate:"gte=1,lte=65535"`
	RateLimit float64 `mapstructure:"rate_limit" json:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" json:"rate_burst" validate:"gte=0"`

	// Paths and behavior
	Input      string `mapstructure:"input" json:"input,omitempty"`
	Output     string `mapstructure:"output" json:"output,omitempty"`
	UseBrowser bool   `mapstructure:"use_browser" json:"use_browser,omitempty"`
	Verbose    bool   `mapstructure:"verbose" json:"verbose,omitempty"`
}

// ValidationError is an unrecoverable configuration problem.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Provider:     DefaultProvider,
		Temperature:  DefaultTemperature,
		CallTimeout:  DefaultCallTimeout,
		Delay:        DefaultDelay,
		RetryBudget:  DefaultRetryBudget,
		PriceVariant: DefaultPriceVariant,
		DBDriver:     DefaultDBDriver,
		DatabaseURL:  DefaultDatabaseURL,
		CacheTTL:     DefaultCacheTTL,
		Port:         DefaultPort,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,
	}
}

// envAliases are unprefixed variables accepted in addition to WINE_<KEY>.
var envAliases = map[string]string{
	"openai_api_key":    "OPENAI_API_KEY",
	"gemini_api_key":    "GEMINI_API_KEY",
	"anthropic_api_key": "ANTHROPIC_API_KEY",
	"database_url":      "DATABASE_URL",
	"redis_url":         "REDIS_URL",
	"port":              "PORT",
}

// LoadConfig reads an optional JSON or YAML file at path, then applies WINE_* environment
// overrides on top of the defaults. An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("call_timeout", d.CallTimeout)
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("delay", d.Delay)
	v.SetDefault("retry_budget", d.RetryBudget)
	v.SetDefault("must_fill", []string{})
	v.SetDefault("price_variant", d.PriceVariant)
	v.SetDefault("db_driver", "")
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("port", d.Port)
	v.SetDefault("rate_limit", d.RateLimit)
	v.SetDefault("rate_burst", d.RateBurst)
	v.SetDefault("input", "")
	v.SetDefault("output", "")
	v.SetDefault("use_browser", false)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), alias)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.MustFill = splitList(cfg.MustFill)
	cfg.DBDriver = InferDriver(cfg.DBDriver, cfg.DatabaseURL)

	return &cfg, nil
}

// InferDriver returns driver when set, otherwise postgres for postgres URLs and sqlite for anything else.
func InferDriver(driver, dsn string) string {
	if driver != "" {
		return strings.ToLower(driver)
	}
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return db.DriverPostgres
	}
	return db.DriverSQLite
}

// splitList accepts both list values and a single comma separated string from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var validate = validator.New()

// Validate checks value ranges and that every must-fill name exists in the selected schema.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{
				Message: fmt.Sprintf("invalid %s: failed %q check", strings.ToLower(fe.Field()), fe.Tag()),
				Cause:   err,
			}
		}
		return &ValidationError{Message: "invalid configuration", Cause: err}
	}

	variant, err := schemas.ParsePriceVariant(c.PriceVariant)
	if err != nil {
		return &ValidationError{Message: "invalid price_variant", Cause: err}
	}
	known := make(map[string]bool)
	for _, name := range schemas.FieldNames(schemas.WineFields(variant)) {
		known[name] = true
	}
	for _, name := range c.MustFill {
		if !known[name] {
			return &ValidationError{Message: fmt.Sprintf("must_fill field %q is not in the %s schema", name, variant)}
		}
	}

	return nil
}

// Variant returns the parsed price variant. Call Validate first.
func (c *Config) Variant() schemas.PriceVariant {
	v, err := schemas.ParsePriceVariant(c.PriceVariant)
	if err != nil {
		return schemas.PriceSingle
	}
	return v
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch llm.Provider(strings.ToLower(c.Provider)) {
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// LLMConfig builds the completion client settings.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, &ValidationError{Message: "invalid provider", Cause: err}
	}
	cfg := llm.DefaultConfig(provider)
	cfg.APIKey = c.APIKey()
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.CallTimeout
	if c.Model != "" {
		cfg.Model = c.Model
	}
	return cfg, nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// Commands use it to let flags win over file and environment values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.AnthropicAPIKey == "" {
		result.AnthropicAPIKey = defaults.AnthropicAPIKey
	}
	if result.PriceVariant == "" {
		result.PriceVariant = defaults.PriceVariant
	}
	if result.DBDriver == "" {
		result.DBDriver = defaults.DBDriver
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if len(result.MustFill) == 0 {
		result.MustFill = defaults.MustFill
	}

	// Numeric fields: use default if zero
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.CallTimeout == 0 {
		result.CallTimeout = defaults.CallTimeout
	}
	if result.Delay == 0 {
		result.Delay = defaults.Delay
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateBurst == 0 {
		result.RateBurst = defaults.RateBurst
	}

	// RetryBudget and bools: zero and false are meaningful, so they are never merged

	return result
}
