package contract

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
)

// Default values for configuration.
const (
	DefaultPrecision  = 2
	MaxPrecision      = 4
	DefaultMaxReviews = 100
	MaxReviewsCap     = 100
	DefaultModel      = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens  = 1024
	DefaultDelay      = time.Second
	DefaultTimeout    = 2 * time.Minute
	DefaultMaxRetries = 2
)

// APIKeyFallbackEnv is consulted when no api key is configured.
const APIKeyFallbackEnv = "ANTHROPIC_API_KEY"

// Config holds the runtime configuration for the pipeline.
// This struct is the "final, validated" config.
type Config struct {
	ReviewsPath  string
	FeaturesPath string

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	StoreBackend schema.DatabaseBackend
	StoreConnect string // Please use env var as this is plaintext

	APIKey     string // Please use env var as this is plaintext
	Model      string
	MaxTokens  int64
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int

	Delay       time.Duration
	MaxReviews  int
	MaxProducts int
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Reviews      string `mapstructure:"reviews"`
	Features     string `mapstructure:"features"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	Precision    int    `mapstructure:"precision"`
	Width        int    `mapstructure:"width"`
	Color        string `mapstructure:"color"`
	Verbose      bool   `mapstructure:"verbose"`
	StoreBackend string `mapstructure:"store-backend"`
	StoreConnect string `mapstructure:"store-connect"`

	// --- Fields from extractCmd.Flags() ---
	APIKey      string `mapstructure:"api-key"`
	Model       string `mapstructure:"model"`
	MaxTokens   int64  `mapstructure:"max-tokens"`
	BaseURL     string `mapstructure:"base-url"`
	Timeout     string `mapstructure:"timeout"`
	MaxRetries  int    `mapstructure:"max-retries"`
	Delay       string `mapstructure:"delay"`
	MaxReviews  int    `mapstructure:"max-reviews"`
	MaxProducts int    `mapstructure:"max-products"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreConfig(cfg, input); err != nil {
		return err
	}
	if err := processExtractorConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateReviewsPath checks that a review file was given and exists.
func ValidateReviewsPath(cfg *Config) error {
	if cfg.ReviewsPath == "" {
		return fmt.Errorf("--reviews is required")
	}
	info, err := os.Stat(cfg.ReviewsPath)
	if err != nil {
		return fmt.Errorf("cannot read reviews file %q: %w", cfg.ReviewsPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("reviews path %q is a directory", cfg.ReviewsPath)
	}
	if cfg.FeaturesPath != "" {
		if _, err := os.Stat(cfg.FeaturesPath); err != nil {
			return fmt.Errorf("cannot read features file %q: %w", cfg.FeaturesPath, err)
		}
	}
	return nil
}

// ValidateFeatureSource checks that a feature table can be obtained, either from
// a feature file or by building it from the reviews file.
func ValidateFeatureSource(cfg *Config) error {
	if cfg.FeaturesPath == "" {
		return ValidateReviewsPath(cfg)
	}
	if _, err := os.Stat(cfg.FeaturesPath); err != nil {
		return fmt.Errorf("cannot read features file %q: %w", cfg.FeaturesPath, err)
	}
	return nil
}

// ValidateExtraction checks the settings only the batch runner needs.
// A missing credential is a configuration error and must stop the run before any work.
func ValidateExtraction(cfg *Config) error {
	if err := ValidateReviewsPath(cfg); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("an api key is required: set --api-key, CHURNRISK_API_KEY or %s", APIKeyFallbackEnv)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.CSVBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("unsupported store backend: %s", backend)
	}
	return nil
}

// ParseStoreBackend normalizes and validates a backend name.
func ParseStoreBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if backend == "" {
		return schema.SQLiteBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, csv", s)
	}
	return backend, nil
}

// validateStoreConfig validates the sentiment store backend.
func validateStoreConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseStoreBackend(input.StoreBackend)
	if err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreConnect = input.StoreConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreConnect)
}

// validateSimpleInputs processes and validates the input and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ReviewsPath = strings.TrimSpace(input.Reviews)
	cfg.FeaturesPath = strings.TrimSpace(input.Features)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}
	return nil
}

// processExtractorConfig handles the extractor and batch runner settings.
func processExtractorConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.APIKey = strings.TrimSpace(input.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyFallbackEnv))
	}

	cfg.Model = strings.TrimSpace(input.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cfg.MaxTokens = input.MaxTokens
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("max-tokens must be greater than 0 (received %d)", input.MaxTokens)
	}

	cfg.BaseURL = strings.TrimSpace(input.BaseURL)

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := ParseSeconds(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout value: %w", err)
		}
		cfg.Timeout = timeout
	}

	if input.MaxRetries < 0 {
		return fmt.Errorf("max-retries must not be negative (received %d)", input.MaxRetries)
	}
	cfg.MaxRetries = input.MaxRetries

	cfg.Delay = DefaultDelay
	if input.Delay != "" {
		delay, err := ParseSeconds(input.Delay)
		if err != nil {
			return fmt.Errorf("invalid --delay value: %w", err)
		}
		cfg.Delay = delay
	}

	switch {
	case input.MaxReviews == 0:
		cfg.MaxReviews = DefaultMaxReviews
	case input.MaxReviews < 0 || input.MaxReviews > MaxReviewsCap:
		return fmt.Errorf("max-reviews must be between 1 and %d (received %d)", MaxReviewsCap, input.MaxReviews)
	default:
		cfg.MaxReviews = input.MaxReviews
	}

	if input.MaxProducts < 0 {
		return fmt.Errorf("max-products must not be negative (received %d)", input.MaxProducts)
	}
	cfg.MaxProducts = input.MaxProducts

	return nil
}

// ParseSeconds parses a Go duration ("1.5s", "250ms") or a bare number of seconds ("1.0").
// Negative values are rejected.
func ParseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, numErr := strconv.ParseFloat(s, 64)
		if numErr != nil {
			return 0, fmt.Errorf("expected a duration like '1s' or a number of seconds, got %q", s)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %q", s)
	}
	return d, nil
}
