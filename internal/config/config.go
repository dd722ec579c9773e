// Package config loads the Stonks configuration from a YAML file, a .env
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STONKS_API_PORT.
const EnvPrefix = "STONKS"

// Config represents the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api" yaml:"api" json:"api"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
	Scan      ScanConfig      `mapstructure:"scan" yaml:"scan" json:"scan"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers" json:"providers"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host" yaml:"host" json:"host"`
	Port        int      `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// Addr is host:port.
func (c APIConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// AnalysisConfig holds analysis engine settings.
type AnalysisConfig struct {
	CacheTTL          int     `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"` // seconds
	ConcurrentFetches int     `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches" json:"concurrent_fetches"`
	RiskFreeRate      float64 `mapstructure:"risk_free_rate" yaml:"risk_free_rate" json:"risk_free_rate"`
	Simulations       int     `mapstructure:"simulations" yaml:"simulations" json:"simulations"`
	ForecastDays      int     `mapstructure:"forecast_days" yaml:"forecast_days" json:"forecast_days"`
}

// CacheDuration is CacheTTL as a duration.
func (c AnalysisConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// ScanConfig holds deep scan settings. An empty ExportDir disables
// snapshot export.
type ScanConfig struct {
	ExportDir       string `mapstructure:"export_dir" yaml:"export_dir" json:"export_dir"`
	SnapshotMaxAge  string `mapstructure:"snapshot_max_age" yaml:"snapshot_max_age" json:"snapshot_max_age"`
	CleanupSchedule string `mapstructure:"cleanup_schedule" yaml:"cleanup_schedule" json:"cleanup_schedule"` // cron spec with seconds
}

// MaxAge parses SnapshotMaxAge, falling back to a week.
func (c ScanConfig) MaxAge() time.Duration {
	d, err := time.ParseDuration(c.SnapshotMaxAge)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// ProvidersConfig holds optional data provider keys.
type ProvidersConfig struct {
	TwelveDataKey string `mapstructure:"twelve_data_key" yaml:"twelve_data_key" json:"-"`
	FREDKey       string `mapstructure:"fred_api_key" yaml:"fred_api_key" json:"-"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`    // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "pretty" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.stonks/config.yaml
//  3. /etc/stonks/config.yaml
//
// A .env file in the working directory is loaded first; variables already
// set in the environment win. Environment variables override file values.
// Format: STONKS_<SECTION>_<KEY>, e.g. STONKS_API_PORT.
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stonks"))
	v.AddConfigPath("/etc/stonks")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if c.Analysis.ConcurrentFetches < 1 {
		return fmt.Errorf("analysis.concurrent_fetches must be at least 1, got %d", c.Analysis.ConcurrentFetches)
	}
	if c.Analysis.CacheTTL < 0 {
		return fmt.Errorf("analysis.cache_ttl must not be negative")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("analysis.cache_ttl", 300) // 5 minutes
	v.SetDefault("analysis.concurrent_fetches", 5)
	v.SetDefault("analysis.risk_free_rate", 0.02)
	v.SetDefault("analysis.simulations", 10000)
	v.SetDefault("analysis.forecast_days", 252)

	v.SetDefault("scan.export_dir", "./data/exports")
	v.SetDefault("scan.snapshot_max_age", "168h")
	v.SetDefault("scan.cleanup_schedule", "0 0 * * * *") // hourly

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "pretty")
}

// overrideFromEnv reads provider keys from the plain variable names the
// providers document.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("TWELVE_DATA_KEY"); key != "" {
		cfg.Providers.TwelveDataKey = key
	}
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Providers.FREDKey = key
	}
}

// loadDotEnv never overrides variables that are already set.
func loadDotEnv() {
	_ = godotenv.Load()
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
