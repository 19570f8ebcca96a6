package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	History   HistoryConfig   `mapstructure:"history"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects where the tracker documents live
type StorageConfig struct {
	Type        string `mapstructure:"type"` // "memory", "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// CatalogConfig holds catalog bootstrap configuration
type CatalogConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

// HistoryConfig holds daily log configuration
type HistoryConfig struct {
	Timezone         string `mapstructure:"timezone"`
	AllowPastDeletes bool   `mapstructure:"allow_past_deletes"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Location resolves the configured timezone
func (h HistoryConfig) Location() (*time.Location, error) {
	return time.LoadLocation(h.Timezone)
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutritracker/")

	// NUTRITRACKER_STORAGE_SQLITE_PATH -> storage.sqlite_path
	v.SetEnvPrefix("NUTRITRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("storage.type", StorageSQLite)
	v.SetDefault("storage.sqlite_path", "data/nutrition.db")
	v.SetDefault("storage.postgres_dsn", "")

	v.SetDefault("catalog.seed_path", "products.json")

	v.SetDefault("history.timezone", "Local")
	v.SetDefault("history.allow_past_deletes", false)

	v.SetDefault("ratelimit.per_ip", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("metrics.enabled", true)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Storage.Type {
	case StorageMemory, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("storage type must be 'memory', 'sqlite' or 'postgres', got: %s", config.Storage.Type)
	}

	if config.Storage.Type == StorageSQLite && config.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required when storage type is 'sqlite'")
	}

	if config.Storage.Type == StoragePostgres && config.Storage.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is required when storage type is 'postgres' (set NUTRITRACKER_STORAGE_POSTGRES_DSN)")
	}

	if _, err := config.History.Location(); err != nil {
		return fmt.Errorf("unknown history timezone %q: %w", config.History.Timezone, err)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("rate limit per IP must be positive, got: %d", config.RateLimit.PerIP)
	}

	if config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive, got: %d", config.RateLimit.Burst)
	}

	return nil
}
