// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// RedisConfig holds Redis connection details. When Enabled is false the
// application falls back to the in-memory store and runs without Redis.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
}

// ExternalServices holds URLs for external services.
type ExternalServices struct {
	// CountriesAPIURL is the base URL of the REST Countries provider.
	CountriesAPIURL string `mapstructure:"COUNTRIES_API_URL"`
	// TripsAPIURL is the base URL of the trips backend that receives trip
	// sync requests. Empty disables syncing.
	TripsAPIURL string `mapstructure:"TRIPS_API_URL"`
}

// UploadConfig holds limits for document uploads.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"MAX_BYTES" yaml:"max_bytes"`
}

// RulesConfig holds the optional override for the visa rule table.
type RulesConfig struct {
	// TablePath points to a YAML rule table on disk. Empty means the
	// embedded default table is used.
	TablePath string `mapstructure:"TABLE_PATH" yaml:"table_path"`
}

// ExtractionConfig holds tuning for the simulated document pipeline.
type ExtractionConfig struct {
	DelaySeconds int `mapstructure:"DELAY_SECONDS" yaml:"delay_seconds"`
}

// Delay returns the configured processing delay as a duration.
func (c *ExtractionConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// Config aggregates all application configuration sections.
type Config struct {
	Server           ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Redis            RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	ExternalServices ExternalServices `mapstructure:"EXTERNAL_SERVICES" yaml:"external_services"`
	Upload           UploadConfig     `mapstructure:"UPLOAD" yaml:"upload"`
	Rules            RulesConfig      `mapstructure:"RULES" yaml:"rules"`
	Extraction       ExtractionConfig `mapstructure:"EXTRACTION" yaml:"extraction"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("REDIS.ENABLED", false)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("EXTERNAL_SERVICES.COUNTRIES_API_URL", "https://restcountries.com/v3.1")
	v.SetDefault("EXTERNAL_SERVICES.TRIPS_API_URL", "")
	v.SetDefault("UPLOAD.MAX_BYTES", int64(10*1024*1024))
	v.SetDefault("RULES.TABLE_PATH", "")
	v.SetDefault("EXTRACTION.DELAY_SECONDS", 2)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		// Redis config
		{"REDIS.ENABLED", "REDIS_ENABLED"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"REDIS.POOL_SIZE", "REDIS_POOL_SIZE"},
		// External services
		{"EXTERNAL_SERVICES.COUNTRIES_API_URL", "COUNTRIES_API_URL"},
		{"EXTERNAL_SERVICES.TRIPS_API_URL", "TRIPS_API_URL"},
		// Upload config
		{"UPLOAD.MAX_BYTES", "UPLOAD_MAX_BYTES"},
		// Rules config
		{"RULES.TABLE_PATH", "RULES_TABLE_PATH"},
		// Extraction config
		{"EXTRACTION.DELAY_SECONDS", "EXTRACTION_DELAY_SECONDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"redis_enabled", v.GetBool("REDIS.ENABLED"),
		"countries_api_url", v.GetString("EXTERNAL_SERVICES.COUNTRIES_API_URL"),
		"trips_api_url", v.GetString("EXTERNAL_SERVICES.TRIPS_API_URL"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}
	if cfg.Redis.Enabled && cfg.Redis.Password == "" && cfg.Redis.UseTLS {
		log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
	}

	if cfg.ExternalServices.CountriesAPIURL == "" {
		return fmt.Errorf("countries API URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.ExternalServices.CountriesAPIURL); err != nil {
		return fmt.Errorf("invalid countries API URL: %w", err)
	}
	if cfg.ExternalServices.TripsAPIURL != "" {
		if _, err := url.ParseRequestURI(cfg.ExternalServices.TripsAPIURL); err != nil {
			return fmt.Errorf("invalid trips API URL: %w", err)
		}
	}

	if cfg.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive")
	}
	if cfg.Extraction.DelaySeconds < 0 {
		return fmt.Errorf("extraction delay must not be negative")
	}

	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
