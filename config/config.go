package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Reference ReferenceConfig
	Matching  MatchingConfig
	Analysis  AnalysisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AdminToken     string   `mapstructure:"admin_token"` // enables POST /api/v1/reference/reload; empty disables it
}

// ReferenceConfig locates the nutrition reference table and the lexicon file
type ReferenceConfig struct {
	Path        string `mapstructure:"path"`
	Format      string `mapstructure:"format"` // "csv", "sqlite" or empty to detect from extension
	Table       string `mapstructure:"table"`  // SQLite table name
	LexiconPath string `mapstructure:"lexicon_path"`
}

// MatchingConfig holds food resolution thresholds
type MatchingConfig struct {
	FuzzyThreshold       float64 `mapstructure:"fuzzy_threshold"`
	SubstringAcceptScore float64 `mapstructure:"substring_accept_score"`
	EnableDebugLogging   bool    `mapstructure:"enable_debug_logging"`
}

// AnalysisConfig holds daily analysis settings
type AnalysisConfig struct {
	DefaultTargetCalories int `mapstructure:"default_target_calories"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutrilog/")

	// Environment variable settings: server.port -> NUTRILOG_SERVER_PORT
	v.SetEnvPrefix("NUTRILOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.admin_token", "")

	// Reference table defaults
	v.SetDefault("reference.path", "data/foods.csv")
	v.SetDefault("reference.format", "")
	v.SetDefault("reference.table", "foods")
	v.SetDefault("reference.lexicon_path", "")

	// Matching defaults
	v.SetDefault("matching.fuzzy_threshold", 0.7)
	v.SetDefault("matching.substring_accept_score", 0.7)
	v.SetDefault("matching.enable_debug_logging", false)

	// Analysis defaults
	v.SetDefault("analysis.default_target_calories", 2000)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Reference.Path == "" {
		return fmt.Errorf("reference path is required (set NUTRILOG_REFERENCE_PATH)")
	}

	switch config.Reference.Format {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("reference format must be 'csv' or 'sqlite', got: %s", config.Reference.Format)
	}

	if config.Matching.FuzzyThreshold <= 0 || config.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1], got: %v", config.Matching.FuzzyThreshold)
	}

	if config.Matching.SubstringAcceptScore <= 0 {
		return fmt.Errorf("substring accept score must be positive, got: %v", config.Matching.SubstringAcceptScore)
	}

	if t := config.Analysis.DefaultTargetCalories; t < 1200 || t > 3000 {
		return fmt.Errorf("default target calories must be between 1200 and 3000, got: %d", t)
	}

	if config.Cache.Enabled && config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when cache is enabled, got: %v", config.Cache.TTL)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit cannot be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
