// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Upstream chain API
	VindexAPIURL string // Base URL of the VindexChain REST API (optional)

	// Reputation settings
	ReputationCacheTTL time.Duration
	RiskThresholdLow   int // score at or above this is low risk
	RiskThresholdMed   int // score at or above this is medium risk
	MaxHistoryLimit    int
	SnapshotInterval   time.Duration

	// Prediction settings
	PredictionCacheTTL time.Duration

	// Security
	RateLimitRPS int

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint (optional, tracing disabled if not set)
}

const (
	DefaultPort               = "8000"
	DefaultEnv                = "development"
	DefaultLogLevel           = "info"
	DefaultReputationCacheTTL = 3600 * time.Second
	DefaultPredictionCacheTTL = 300 * time.Second
	DefaultRiskThresholdLow   = 70
	DefaultRiskThresholdMed   = 40
	DefaultMaxHistoryLimit    = 1000
	DefaultSnapshotInterval   = 15 * time.Minute
	DefaultRateLimit          = 100
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", DefaultPort),
		Env:                getEnv("ENV", DefaultEnv),
		LogLevel:           getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:        os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		VindexAPIURL:       os.Getenv("VINDEX_API_URL"),
		ReputationCacheTTL: getEnvSeconds("REPUTATION_CACHE_TTL", DefaultReputationCacheTTL),
		PredictionCacheTTL: getEnvSeconds("PREDICTION_CACHE_TTL", DefaultPredictionCacheTTL),
		RiskThresholdLow:   int(getEnvInt64("RISK_THRESHOLD_LOW", DefaultRiskThresholdLow)),
		RiskThresholdMed:   int(getEnvInt64("RISK_THRESHOLD_MEDIUM", DefaultRiskThresholdMed)),
		MaxHistoryLimit:    int(getEnvInt64("MAX_HISTORY_LIMIT", DefaultMaxHistoryLimit)),
		SnapshotInterval:   getEnvSeconds("SNAPSHOT_INTERVAL", DefaultSnapshotInterval),
		RateLimitRPS:       int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all configuration values are coherent
func (c *Config) Validate() error {
	if c.RiskThresholdLow <= c.RiskThresholdMed {
		return fmt.Errorf("RISK_THRESHOLD_LOW (%d) must be greater than RISK_THRESHOLD_MEDIUM (%d)",
			c.RiskThresholdLow, c.RiskThresholdMed)
	}
	if c.RiskThresholdLow > 100 || c.RiskThresholdMed < 0 {
		return fmt.Errorf("risk thresholds must lie within the score range 0-100")
	}

	if c.ReputationCacheTTL <= 0 {
		return fmt.Errorf("REPUTATION_CACHE_TTL must be positive")
	}
	if c.PredictionCacheTTL <= 0 {
		return fmt.Errorf("PREDICTION_CACHE_TTL must be positive")
	}

	if c.MaxHistoryLimit <= 0 {
		return fmt.Errorf("MAX_HISTORY_LIMIT must be positive")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}
