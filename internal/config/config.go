package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RequestTimeout int      `yaml:"request_timeout_seconds"`
}

// DatabaseConfig contains MySQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// SearchConfig contains suggest-index settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// AuthConfig contains token verification settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// AlertsConfig contains saved-search alert sweep settings
type AlertsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SweepTime string `yaml:"sweep_time"` // HH:MM, daily
}

// CleanupConfig contains archived-listing purge settings
type CleanupConfig struct {
	RetentionDays    int `yaml:"retention_days"`
	MaxDeletionCount int `yaml:"max_deletion_count"`
}

// RateLimitConfig contains API rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8084",
			RequestTimeout: 10,
		},
		Alerts: AlertsConfig{
			Enabled:   true,
			SweepTime: "06:00",
		},
		Cleanup: CleanupConfig{
			RetentionDays:    90,
			MaxDeletionCount: 10000,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			Burst:             30,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetRequestTimeout returns the per-request timeout as a duration
func (c *ServerConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}
