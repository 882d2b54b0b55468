package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache"`
	Server       ServerConfig       `yaml:"server"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Schema   string `yaml:"schema"`
	SSLMode  string `yaml:"sslmode"`
}

type OpenAIConfig struct {
	APIKey              string  `yaml:"api_key"`
	Model               string  `yaml:"model"`
	MaxTokensPerRequest int     `yaml:"max_tokens_per_request"`
	Temperature         float32 `yaml:"temperature"`
	BaseURL             string  `yaml:"base_url"`
}

type RateLimitingConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLMinutes int  `yaml:"ttl_minutes"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoadConfig loads configuration from YAML file with environment variable substitution
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		// Only log if the error is NOT "file not found"
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	// Substitute environment variables
	content := string(data)
	content = expandEnvVars(content)

	// Parse YAML
	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %v", err)
	}

	config.applyDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return &config, nil
}

// applyDefaults fills in values that are safe to assume when omitted
func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Schema == "" {
		c.Database.Schema = "public"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 5
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.RateLimiting.RequestsPerMinute == 0 {
		c.RateLimiting.RequestsPerMinute = 20
	}
	if c.RateLimiting.RequestsPerDay == 0 {
		c.RateLimiting.RequestsPerDay = 500
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required")
	}

	if c.OpenAI.Model == "" {
		return fmt.Errorf("OpenAI model is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.RateLimiting.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive")
	}

	return nil
}

// DSN builds the Postgres connection string from the database section
func (c *Config) DSN() string {
	userInfo := url.UserPassword(c.Database.User, c.Database.Password)
	return fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo.String(),
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// expandEnvVars expands environment variables in the format ${VAR_NAME}
func expandEnvVars(content string) string {
	return os.Expand(content, func(key string) string {
		return os.Getenv(key)
	})
}

// GetCacheTTL returns the metadata cache TTL as a time.Duration
func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}
