package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "github.com/podscout/podscout/errors"
)

// Config holds credentials and endpoints read from the environment.
type Config struct {
	Anthropic AnthropicConfig
	Storage   StorageConfig
}

// AnthropicConfig holds Anthropic API configuration
type AnthropicConfig struct {
	APIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	Model   string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`
	BaseURL string `envconfig:"ANTHROPIC_API_URL" default:"https://api.anthropic.com"`
}

// StorageConfig holds remote object storage (MinIO/S3) configuration
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"true"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireAnthropic fails when the Anthropic API key is absent. The key
// is a hard precondition for analyze and summarize, not a per-item
// failure.
func (c *Config) RequireAnthropic() error {
	if c.Anthropic.APIKey == "" {
		return apperrors.ErrMissingCredential("ANTHROPIC_API_KEY")
	}
	return nil
}

// RemoteSyncConfigured reports whether object storage credentials are
// present.
func (c *Config) RemoteSyncConfigured() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKeyID != "" && c.Storage.SecretAccessKey != ""
}
