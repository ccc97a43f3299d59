// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"plancost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing catalog configuration
	Pricing PricingConfig `json:"pricing"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`

	// AWS contains AWS-specific configuration
	AWS AWSConfig `json:"aws,omitempty"`
}

// PricingConfig contains pricing catalog settings
type PricingConfig struct {
	// APIEndpoint is the fully-qualified price list GraphQL endpoint
	APIEndpoint string `json:"api_endpoint"`

	// APIKey is an optional API key sent with each request
	APIKey string `json:"api_key,omitempty"`

	// TimeoutSeconds bounds each catalog request
	TimeoutSeconds int `json:"timeout_seconds"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (table, json)
	DefaultFormat string `json:"default_format"`
}

// AWSConfig contains AWS-specific settings
type AWSConfig struct {
	// DefaultRegion is used when the plan carries no provider region
	DefaultRegion string `json:"default_region"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			APIEndpoint:    "http://127.0.0.1:4000/graphql",
			TimeoutSeconds: 30,
		},
		Output: OutputConfig{
			DefaultFormat: "table",
		},
		Logging: logging.DefaultConfig(),
		AWS: AWSConfig{
			DefaultRegion: "us-east-1",
		},
	}
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(config)
	return config, nil
}

// applyEnv overrides file configuration from the environment
func applyEnv(config *Config) {
	if v := os.Getenv("PLANCOSTS_API_URL"); v != "" {
		config.Pricing.APIEndpoint = strings.TrimRight(v, "/") + "/graphql"
	}
	if v := os.Getenv("PLANCOSTS_API_KEY"); v != "" {
		config.Pricing.APIKey = v
	}
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
