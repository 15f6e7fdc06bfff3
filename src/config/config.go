package config

import (
	"fmt"
	"os"

	"drift-observer/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Apply .env overrides (deployment endpoints may come from the environment)
	config.applyEnvOverrides()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides loads .env (if present) and overrides endpoint settings.
// Environment variables always win over the YAML values.
func (c *Config) applyEnvOverrides() {
	// Ignore the error: a missing .env file is fine, the process env still applies
	_ = godotenv.Load()

	if v := os.Getenv("DRIFT_GATEWAY_URL"); v != "" {
		c.Drift.GatewayURL = v
	}
	if v := os.Getenv("DRIFT_GATEWAY_WS_URL"); v != "" {
		c.Drift.GatewayWSURL = v
	}
	if v := os.Getenv("DRIFT_ENV"); v != "" {
		c.Drift.Env = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}
	if c.Storage.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be greater than 0")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate Drift configuration
	if c.Drift.Env != "mainnet-beta" && c.Drift.Env != "devnet" {
		return fmt.Errorf("drift env must be 'mainnet-beta' or 'devnet', got '%s'", c.Drift.Env)
	}
	if c.Drift.GatewayURL == "" {
		return fmt.Errorf("drift gateway URL cannot be empty")
	}
	if c.Drift.GatewayWSURL == "" {
		return fmt.Errorf("drift gateway websocket URL cannot be empty")
	}
	if c.Drift.FetchTimeout <= 0 {
		return fmt.Errorf("drift fetch timeout must be greater than 0")
	}

	// Validate Wallet configuration. An empty adapter list is fine, the
	// dashboard then only supports lookup mode.
	for _, adapter := range c.Wallet.Adapters {
		if adapter.Name == "" {
			return fmt.Errorf("wallet adapter name cannot be empty")
		}
		if adapter.KeypairPath == "" {
			return fmt.Errorf("wallet adapter '%s' needs a keypair path", adapter.Name)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
