package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"stock-dashboard/src/generator"
	"stock-dashboard/src/models"
	"stock-dashboard/src/utils"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvAlphaVantageKey = "ALPHAVANTAGE_API_KEY"
	EnvAlpacaKeyID     = "APCA_API_KEY_ID"
	EnvAlpacaSecret    = "APCA_API_SECRET_KEY"
	EnvPort            = "DASHBOARD_PORT"
	EnvDBType          = "DASHBOARD_DB_TYPE"
	EnvDBPath          = "DASHBOARD_DB_PATH"
	EnvDBDSN           = "DASHBOARD_DB_DSN"
	EnvLogLevel        = "DASHBOARD_LOG_LEVEL"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns a configuration that runs without any file: the seven
// default symbols, a 30s refresh and the Alpha Vantage demo key.
func Default() *models.MConfig {
	return &models.MConfig{
		Name:     "stock-dashboard",
		Host:     "0.0.0.0",
		Port:     8080,
		LogLevel: "INFO",
		GrpcHost: "0.0.0.0",
		GrpcPort: 9090,
		Storage: models.MStorageConfig{
			DBType:        "sqlite",
			DBPath:        "dashboard.db",
			RetentionDays: utils.DefaultRetentionDays,
		},
		Network: models.MNetworkConfig{
			Enabled:            true,
			RequestTimeout:     10,
			MaxRetries:         2,
			ConcurrentRequests: 4,
			UserAgent:          "stock-dashboard/1.0",
		},
		DataSource: models.MDataSourceConfig{
			RefreshIntervalSeconds: utils.DefaultRefreshIntervalSecs,
			Sources: []models.MSourceConfig{
				{Name: "alphavantage", Type: "alphavantage", APIKey: "demo"},
			},
		},
		Dashboard: models.MDashboardConfig{
			Symbols:         generator.DefaultSymbols(),
			DefaultTheme:    "dark",
			RecentRefreshes: utils.DefaultRecentRefreshes,
		},
	}
}

// -----------------------------------------------------------------------------

// NewConfig loads .env (if any), reads the YAML file over the defaults and
// applies environment overrides. A missing file means defaults only.
func NewConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	modelConfig := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	config := &Config{MConfig: modelConfig}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides settings from the environment. Provider keys go to every
// source of the matching type.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = strings.ToUpper(v)
	}
	if v, ok := lookup(EnvDBType); ok {
		c.Storage.DBType = v
	}
	if v, ok := lookup(EnvDBPath); ok {
		c.Storage.DBPath = v
	}
	if v, ok := lookup(EnvDBDSN); ok {
		c.Storage.DBConnectionString = v
	}

	for i := range c.DataSource.Sources {
		src := &c.DataSource.Sources[i]
		switch src.Type {
		case "alphavantage", "":
			if v, ok := lookup(EnvAlphaVantageKey); ok {
				src.APIKey = v
			}
		case "alpaca":
			if v, ok := lookup(EnvAlpacaKeyID); ok {
				src.APIKey = v
			}
			if v, ok := lookup(EnvAlpacaSecret); ok {
				src.APISecret = v
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.Storage.DBType)
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	if c.DataSource.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be greater than 0")
	}
	seen := make(map[string]bool)
	for i, src := range c.DataSource.Sources {
		if src.Name == "" {
			return fmt.Errorf("source %d must have a name", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name '%s'", src.Name)
		}
		seen[src.Name] = true
	}

	if len(c.Dashboard.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be tracked")
	}
	for i, sym := range c.Dashboard.Symbols {
		if sym.Ticker == "" {
			return fmt.Errorf("symbol %d must have a ticker", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
