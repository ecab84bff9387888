package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Dashboard.Symbols, 7)
	assert.Equal(t, 30, cfg.DataSource.RefreshIntervalSeconds)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: test-dashboard
port: 9001
data_source:
  refresh_interval_seconds: 5
  backfill_missing: true
  sources:
    - name: primary
      type: alpaca
      feed: iex
dashboard:
  symbols:
    - ticker: AAPL
      name: Apple Inc.
      sector: Technology
`), 0644))

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test-dashboard", cfg.Name)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, 5, cfg.DataSource.RefreshIntervalSeconds)
	assert.True(t, cfg.DataSource.BackfillMissing)
	require.Len(t, cfg.DataSource.Sources, 1)
	assert.Equal(t, "iex", cfg.DataSource.Sources[0].Feed)
	require.Len(t, cfg.Dashboard.Symbols, 1)
	assert.Equal(t, "Technology", cfg.Dashboard.Symbols[0].Sector)
	// untouched defaults survive
	assert.Equal(t, 10, cfg.Network.RequestTimeout)
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0644))
	_, err := NewConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("port: 80"), 0644))
	_, err = NewConfig(path)
	assert.ErrorContains(t, err, "invalid server port")
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{MConfig: Default()}
	cfg.DataSource.Sources = append(cfg.DataSource.Sources, cfg.DataSource.Sources[0])
	cfg.DataSource.Sources[1].Name = "alpaca"
	cfg.DataSource.Sources[1].Type = "alpaca"

	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		EnvAlphaVantageKey: "av-key",
		EnvAlpacaKeyID:     "id",
		EnvAlpacaSecret:    "secret",
		EnvPort:            "8181",
		EnvDBType:          "postgres",
		EnvDBDSN:           "postgres://localhost/dash",
		EnvLogLevel:        "debug",
	})))

	assert.Equal(t, "av-key", cfg.DataSource.Sources[0].APIKey)
	assert.Equal(t, "id", cfg.DataSource.Sources[1].APIKey)
	assert.Equal(t, "secret", cfg.DataSource.Sources[1].APISecret)
	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, cfg.ApplyEnv(envMap(map[string]string{EnvPort: "eighty"})))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty name":        func(c *Config) { c.Name = "" },
		"no symbols":        func(c *Config) { c.Dashboard.Symbols = nil },
		"bad interval":      func(c *Config) { c.DataSource.RefreshIntervalSeconds = 0 },
		"duplicate source":  func(c *Config) { c.DataSource.Sources = append(c.DataSource.Sources, c.DataSource.Sources[0]) },
		"postgres no dsn":   func(c *Config) { c.Storage.DBType = "postgres" },
		"unknown db":        func(c *Config) { c.Storage.DBType = "mongo" },
		"negative retries":  func(c *Config) { c.Network.MaxRetries = -1 },
		"blank ticker":      func(c *Config) { c.Dashboard.Symbols[0].Ticker = "" },
		"grpc port too low": func(c *Config) { c.GrpcPort = 80 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{MConfig: Default()}
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{MConfig: Default()}
	cfg.Port = 8099
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8099, loaded.Port)
	assert.Equal(t, cfg.Dashboard.Symbols, loaded.Dashboard.Symbols)
}
