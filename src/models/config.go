package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	GrpcHost   string            `yaml:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Dashboard  MDashboardConfig  `yaml:"dashboard"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	RefreshIntervalSeconds int             `yaml:"refresh_interval_seconds"`
	BackfillMissing        bool            `yaml:"backfill_missing"`
	Sources                []MSourceConfig `yaml:"sources"`
}

type MSourceConfig struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"` // alphavantage | alpaca
	Disabled  bool   `yaml:"disabled"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"` // alpaca only
	BaseURL   string `yaml:"base_url"`   // Optional
	Feed      string `yaml:"feed"`       // alpaca only: iex | sip
}

type MDashboardConfig struct {
	Symbols         []MSymbol `yaml:"symbols"`
	DefaultTheme    string    `yaml:"default_theme"`
	RecentRefreshes int       `yaml:"recent_refreshes"`
}
