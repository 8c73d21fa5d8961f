package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Ticker is one catalog entry the user can pick from.
type Ticker struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// Config holds all application configuration.
type Config struct {
	Provider string `yaml:"provider"` // "yahoo" or "mock"
	Proxy    string `yaml:"proxy"`
	Fetch    struct {
		MaxRetries     int `yaml:"max_retries"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"fetch"`
	Output struct {
		Format     string `yaml:"format"` // table, tsv, csv
		DateLabel  string `yaml:"date_label"`
		CloseLabel string `yaml:"close_label"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"output"`
	Watch struct {
		Cron   string `yaml:"cron"`
		Symbol string `yaml:"symbol"`
	} `yaml:"watch"`
	Tickers          []Ticker `yaml:"tickers"`
	DefaultRangeDays int      `yaml:"default_range_days"`
	Log              struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; defaults cover everything.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKFETCH_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("STOCKFETCH_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxRetries = n
		}
	}
	if v := os.Getenv("STOCKFETCH_SQLITE_PATH"); v != "" {
		cfg.Output.SQLitePath = v
	}
	if v := os.Getenv("STOCKFETCH_WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := os.Getenv("STOCKFETCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Provider == "" {
		cfg.Provider = "yahoo"
	}
	if cfg.Fetch.MaxRetries == 0 {
		cfg.Fetch.MaxRetries = 3
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "table"
	}
	if cfg.Output.DateLabel == "" {
		cfg.Output.DateLabel = "Date"
	}
	if cfg.Output.CloseLabel == "" {
		cfg.Output.CloseLabel = "Close"
	}
	if cfg.Watch.Cron == "" {
		cfg.Watch.Cron = "0 0 18 * * 1-5"
	}
	if cfg.DefaultRangeDays == 0 {
		cfg.DefaultRangeDays = 365
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = defaultTickers()
	}

	return cfg, nil
}

// defaultTickers mirrors the Taiwan market catalog the tool started with.
func defaultTickers() []Ticker {
	return []Ticker{
		{Symbol: "^TWII", Name: "TAIEX Weighted Index"},
		{Symbol: "TW50U.FGI", Name: "FTSE TWSE Taiwan 50 USD"},
		{Symbol: "00631L.TW", Name: "Yuanta Taiwan 50 2x Leveraged"},
		{Symbol: "2330.TW", Name: "TSMC"},
		{Symbol: "2317.TW", Name: "Hon Hai"},
		{Symbol: "006208.TW", Name: "Fubon Taiwan 50"},
		{Symbol: "^VIX", Name: "CBOE Volatility Index"},
	}
}

// Validate checks that all fields are consistent.
func (c *Config) Validate() error {
	switch c.Provider {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("provider must be yahoo or mock, got %q", c.Provider)
	}
	switch c.Output.Format {
	case "table", "tsv", "csv":
	default:
		return fmt.Errorf("output.format must be table, tsv or csv, got %q", c.Output.Format)
	}
	if c.Fetch.MaxRetries < 1 {
		return fmt.Errorf("fetch.max_retries must be >= 1")
	}
	if c.DefaultRangeDays < 1 {
		return fmt.Errorf("default_range_days must be >= 1")
	}
	return nil
}
