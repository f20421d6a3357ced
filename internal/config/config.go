package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CORRELATOR_DATA_SOURCE_API_KEY.
const EnvPrefix = "CORRELATOR"

// Data source types.
const (
	SourceYahoo        = "yahoo"
	SourceVsTrader     = "vstrader"
	SourceAlphaVantage = "alphavantage"
	SourceSQLite       = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	DataSource DataSourceConfig `yaml:"data_source" envconfig:"data_source"`
	Engine     EngineConfig     `yaml:"engine" envconfig:"engine"`
	Telegram   TelegramConfig   `yaml:"telegram" envconfig:"telegram"`
	Watch      WatchConfig      `yaml:"watch" envconfig:"watch"`
	Metrics    MetricsConfig    `yaml:"metrics" envconfig:"metrics"`
	Log        LogConfig        `yaml:"log" envconfig:"log"`
	Chart      ChartConfig      `yaml:"chart" envconfig:"chart"`
	Proxy      string           `yaml:"proxy" envconfig:"proxy"`
}

// DataSourceConfig selects and parameterises the upstream price source.
type DataSourceConfig struct {
	Type          string        `yaml:"type" envconfig:"type"`
	BaseURL       string        `yaml:"base_url" envconfig:"base_url"`
	APIKey        string        `yaml:"api_key" envconfig:"api_key"`
	RatePerMinute int           `yaml:"rate_per_minute" envconfig:"rate_per_minute"`
	SQLitePath    string        `yaml:"sqlite_path" envconfig:"sqlite_path"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"timeout"`
}

type EngineConfig struct {
	ParallelFetch bool `yaml:"parallel_fetch" envconfig:"parallel_fetch"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" envconfig:"bot_token"`
	ChatID   string `yaml:"chat_id" envconfig:"chat_id"`
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// WatchConfig lists the pairs recomputed on a cron schedule.
type WatchConfig struct {
	Cron       string       `yaml:"cron" envconfig:"cron"`
	RunOnStart bool         `yaml:"run_on_start" envconfig:"run_on_start"`
	Pairs      []PairConfig `yaml:"pairs" ignored:"true"`
}

// PairConfig is one watched pair; the interval ends today and spans LookbackDays.
type PairConfig struct {
	SymbolA      string `yaml:"symbol_a"`
	SymbolB      string `yaml:"symbol_b"`
	LookbackDays int    `yaml:"lookback_days"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" envconfig:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"level"`
	Env   string `yaml:"env" envconfig:"env"`
}

type ChartConfig struct {
	Format string  `yaml:"format" envconfig:"format"`
	Width  float64 `yaml:"width" envconfig:"width"`   // inches
	Height float64 `yaml:"height" envconfig:"height"` // inches
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and finally defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.Proxy == "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Type == "" {
		if c.DataSource.BaseURL != "" {
			c.DataSource.Type = SourceVsTrader
		} else {
			c.DataSource.Type = SourceYahoo
		}
	}
	c.DataSource.Type = strings.ToLower(c.DataSource.Type)
	if c.DataSource.RatePerMinute == 0 {
		c.DataSource.RatePerMinute = 5
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "0 0 22 * * 1-5"
	}
	for i := range c.Watch.Pairs {
		if c.Watch.Pairs[i].LookbackDays == 0 {
			c.Watch.Pairs[i].LookbackDays = 365
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Env == "" {
		c.Log.Env = "development"
	}
	if c.Chart.Format == "" {
		c.Chart.Format = "png"
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 6
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 4
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Type {
	case SourceYahoo:
	case SourceVsTrader:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	case SourceAlphaVantage:
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage")
		}
	case SourceSQLite:
		if c.DataSource.SQLitePath == "" {
			return fmt.Errorf("data_source.sqlite_path is required for sqlite")
		}
	default:
		return fmt.Errorf("unknown data_source.type: %q", c.DataSource.Type)
	}
	if c.DataSource.RatePerMinute < 0 {
		return fmt.Errorf("data_source.rate_per_minute must not be negative")
	}
	if c.Telegram.BotToken != "" {
		if _, err := c.Telegram.ChatIDInt(); err != nil {
			return err
		}
	}
	for i, p := range c.Watch.Pairs {
		if strings.TrimSpace(p.SymbolA) == "" || strings.TrimSpace(p.SymbolB) == "" {
			return fmt.Errorf("watch.pairs[%d]: symbol_a and symbol_b are required", i)
		}
		if p.LookbackDays < 0 {
			return fmt.Errorf("watch.pairs[%d]: lookback_days must be positive", i)
		}
	}
	if c.Chart.Format != "png" && c.Chart.Format != "svg" {
		return fmt.Errorf("chart.format must be 'png' or 'svg'")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}
	return nil
}

// ChatIDInt parses the Telegram chat id.
func (t TelegramConfig) ChatIDInt() (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(t.ChatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram.chat_id must be numeric: %w", err)
	}
	return id, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults and one example pair.
func Default() *Config {
	cfg := &Config{
		Watch: WatchConfig{
			Pairs: []PairConfig{{SymbolA: "AAPL", SymbolB: "MSFT", LookbackDays: 365}},
		},
	}
	cfg.applyDefaults()
	return cfg
}
