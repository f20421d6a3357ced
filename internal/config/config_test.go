package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, SourceYahoo, cfg.DataSource.Type)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, "png", cfg.Chart.Format)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Watch.Cron)
	require.Len(t, cfg.Watch.Pairs, 1)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, SourceYahoo, cfg.DataSource.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
data_source:
  type: alphavantage
  api_key: from-file
  rate_per_minute: 75
watch:
  cron: "0 30 21 * * 1-5"
  pairs:
    - symbol_a: SPY
      symbol_b: TLT
    - symbol_a: GLD
      symbol_b: USO
      lookback_days: 90
chart:
  format: svg
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("CORRELATOR_DATA_SOURCE_API_KEY", "from-env")
	t.Setenv("CORRELATOR_ENGINE_PARALLEL_FETCH", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceAlphaVantage, cfg.DataSource.Type)
	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, 75, cfg.DataSource.RatePerMinute)
	assert.True(t, cfg.Engine.ParallelFetch)
	assert.Equal(t, "0 30 21 * * 1-5", cfg.Watch.Cron)
	require.Len(t, cfg.Watch.Pairs, 2)
	assert.Equal(t, 365, cfg.Watch.Pairs[0].LookbackDays)
	assert.Equal(t, 90, cfg.Watch.Pairs[1].LookbackDays)
	assert.Equal(t, "svg", cfg.Chart.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BaseURLImpliesVsTrader(t *testing.T) {
	t.Setenv("CORRELATOR_DATA_SOURCE_BASE_URL", "http://localhost:9000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceVsTrader, cfg.DataSource.Type)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_source: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"unknown source", func(c *Config) { c.DataSource.Type = "bloomberg" }, "unknown data_source.type"},
		{"vstrader without url", func(c *Config) { c.DataSource.Type = SourceVsTrader }, "base_url is required"},
		{"alphavantage without key", func(c *Config) { c.DataSource.Type = SourceAlphaVantage }, "api_key is required"},
		{"sqlite without path", func(c *Config) { c.DataSource.Type = SourceSQLite }, "sqlite_path is required"},
		{"non numeric chat id", func(c *Config) {
			c.Telegram.BotToken = "token"
			c.Telegram.ChatID = "@channel"
		}, "chat_id must be numeric"},
		{"empty pair symbol", func(c *Config) { c.Watch.Pairs = []PairConfig{{SymbolA: "AAPL"}} }, "symbol_a and symbol_b are required"},
		{"bad chart format", func(c *Config) { c.Chart.Format = "gif" }, "chart.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.DataSource.Type = SourceSQLite
	cfg.DataSource.SQLitePath = "prices.db"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DataSource.Type, loaded.DataSource.Type)
	assert.Equal(t, cfg.DataSource.SQLitePath, loaded.DataSource.SQLitePath)
	assert.Equal(t, cfg.DataSource.Timeout, loaded.DataSource.Timeout)
	assert.Equal(t, cfg.Watch.Pairs, loaded.Watch.Pairs)
}

func TestChatIDInt(t *testing.T) {
	id, err := TelegramConfig{ChatID: " -100123 "}.ChatIDInt()
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), id)
}
