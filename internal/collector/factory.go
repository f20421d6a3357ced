package collector

import (
	"fmt"

	"StockCorrelator/internal/config"
)

// New builds the Fetcher selected by the data source config. Fetchers that
// hold resources implement io.Closer.
func New(cfg *config.Config) (Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Type {
	case config.SourceYahoo:
		return NewYahooFetcher(cfg.Proxy, ds.Timeout), nil
	case config.SourceVsTrader:
		return NewVsTraderFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case config.SourceAlphaVantage:
		f := NewAlphaVantageFetcher(ds.APIKey, ds.RatePerMinute, cfg.Proxy, ds.Timeout)
		if ds.BaseURL != "" {
			f.BaseURL = ds.BaseURL
		}
		return f, nil
	case config.SourceSQLite:
		return NewSQLiteFetcher(ds.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown data source type %q", ds.Type)
	}
}
