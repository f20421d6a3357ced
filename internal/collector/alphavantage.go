package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"StockCorrelator/internal/model"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage daily time series.
// Requests are throttled client-side to the plan's per-minute allowance.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewAlphaVantageFetcher creates a fetcher limited to perMinute requests per minute.
func NewAlphaVantageFetcher(apiKey string, perMinute int, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	if perMinute <= 0 {
		perMinute = 5
	}
	return &AlphaVantageFetcher{
		BaseURL: alphaVantageBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

type alphaVantageResponse struct {
	TimeSeries   map[string]alphaVantageBar `json:"Time Series (Daily)"`
	ErrorMessage string                     `json:"Error Message"`
	Note         string                     `json:"Note"`
	Information  string                     `json:"Information"`
}

type alphaVantageBar struct {
	Close string `json:"4. close"`
}

func (f *AlphaVantageFetcher) FetchCloses(ctx context.Context, symbol, start, end string) (*model.PriceSeries, error) {
	from, to, err := parseInterval(start, end)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w", err)
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("alphavantage rate limit: %w", err)
		}
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", f.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var av alphaVantageResponse
	if err := json.Unmarshal(body, &av); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	switch {
	case av.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage api error: %s", av.ErrorMessage)
	case av.Note != "":
		return nil, fmt.Errorf("alphavantage api note: %s", av.Note)
	case len(av.TimeSeries) == 0 && av.Information != "":
		return nil, fmt.Errorf("alphavantage api information: %s", av.Information)
	}

	points := make([]model.PricePoint, 0, len(av.TimeSeries))
	for day, bar := range av.TimeSeries {
		d, err := time.Parse(model.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: bad date %q: %w", day, err)
		}
		if d.Before(from) || !d.Before(to) {
			continue
		}
		p := model.PricePoint{Date: d}
		if c := strings.TrimSpace(bar.Close); c != "" {
			dec, err := decimal.NewFromString(c)
			if err != nil {
				return nil, fmt.Errorf("alphavantage: bad close %q on %s: %w", c, day, err)
			}
			p.Close = null.FloatFrom(dec.InexactFloat64())
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("alphavantage: no data returned for %s", symbol)
	}
	sortPoints(points)

	return &model.PriceSeries{
		Symbol:    symbol,
		Source:    f.Name(),
		Points:    points,
		FetchedAt: time.Now(),
	}, nil
}
