package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/guregu/null/v6"

	"StockCorrelator/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API. Close is null on halted days.
type vsBar struct {
	Timestamp int64      `json:"timestamp"`
	Close     null.Float `json:"close"`
}

func (f *VsTraderFetcher) FetchCloses(ctx context.Context, symbol, start, end string) (*model.PriceSeries, error) {
	if _, _, err := parseInterval(start, end); err != nil {
		return nil, fmt.Errorf("vstrader: %w", err)
	}
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", start)
	q.Set("end", end)
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var vsBars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&vsBars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(vsBars) == 0 {
		return nil, fmt.Errorf("vstrader: no data returned for %s", symbol)
	}

	points := make([]model.PricePoint, len(vsBars))
	for i, vb := range vsBars {
		points[i] = model.PricePoint{
			Date:  dayOf(time.Unix(vb.Timestamp, 0).UTC()),
			Close: vb.Close,
		}
	}
	// Ensure chronological order
	sortPoints(points)

	return &model.PriceSeries{
		Symbol:    symbol,
		Source:    f.Name(),
		Points:    points,
		FetchedAt: time.Now(),
	}, nil
}
