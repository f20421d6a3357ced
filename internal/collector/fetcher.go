package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockCorrelator/internal/model"
)

// Fetcher retrieves the daily closing-price series of one instrument over
// [start, end). Dates are YYYY-MM-DD strings; a source rejects malformed ones.
type Fetcher interface {
	FetchCloses(ctx context.Context, symbol, start, end string) (*model.PriceSeries, error)
	Name() string
}

// parseInterval validates the date pair the way the upstream sources do.
func parseInterval(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse(model.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.Parse(model.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s must be after start date %s", end, start)
	}
	return from, to, nil
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func sortPoints(points []model.PricePoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
}

func dayOf(t time.Time) time.Time {
	return model.Date(t.Year(), t.Month(), t.Day())
}
