package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockCorrelator/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Unknown symbols yield an empty series, the way a lenient upstream answers
// for a ticker it does not know.
type MockFetcher struct {
	Series map[string][]model.PricePoint
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCloses(_ context.Context, symbol, start, end string) (*model.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	from, to, err := parseInterval(start, end)
	if err != nil {
		return nil, fmt.Errorf("mock: %w", err)
	}

	var points []model.PricePoint
	for _, p := range m.Series[symbol] {
		if p.Date.Before(from) || !p.Date.Before(to) {
			continue
		}
		points = append(points, p)
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Source:    m.Name(),
		Points:    points,
		FetchedAt: time.Now(),
	}, nil
}

// Calls returns the symbols requested so far, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
