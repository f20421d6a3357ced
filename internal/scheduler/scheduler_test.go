package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockCorrelator/internal/collector"
	"StockCorrelator/internal/config"
	"StockCorrelator/internal/engine"
	"StockCorrelator/internal/metrics"
	"StockCorrelator/internal/model"
	"StockCorrelator/internal/render"
)

type sent struct {
	Text  string
	Chart []byte
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeNotifier) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{Text: text})
	return f.err
}

func (f *fakeNotifier) SendChart(chart []byte, _ string, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{Text: caption, Chart: chart})
	return f.err
}

func series(day0 time.Time, closes ...float64) []model.PricePoint {
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: day0.AddDate(0, 0, i), Close: null.FloatFrom(c)}
	}
	return points
}

func newTestScheduler(n *fakeNotifier, pairs ...config.PairConfig) *Scheduler {
	day0 := model.Date(2024, 1, 2)
	fetcher := &collector.MockFetcher{
		Series: map[string][]model.PricePoint{
			"AAPL": series(day0, 10, 11, 12, 13, 14),
			"MSFT": series(day0, 20, 22, 24, 26, 28),
			"BTC":  series(model.Date(2023, 6, 1), 1, 2, 3),
			"GOOG": series(day0, 5, 4, 6, 3, 7),
		},
		Errors: map[string]error{"DOWN": errors.New("upstream unavailable")},
	}
	s := NewScheduler(engine.New(fetcher, engine.Options{}), nil, pairs, render.DefaultChartOptions())
	if n != nil {
		s.Notifier = n
	}
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestRunNow(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScheduler(n,
		config.PairConfig{SymbolA: "aapl", SymbolB: "msft", LookbackDays: 90},
		config.PairConfig{SymbolA: "AAPL", SymbolB: "DOWN", LookbackDays: 90},
		config.PairConfig{SymbolA: "AAPL", SymbolB: "BTC", LookbackDays: 90},
	)

	results := s.RunNow(context.Background())
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	assert.Equal(t, "AAPL", results[0].Request.SymbolA)
	assert.Equal(t, 5, results[0].Analysis.Table.Len())
	assert.InDelta(t, 1.0, results[0].Analysis.Correlation.Float64, 1e-12)

	assert.Equal(t, engine.KindRetrieval, engine.KindOf(results[1].Err))
	assert.Equal(t, engine.KindRetrieval, engine.KindOf(results[2].Err), "BTC has no data inside the lookback")

	require.Len(t, n.sent, 3)
	assert.NotEmpty(t, n.sent[0].Chart)
	assert.Contains(t, n.sent[0].Text, "AAPL / MSFT")
	assert.Contains(t, n.sent[1].Text, "upstream unavailable")
	assert.Empty(t, n.sent[1].Chart)
}

func TestRunNow_NotifierFailureDoesNotStopRun(t *testing.T) {
	n := &fakeNotifier{err: errors.New("telegram down")}
	s := newTestScheduler(n,
		config.PairConfig{SymbolA: "AAPL", SymbolB: "MSFT", LookbackDays: 90},
		config.PairConfig{SymbolA: "MSFT", SymbolB: "AAPL", LookbackDays: 90},
	)

	results := s.RunNow(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results[1].Err)
	assert.Len(t, n.sent, 2)
}

func TestRunNow_WithoutNotifier(t *testing.T) {
	s := newTestScheduler(nil, config.PairConfig{SymbolA: "AAPL", SymbolB: "MSFT", LookbackDays: 90})
	results := s.RunNow(context.Background())
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestRunNow_InvalidPair(t *testing.T) {
	s := newTestScheduler(nil, config.PairConfig{SymbolA: " ", SymbolB: "MSFT", LookbackDays: 90})
	results := s.RunNow(context.Background())
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestHandleCommand_Corr(t *testing.T) {
	s := newTestScheduler(nil)

	reply := s.HandleCommand(context.Background(), "/corr aapl msft 2024-01-01 2024-02-01")
	assert.NotEmpty(t, reply.Chart)
	assert.Equal(t, "png", reply.Format)
	assert.Contains(t, reply.Text, "Correlation: <b>1.00</b>")

	reply = s.HandleCommand(context.Background(), "/corr@corr_bot AAPL MSFT 2024-01-01 2024-02-01")
	assert.NotEmpty(t, reply.Chart)
}

func TestHandleCommand_CorrErrors(t *testing.T) {
	s := newTestScheduler(nil)

	reply := s.HandleCommand(context.Background(), "/corr AAPL MSFT 2024-01-01")
	assert.Empty(t, reply.Chart)
	assert.Contains(t, reply.Text, "please fill in all fields")

	reply = s.HandleCommand(context.Background(), "/corr AAPL BTC 2023-01-01 2025-01-01")
	assert.Empty(t, reply.Chart)
	assert.Contains(t, reply.Text, "no overlapping dates")

	reply = s.HandleCommand(context.Background(), "/corr AAPL MSFT 2024-13-01 2024-02-01")
	assert.Empty(t, reply.Chart)
	assert.Contains(t, reply.Text, "❌")
}

func TestHandleCommand_Pairs(t *testing.T) {
	s := newTestScheduler(nil, config.PairConfig{SymbolA: "AAPL", SymbolB: "MSFT", LookbackDays: 30})
	reply := s.HandleCommand(context.Background(), "/pairs")
	assert.Contains(t, reply.Text, "AAPL / MSFT (30 days)")

	s.Pairs = nil
	reply = s.HandleCommand(context.Background(), "/pairs")
	assert.Equal(t, "No pairs are watched.", reply.Text)
}

func TestHandleCommand_Help(t *testing.T) {
	s := newTestScheduler(nil)
	for _, cmd := range []string{"", "hello", "/start"} {
		assert.Equal(t, helpText, s.HandleCommand(context.Background(), cmd).Text, cmd)
	}
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(nil)
	require.NoError(t, s.Register("0 0 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))
}

func TestRunNow_SetsGaugeForWatchedPairs(t *testing.T) {
	s := newTestScheduler(nil, config.PairConfig{SymbolA: "AAPL", SymbolB: "MSFT", LookbackDays: 90})
	s.RunNow(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LastCorrelation.WithLabelValues("AAPL/MSFT")))
}

func TestHandleCommand_CorrDoesNotTouchGauge(t *testing.T) {
	s := newTestScheduler(nil)
	before := testutil.CollectAndCount(metrics.LastCorrelation)

	reply := s.HandleCommand(context.Background(), "/corr GOOG AAPL 2024-01-01 2024-02-01")
	require.NotEmpty(t, reply.Chart)
	assert.Equal(t, before, testutil.CollectAndCount(metrics.LastCorrelation))
}

func TestRunWatch_SingleFlight(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScheduler(n, config.PairConfig{SymbolA: "AAPL", SymbolB: "MSFT", LookbackDays: 90})

	s.watching.Store(true)
	assert.False(t, s.RunWatch())
	reply := s.HandleCommand(context.Background(), "/watch")
	assert.Equal(t, "A watch run is already in progress.", reply.Text)
	assert.Empty(t, n.sent)

	s.watching.Store(false)
	assert.True(t, s.RunWatch())
	assert.Len(t, n.sent, 1)
	assert.False(t, s.watching.Load())
}
