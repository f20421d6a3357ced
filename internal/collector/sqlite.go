package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/guregu/null/v6"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"StockCorrelator/internal/model"
)

// SQLiteFetcher reads closing prices from a local SQLite price store, for
// offline analysis against data exported from another system.
type SQLiteFetcher struct {
	db *sqlx.DB
}

// NewSQLiteFetcher opens an existing price store read-only. The database
// must already hold a daily_prices(symbol, date, close) table; a missing
// file is an error rather than a fresh empty store.
func NewSQLiteFetcher(dbPath string) (*SQLiteFetcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite path %q: %w", dbPath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("open sqlite price store: %w", err)
	}

	db, err := sqlx.Open("sqlite", "file:"+abs+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	f := &SQLiteFetcher{db: db}
	if err := f.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return f, nil
}

func (f *SQLiteFetcher) checkSchema() error {
	var n int
	err := f.db.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'daily_prices'`)
	if err != nil {
		return fmt.Errorf("read sqlite schema: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sqlite price store has no daily_prices table")
	}
	return nil
}

func (f *SQLiteFetcher) Name() string { return "sqlite" }

type priceRow struct {
	Date  string     `db:"date"`
	Close null.Float `db:"close"`
}

func (f *SQLiteFetcher) FetchCloses(ctx context.Context, symbol, start, end string) (*model.PriceSeries, error) {
	if _, _, err := parseInterval(start, end); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	var rows []priceRow
	err := f.db.SelectContext(ctx, &rows,
		`SELECT date, close FROM daily_prices
		 WHERE symbol = ? AND date >= ? AND date < ?
		 ORDER BY date`,
		symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sqlite: no data for %s between %s and %s", symbol, start, end)
	}

	points := make([]model.PricePoint, len(rows))
	for i, r := range rows {
		d, err := time.Parse(model.DateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("sqlite: bad date %q for %s: %w", r.Date, symbol, err)
		}
		points[i] = model.PricePoint{Date: d, Close: r.Close}
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Source:    f.Name(),
		Points:    points,
		FetchedAt: time.Now(),
	}, nil
}

func (f *SQLiteFetcher) Close() error {
	return f.db.Close()
}
