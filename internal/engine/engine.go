// Package engine implements the correlation pipeline: retrieve two closing
// price series, drop missing observations, inner-join on date and compute
// the Pearson coefficient of the aligned columns.
//
// The engine holds no state between calls and performs no logging, caching
// or writes.
package engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"StockCorrelator/internal/calculator"
	"StockCorrelator/internal/collector"
	"StockCorrelator/internal/model"
)

// Options tune how the engine talks to its source.
type Options struct {
	// ParallelFetch retrieves both series concurrently. Both must resolve
	// before the join either way.
	ParallelFetch bool
}

// Engine computes pairwise correlations against a single price source.
type Engine struct {
	fetcher collector.Fetcher
	opts    Options
}

// New creates an Engine reading from fetcher.
func New(fetcher collector.Fetcher, opts Options) *Engine {
	return &Engine{fetcher: fetcher, opts: opts}
}

// Source returns the name of the underlying price source.
func (e *Engine) Source() string {
	return e.fetcher.Name()
}

// Compute runs the full pipeline for one pair over [start, end). Dates are
// passed to the source uninterpreted. Every failure, including a panic
// inside the pipeline, is returned as *Error.
func (e *Engine) Compute(ctx context.Context, symbolA, symbolB, start, end string) (analysis *model.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			analysis = nil
			err = &Error{Kind: KindInternal, Err: fmt.Errorf("%v", r)}
		}
	}()

	if err := checkInputs(symbolA, symbolB, start, end); err != nil {
		return nil, err
	}

	cleanA, cleanB, err := e.fetchBoth(ctx, symbolA, symbolB, start, end)
	if err != nil {
		return nil, err
	}

	table := innerJoin(symbolA, cleanA, symbolB, cleanB)
	if table.Len() == 0 {
		return nil, &Error{Kind: KindNoOverlap, Err: fmt.Errorf("%w (%s, %s)", ErrNoOverlap, symbolA, symbolB)}
	}

	corr, err := calculator.Pearson(table.ColumnA(), table.ColumnB())
	if err != nil {
		return nil, &Error{Kind: KindInternal, Err: err}
	}

	return &model.Analysis{
		Table:       table,
		Correlation: corr,
		Start:       start,
		End:         end,
	}, nil
}

func checkInputs(symbolA, symbolB, start, end string) error {
	fields := []struct{ name, value string }{
		{"symbol A", symbolA},
		{"symbol B", symbolB},
		{"start date", start},
		{"end date", end},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &Error{Kind: KindInvalidInput, Err: fmt.Errorf("%w: %s is empty", ErrInvalidInput, f.name)}
		}
	}
	return nil
}

func (e *Engine) fetchBoth(ctx context.Context, symbolA, symbolB, start, end string) (a, b map[string]model.PricePoint, err error) {
	if !e.opts.ParallelFetch {
		if a, err = e.fetch(ctx, symbolA, start, end); err != nil {
			return nil, nil, err
		}
		if b, err = e.fetch(ctx, symbolB, start, end); err != nil {
			return nil, nil, err
		}
		return a, b, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = e.fetch(gctx, symbolA, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = e.fetch(gctx, symbolB, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// fetch retrieves one series and drops missing closes. A series with no
// usable close is reported like any other retrieval failure. Panics are
// recovered here as well since fetch may run on its own goroutine.
func (e *Engine) fetch(ctx context.Context, symbol, start, end string) (clean map[string]model.PricePoint, err error) {
	defer func() {
		if r := recover(); r != nil {
			clean = nil
			err = &Error{Kind: KindInternal, Symbol: symbol, Err: fmt.Errorf("%v", r)}
		}
	}()

	series, err := e.fetcher.FetchCloses(ctx, symbol, start, end)
	if err != nil {
		return nil, &Error{Kind: KindRetrieval, Symbol: symbol, Err: err}
	}
	if series.Len() == 0 {
		return nil, &Error{Kind: KindRetrieval, Symbol: symbol, Err: ErrEmptySeries}
	}
	clean = dropMissing(series.Points)
	if len(clean) == 0 {
		return nil, &Error{Kind: KindRetrieval, Symbol: symbol, Err: ErrEmptySeries}
	}
	return clean, nil
}
