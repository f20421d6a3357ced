// Package render turns an analysis into presentation artifacts. Every call
// builds a fresh plot; nothing is shared between calls.
package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/guregu/null/v6"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"StockCorrelator/internal/model"
)

// ChartOptions controls the output artifact.
type ChartOptions struct {
	Format string  // "png" or "svg"
	Width  float64 // inches
	Height float64 // inches
}

// DefaultChartOptions is a 6x4 inch PNG.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Format: "png", Width: 6, Height: 4}
}

// ErrEmptyTable is returned when there is nothing to plot.
var ErrEmptyTable = errors.New("aligned table is empty")

// Chart plots one line per column (x = date, y = close price) and annotates
// the correlation above the axes.
func Chart(table *model.AlignedSeries, corr null.Float, opts ChartOptions) ([]byte, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultChartOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	p := plot.New()
	p.Title.Text = Annotation(corr)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Close Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: model.DateLayout}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	columns := []struct {
		name   string
		values []float64
	}{
		{table.SymbolA, table.ColumnA()},
		{table.SymbolB, table.ColumnB()},
	}
	dates := table.Dates()
	for i, col := range columns {
		xys := make(plotter.XYs, len(dates))
		for j, d := range dates {
			xys[j].X = float64(d.Unix())
			xys[j].Y = col.values[j]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", col.name, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(col.name, line)
	}

	w, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write chart: %w", err)
	}
	return buf.Bytes(), nil
}
