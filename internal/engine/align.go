package engine

import (
	"sort"

	"StockCorrelator/internal/model"
)

// dropMissing keeps the points that carry a usable close, first occurrence
// per calendar date.
func dropMissing(points []model.PricePoint) map[string]model.PricePoint {
	out := make(map[string]model.PricePoint, len(points))
	for _, p := range points {
		if !p.Present() {
			continue
		}
		day := p.Day()
		if _, seen := out[day]; seen {
			continue
		}
		out[day] = p
	}
	return out
}

// innerJoin aligns two cleaned series on calendar date. Dates present in only
// one series are dropped. Rows are ordered by date.
func innerJoin(symbolA string, a map[string]model.PricePoint, symbolB string, b map[string]model.PricePoint) *model.AlignedSeries {
	table := &model.AlignedSeries{SymbolA: symbolA, SymbolB: symbolB}
	for day, pa := range a {
		pb, ok := b[day]
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, model.AlignedRow{
			Date: model.Date(pa.Date.Year(), pa.Date.Month(), pa.Date.Day()),
			A:    pa.Close.Float64,
			B:    pb.Close.Float64,
		})
	}
	sort.Slice(table.Rows, func(i, j int) bool { return table.Rows[i].Date.Before(table.Rows[j].Date) })
	return table
}
