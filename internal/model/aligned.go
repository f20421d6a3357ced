package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// AlignedRow is one date present in both series.
type AlignedRow struct {
	Date time.Time
	A    float64
	B    float64
}

// AlignedSeries is the inner join of two price series on date. Columns are
// named after the two instrument identifiers.
type AlignedSeries struct {
	SymbolA string
	SymbolB string
	Rows    []AlignedRow
}

// Len returns the number of aligned observations.
func (a *AlignedSeries) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Rows)
}

// Dates returns the date index.
func (a *AlignedSeries) Dates() []time.Time {
	out := make([]time.Time, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.Date
	}
	return out
}

// ColumnA returns the closing prices of SymbolA in date order.
func (a *AlignedSeries) ColumnA() []float64 {
	out := make([]float64, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.A
	}
	return out
}

// ColumnB returns the closing prices of SymbolB in date order.
func (a *AlignedSeries) ColumnB() []float64 {
	out := make([]float64, len(a.Rows))
	for i, r := range a.Rows {
		out[i] = r.B
	}
	return out
}

// First returns the earliest date, or the zero time for an empty table.
func (a *AlignedSeries) First() time.Time {
	if a.Len() == 0 {
		return time.Time{}
	}
	return a.Rows[0].Date
}

// Last returns the latest date, or the zero time for an empty table.
func (a *AlignedSeries) Last() time.Time {
	if a.Len() == 0 {
		return time.Time{}
	}
	return a.Rows[len(a.Rows)-1].Date
}

// Analysis is the successful outcome of a correlation request. An invalid
// Correlation means the coefficient is undefined for the table (fewer than two
// rows, or a constant column).
type Analysis struct {
	Table       *AlignedSeries
	Correlation null.Float
	Start       string
	End         string
}
