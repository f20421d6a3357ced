package model

import (
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the calendar date format used for intervals and join keys.
const DateLayout = "2006-01-02"

// PricePoint is one daily observation. An invalid Close marks a missing value
// (trading halt, data gap).
type PricePoint struct {
	Date  time.Time
	Close null.Float
}

// Day returns the calendar date key of the point.
func (p PricePoint) Day() string {
	return p.Date.Format(DateLayout)
}

// Present reports whether the point carries a usable closing price.
func (p PricePoint) Present() bool {
	return p.Close.Valid && !math.IsNaN(p.Close.Float64) && !math.IsInf(p.Close.Float64, 0)
}

// PriceSeries holds the closing prices of one instrument as returned by a source.
type PriceSeries struct {
	Symbol    string
	Source    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Len returns the number of points, missing ones included.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Date builds a UTC midnight timestamp for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
