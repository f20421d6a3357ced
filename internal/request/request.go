// Package request validates the four form fields of a correlation request
// before they reach the engine.
package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"StockCorrelator/internal/model"
)

// ErrIncomplete is returned when any field is empty or whitespace.
var ErrIncomplete = errors.New("please fill in all fields")

// Request is a normalised correlation request.
type Request struct {
	SymbolA string
	SymbolB string
	Start   string
	End     string
}

// Parse trims every field and upper-cases the symbols. Dates are left for the
// source to interpret.
func Parse(symbolA, symbolB, start, end string) (Request, error) {
	r := Request{
		SymbolA: strings.ToUpper(strings.TrimSpace(symbolA)),
		SymbolB: strings.ToUpper(strings.TrimSpace(symbolB)),
		Start:   strings.TrimSpace(start),
		End:     strings.TrimSpace(end),
	}
	if r.SymbolA == "" || r.SymbolB == "" || r.Start == "" || r.End == "" {
		return Request{}, ErrIncomplete
	}
	return r, nil
}

// FromArgs parses positional arguments "SYMBOL_A SYMBOL_B START END".
func FromArgs(args []string) (Request, error) {
	if len(args) != 4 {
		return Request{}, fmt.Errorf("%w: expected SYMBOL_A SYMBOL_B START END, got %d values", ErrIncomplete, len(args))
	}
	return Parse(args[0], args[1], args[2], args[3])
}

// Lookback builds a request ending tomorrow (end is exclusive) and spanning
// days calendar days, relative to now.
func Lookback(symbolA, symbolB string, days int, now time.Time) (Request, error) {
	end := now.AddDate(0, 0, 1)
	start := now.AddDate(0, 0, -days)
	return Parse(symbolA, symbolB, start.Format(model.DateLayout), end.Format(model.DateLayout))
}

func (r Request) String() string {
	return fmt.Sprintf("%s/%s %s..%s", r.SymbolA, r.SymbolB, r.Start, r.End)
}
