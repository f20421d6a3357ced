package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a failed correlation request.
type Kind string

const (
	// KindRetrieval covers every upstream failure: network, unknown symbol,
	// empty series, malformed date rejected by the source.
	KindRetrieval Kind = "RETRIEVAL"
	// KindNoOverlap means the two cleaned series share no date.
	KindNoOverlap Kind = "NO_OVERLAP"
	// KindInvalidInput means an empty symbol or date reached the engine.
	KindInvalidInput Kind = "INVALID_INPUT"
	// KindInternal is a recovered failure inside the pipeline.
	KindInternal Kind = "INTERNAL"
)

var (
	ErrEmptySeries  = errors.New("no price data returned")
	ErrNoOverlap    = errors.New("no overlapping dates between the two series")
	ErrInvalidInput = errors.New("invalid input")
)

// Error is the single error type returned by Compute.
type Error struct {
	Kind   Kind
	Symbol string // offending symbol, when one applies
	Err    error
}

func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Symbol, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the human-readable description handed to presentation layers.
func (e *Error) Message() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
	}
	return e.Err.Error()
}

// KindOf returns the Kind of an engine error, or KindInternal for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the displayable description of any error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
