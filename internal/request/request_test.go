package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Normalises(t *testing.T) {
	r, err := Parse(" aapl ", "msft", " 2023-01-01", "2023-06-01 ")
	require.NoError(t, err)
	assert.Equal(t, Request{SymbolA: "AAPL", SymbolB: "MSFT", Start: "2023-01-01", End: "2023-06-01"}, r)
	assert.Equal(t, "AAPL/MSFT 2023-01-01..2023-06-01", r.String())
}

func TestParse_RejectsEmptyFields(t *testing.T) {
	tests := [][4]string{
		{"", "MSFT", "2023-01-01", "2023-06-01"},
		{"AAPL", "  ", "2023-01-01", "2023-06-01"},
		{"AAPL", "MSFT", "", "2023-06-01"},
		{"AAPL", "MSFT", "2023-01-01", "\n"},
	}
	for _, tt := range tests {
		_, err := Parse(tt[0], tt[1], tt[2], tt[3])
		assert.ErrorIs(t, err, ErrIncomplete)
	}
}

func TestParse_DatesUninterpreted(t *testing.T) {
	r, err := Parse("a", "b", "not-a-date", "2023-99-99")
	require.NoError(t, err)
	assert.Equal(t, "not-a-date", r.Start)
}

func TestFromArgs(t *testing.T) {
	r, err := FromArgs([]string{"spy", "tlt", "2020-01-01", "2021-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "SPY", r.SymbolA)

	_, err = FromArgs([]string{"spy", "tlt"})
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "got 2 values")
}

func TestLookback(t *testing.T) {
	now := time.Date(2024, time.March, 15, 18, 0, 0, 0, time.UTC)
	r, err := Lookback("gld", "uso", 30, now)
	require.NoError(t, err)
	assert.Equal(t, "GLD", r.SymbolA)
	assert.Equal(t, "2024-02-14", r.Start)
	assert.Equal(t, "2024-03-16", r.End)
}
