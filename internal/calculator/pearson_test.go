package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson_PerfectPositive(t *testing.T) {
	r, err := Pearson([]float64{10, 11, 12}, []float64{20, 22, 24})
	require.NoError(t, err)
	require.True(t, r.Valid)
	assert.Equal(t, 1.0, r.Float64)
}

func TestPearson_PerfectNegative(t *testing.T) {
	tests := []struct {
		name   string
		x      []float64
		offset float64
	}{
		{"round offset", []float64{101.5, 99.25, 104.75, 98, 110.125}, 500},
		{"non-round offset", []float64{101.2, 99.7, 103.4, 104.9, 98.1, 100.3, 97.77}, 1234.567},
		{"small prices", []float64{0.0123, 0.0119, 0.0131, 0.0127, 0.0120}, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := make([]float64, len(tt.x))
			for i, v := range tt.x {
				y[i] = -v + tt.offset
			}
			r, err := Pearson(tt.x, y)
			require.NoError(t, err)
			require.True(t, r.Valid)
			assert.Equal(t, -1.0, r.Float64)
		})
	}
}

func TestPearson_ScaledSeries(t *testing.T) {
	x := []float64{101.2, 99.7, 103.4, 104.9, 98.1, 100.3, 97.77}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3.7*v + 12.345
	}
	r, err := Pearson(x, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Float64)
}

func TestPearson_NearPerfectIsNotSnapped(t *testing.T) {
	r, err := Pearson([]float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4, 5.01})
	require.NoError(t, err)
	assert.Less(t, r.Float64, 1.0)
	assert.Greater(t, r.Float64, 0.99)
}

func TestPearson_Undefined(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"empty", nil, nil},
		{"single pair", []float64{1}, []float64{2}},
		{"constant x", []float64{5, 5, 5}, []float64{1, 2, 3}},
		{"constant y", []float64{1, 2, 3}, []float64{0.1, 0.1, 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Pearson(tt.x, tt.y)
			require.NoError(t, err)
			assert.False(t, r.Valid)
		})
	}
}

func TestPearson_LengthMismatch(t *testing.T) {
	_, err := Pearson([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPearson_Bounded(t *testing.T) {
	x := []float64{1.1, 2.3, 2.9, 4.4, 5.0, 6.2}
	y := []float64{3.0, 1.2, 4.8, 2.2, 6.1, 5.5}
	r, err := Pearson(x, y)
	require.NoError(t, err)
	require.True(t, r.Valid)
	assert.False(t, math.IsNaN(r.Float64))
	assert.LessOrEqual(t, r.Float64, 1.0)
	assert.GreaterOrEqual(t, r.Float64, -1.0)
}

func TestStrength(t *testing.T) {
	tests := []struct {
		r     float64
		label string
	}{
		{0.95, "very strong"},
		{-0.85, "very strong"},
		{0.65, "strong"},
		{-0.45, "moderate"},
		{0.25, "weak"},
		{0.05, "very weak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, Strength(tt.r), "r=%.2f", tt.r)
	}
}
