package calculator

import (
	"errors"
	"math"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

// ErrLengthMismatch is returned when the two samples are not paired.
var ErrLengthMismatch = errors.New("samples must have equal length")

// perfectTolerance absorbs the rounding of the variance sums, so an exact
// linear relation reports exactly 1 or -1.
const perfectTolerance = 1e-12

// Pearson computes the Pearson correlation coefficient of two paired samples.
// The result is invalid (undefined) when fewer than two pairs exist or either
// sample is constant. A defined result is clamped to [-1, 1] and snapped to
// ±1 within perfectTolerance.
func Pearson(x, y []float64) (null.Float, error) {
	if len(x) != len(y) {
		return null.Float{}, ErrLengthMismatch
	}
	if len(x) < 2 || constant(x) || constant(y) {
		return null.Float{}, nil
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return null.Float{}, nil
	}
	if 1-math.Abs(r) < perfectTolerance {
		r = math.Copysign(1, r)
	}
	return null.FloatFrom(r), nil
}

func constant(v []float64) bool {
	for _, f := range v[1:] {
		if f != v[0] {
			return false
		}
	}
	return true
}

// Strength labels the magnitude of a coefficient.
func Strength(r float64) string {
	a := math.Abs(r)
	switch {
	case a >= 0.8:
		return "very strong"
	case a >= 0.6:
		return "strong"
	case a >= 0.4:
		return "moderate"
	case a >= 0.2:
		return "weak"
	default:
		return "very weak"
	}
}
