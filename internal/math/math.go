package math

import (
	"strconv"
)

// Format formats a float with two decimal digits.
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Series creates an evenly spaced series of the given length e.g. the x values for a fit.
func Series(factor float64, limit int) []float64 {
	xx := make([]float64, 0)
	for i := 0; i < limit; i++ {
		xx = append(xx, factor*float64(i))
	}
	return xx
}

// Trend returns the slope of the 1st degree fit of the given values over their index.
// It is 0 for less than 2 values.
func Trend(yy []float64) (float64, error) {
	if len(yy) < 2 {
		return 0, nil
	}
	a, err := Fit(Series(1, len(yy)), yy, 1)
	if err != nil {
		return 0, err
	}
	return a[1], nil
}
