// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced values from start to end inclusive. A
// single value yields start and a non-positive count yields an empty slice.
func Linspace(start, end float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	dst := floats.Span(make([]float64, n), start, end)
	dst[n-1] = end
	return dst
}

// Fill returns a slice of n copies of value.
func Fill(value float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	dst := make([]float64, n)
	for i := range dst {
		dst[i] = value
	}
	return dst
}

// CumSum returns the running sum of values in a new slice.
func CumSum(values []float64) []float64 {
	return floats.CumSum(make([]float64, len(values)), values)
}

// CumProd returns the running product of values in a new slice.
func CumProd(values []float64) []float64 {
	return floats.CumProd(make([]float64, len(values)), values)
}

// Shift moves values forward by the given number of periods, filling the
// leading positions with NaN. The result has the same length as values.
func Shift(values []float64, periods int) []float64 {
	dst := make([]float64, len(values))
	if periods <= 0 {
		copy(dst, values)
		return dst
	}
	for i := range dst {
		if i < periods {
			dst[i] = math.NaN()
			continue
		}
		dst[i] = values[i-periods]
	}
	return dst
}

// SumRange sums values[from] through values[to] inclusive.
func SumRange(values []float64, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to >= len(values) {
		to = len(values) - 1
	}
	if from > to {
		return 0
	}
	return floats.Sum(values[from : to+1])
}
