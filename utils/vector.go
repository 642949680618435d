package utils

import (
	"gonum.org/v1/gonum/floats"
)

// Elementwise vector kernels used throughout the solver. Thin wrappers
// around gonum floats where gonum provides the operation, explicit
// loops for the fused forms it does not.

func Fill(v []float64, val float64) {
	for i := range v {
		v[i] = val
	}
}

func Neg(v []float64) {
	for i := range v {
		v[i] = -v[i]
	}
}

// MulTo sets dst[i] = a[i] * b[i].
func MulTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// MulAddTo sets dst[i] += a[i] * b[i].
func MulAddTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] += a[i] * b[i]
	}
}

// SubTo sets dst[i] = a[i] - b[i].
func SubTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// ScaleTo sets dst[i] = c * a[i].
func ScaleTo(dst []float64, c float64, a []float64) {
	floats.ScaleTo(dst, c, a)
}

// AddScaled sets dst[i] += alpha * a[i].
func AddScaled(dst []float64, alpha float64, a []float64) {
	floats.AddScaled(dst, alpha, a)
}

func Add(dst, a []float64) {
	floats.Add(dst, a)
}

func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

func Min(v []float64) float64 {
	return floats.Min(v)
}
