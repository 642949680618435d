package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	{ // allocation checks
		assert.Panics(t, func() { NewMatrix(2, 2, []float64{1, 2, 3}) })
	}
	{ // row-major backing data
		A := NewMatrix(2, 2, []float64{1, 2, 3, 4})
		assert.Equal(t, 2.0, A.At(0, 1))
		assert.Equal(t, 3.0, A.At(1, 0))
	}
	{ // Set acts on the receiver and chains
		A := NewMatrix(2, 2)
		A.Set(0, 0, 5).Set(1, 1, 7)
		assert.Equal(t, 5.0, A.At(0, 0))
		assert.Equal(t, 7.0, A.At(1, 1))
	}
}

func TestVectorKernels(t *testing.T) {
	v := make([]float64, 3)
	Fill(v, 2)
	assert.Equal(t, []float64{2, 2, 2}, v)

	Neg(v)
	assert.Equal(t, []float64{-2, -2, -2}, v)

	dst := make([]float64, 3)
	MulTo(dst, []float64{1, 2, 3}, []float64{4, 5, 6})
	assert.Equal(t, []float64{4, 10, 18}, dst)

	MulAddTo(dst, []float64{1, 1, 1}, []float64{1, 1, 1})
	assert.Equal(t, []float64{5, 11, 19}, dst)

	SubTo(dst, []float64{5, 11, 19}, []float64{1, 1, 1})
	assert.Equal(t, []float64{4, 10, 18}, dst)

	ScaleTo(dst, 2, []float64{1, 2, 3})
	assert.Equal(t, []float64{2, 4, 6}, dst)

	AddScaled(dst, 0.5, []float64{2, 2, 2})
	assert.Equal(t, []float64{3, 5, 7}, dst)

	assert.Equal(t, 32.0, Dot([]float64{1, 2, 3}, []float64{4, 5, 6}))
	assert.Equal(t, 3.0, Min(dst))
}
