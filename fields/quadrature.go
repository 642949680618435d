package fields

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/Ehs-Dhs/Nektar/utils"
)

// GaussLegendre returns the P point Gauss-Legendre nodes and weights on
// the reference interval [-1, 1].
func GaussLegendre(P int) (x, w []float64) {
	if P < 2 {
		panic(fmt.Errorf("quadrature order must be >= 2, have %d", P))
	}
	x = make([]float64, P)
	w = make([]float64, P)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return
}

// DMatrix builds the 1D collocation differentiation matrix on the given
// nodes using the barycentric form of the Lagrange basis derivatives.
func DMatrix(x []float64) (D utils.Matrix) {
	var (
		P  = len(x)
		bw = barycentricWeights(x)
	)
	D = utils.NewMatrix(P, P)
	for i := 0; i < P; i++ {
		var sum float64
		for j := 0; j < P; j++ {
			if i == j {
				continue
			}
			dij := bw[j] / (bw[i] * (x[i] - x[j]))
			D.Set(i, j, dij)
			sum += dij
		}
		D.Set(i, i, -sum)
	}
	return
}

func barycentricWeights(x []float64) (bw []float64) {
	var (
		P = len(x)
	)
	bw = make([]float64, P)
	for i := 0; i < P; i++ {
		bw[i] = 1
		for j := 0; j < P; j++ {
			if i != j {
				bw[i] /= x[i] - x[j]
			}
		}
	}
	return
}
