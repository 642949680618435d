package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAdvectionPenaltyFlux(t *testing.T) {
	s := navierStokesSolver(t, 1, 0.01, "")
	var (
		nq      = s.fields[0].GetTotPoints()
		ncoeffs = s.fields[0].GetNcoeffs()
	)

	u := s.fields[s.velocity[0]].UpdatePhys()
	v := s.fields[s.velocity[1]].UpdatePhys()
	for q := 0; q < nq; q++ {
		u[q], v[q] = 1, 0.5
	}

	{ // a continuous field has no interface jump: zero penalty
		physfield := make([][]float64, 2)
		outarray := make([][]float64, 2)
		for i := range physfield {
			physfield[i] = make([]float64, nq)
			outarray[i] = make([]float64, ncoeffs)
			for q := 0; q < nq; q++ {
				physfield[i][q] = 3.25
			}
		}
		s.AddAdvectionPenaltyFlux([][]float64{u, v}, physfield, outarray)
		for i := range outarray {
			for c := range outarray[i] {
				assert.InDelta(t, 0.0, outarray[i][c], 1e-14)
			}
		}
	}
	{ // a jump between elements produces a nonzero correction
		physfield := make([][]float64, 2)
		outarray := make([][]float64, 2)
		for i := range physfield {
			physfield[i] = make([]float64, nq)
			outarray[i] = make([]float64, ncoeffs)
		}
		// Left column of elements 1, right column 2.
		P := 3
		for el := 0; el < s.fields[0].GetExpSize(); el++ {
			val := 1.0
			if el%2 == 1 {
				val = 2.0
			}
			off := s.fields[0].GetPhysOffset(el)
			for q := 0; q < P*P; q++ {
				physfield[0][off+q] = val
				physfield[1][off+q] = val
			}
		}
		s.AddAdvectionPenaltyFlux([][]float64{u, v}, physfield, outarray)
		nonzero := false
		for c := range outarray[0] {
			if outarray[0][c] != 0 {
				nonzero = true
			}
		}
		assert.True(t, nonzero)
	}
	{ // mismatched array shapes are fatal
		assert.Panics(t, func() {
			s.AddAdvectionPenaltyFlux(nil, make([][]float64, 2), make([][]float64, 1))
		})
	}
}

func TestNumericalFlux(t *testing.T) {
	s := navierStokesSolver(t, 1, 0.01, "")
	var (
		nq  = s.fields[0].GetTotPoints()
		ntr = s.fields[0].GetTraceNpoints()
	)

	// Positive normal velocity upwinds the forward (left) state.
	u := s.fields[s.velocity[0]].UpdatePhys()
	for q := 0; q < nq; q++ {
		u[q] = 1
	}

	physfield := [][]float64{make([]float64, nq), make([]float64, nq)}
	numflux := [][]float64{make([]float64, ntr), make([]float64, ntr)}
	for i := range physfield {
		for q := 0; q < nq; q++ {
			physfield[i][q] = 2
		}
	}
	s.NumericalFlux(physfield, numflux)
	for i := range numflux {
		for q := 0; q < ntr; q++ {
			// flux = upwind value * Vn = 2 * 1
			assert.InDelta(t, 2.0, numflux[i][q], 1e-14)
		}
	}
}

func TestGetFluxVector(t *testing.T) {
	s := navierStokesSolver(t, 1, 0.01, "")
	nq := s.fields[0].GetTotPoints()

	u := s.fields[s.velocity[0]].UpdatePhys()
	v := s.fields[s.velocity[1]].UpdatePhys()
	for q := 0; q < nq; q++ {
		u[q], v[q] = 2, 3
	}

	physfield := [][]float64{make([]float64, nq)}
	for q := 0; q < nq; q++ {
		physfield[0][q] = 5
	}
	flux := [][]float64{make([]float64, nq), make([]float64, nq)}
	s.GetFluxVector(0, physfield, flux)
	assert.InDelta(t, 10.0, flux[0][0], 1e-14)
	assert.InDelta(t, 15.0, flux[1][0], 1e-14)

	assert.Panics(t, func() { s.GetFluxVector(0, physfield, flux[:1]) })
}
