package solver

import (
	"fmt"

	"github.com/Ehs-Dhs/Nektar/utils"
)

// GetFluxVector returns the advective flux of variable i: its physical
// values multiplied by each velocity component.
func (s *IncNavierStokes) GetFluxVector(i int, physfield [][]float64, flux [][]float64) {
	if len(flux) != len(s.velocity) {
		panic(fmt.Errorf("dimension of flux array and velocity array do not match"))
	}
	npts := s.fields[0].GetTotPoints()
	for j := 0; j < len(flux); j++ {
		utils.MulTo(flux[j][:npts], physfield[i], s.fields[s.velocity[j]].GetPhys())
	}
}

// NumericalFlux computes the upwind numerical flux of each transported
// variable at the trace points, driven by the normal velocity.
func (s *IncNavierStokes) NumericalFlux(physfield [][]float64, numflux [][]float64) {
	var (
		nTracePts = s.fields[0].GetTraceNpoints()
		normals   = s.fields[0].GetTraceNormals()
		fwd       = make([]float64, nTracePts)
		bwd       = make([]float64, nTracePts)
		vn        = make([]float64, nTracePts)
	)

	for d := 0; d < s.spacedim; d++ {
		s.fields[0].ExtractTracePhys(s.fields[s.velocity[d]].GetPhys(), fwd)
		utils.MulAddTo(vn, normals[d], fwd)
	}

	for i := range numflux {
		s.fields[i].GetFwdBwdTracePhys(physfield[i], fwd, bwd)
		s.fields[i].GetTrace().Upwind(vn, fwd, bwd, numflux[i])
		utils.MulTo(numflux[i][:nTracePts], numflux[i], vn)
	}
}

// AddAdvectionPenaltyFlux accumulates the upwind jump penalty at the
// element interfaces into the weak residual of each variable: the
// difference between the upwind flux and each side's own trace value,
// weighted by the normal velocity and integrated against the trace
// test functions.
func (s *IncNavierStokes) AddAdvectionPenaltyFlux(velfield [][]float64, physfield [][]float64, outarray [][]float64) {
	if len(physfield) != len(outarray) {
		panic(fmt.Errorf("physfield and outarray are of different dimensions"))
	}

	var (
		nTracePts = s.fields[0].GetTraceNpoints()
		normals   = s.fields[0].GetTraceNormals()
		fwd       = make([]float64, nTracePts)
		bwd       = make([]float64, nTracePts)
		numflux   = make([]float64, nTracePts)
		vn        = make([]float64, nTracePts)
	)

	for d := 0; d < s.spacedim; d++ {
		s.fields[0].ExtractTracePhys(s.fields[s.velocity[d]].GetPhys(), fwd)
		utils.MulAddTo(vn, normals[d], fwd)
	}

	for i := range physfield {
		// Needs the correct field index to pick up boundary conditions.
		s.fields[i].GetFwdBwdTracePhys(physfield[i], fwd, bwd)

		s.fields[0].GetTrace().Upwind(vn, fwd, bwd, numflux)

		utils.SubTo(fwd, numflux, fwd)
		utils.MulTo(fwd, fwd, vn)
		utils.SubTo(bwd, numflux, bwd)
		utils.MulTo(bwd, bwd, vn)

		s.fields[0].AddFwdBwdTraceIntegral(fwd, bwd, outarray[i])
	}
}
