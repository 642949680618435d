package solver

import (
	"fmt"
	"math"

	"github.com/Ehs-Dhs/Nektar/utils"
)

// WriteModalEnergy appends one energy record to the .mdl log. In the
// homogeneous 1D case the per-Fourier-mode energies are gathered on the
// root of the column communicator and written one row per mode, in
// ascending rank order; otherwise a single 0.5*sum(L2^2) row is
// written.
func (s *IncNavierStokes) WriteModalEnergy() {
	if s.homogeneousType != NotHomogeneous {
		if s.homogeneousType != Homogeneous1D {
			panic(fmt.Errorf("3D Homogeneous 2D energy dumping not implemented yet"))
		}

		var (
			col     = s.comm.ColumnComm()
			colrank = col.Rank()
			nproc   = col.Size()
			locsize = s.npointsZ / nproc / 2
			energy  = make([]float64, locsize)
		)

		for i := 0; i < s.nConvectiveFields; i++ {
			tmp := s.fields[i].HomogeneousEnergy()
			utils.Add(energy, tmp[:locsize])
		}

		if colrank == 0 {
			m := 0
			for j := 0; j < len(energy); j, m = j+1, m+1 {
				fmt.Fprintf(s.mdlFile, "%10v%5d%18v\n", s.time, m, energy[j])
			}
			for i := 1; i < nproc; i++ {
				col.Recv(i, energy)
				for j := 0; j < len(energy); j, m = j+1, m+1 {
					fmt.Fprintf(s.mdlFile, "%10v%5d%18v\n", s.time, m, energy[j])
				}
			}
		} else {
			col.Send(0, energy)
		}
		return
	}

	energy := 0.0
	for i := 0; i < s.nConvectiveFields; i++ {
		s.fields[i].SetPhysState(true)
		norm := s.fields[i].L2()
		energy += norm * norm
	}
	fmt.Fprintf(s.mdlFile, "%v   %v\n", s.time, 0.5*energy)
}

// CalcSteadyState reports whether the discrete L2 sum of the
// coefficients matches the previous check to within the configured
// tolerance. The previous norm is always updated.
func (s *IncNavierStokes) CalcSteadyState() bool {
	var (
		ncoeffs   = s.fields[0].GetNcoeffs()
		l2        = 0.0
		returnval = false
	)

	for i := range s.fields {
		c := s.fields[i].GetCoeffs()[:ncoeffs]
		l2 += utils.Dot(c, c)
	}

	if math.Abs(l2-s.previousL2) < float64(ncoeffs)*s.steadyStateTol {
		returnval = true
	}

	s.previousL2 = l2

	return returnval
}
