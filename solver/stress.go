package solver

import (
	"fmt"
	"math"
)

// StressModel supplies the right hand side of the extra-stress field
// group for the viscoelastic equation type. Both shipped models work on
// the 2D component set (txx, txy, tyy).
type StressModel interface {
	StressRHS(inarray [][]float64, outarray [][]float64, time float64)
}

// oldroydB is the constant relaxation time Oldroyd-B constitutive
// model: the upper convected derivative of the stress balances the
// polymeric strain rate source and linear relaxation.
type oldroydB struct {
	s *IncNavierStokes
}

func newOldroydB(s *IncNavierStokes) *oldroydB { return &oldroydB{s: s} }

func (m *oldroydB) StressRHS(inarray [][]float64, outarray [][]float64, time float64) {
	m.s.stressRHS(inarray, outarray, nil)
}

// bloodModel extends the Oldroyd-B mechanics with an aggregate size
// field that modulates the local relaxation time and polymeric
// viscosity between their disaggregated and fully aggregated limits.
type bloodModel struct {
	s *IncNavierStokes
}

func newBloodModel(s *IncNavierStokes) *bloodModel { return &bloodModel{s: s} }

func (m *bloodModel) StressRHS(inarray [][]float64, outarray [][]float64, time float64) {
	aggregate := m.s.fields[m.s.spacedim+m.s.nStressFields].GetPhys()
	m.s.stressRHS(inarray, outarray, aggregate)
}

// AggregateRHS advances the aggregate size field: advected by the flow
// and relaxing toward a shear dependent equilibrium on the Weissenberg
// time scale.
func (m *bloodModel) AggregateRHS(inarray [][]float64, outarray [][]float64, time float64) {
	var (
		s    = m.s
		nq   = s.fields[0].GetTotPoints()
		fld  = s.fields[0]
		work = make([]float64, nq)
	)

	n := inarray[0]
	out := outarray[0]
	for q := 0; q < nq; q++ {
		out[q] = 0
	}
	for d := 0; d < s.spacedim; d++ {
		fld.PhysDeriv(d, n, work)
		vel := s.fields[s.velocity[d]].GetPhys()
		for q := 0; q < nq; q++ {
			out[q] -= vel[q] * work[q]
		}
	}

	shear := s.shearRate()
	for q := 0; q < nq; q++ {
		neq := 1.0 / (1.0 + shear[q])
		out[q] += (neq - n[q]) / s.We
	}
}

// stressRHS evaluates the upper convected Oldroyd-B right hand side for
// the stress components (txx, txy, tyy). When an aggregate field is
// given, the relaxation time and polymeric viscosity vary pointwise
// between the infinite shear and fully aggregated limits.
func (s *IncNavierStokes) stressRHS(inarray [][]float64, outarray [][]float64, aggregate []float64) {
	if s.spacedim != 2 || s.nStressFields != 3 {
		panic(fmt.Errorf("stress model implemented for 2D (txx, txy, tyy), have dim %d with %d stress fields",
			s.spacedim, s.nStressFields))
	}

	var (
		nq  = s.fields[0].GetTotPoints()
		fld = s.fields[0]

		u = s.fields[s.velocity[0]].GetPhys()
		v = s.fields[s.velocity[1]].GetPhys()

		l11 = make([]float64, nq)
		l12 = make([]float64, nq)
		l21 = make([]float64, nq)
		l22 = make([]float64, nq)

		work = make([]float64, nq)
	)

	fld.PhysDeriv(0, u, l11)
	fld.PhysDeriv(1, u, l12)
	fld.PhysDeriv(0, v, l21)
	fld.PhysDeriv(1, v, l22)

	txx, txy, tyy := inarray[0], inarray[1], inarray[2]

	// Advection of each component.
	for i := 0; i < 3; i++ {
		out := outarray[i]
		for q := 0; q < nq; q++ {
			out[q] = 0
		}
		fld.PhysDeriv(0, inarray[i], work)
		for q := 0; q < nq; q++ {
			out[q] -= u[q] * work[q]
		}
		fld.PhysDeriv(1, inarray[i], work)
		for q := 0; q < nq; q++ {
			out[q] -= v[q] * work[q]
		}
	}

	muP := s.ReM4 / s.Re // polymeric viscosity

	for q := 0; q < nq; q++ {
		we, mu := s.We, muP
		if aggregate != nil {
			w := aggregate[q] / (1.0 + math.Abs(aggregate[q]))
			we = s.WeInf + (s.We-s.WeInf)*w
			mu = s.etaInf + (s.etaN-s.etaInf)*w
		}

		d11 := l11[q]
		d12 := 0.5 * (l12[q] + l21[q])
		d22 := l22[q]

		// Upper convected terms L*tau + tau*L^T.
		outarray[0][q] += 2*(l11[q]*txx[q]+l12[q]*txy[q]) +
			(2*mu*d11-txx[q])/we
		outarray[1][q] += l21[q]*txx[q] + (l11[q]+l22[q])*txy[q] + l12[q]*tyy[q] +
			(2*mu*d12-txy[q])/we
		outarray[2][q] += 2*(l21[q]*txy[q]+l22[q]*tyy[q]) +
			(2*mu*d22-tyy[q])/we
	}
}

// shearRate returns sqrt(2 D:D) of the current velocity field.
func (s *IncNavierStokes) shearRate() []float64 {
	var (
		nq  = s.fields[0].GetTotPoints()
		fld = s.fields[0]

		u = s.fields[s.velocity[0]].GetPhys()
		v = s.fields[s.velocity[1]].GetPhys()

		l11 = make([]float64, nq)
		l12 = make([]float64, nq)
		l21 = make([]float64, nq)
		l22 = make([]float64, nq)

		out = make([]float64, nq)
	)

	fld.PhysDeriv(0, u, l11)
	fld.PhysDeriv(1, u, l12)
	fld.PhysDeriv(0, v, l21)
	fld.PhysDeriv(1, v, l22)

	for q := 0; q < nq; q++ {
		d12 := 0.5 * (l12[q] + l21[q])
		out[q] = math.Sqrt(2.0 * (l11[q]*l11[q] + 2.0*d12*d12 + l22[q]*l22[q]))
	}
	return out
}
