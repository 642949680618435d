// Package timeint provides a generalized linear method (GLM) multistep
// time integrator: an explicit Adams-Bashforth family of order 1 to 4
// tracking its internal stage vectors across steps, ramping the order
// up over the first calls so no history beyond what exists is consumed.
package timeint

import "fmt"

// Operators is the right-hand-side operator set a caller supplies to
// the scheme: the ODE right hand side and the projection applied to the
// integrated result.
type Operators struct {
	OdeRHS     func(in [][]float64, out [][]float64, time float64)
	Projection func(in [][]float64, out [][]float64, time float64)
}

// Adams-Bashforth coefficients, row per order.
var abCoeffs = [][]float64{
	{1},
	{3. / 2., -1. / 2.},
	{23. / 12., -16. / 12., 5. / 12.},
	{55. / 24., -59. / 24., 37. / 24., -9. / 24.},
}

// Scheme is a GLM integration scheme of fixed maximum order.
type Scheme struct {
	Order int
}

func NewScheme(order int) (s *Scheme) {
	if order < 1 || order > 4 {
		panic(fmt.Errorf("integration order must be in [1,4], have %d", order))
	}
	return &Scheme{Order: order}
}

// Solution is the opaque integration state of one field group: the
// current solution in stage slot 0 and the retained right-hand-side
// history in the remaining slots, most recent first.
type Solution struct {
	time  float64
	steps int
	V     [][][]float64 // V[stage][variable][point]

	u, rhs [][]float64 // work vectors
}

// InitializeScheme creates the integration state for a field group,
// copying the initial field values into stage slot 0.
func (s *Scheme) InitializeScheme(dt float64, fields [][]float64, time float64, ops Operators) (soln *Solution) {
	_ = dt
	_ = ops
	soln = &Solution{time: time}
	soln.V = make([][][]float64, s.Order)
	for m := range soln.V {
		soln.V[m] = cloneVector(fields)
		if m > 0 {
			for _, v := range soln.V[m] {
				for i := range v {
					v[i] = 0
				}
			}
		}
	}
	soln.u = cloneVector(fields)
	soln.rhs = cloneVector(fields)
	return
}

// TimeIntegrate advances the solution one step of size dt and returns
// the new field values. The returned slices alias the internal stage 0
// storage, matching the container-wrapper usage of the caller.
func (s *Scheme) TimeIntegrate(dt float64, soln *Solution, ops Operators) [][]float64 {
	var (
		nvar  = len(soln.V[0])
		order = soln.steps + 1
	)
	if order > s.Order {
		order = s.Order
	}
	b := abCoeffs[order-1]

	ops.OdeRHS(soln.V[0], soln.rhs, soln.time)

	for n := 0; n < nvar; n++ {
		u, u0, rhs := soln.u[n], soln.V[0][n], soln.rhs[n]
		for i := range u {
			u[i] = u0[i] + dt*b[0]*rhs[i]
		}
		for j := 1; j < order; j++ {
			hist := soln.V[j][n]
			for i := range u {
				u[i] += dt * b[j] * hist[i]
			}
		}
	}

	// Rotate the RHS history: oldest discarded, newest into slot 1.
	if s.Order > 1 {
		oldest := soln.V[s.Order-1]
		for m := s.Order - 1; m > 1; m-- {
			soln.V[m] = soln.V[m-1]
		}
		soln.V[1] = oldest
		for n := 0; n < nvar; n++ {
			copy(soln.V[1][n], soln.rhs[n])
		}
	}

	ops.Projection(soln.u, soln.V[0], soln.time+dt)

	soln.time += dt
	soln.steps++
	return soln.V[0]
}

// UpdateSolutionVector exposes the internal stage storage for callers
// that refresh stages in place, such as the sub-stepping scheme.
func (soln *Solution) UpdateSolutionVector() [][][]float64 { return soln.V }

// SetSolVector overwrites stage slot m with the given field values.
func (soln *Solution) SetSolVector(m int, fields [][]float64) {
	if m < 0 || m >= len(soln.V) {
		panic(fmt.Errorf("stage index %d out of range [0,%d)", m, len(soln.V)))
	}
	for n := range soln.V[m] {
		copy(soln.V[m][n], fields[n])
	}
}

func cloneVector(fields [][]float64) (out [][]float64) {
	out = make([][]float64, len(fields))
	for n := range fields {
		out[n] = make([]float64, len(fields[n]))
		copy(out[n], fields[n])
	}
	return
}
