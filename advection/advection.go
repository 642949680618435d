// Package advection provides the nonlinear advection operators of the
// incompressible solver, selected once at setup from the configured
// advective type.
package advection

import (
	"fmt"
	"strings"

	"github.com/Ehs-Dhs/Nektar/fields"
)

// Advector evaluates the advection term (V . grad) of each transported
// variable, given the advecting velocity in physical space. A caller
// supplied workspace of at least nq*dim points is used for derivatives
// when present.
type Advector interface {
	DoAdvection(flds []fields.Field, velocity [][]float64,
		inarray [][]float64, outarray [][]float64, time float64, wk []float64)
}

// New creates the advection operator registered under the given name.
func New(name string) Advector {
	switch strings.ToLower(name) {
	case "convective":
		return &Convective{}
	case "noadvection":
		return &NoAdvection{}
	case "linearised":
		return &Linearised{}
	default:
		panic(fmt.Errorf("unknown advective type [%s]", name))
	}
}

// NoAdvection zeroes the advection term (Stokes flow).
type NoAdvection struct{}

func (a *NoAdvection) DoAdvection(flds []fields.Field, velocity [][]float64,
	inarray [][]float64, outarray [][]float64, time float64, wk []float64) {
	for i := range outarray {
		for j := range outarray[i] {
			outarray[i][j] = 0
		}
	}
}

// Convective computes the advective form V . grad(q) for each variable.
type Convective struct{}

func (a *Convective) DoAdvection(flds []fields.Field, velocity [][]float64,
	inarray [][]float64, outarray [][]float64, time float64, wk []float64) {
	var (
		ndim  = len(velocity)
		nq    = len(inarray[0])
		deriv []float64
	)
	if len(wk) != 0 {
		if len(wk) < nq {
			panic(fmt.Errorf("workspace is not sufficient: have %d, want >= %d", len(wk), nq))
		}
		deriv = wk[:nq]
	} else {
		deriv = make([]float64, nq)
	}
	for i := range inarray {
		for q := 0; q < nq; q++ {
			outarray[i][q] = 0
		}
		for d := 0; d < ndim; d++ {
			flds[i].PhysDeriv(d, inarray[i], deriv)
			for q := 0; q < nq; q++ {
				outarray[i][q] += velocity[d][q] * deriv[q]
			}
		}
	}
}

// Linearised computes the advection term linearised about a base flow:
// U . grad(q) + v . grad(Q), where U, Q are the base velocity fields
// and v, q the perturbations.
type Linearised struct {
	BaseFlow [][]float64
}

func (a *Linearised) DoAdvection(flds []fields.Field, velocity [][]float64,
	inarray [][]float64, outarray [][]float64, time float64, wk []float64) {
	if a.BaseFlow == nil {
		panic(fmt.Errorf("linearised advection requires a base flow"))
	}
	var (
		ndim  = len(velocity)
		nq    = len(inarray[0])
		deriv = make([]float64, nq)
	)
	for i := range inarray {
		for q := 0; q < nq; q++ {
			outarray[i][q] = 0
		}
		for d := 0; d < ndim; d++ {
			// U . grad(q)
			flds[i].PhysDeriv(d, inarray[i], deriv)
			for q := 0; q < nq; q++ {
				outarray[i][q] += a.BaseFlow[d][q] * deriv[q]
			}
			// v . grad(Q) for the velocity variables
			if i < len(a.BaseFlow) {
				flds[i].PhysDeriv(d, a.BaseFlow[i], deriv)
				for q := 0; q < nq; q++ {
					outarray[i][q] += velocity[d][q] * deriv[q]
				}
			}
		}
	}
}
