package solver

import (
	"fmt"
	"math"

	"github.com/Ehs-Dhs/Nektar/fields"
	"github.com/Ehs-Dhs/Nektar/utils"
)

// cLambda is the spectral element CFL stability constant
// (Karniadakis & Sherwin, p. 317).
const cLambda = 0.2

// SubStepSaveFields rotates the velocity history buffer one slot toward
// higher index and stores the current velocity, freshly backward
// transformed from coefficients, in slot 0. At step 0 every history
// level is initialised with the first snapshot.
func (s *IncNavierStokes) SubStepSaveFields(nstep int) {
	var (
		nvel    = len(s.velocity)
		npts    = s.fields[0].GetTotPoints()
		nblocks = len(s.previousVelFields) / nvel
	)

	for n := 0; n < nvel; n++ {
		save := s.previousVelFields[(nblocks-1)*nvel+n]
		for i := nblocks - 1; i > 0; i-- {
			s.previousVelFields[i*nvel+n] = s.previousVelFields[(i-1)*nvel+n]
		}
		s.previousVelFields[n] = save
	}

	for i := 0; i < nvel; i++ {
		fld := s.fields[s.velocity[i]]
		fld.BwdTrans(fld.GetCoeffs(), fld.UpdatePhys())
		copy(s.previousVelFields[i][:npts], fld.GetPhys())
	}

	if nstep == 0 {
		for n := 0; n < nvel; n++ {
			phys := s.fields[s.velocity[n]].GetPhys()
			for i := 1; i < nblocks; i++ {
				copy(s.previousVelFields[i*nvel+n][:npts], phys)
			}
		}
	}
}

// SubStepAdvance re-solves the advection-only sub-physics of each
// active internal stage of the primary integrator at a finer, CFL
// controlled time resolution, writing the results back into the stage
// slots before the outer integrator consumes them.
func (s *IncNavierStokes) SubStepAdvance(nstep int) {
	var (
		time = s.time
		dt   = s.GetSubstepTimeStep()
	)

	s.subStepCalls++
	nint := s.subStepCalls
	if nint > s.intSteps {
		nint = s.intSteps
	}

	nsubsteps, dt := s.numSubSteps(dt)

	if s.infosteps != 0 && (nstep+1)%s.infosteps == 0 && s.comm.Rank() == 0 {
		fmt.Printf("Sub-integrating using %d steps over Dt = %g (SubStep CFL=%g)\n",
			nsubsteps, s.timestep, s.cflSafetyFactor)
	}

	solutionVector := s.integrationSoln.UpdateSolutionVector()
	for m := 0; m < nint; m++ {
		fields := solutionVector[m]

		subSoln := s.subStepScheme.InitializeScheme(dt, fields, time, s.subStepOps)
		for n := 0; n < nsubsteps; n++ {
			fields = s.subStepScheme.TimeIntegrate(dt, subSoln, s.subStepOps)
		}

		s.integrationSoln.SetSolVector(m, fields)
	}
}

// numSubSteps turns a raw CFL estimate into the inner step count and
// the exact sub-timestep tiling the outer step. The +1 beyond the
// integer quotient is a deliberate safety margin.
func (s *IncNavierStokes) numSubSteps(dt float64) (int, float64) {
	nsubsteps := 1
	if s.timestep > dt {
		nsubsteps = int(s.timestep/dt) + 1
	}
	if minsubsteps := s.session.LoadIntParameter("MinSubSteps", 0); nsubsteps < minsubsteps {
		nsubsteps = minsubsteps
	}
	return nsubsteps, s.timestep / float64(nsubsteps)
}

// SubStepAdvection is the advection-only right hand side used by the
// sub-step integration: the weak advection residual of the velocity
// extrapolated to the sub-time, corrected by the interface penalty flux
// and mapped back to physical space.
func (s *IncNavierStokes) SubStepAdvection(inarray [][]float64, outarray [][]float64, time float64) {
	var (
		nVariables = len(inarray)
		nqtot      = len(inarray[0])
		ncoeffs    = s.fields[0].GetNcoeffs()
		nvel       = len(s.velocity)
	)

	weakAdv := make([][]float64, nVariables)
	for i := range weakAdv {
		weakAdv[i] = make([]float64, ncoeffs)
	}

	velFields := make([][]float64, nvel)
	for i := range velFields {
		velFields[i] = make([]float64, nqtot)
	}
	s.SubStepExtrapolateField(math.Mod(time, s.timestep), velFields)

	s.advObject.DoAdvection(s.fields, velFields, inarray, outarray, time, nil)

	for i := 0; i < nVariables; i++ {
		s.fields[i].IProductWRTBase(outarray[i], weakAdv[i])
		// negation required for consistency with the sign convention of
		// the advection operator
		utils.Neg(weakAdv[i])
	}

	s.AddAdvectionPenaltyFlux(velFields, inarray, weakAdv)

	for i := 0; i < nVariables; i++ {
		utils.Neg(weakAdv[i])
		s.fields[i].MultiplyByElmtInvMass(weakAdv[i], weakAdv[i])
		s.fields[i].BwdTrans(weakAdv[i], outarray[i])
	}

	s.addBodyForce(outarray)
}

// SubStepProjection is the identity projection of the advection-only
// sub-integration.
func (s *IncNavierStokes) SubStepProjection(inarray [][]float64, outarray [][]float64, time float64) {
	if len(inarray) != len(outarray) {
		panic(fmt.Errorf("inarray and outarray of different sizes"))
	}
	for i := range inarray {
		copy(outarray[i], inarray[i])
	}
}

// SubStepExtrapolateField extrapolates the velocity to offset toff
// within the outer step by Lagrange interpolation over the equally
// spaced history samples {0, -dt, ..., -ord*dt}.
func (s *IncNavierStokes) SubStepExtrapolateField(toff float64, extVel [][]float64) {
	var (
		npts = s.fields[0].GetTotPoints()
		nvel = len(s.velocity)
		ord  = s.intSteps
	)
	if ord > 3 {
		panic(fmt.Errorf("extrapolation weight buffer supports order <= 3, have %d", ord))
	}

	var l [4]float64
	for i := range l {
		l[i] = 1.0
	}
	for i := 0; i <= ord; i++ {
		for j := 0; j <= ord; j++ {
			if i != j {
				l[i] *= float64(j)*s.timestep + toff
				l[i] /= float64(j)*s.timestep - float64(i)*s.timestep
			}
		}
	}

	for i := 0; i < nvel; i++ {
		utils.ScaleTo(extVel[i][:npts], l[0], s.previousVelFields[i][:npts])
		for j := 1; j <= ord; j++ {
			utils.AddScaled(extVel[i][:npts], l[j], s.previousVelFields[j*nvel+i][:npts])
		}
	}
}

// GetSubstepTimeStep computes the largest advection sub-timestep
// keeping every element within the configured CFL safety factor.
func (s *IncNavierStokes) GetSubstepTimeStep() float64 {
	nElement := s.fields[0].GetExpSize()

	velfields := make([][]float64, len(s.velocity))
	for i := range velfields {
		velfields[i] = s.fields[s.velocity[i]].UpdatePhys()
	}
	stdVelocity := s.GetStdVelocity(velfields)

	tstep := make([]float64, nElement)
	for el := 0; el < nElement; el++ {
		order := float64(s.fields[0].GetExp(el).NumModes())
		tstep[el] = s.cflSafetyFactor /
			(stdVelocity[el] * cLambda * (order - 1) * (order - 1))
	}
	return utils.Min(tstep)
}

// GetStdVelocity maps the velocity into each element's reference frame
// through the geometric factors and returns the maximum pointwise
// magnitude per element.
func (s *IncNavierStokes) GetStdVelocity(inarray [][]float64) []float64 {
	if s.expdim < 2 {
		panic(fmt.Errorf("method not implemented for 1D"))
	}

	var (
		nElement = s.fields[0].GetExpSize()
		nvel     = len(inarray)
		stdV     = make([]float64, nElement)
	)

	stdVelocity := make([][]float64, nvel)

	if nvel == 2 {
		for el := 0; el < nElement; el++ {
			var (
				exp     = s.fields[0].GetExp(el)
				nPoints = exp.GetTotPoints()
				offset  = s.fields[0].GetPhysOffset(el)
				gmat    = exp.Geom().Gmat()
			)
			for d := 0; d < nvel; d++ {
				if len(stdVelocity[d]) < nPoints {
					stdVelocity[d] = make([]float64, nPoints)
				}
			}

			if exp.Geom().GType() == fields.Deformed {
				for i := 0; i < nPoints; i++ {
					u, v := inarray[0][offset+i], inarray[1][offset+i]
					stdVelocity[0][i] = gmat[0][i]*u + gmat[2][i]*v
					stdVelocity[1][i] = gmat[1][i]*u + gmat[3][i]*v
				}
			} else {
				for i := 0; i < nPoints; i++ {
					u, v := inarray[0][offset+i], inarray[1][offset+i]
					stdVelocity[0][i] = gmat[0][0]*u + gmat[2][0]*v
					stdVelocity[1][i] = gmat[1][0]*u + gmat[3][0]*v
				}
			}

			for i := 0; i < nPoints; i++ {
				pntVelocity := math.Sqrt(stdVelocity[0][i]*stdVelocity[0][i] +
					stdVelocity[1][i]*stdVelocity[1][i])
				if pntVelocity > stdV[el] {
					stdV[el] = pntVelocity
				}
			}
		}
	} else {
		for el := 0; el < nElement; el++ {
			var (
				exp     = s.fields[0].GetExp(el)
				nPoints = exp.GetTotPoints()
				offset  = s.fields[0].GetPhysOffset(el)
				gmat    = exp.Geom().Gmat()
			)
			for d := 0; d < nvel; d++ {
				if len(stdVelocity[d]) < nPoints {
					stdVelocity[d] = make([]float64, nPoints)
				}
			}

			if exp.Geom().GType() == fields.Deformed {
				for i := 0; i < nPoints; i++ {
					u, v, w := inarray[0][offset+i], inarray[1][offset+i], inarray[2][offset+i]
					stdVelocity[0][i] = gmat[0][i]*u + gmat[3][i]*v + gmat[6][i]*w
					stdVelocity[1][i] = gmat[1][i]*u + gmat[4][i]*v + gmat[7][i]*w
					stdVelocity[2][i] = gmat[2][i]*u + gmat[5][i]*v + gmat[8][i]*w
				}
			} else {
				for i := 0; i < nPoints; i++ {
					u, v, w := inarray[0][offset+i], inarray[1][offset+i], inarray[2][offset+i]
					stdVelocity[0][i] = gmat[0][0]*u + gmat[3][0]*v + gmat[6][0]*w
					stdVelocity[1][i] = gmat[1][0]*u + gmat[4][0]*v + gmat[7][0]*w
					stdVelocity[2][i] = gmat[2][0]*u + gmat[5][0]*v + gmat[8][0]*w
				}
			}

			for i := 0; i < nPoints; i++ {
				pntVelocity := math.Sqrt(stdVelocity[0][i]*stdVelocity[0][i] +
					stdVelocity[1][i]*stdVelocity[1][i] +
					stdVelocity[2][i]*stdVelocity[2][i])
				if pntVelocity > stdV[el] {
					stdV[el] = pntVelocity
				}
			}
		}
	}

	return stdV
}
