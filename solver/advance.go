package solver

import (
	"fmt"
)

// AdvanceInTime advances the coupled field state nsteps outer steps, or
// until the steady state detector fires. Diagnostics, checkpoints and
// filters run at their configured cadences.
func (s *IncNavierStokes) AdvanceInTime(nsteps int) {
	var (
		nfields = len(s.fields)
		nconv   = s.nConvectiveFields
	)

	// Set up a wrapper around the fields' physical storage for the
	// integrators to work on.
	fieldsPhys := make([][]float64, nconv)
	for i := 0; i < nconv; i++ {
		fieldsPhys[i] = s.fields[i].UpdatePhys()
	}

	// In a Fourier homogeneous expansion the run is carried out in wave
	// space: transform everything forward and flag the physical storage
	// as stale.
	if s.homogeneousType != NotHomogeneous {
		for i := 0; i < nfields; i++ {
			s.fields[i].HomogeneousFwdTrans(s.fields[i].GetPhys(), s.fields[i].UpdatePhys())
			s.fields[i].SetWaveSpace(true)
			s.fields[i].SetPhysState(false)
		}
	}

	s.integrationSoln = s.scheme.InitializeScheme(s.timestep, fieldsPhys, s.time, s.integrationOps)

	var stressPhys, aggregatePhys [][]float64
	if s.equationType == UnsteadyViscoElastic {
		stressPhys = make([][]float64, s.nStressFields)
		for j := 0; j < s.nStressFields; j++ {
			stressPhys[j] = s.fields[s.spacedim+j].UpdatePhys()
		}
		s.stressSoln = s.scheme.InitializeScheme(s.timestep, stressPhys, s.time, s.stressOps)

		if s.viscoType == HomogeneousBloodModel {
			aggregatePhys = [][]float64{s.fields[s.spacedim+s.nStressFields].UpdatePhys()}
			s.aggregateSoln = s.scheme.InitializeScheme(s.timestep, aggregatePhys, s.time, s.aggregateOps)
		}
	}

	for _, f := range s.filters {
		f.Initialise(s.fields, s.time)
	}

	for n := 0; n < nsteps; n++ {
		if s.subStepping {
			s.SubStepSaveFields(n)
			s.SubStepAdvance(n)
		}

		if s.equationType == UnsteadyViscoElastic {
			stressPhys = s.scheme.TimeIntegrate(s.timestep, s.stressSoln, s.stressOps)
			for j := 0; j < s.nStressFields; j++ {
				fld := s.fields[s.spacedim+j]
				fld.SetPhys(stressPhys[j])
				fld.FwdTransIterPerExp(fld.GetPhys(), fld.UpdateCoeffs())
				fld.SetPhysState(true)
			}
			if s.viscoType == HomogeneousBloodModel {
				aggregatePhys = s.scheme.TimeIntegrate(s.timestep, s.aggregateSoln, s.aggregateOps)
				fld := s.fields[s.spacedim+s.nStressFields]
				fld.SetPhys(aggregatePhys[0])
				fld.FwdTransIterPerExp(fld.GetPhys(), fld.UpdateCoeffs())
				fld.SetPhysState(true)
			}
		}

		fieldsPhys = s.scheme.TimeIntegrate(s.timestep, s.integrationSoln, s.integrationOps)
		s.time += s.timestep

		if s.infosteps != 0 && (n+1)%s.infosteps == 0 && s.comm.Rank() == 0 {
			fmt.Printf("Steps: %d\t Time: %g\n", n+1, s.time)
		}

		if s.energysteps != 0 && (n+1)%s.energysteps == 0 {
			s.WriteModalEnergy()
		}

		if s.checksteps != 0 && n != 0 && (n+1)%s.checksteps == 0 {
			if s.homogeneousType != NotHomogeneous {
				// Round trip to physical space for the checkpoint, then
				// back into wave space to carry on.
				for i := 0; i < nfields; i++ {
					s.fields[i].SetWaveSpace(false)
					s.fields[i].BwdTrans(s.fields[i].GetCoeffs(), s.fields[i].UpdatePhys())
					s.fields[i].SetPhysState(true)
				}
				s.writeCheckpoint()
				for i := 0; i < nfields; i++ {
					s.fields[i].SetWaveSpace(true)
					s.fields[i].HomogeneousFwdTrans(s.fields[i].GetPhys(), s.fields[i].UpdatePhys())
					s.fields[i].SetPhysState(false)
				}
			} else {
				for i := 0; i < nconv; i++ {
					s.fields[i].SetPhys(fieldsPhys[i])
					s.fields[i].SetPhysState(true)
				}
				s.writeCheckpoint()
			}
		}

		if s.steadyStateSteps != 0 && n != 0 && (n+1)%s.steadyStateSteps == 0 {
			if s.CalcSteadyState() {
				if s.comm.Rank() == 0 {
					fmt.Printf("Reached Steady State to tolerance %g\n", s.steadyStateTol)
				}
				break
			}
		}

		if len(s.filters) > 0 {
			for i := 0; i < nconv; i++ {
				s.fields[i].FwdTransIterPerExp(fieldsPhys[i], s.fields[i].UpdateCoeffs())
				s.fields[i].SetPhysState(false)
			}
			for _, f := range s.filters {
				f.Update(s.fields, s.time)
			}
		}
	}

	// Restore the physical storage: inverse transform out of wave space,
	// or copy the final integrator state back.
	if s.homogeneousType != NotHomogeneous {
		for i := 0; i < nfields; i++ {
			s.fields[i].SetWaveSpace(false)
			s.fields[i].BwdTrans(s.fields[i].GetCoeffs(), s.fields[i].UpdatePhys())
			s.fields[i].SetPhysState(true)
		}
	} else {
		for i := 0; i < nconv; i++ {
			s.fields[i].SetPhys(fieldsPhys[i])
		}
		for i := 0; i < nfields; i++ {
			s.fields[i].SetPhysState(true)
		}
	}

	if s.checksteps != 0 {
		s.writeCheckpoint()
	}

	if s.mdlFile != nil {
		s.mdlFile.Close()
		s.mdlFile = nil
	}

	for _, f := range s.filters {
		f.Finalise(s.fields, s.time)
	}
}

func (s *IncNavierStokes) writeCheckpoint() {
	if err := s.checkpoint.Write(s.nchk, s.fields, s.variables, s.time); err != nil {
		panic(fmt.Errorf("checkpoint %d failed: %v", s.nchk, err))
	}
	s.nchk++
}

// Nchk returns the number of checkpoints written so far.
func (s *IncNavierStokes) Nchk() int { return s.nchk }
