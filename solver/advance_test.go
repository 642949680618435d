package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ehs-Dhs/Nektar/comm"
	"github.com/Ehs-Dhs/Nektar/fields"
	"github.com/Ehs-Dhs/Nektar/filters"
)

func TestAdvanceInTimeCheckpoints(t *testing.T) {
	// Two Stokes steps with a checkpoint cadence of one: the in-loop
	// write skips step 0, the final write lands after the loop, so the
	// writer runs exactly twice with nchk 0 then 1.
	sess := testSession(t, `
Variables: [u, v, p]
SolverInfo:
  EQTYPE: UnsteadyStokes
Parameters:
  Kinvis: 1.0
  IO_CheckSteps: 1
`)
	chk := &CountingCheckpoint{}
	s := New(Config{
		Session:    sess,
		Comm:       comm.NewSerial(),
		Fields:     testFields(3, 2, 2, 3),
		Variables:  []string{"u", "v", "p"},
		TimeStep:   0.001,
		IntSteps:   1,
		Checkpoint: chk,
	})

	for i := range s.fields {
		phys := s.fields[i].UpdatePhys()
		for q := range phys {
			phys[q] = float64(i + 1)
		}
	}

	s.AdvanceInTime(2)

	assert.Equal(t, []int{0, 1}, chk.Calls)
	assert.Equal(t, 2, s.Nchk())
	for i := range s.fields {
		assert.True(t, s.fields[i].GetPhysState())
	}
	// Stokes flow with identity projection: the state is unchanged.
	assert.InDelta(t, 1.0, s.fields[0].GetPhys()[0], 1e-12)
	assert.InDelta(t, 0.002, s.Time(), 1e-12)
}

func TestAdvanceInTimeSteadyStateExit(t *testing.T) {
	// A Stokes run with zero right hand side converges immediately: the
	// steady state check at step 1 breaks the loop before step 4.
	sess := testSession(t, `
Variables: [u, v, p]
SolverInfo:
  EQTYPE: UnsteadyStokes
Parameters:
  Kinvis: 1.0
  SteadyStateSteps: 2
  SteadyStateTol: 1.0e-6
`)
	chk := &CountingCheckpoint{}
	s := New(Config{
		Session:    sess,
		Comm:       comm.NewSerial(),
		Fields:     testFields(3, 2, 2, 3),
		Variables:  []string{"u", "v", "p"},
		TimeStep:   0.001,
		IntSteps:   1,
		Checkpoint: chk,
	})

	s.AdvanceInTime(100)

	// The zero solution matches previousL2 at the first check (n=1).
	assert.InDelta(t, 0.002, s.Time(), 1e-12)
	assert.Empty(t, chk.Calls) // checksteps unset: no checkpoints at all
}

func TestAdvanceInTimeHomogeneous(t *testing.T) {
	// The homogeneous run transforms to wave space up front, round
	// trips through physical space for each checkpoint, and restores
	// physical values at the end.
	sess := testSession(t, `
Variables: [u, v, p]
SolverInfo:
  EQTYPE: UnsteadyStokes
Parameters:
  Kinvis: 1.0
  IO_CheckSteps: 2
`)
	nz := 4
	flds := make([]fields.Field, 3)
	for i := range flds {
		flds[i] = fields.NewExpListHomogeneous(2, 2, 3, nz)
	}
	chk := &CountingCheckpoint{}
	s := New(Config{
		Session:         sess,
		Comm:            comm.NewSerial(),
		Fields:          flds,
		Variables:       []string{"u", "v", "p"},
		TimeStep:        0.001,
		IntSteps:        1,
		HomogeneousType: Homogeneous1D,
		NpointsZ:        nz,
		Checkpoint:      chk,
	})

	np2d := 2 * 2 * 3 * 3
	before := make([]float64, flds[0].GetTotPoints())
	phys := flds[0].UpdatePhys()
	for q := range phys {
		z := q / np2d
		phys[q] = 1 + 0.5*float64(z%2) + 0.01*float64(q%7)
		before[q] = phys[q]
	}
	// Coefficients back the wave-space state used by the checkpoint
	// round trip.
	for i := range flds {
		flds[i].HomogeneousFwdTrans(flds[i].GetPhys(), flds[i].UpdateCoeffs())
	}

	s.AdvanceInTime(2)

	assert.Equal(t, []int{0, 1}, chk.Calls)
	assert.True(t, flds[0].GetPhysState())
	assert.False(t, flds[0].GetWaveSpace())
	// Zero RHS run: physical values survive the wave-space round trip.
	after := flds[0].GetPhys()
	for q := range before {
		assert.InDelta(t, before[q], after[q], 1e-10)
	}
}

func TestAdvanceInTimeFilters(t *testing.T) {
	sess := testSession(t, `
Variables: [u, v, p]
SolverInfo:
  EQTYPE: UnsteadyStokes
Parameters:
  Kinvis: 1.0
`)
	rec := &recordingFilter{}
	s := New(Config{
		Session:   sess,
		Comm:      comm.NewSerial(),
		Fields:    testFields(3, 2, 2, 3),
		Variables: []string{"u", "v", "p"},
		TimeStep:  0.001,
		IntSteps:  1,
		Filters:   []filters.Filter{rec},
	})

	uPhys := s.fields[0].UpdatePhys()
	for q := range uPhys {
		uPhys[q] = 2
	}
	pCoeffs := s.fields[2].UpdateCoeffs()
	for q := range pCoeffs {
		pCoeffs[q] = 7
	}

	s.AdvanceInTime(3)

	assert.Equal(t, 1, rec.initialised)
	assert.Equal(t, 3, rec.updates)
	assert.Equal(t, 1, rec.finalised)

	// The filter-cadence transform covers the convective fields only:
	// velocity coefficients are refreshed, pressure is left alone.
	assert.NotEqual(t, 0.0, s.fields[0].GetCoeffs()[0])
	for q := range pCoeffs {
		assert.Equal(t, 7.0, pCoeffs[q])
	}
}

type recordingFilter struct {
	initialised, updates, finalised int
}

func (r *recordingFilter) Initialise(flds []fields.Field, time float64) { r.initialised++ }
func (r *recordingFilter) Update(flds []fields.Field, time float64)     { r.updates++ }
func (r *recordingFilter) Finalise(flds []fields.Field, time float64)   { r.finalised++ }
