// Package solver implements the time-advancement core of the
// incompressible Navier-Stokes equations on a spectral/hp element
// discretization: the outer time loop, CFL controlled sub-stepping of
// the advection term, modal energy diagnostics and steady state
// detection, for the Stokes, Oseen, Navier-Stokes, linearised NS and
// viscoelastic equation types.
package solver

import (
	"fmt"
	"os"
	"strings"

	"github.com/Ehs-Dhs/Nektar/advection"
	"github.com/Ehs-Dhs/Nektar/comm"
	"github.com/Ehs-Dhs/Nektar/fields"
	"github.com/Ehs-Dhs/Nektar/filters"
	"github.com/Ehs-Dhs/Nektar/session"
	"github.com/Ehs-Dhs/Nektar/timeint"
	"github.com/Ehs-Dhs/Nektar/utils"
)

type EquationType uint8

const (
	NoEquationType EquationType = iota
	SteadyStokes
	SteadyOseen
	SteadyNavierStokes
	SteadyLinearisedNS
	UnsteadyStokes
	UnsteadyLinearisedNS
	UnsteadyNavierStokes
	UnsteadyViscoElastic
	equationTypeSize
)

var equationTypeNames = map[EquationType]string{
	NoEquationType:       "NoType",
	SteadyStokes:         "SteadyStokes",
	SteadyOseen:          "SteadyOseen",
	SteadyNavierStokes:   "SteadyNavierStokes",
	SteadyLinearisedNS:   "SteadyLinearisedNS",
	UnsteadyStokes:       "UnsteadyStokes",
	UnsteadyLinearisedNS: "UnsteadyLinearisedNS",
	UnsteadyNavierStokes: "UnsteadyNavierStokes",
	UnsteadyViscoElastic: "UnsteadyViscoElastic",
}

func (e EquationType) String() string { return equationTypeNames[e] }

type ViscoElasticType uint8

const (
	NoViscoElasticType ViscoElasticType = iota
	OldroydB
	HomogeneousBloodModel
	viscoElasticTypeSize
)

var viscoElasticTypeNames = map[ViscoElasticType]string{
	NoViscoElasticType:    "NoType",
	OldroydB:              "OldroydB",
	HomogeneousBloodModel: "HomogeneousBloodModel",
}

func (v ViscoElasticType) String() string { return viscoElasticTypeNames[v] }

type HomogeneousType uint8

const (
	NotHomogeneous HomogeneousType = iota
	Homogeneous1D
	Homogeneous2D
)

// StokesSolver is the projection operator of the primary field group:
// given the advection-updated state it produces the divergence-free
// velocity and pressure. The linear solve strategy behind it is an
// external collaborator.
type StokesSolver interface {
	Solve(inarray [][]float64, outarray [][]float64, time float64)
}

// CopyProjection treats the viscous/pressure solve as an identity,
// which is the pure-advection limit. Useful standalone for testing the
// advance machinery.
type CopyProjection struct{}

func (CopyProjection) Solve(inarray [][]float64, outarray [][]float64, time float64) {
	for i := range inarray {
		copy(outarray[i], inarray[i])
	}
}

// CheckpointWriter persists the field state at a checkpoint cadence.
type CheckpointWriter interface {
	Write(nchk int, flds []fields.Field, variables []string, time float64) error
}

// Config collects everything needed to build an IncNavierStokes
// instance. Session, Comm and Fields are mandatory.
type Config struct {
	Session   *session.Session
	Comm      comm.Comm
	Fields    []fields.Field
	Variables []string
	Forces    []fields.Field

	TimeStep        float64
	IntSteps        int // GLM integration order, 1..4
	SpaceDim        int
	ExpDim          int
	CFLSafetyFactor float64
	SubStepping     bool

	HomogeneousType HomogeneousType
	NpointsZ        int
	SingleMode      bool
	HalfMode        bool

	BaseFlow [][]float64 // linearised NS only

	Checkpoint   CheckpointWriter
	StokesSolver StokesSolver
	Filters      []filters.Filter
}

// IncNavierStokes advances a coupled velocity/pressure (and optionally
// viscoelastic stress) state in time.
type IncNavierStokes struct {
	session *session.Session
	comm    comm.Comm

	fields    []fields.Field
	variables []string
	forces    []fields.Field

	velocity          []int
	spacedim          int
	expdim            int
	nConvectiveFields int
	nStressFields     int

	equationType EquationType
	viscoType    ViscoElasticType
	advObject    advection.Advector
	stressModel  StressModel
	stokesSolver StokesSolver

	timestep float64
	time     float64
	intSteps int

	scheme        *timeint.Scheme
	subStepScheme *timeint.Scheme

	integrationOps  timeint.Operators
	stressOps       timeint.Operators
	aggregateOps    timeint.Operators
	subStepOps      timeint.Operators
	integrationSoln *timeint.Solution
	stressSoln      *timeint.Solution
	aggregateSoln   *timeint.Solution

	subStepping       bool
	cflSafetyFactor   float64
	previousVelFields [][]float64
	subStepCalls      int // warm-up counter for internal stage refresh

	infosteps        int
	energysteps      int
	checksteps       int
	steadyStateSteps int
	steadyStateTol   float64
	previousL2       float64
	nchk             int

	kinvis, Re, Rmu, We   float64
	WeInf, etaN, etaInf   float64
	ReC, ReM1, ReM2, ReM3 float64
	ReM4, Rep             float64

	homogeneousType HomogeneousType
	npointsZ        int
	singleMode      bool
	halfMode        bool

	filters    []filters.Filter
	checkpoint CheckpointWriter
	mdlFile    *os.File
}

var velIDs = []string{"u", "v", "w"}

func New(cfg Config) (s *IncNavierStokes) {
	if cfg.Session == nil || cfg.Comm == nil || len(cfg.Fields) == 0 {
		panic(fmt.Errorf("solver requires a session, a communicator and at least one field"))
	}
	s = &IncNavierStokes{
		session:         cfg.Session,
		comm:            cfg.Comm,
		fields:          cfg.Fields,
		variables:       cfg.Variables,
		forces:          cfg.Forces,
		timestep:        cfg.TimeStep,
		intSteps:        cfg.IntSteps,
		spacedim:        cfg.SpaceDim,
		expdim:          cfg.ExpDim,
		subStepping:     cfg.SubStepping,
		homogeneousType: cfg.HomogeneousType,
		npointsZ:        cfg.NpointsZ,
		singleMode:      cfg.SingleMode,
		halfMode:        cfg.HalfMode,
		filters:         cfg.Filters,
		checkpoint:      cfg.Checkpoint,
		stokesSolver:    cfg.StokesSolver,
		cflSafetyFactor: cfg.CFLSafetyFactor,
	}
	if s.spacedim == 0 {
		s.spacedim = 2
	}
	if s.expdim == 0 {
		s.expdim = s.spacedim
	}
	if s.intSteps == 0 {
		s.intSteps = 1
	}
	if s.checkpoint == nil {
		s.checkpoint = &YAMLCheckpoint{Name: cfg.Session.Name()}
	}
	if s.stokesSolver == nil {
		s.stokesSolver = CopyProjection{}
	}

	s.setUpVelocityMap()
	s.setUpEquationType()
	s.setUpCoefficients()
	s.setUpAdvectionOperator(cfg.BaseFlow)
	s.setUpIntegration()
	return
}

// setUpVelocityMap points the velocity index array at the first
// spacedim variables named u, v, w.
func (s *IncNavierStokes) setUpVelocityMap() {
	s.velocity = make([]int, s.spacedim)
	for i := 0; i < s.spacedim; i++ {
		found := false
		for j, v := range s.variables {
			if strings.EqualFold(velIDs[i], v) {
				s.velocity[i] = j
				found = true
				break
			}
		}
		if !found {
			panic(fmt.Errorf("failed to find field: %s", velIDs[i]))
		}
	}
	// Velocity indices must be contiguous and one per spatial dimension.
	for i := 1; i < s.spacedim; i++ {
		if s.velocity[i] != s.velocity[i-1]+1 {
			panic(fmt.Errorf("velocity fields are not contiguous in the variable list"))
		}
	}
	s.nConvectiveFields = s.spacedim
}

func (s *IncNavierStokes) setUpEquationType() {
	var i EquationType
	for i = 0; i < equationTypeSize; i++ {
		if s.session.MatchSolverInfo("EQTYPE", equationTypeNames[i]) {
			s.equationType = i
			break
		}
	}
	if i == equationTypeSize {
		panic(fmt.Errorf("EQTYPE not found in SOLVERINFO section"))
	}

	switch s.equationType {
	case SteadyStokes, SteadyOseen, SteadyNavierStokes, SteadyLinearisedNS:
		// no unsteady setup
	case UnsteadyNavierStokes, UnsteadyStokes, UnsteadyLinearisedNS, UnsteadyViscoElastic:
		s.infosteps = s.session.LoadIntParameter("IO_InfoSteps", 0)
		s.energysteps = s.session.LoadIntParameter("IO_EnergySteps", 0)
		s.checksteps = s.session.LoadIntParameter("IO_CheckSteps", 0)
		s.steadyStateSteps = s.session.LoadIntParameter("SteadyStateSteps", 0)
		s.steadyStateTol = s.session.LoadParameter("SteadyStateTol", 1e-6)

		if s.energysteps != 0 && s.comm.Rank() == 0 {
			mdlname := s.session.Name() + ".mdl"
			fp, err := os.Create(mdlname)
			if err != nil {
				panic(fmt.Errorf("unable to open energy file [%s]: %v", mdlname, err))
			}
			s.mdlFile = fp
		}

		// Check that every user defined boundary condition is one we
		// implement.
		for _, bc := range s.fields[0].GetBndConditions() {
			switch bc.UserDefined() {
			case "", "TimeDependent", "I":
			default:
				panic(fmt.Errorf("unknown USERDEFINEDTYPE boundary condition"))
			}
		}
	default:
		panic(fmt.Errorf("unknown or undefined equation type"))
	}

	if s.equationType == UnsteadyViscoElastic {
		var i ViscoElasticType
		for i = 0; i < viscoElasticTypeSize; i++ {
			if s.session.MatchSolverInfo("VISELTYPE", viscoElasticTypeNames[i]) {
				s.viscoType = i
				break
			}
		}
		if i == viscoElasticTypeSize {
			panic(fmt.Errorf("VISELTYPE not found in SOLVERINFO section"))
		}

		nAux := 1 // pressure
		if s.viscoType == HomogeneousBloodModel {
			nAux++ // aggregate size field
		}
		s.nStressFields = len(s.fields) - s.spacedim - nAux
		if s.nStressFields < 1 {
			panic(fmt.Errorf("viscoelastic run requires stress fields, have %d variables", len(s.fields)))
		}
	}
}

func (s *IncNavierStokes) setUpCoefficients() {
	s.kinvis = s.session.LoadParameter("Kinvis", 1)
	s.Re = s.session.LoadParameter("Reynolds", 1)
	s.Rmu = s.session.LoadParameter("Rmu", 1)
	s.We = s.session.LoadParameter("Weissenberg", 1)
	if s.viscoType == HomogeneousBloodModel {
		s.WeInf = s.session.LoadParameter("WeissenbergInf", 1)
		s.etaN = s.session.LoadParameter("etaN", 1)
		s.etaInf = s.session.LoadParameter("etaInf", 1)
	}

	s.ReC = 1.0
	s.ReM1 = 1.0
	s.ReM2 = s.Rmu / s.Re
	s.ReM3 = 1.0 / s.Re
	s.ReM4 = 1 - s.Rmu
	s.Rep = 1.0 / s.Re // coefficient of grad p
}

func (s *IncNavierStokes) setUpAdvectionOperator(baseFlow [][]float64) {
	switch s.equationType {
	case UnsteadyNavierStokes, SteadyNavierStokes, UnsteadyViscoElastic:
		convectiveType := "Convective"
		if s.session.DefinesTag("AdvectiveType") {
			convectiveType = s.session.GetTag("AdvectiveType")
		}
		s.advObject = advection.New(convectiveType)
	case UnsteadyLinearisedNS:
		convectiveType := "Linearised"
		if s.session.DefinesTag("AdvectiveType") {
			convectiveType = s.session.GetTag("AdvectiveType")
		}
		adv := advection.New(convectiveType)
		if lin, ok := adv.(*advection.Linearised); ok {
			lin.BaseFlow = baseFlow
		}
		s.advObject = adv
	case UnsteadyStokes:
		s.advObject = advection.New("NoAdvection")
	}

	if s.equationType == UnsteadyViscoElastic {
		switch s.viscoType {
		case OldroydB:
			s.stressModel = newOldroydB(s)
		case HomogeneousBloodModel:
			s.stressModel = newBloodModel(s)
		default:
			panic(fmt.Errorf("unknown viscoelastic model type"))
		}
	}
}

func (s *IncNavierStokes) setUpIntegration() {
	s.scheme = timeint.NewScheme(s.intSteps)
	s.subStepScheme = timeint.NewScheme(s.intSteps)
	if s.cflSafetyFactor == 0 {
		s.cflSafetyFactor = s.session.LoadParameter("SubStepCFL", 0.5)
	}

	if s.subStepping {
		nvel := len(s.velocity)
		npts := s.fields[0].GetTotPoints()
		s.previousVelFields = make([][]float64, (s.intSteps+1)*nvel)
		for i := range s.previousVelFields {
			s.previousVelFields[i] = make([]float64, npts)
		}
	}

	s.integrationOps = timeint.Operators{
		OdeRHS:     s.evaluateAdvectionSetPressureBCs,
		Projection: s.solveUnsteadyStokesSystem,
	}
	s.subStepOps = timeint.Operators{
		OdeRHS:     s.SubStepAdvection,
		Projection: s.SubStepProjection,
	}
	if s.equationType == UnsteadyViscoElastic {
		s.stressOps = timeint.Operators{
			OdeRHS:     s.stressModel.StressRHS,
			Projection: s.projectionCopy,
		}
		if s.viscoType == HomogeneousBloodModel {
			s.aggregateOps = timeint.Operators{
				OdeRHS:     s.stressModel.(*bloodModel).AggregateRHS,
				Projection: s.projectionCopy,
			}
		}
	}
}

// evaluateAdvectionSetPressureBCs is the ODE right hand side of the
// primary field group: minus the advection term plus any body force,
// with the time dependent boundary conditions refreshed first.
func (s *IncNavierStokes) evaluateAdvectionSetPressureBCs(inarray [][]float64, outarray [][]float64, time float64) {
	s.SetBoundaryConditions(time)
	s.EvaluateAdvectionTerms(inarray, outarray, nil)
	for i := range outarray {
		utils.Neg(outarray[i])
	}
	s.addBodyForce(outarray)
}

func (s *IncNavierStokes) solveUnsteadyStokesSystem(inarray [][]float64, outarray [][]float64, time float64) {
	s.stokesSolver.Solve(inarray, outarray, time)
}

func (s *IncNavierStokes) projectionCopy(inarray [][]float64, outarray [][]float64, time float64) {
	for i := range inarray {
		copy(outarray[i], inarray[i])
	}
}

// EvaluateAdvectionTerms computes N(V) for all convective fields using
// the velocity variables of inarray. A caller supplied workspace of at
// least nq*nvel points is used for derivatives when present.
func (s *IncNavierStokes) EvaluateAdvectionTerms(inarray [][]float64, outarray [][]float64, wk []float64) {
	var (
		nqtot  = s.fields[0].GetTotPoints()
		velDim = len(s.velocity)
		deriv  []float64
	)
	velocity := make([][]float64, velDim)
	for i := 0; i < velDim; i++ {
		velocity[i] = inarray[s.velocity[i]]
	}
	if len(wk) != 0 {
		if len(wk) < nqtot*velDim {
			panic(fmt.Errorf("workspace is not sufficient: have %d, want >= %d", len(wk), nqtot*velDim))
		}
		deriv = wk
	} else {
		deriv = make([]float64, nqtot*velDim)
	}
	s.advObject.DoAdvection(s.fields, velocity, inarray, outarray, s.time, deriv)
}

// SetBoundaryConditions re-evaluates any time dependent boundary
// condition of every field at the given time.
func (s *IncNavierStokes) SetBoundaryConditions(time float64) {
	for _, f := range s.fields {
		for _, bc := range f.GetBndConditions() {
			if bc.UserDefined() == "TimeDependent" {
				f.EvaluateBoundaryConditions(time)
			}
		}
	}
}

func (s *IncNavierStokes) addBodyForce(outarray [][]float64) {
	if !s.session.DefinesFunction("BodyForce") || len(s.forces) == 0 {
		return
	}
	if s.singleMode || s.halfMode {
		for i := 0; i < s.nConvectiveFields; i++ {
			s.forces[i].SetWaveSpace(true)
			s.forces[i].BwdTrans(s.forces[i].GetCoeffs(), s.forces[i].UpdatePhys())
		}
	}
	nqtot := s.fields[0].GetTotPoints()
	for i := 0; i < s.nConvectiveFields; i++ {
		utils.Add(outarray[i][:nqtot], s.forces[i].GetPhys()[:nqtot])
	}
}

// Time returns the current solver time.
func (s *IncNavierStokes) Time() float64 { return s.time }

// EquationType returns the configured equation type.
func (s *IncNavierStokes) EquationType() EquationType { return s.equationType }

