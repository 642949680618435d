package fields

// GeomType distinguishes elements whose coordinate map is affine
// (constant Jacobian factors) from curved elements where the factors
// vary per quadrature point.
type GeomType uint8

const (
	Regular GeomType = iota
	Deformed
)

// Geometry exposes the per-element geometric factors: the Jacobian
// determinant and the gmat array of reference-frame derivatives
// d(xi_i)/d(x_j), stored column major as in the expansion library. For
// Regular geometry each gmat row holds a single value; for Deformed it
// holds one value per quadrature point.
type Geometry interface {
	Dim() int
	GType() GeomType
	Jac() []float64
	Gmat() [][]float64
}

// Element is the per-expansion accessor used for local stability
// estimates: point count, polynomial modes per direction and geometry.
type Element interface {
	GetTotPoints() int
	NumModes() int
	Geom() Geometry
}

// Trace is the interface-space operator set of a field's trace.
type Trace interface {
	// Upwind selects fwd or bwd at each trace point based on the sign
	// of the normal velocity Vn.
	Upwind(Vn, fwd, bwd, flux []float64)
}

// BndCondition is one boundary region of a field. The user defined tag
// is empty for plain Dirichlet/Neumann conditions, "TimeDependent" for
// conditions re-evaluated each step, or "I" for the special inflow
// treatment.
type BndCondition struct {
	UserDefinedTag string
	Eval           func(time float64) float64

	value float64
}

func (b *BndCondition) UserDefined() string { return b.UserDefinedTag }
func (b *BndCondition) Value() float64      { return b.value }

// Field is the state container contract the solver consumes: a scalar
// field with dual physical/coefficient storage, transforms between the
// two, trace extraction, and homogeneous (Fourier) direction support.
// Validity of the two buffers is tracked with manual flags toggled by
// the caller around every transform.
type Field interface {
	GetPhys() []float64
	UpdatePhys() []float64
	SetPhys(v []float64)
	GetCoeffs() []float64
	UpdateCoeffs() []float64

	GetPhysState() bool
	SetPhysState(state bool)
	GetWaveSpace() bool
	SetWaveSpace(wavespace bool)

	FwdTransIterPerExp(in, out []float64)
	BwdTrans(in, out []float64)
	HomogeneousFwdTrans(in, out []float64)
	HomogeneousBwdTrans(in, out []float64)
	MultiplyByElmtInvMass(in, out []float64)
	IProductWRTBase(in, out []float64)
	PhysDeriv(dir int, in, out []float64)

	GetNcoeffs() int
	GetTotPoints() int
	GetExpSize() int
	GetExp(el int) Element
	GetPhysOffset(el int) int

	GetTraceNpoints() int
	GetTraceNormals() [][]float64
	GetTrace() Trace
	ExtractTracePhys(phys, trace []float64)
	GetFwdBwdTracePhys(phys, fwd, bwd []float64)
	AddFwdBwdTraceIntegral(fwd, bwd, outarray []float64)

	HomogeneousEnergy() []float64
	L2() float64

	GetBndConditions() []*BndCondition
	EvaluateBoundaryConditions(time float64)
}
