package fields

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/Ehs-Dhs/Nektar/utils"
)

// ExpList is a nodal spectral element expansion on a structured
// Kx x Ky quadrilateral mesh of [0,Lx] x [0,Ly], P Gauss-Legendre
// collocation points per direction per element, optionally extended
// with NZ Fourier planes in a homogeneous z direction. The trace space
// covers the vertical (constant x) element interfaces, including the
// two x boundaries.
//
// The collocation basis makes the element mass matrix diagonal; the
// assembled inverse mass operator is kept as a sparse matrix.
type ExpList struct {
	Kx, Ky, P  int
	NZ         int // 1 when not homogeneous
	Lx, Ly, Lz float64

	phys, coeffs []float64
	physState    bool
	waveSpace    bool
	homogeneous  bool

	r, w     []float64    // 1D reference nodes/weights
	D        utils.Matrix // 1D differentiation matrix
	massDiag []float64    // per plane, w_i*w_j*J
	invMass  *sparse.CSR

	elements []*quadElement
	bcs      []*BndCondition

	traceNormals [][]float64
	fft          *fourier.FFT
}

type quadElement struct {
	npoints int
	modes   int
	geom    *quadGeom
}

func (e *quadElement) GetTotPoints() int { return e.npoints }
func (e *quadElement) NumModes() int     { return e.modes }
func (e *quadElement) Geom() Geometry    { return e.geom }

type quadGeom struct {
	dim   int
	gtype GeomType
	jac   []float64
	gmat  [][]float64
}

func (g *quadGeom) Dim() int           { return g.dim }
func (g *quadGeom) GType() GeomType    { return g.gtype }
func (g *quadGeom) Jac() []float64     { return g.jac }
func (g *quadGeom) Gmat() [][]float64  { return g.gmat }

func NewExpList(Kx, Ky, P int) (e *ExpList) {
	return newExpList(Kx, Ky, P, 1, false)
}

// NewExpListHomogeneous adds NZ equispaced Fourier planes over a unit
// homogeneous length. NZ must be even.
func NewExpListHomogeneous(Kx, Ky, P, NZ int) (e *ExpList) {
	if NZ < 2 || NZ%2 != 0 {
		panic(fmt.Errorf("number of homogeneous planes must be even and >= 2, have %d", NZ))
	}
	return newExpList(Kx, Ky, P, NZ, true)
}

func newExpList(Kx, Ky, P, NZ int, homogeneous bool) (e *ExpList) {
	if Kx < 1 || Ky < 1 {
		panic(fmt.Errorf("element counts must be >= 1, have %d x %d", Kx, Ky))
	}
	e = &ExpList{
		Kx: Kx, Ky: Ky, P: P, NZ: NZ,
		Lx: 1, Ly: 1, Lz: 1,
		homogeneous: homogeneous,
	}
	e.r, e.w = GaussLegendre(P)
	e.D = DMatrix(e.r)

	var (
		np2d = Kx * Ky * P * P
		hx   = e.Lx / float64(Kx)
		hy   = e.Ly / float64(Ky)
		jac  = hx * hy / 4
	)
	e.phys = make([]float64, np2d*NZ)
	e.coeffs = make([]float64, np2d*NZ)
	e.massDiag = make([]float64, np2d)

	e.elements = make([]*quadElement, Kx*Ky)
	for el := range e.elements {
		e.elements[el] = &quadElement{
			npoints: P * P,
			modes:   P,
			geom: &quadGeom{
				dim:   2,
				gtype: Regular,
				jac:   []float64{jac},
				gmat: [][]float64{
					{2 / hx}, {0}, {0}, {2 / hy},
				},
			},
		}
		off := el * P * P
		for jp := 0; jp < P; jp++ {
			for ip := 0; ip < P; ip++ {
				e.massDiag[off+ip+P*jp] = e.w[ip] * e.w[jp] * jac
			}
		}
	}
	e.buildInvMass()
	e.buildTraceNormals()
	if homogeneous {
		e.fft = fourier.NewFFT(NZ)
	}
	return
}

func (e *ExpList) buildInvMass() {
	var (
		np2d = len(e.massDiag)
		dok  = sparse.NewDOK(np2d, np2d)
	)
	for i, m := range e.massDiag {
		dok.Set(i, i, 1/m)
	}
	e.invMass = dok.ToCSR()
}

func (e *ExpList) buildTraceNormals() {
	nt := e.GetTraceNpoints()
	e.traceNormals = make([][]float64, 2)
	for d := range e.traceNormals {
		e.traceNormals[d] = make([]float64, nt)
	}
	utils.Fill(e.traceNormals[0], 1) // interfaces are constant-x lines
}

// SetDeformed replaces the affine geometric factors with smoothly
// varying per-point factors, exercising the deformed-geometry branch of
// element stability estimates.
func (e *ExpList) SetDeformed() {
	var (
		P  = e.P
		hx = e.Lx / float64(e.Kx)
		hy = e.Ly / float64(e.Ky)
	)
	for el, elmt := range e.elements {
		g := elmt.geom
		g.gtype = Deformed
		g.jac = make([]float64, P*P)
		g.gmat = make([][]float64, 4)
		for d := range g.gmat {
			g.gmat[d] = make([]float64, P*P)
		}
		for jp := 0; jp < P; jp++ {
			for ip := 0; ip < P; ip++ {
				i := ip + P*jp
				warp := 1 + 0.1*math.Sin(float64(el)+e.r[ip]*e.r[jp])
				g.gmat[0][i] = 2 / hx * warp
				g.gmat[1][i] = 0
				g.gmat[2][i] = 0
				g.gmat[3][i] = 2 / hy / warp
				g.jac[i] = hx * hy / 4
			}
		}
	}
}

func (e *ExpList) AddBndCondition(bc *BndCondition) {
	e.bcs = append(e.bcs, bc)
}

func (e *ExpList) GetPhys() []float64    { return e.phys }
func (e *ExpList) UpdatePhys() []float64 { return e.phys }

func (e *ExpList) SetPhys(v []float64) {
	if len(v) != len(e.phys) {
		panic(fmt.Errorf("SetPhys length mismatch: have %d, want %d", len(v), len(e.phys)))
	}
	copy(e.phys, v)
}

func (e *ExpList) GetCoeffs() []float64    { return e.coeffs }
func (e *ExpList) UpdateCoeffs() []float64 { return e.coeffs }

func (e *ExpList) GetPhysState() bool          { return e.physState }
func (e *ExpList) SetPhysState(state bool)     { e.physState = state }
func (e *ExpList) GetWaveSpace() bool          { return e.waveSpace }
func (e *ExpList) SetWaveSpace(wavespace bool) { e.waveSpace = wavespace }

func (e *ExpList) GetNcoeffs() int   { return len(e.coeffs) }
func (e *ExpList) GetTotPoints() int { return len(e.phys) }
func (e *ExpList) GetExpSize() int   { return len(e.elements) }

func (e *ExpList) GetExp(el int) Element    { return e.elements[el] }
func (e *ExpList) GetPhysOffset(el int) int { return el * e.P * e.P }

func (e *ExpList) np2d() int { return len(e.massDiag) }

// FwdTransIterPerExp projects physical values onto the expansion
// coefficients element by element. With a collocation basis this is a
// per-plane copy; when the expansion is homogeneous and the field is
// not already in wave space the homogeneous direction is transformed
// first.
func (e *ExpList) FwdTransIterPerExp(in, out []float64) {
	if e.homogeneous && !e.waveSpace {
		tmp := make([]float64, len(in))
		e.HomogeneousFwdTrans(in, tmp)
		copy(out, tmp)
		return
	}
	copy(out, in)
}

// BwdTrans evaluates coefficients at the quadrature points. When the
// expansion is homogeneous and the wave-space flag is cleared, the
// stored plane coefficients are also inverse-transformed in z, yielding
// fully physical values.
func (e *ExpList) BwdTrans(in, out []float64) {
	copy(out, in)
	if e.homogeneous && !e.waveSpace {
		e.HomogeneousBwdTrans(out, out)
	}
}

func (e *ExpList) HomogeneousFwdTrans(in, out []float64) {
	e.homogeneousTrans(in, out, true)
}

func (e *ExpList) HomogeneousBwdTrans(in, out []float64) {
	e.homogeneousTrans(in, out, false)
}

// homogeneousTrans applies the forward or inverse real FFT across the
// NZ planes, point by point. Coefficients are packed into NZ reals:
// mean mode, then interleaved re/im pairs, then the Nyquist mode.
func (e *ExpList) homogeneousTrans(in, out []float64, forward bool) {
	if !e.homogeneous {
		panic(fmt.Errorf("homogeneous transform requested on a non-homogeneous expansion"))
	}
	var (
		np2d  = e.np2d()
		nz    = e.NZ
		seq   = make([]float64, nz)
		coeff = make([]complex128, nz/2+1)
	)
	for pt := 0; pt < np2d; pt++ {
		if forward {
			for z := 0; z < nz; z++ {
				seq[z] = in[z*np2d+pt]
			}
			e.fft.Coefficients(coeff, seq)
			out[pt] = real(coeff[0])
			for m := 1; m < nz/2; m++ {
				out[(2*m-1)*np2d+pt] = real(coeff[m])
				out[(2*m)*np2d+pt] = imag(coeff[m])
			}
			out[(nz-1)*np2d+pt] = real(coeff[nz/2])
		} else {
			coeff[0] = complex(in[pt], 0)
			for m := 1; m < nz/2; m++ {
				coeff[m] = complex(in[(2*m-1)*np2d+pt], in[(2*m)*np2d+pt])
			}
			coeff[nz/2] = complex(in[(nz-1)*np2d+pt], 0)
			e.fft.Sequence(seq, coeff)
			for z := 0; z < nz; z++ {
				out[z*np2d+pt] = seq[z] / float64(nz)
			}
		}
	}
}

// HomogeneousEnergy returns the energy in each of the NZ/2 resolved
// Fourier modes of the current wave-space physical data.
func (e *ExpList) HomogeneousEnergy() (energy []float64) {
	if !e.homogeneous {
		panic(fmt.Errorf("homogeneous energy requested on a non-homogeneous expansion"))
	}
	var (
		np2d  = e.np2d()
		nz    = e.NZ
		scale = 1 / float64(nz*nz)
	)
	energy = make([]float64, nz/2)
	for pt := 0; pt < np2d; pt++ {
		m0 := e.phys[pt]
		energy[0] += 0.5 * e.massDiag[pt] * m0 * m0 * scale
		for m := 1; m < nz/2; m++ {
			re := e.phys[(2*m-1)*np2d+pt]
			im := e.phys[(2*m)*np2d+pt]
			energy[m] += 0.5 * e.massDiag[pt] * (re*re + im*im) * scale
		}
	}
	return
}

// IProductWRTBase is the inner product with the test functions; with a
// diagonal mass this is a pointwise weighting, applied plane by plane.
func (e *ExpList) IProductWRTBase(in, out []float64) {
	var (
		np2d = e.np2d()
	)
	for z := 0; z < e.NZ; z++ {
		off := z * np2d
		utils.MulTo(out[off:off+np2d], e.massDiag, in[off:off+np2d])
	}
}

func (e *ExpList) MultiplyByElmtInvMass(in, out []float64) {
	var (
		np2d = e.np2d()
		tmp  = mat.NewVecDense(np2d, nil)
	)
	for z := 0; z < e.NZ; z++ {
		off := z * np2d
		tmp.MulVec(e.invMass, mat.NewVecDense(np2d, in[off:off+np2d]))
		copy(out[off:off+np2d], tmp.RawVector().Data)
	}
}

// PhysDeriv computes the physical derivative in direction dir (0 = x,
// 1 = y) plane by plane, combining reference derivatives with the
// geometric factors of each element.
func (e *ExpList) PhysDeriv(dir int, in, out []float64) {
	if dir < 0 || dir > 1 {
		panic(fmt.Errorf("derivative direction %d not supported", dir))
	}
	var (
		P    = e.P
		np2d = e.np2d()
		dr   = make([]float64, P*P) // d/dxi_1
		ds   = make([]float64, P*P) // d/dxi_2
	)
	for z := 0; z < e.NZ; z++ {
		zoff := z * np2d
		for el, elmt := range e.elements {
			off := e.GetPhysOffset(el)
			u := in[zoff+off : zoff+off+P*P]
			for jp := 0; jp < P; jp++ {
				for ip := 0; ip < P; ip++ {
					var sr, ss float64
					for k := 0; k < P; k++ {
						sr += e.D.At(ip, k) * u[k+P*jp]
						ss += e.D.At(jp, k) * u[ip+P*k]
					}
					dr[ip+P*jp], ds[ip+P*jp] = sr, ss
				}
			}
			g := elmt.geom
			for i := 0; i < P*P; i++ {
				gi := 0
				if g.gtype == Deformed {
					gi = i
				}
				if dir == 0 {
					out[zoff+off+i] = g.gmat[0][gi]*dr[i] + g.gmat[1][gi]*ds[i]
				} else {
					out[zoff+off+i] = g.gmat[2][gi]*dr[i] + g.gmat[3][gi]*ds[i]
				}
			}
		}
	}
}

// L2 returns the discrete L2 norm of the physical values.
func (e *ExpList) L2() float64 {
	var (
		np2d = e.np2d()
		wz   = e.Lz / float64(e.NZ)
		sum  float64
	)
	for z := 0; z < e.NZ; z++ {
		off := z * np2d
		for pt := 0; pt < np2d; pt++ {
			v := e.phys[off+pt]
			sum += e.massDiag[pt] * v * v * wz
		}
	}
	return math.Sqrt(sum)
}

// Trace space: one point per edge node of every constant-x element
// interface, boundaries included, on the leading plane.

func (e *ExpList) GetTraceNpoints() int { return (e.Kx + 1) * e.Ky * e.P }

func (e *ExpList) GetTraceNormals() [][]float64 { return e.traceNormals }

func (e *ExpList) GetTrace() Trace { return upwindTrace{} }

type upwindTrace struct{}

func (upwindTrace) Upwind(Vn, fwd, bwd, flux []float64) {
	for i := range flux {
		if Vn[i] >= 0 {
			flux[i] = fwd[i]
		} else {
			flux[i] = bwd[i]
		}
	}
}

// traceIndex maps (interface line ex, element row iy, edge node jp) to
// the trace point index.
func (e *ExpList) traceIndex(ex, iy, jp int) int {
	return jp + e.P*(iy+e.Ky*ex)
}

func (e *ExpList) elemIndex(ix, iy int) int { return ix + e.Kx*iy }

// edgeValue picks the value of phys at edge node jp of the left or
// right face of element (ix,iy).
func (e *ExpList) edgeValue(phys []float64, ix, iy, jp int, rightFace bool) float64 {
	off := e.GetPhysOffset(e.elemIndex(ix, iy))
	ip := 0
	if rightFace {
		ip = e.P - 1
	}
	return phys[off+ip+e.P*jp]
}

func (e *ExpList) ExtractTracePhys(phys, trace []float64) {
	if len(trace) < e.GetTraceNpoints() {
		panic(fmt.Errorf("trace array too small: have %d, want %d", len(trace), e.GetTraceNpoints()))
	}
	for ex := 0; ex <= e.Kx; ex++ {
		for iy := 0; iy < e.Ky; iy++ {
			for jp := 0; jp < e.P; jp++ {
				var v float64
				if ex > 0 {
					v = e.edgeValue(phys, ex-1, iy, jp, true)
				} else {
					v = e.edgeValue(phys, 0, iy, jp, false)
				}
				trace[e.traceIndex(ex, iy, jp)] = v
			}
		}
	}
}

// GetFwdBwdTracePhys fills the forward (left element) and backward
// (right element) trace values. On the domain boundaries the exterior
// state mirrors the interior unless a boundary condition supplies a
// value.
func (e *ExpList) GetFwdBwdTracePhys(phys, fwd, bwd []float64) {
	for ex := 0; ex <= e.Kx; ex++ {
		for iy := 0; iy < e.Ky; iy++ {
			for jp := 0; jp < e.P; jp++ {
				tr := e.traceIndex(ex, iy, jp)
				switch {
				case ex == 0:
					interior := e.edgeValue(phys, 0, iy, jp, false)
					fwd[tr] = e.bcValue(0, interior)
					bwd[tr] = interior
				case ex == e.Kx:
					interior := e.edgeValue(phys, e.Kx-1, iy, jp, true)
					fwd[tr] = interior
					bwd[tr] = e.bcValue(1, interior)
				default:
					fwd[tr] = e.edgeValue(phys, ex-1, iy, jp, true)
					bwd[tr] = e.edgeValue(phys, ex, iy, jp, false)
				}
			}
		}
	}
}

func (e *ExpList) bcValue(region int, interior float64) float64 {
	if region < len(e.bcs) && e.bcs[region].Eval != nil {
		return e.bcs[region].value
	}
	return interior
}

// AddFwdBwdTraceIntegral accumulates the edge integral of the forward
// and backward flux values into the coefficient-space residual of the
// adjacent elements, with the sign of the outward normal.
func (e *ExpList) AddFwdBwdTraceIntegral(fwd, bwd, outarray []float64) {
	var (
		P  = e.P
		hy = e.Ly / float64(e.Ky)
	)
	for ex := 0; ex <= e.Kx; ex++ {
		for iy := 0; iy < e.Ky; iy++ {
			for jp := 0; jp < e.P; jp++ {
				tr := e.traceIndex(ex, iy, jp)
				wEdge := e.w[jp] * hy / 2
				if ex > 0 { // left neighbour, outward normal +x
					off := e.GetPhysOffset(e.elemIndex(ex-1, iy))
					outarray[off+(P-1)+P*jp] += wEdge * fwd[tr]
				}
				if ex < e.Kx { // right neighbour, outward normal -x
					off := e.GetPhysOffset(e.elemIndex(ex, iy))
					outarray[off+P*jp] -= wEdge * bwd[tr]
				}
			}
		}
	}
}

func (e *ExpList) GetBndConditions() []*BndCondition { return e.bcs }

func (e *ExpList) EvaluateBoundaryConditions(time float64) {
	for _, bc := range e.bcs {
		if bc.Eval != nil {
			bc.value = bc.Eval(time)
		}
	}
}
