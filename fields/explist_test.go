package fields

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// nodeCoords returns the x (dir 0) or y (dir 1) physical coordinate of
// every collocation node on a plane.
func nodeCoords(e *ExpList, dir int) []float64 {
	var (
		coords = make([]float64, e.Kx*e.Ky*e.P*e.P)
		hx     = e.Lx / float64(e.Kx)
		hy     = e.Ly / float64(e.Ky)
	)
	for iy := 0; iy < e.Ky; iy++ {
		for ix := 0; ix < e.Kx; ix++ {
			off := e.GetPhysOffset(e.elemIndex(ix, iy))
			for jp := 0; jp < e.P; jp++ {
				for ip := 0; ip < e.P; ip++ {
					x := (float64(ix) + (e.r[ip]+1)/2) * hx
					y := (float64(iy) + (e.r[jp]+1)/2) * hy
					if dir == 0 {
						coords[off+ip+e.P*jp] = x
					} else {
						coords[off+ip+e.P*jp] = y
					}
				}
			}
		}
	}
	return coords
}

func TestPhysDeriv(t *testing.T) {
	e := NewExpList(3, 2, 4)
	var (
		x  = nodeCoords(e, 0)
		y  = nodeCoords(e, 1)
		in = make([]float64, e.GetTotPoints())
		dx = make([]float64, e.GetTotPoints())
		dy = make([]float64, e.GetTotPoints())
	)
	// f = 2x + 3y^2 is inside the polynomial space.
	for q := range in {
		in[q] = 2*x[q] + 3*y[q]*y[q]
	}
	e.PhysDeriv(0, in, dx)
	e.PhysDeriv(1, in, dy)
	for q := range in {
		assert.InDelta(t, 2.0, dx[q], 1e-10)
		assert.InDelta(t, 6*y[q], dy[q], 1e-10)
	}

	assert.Panics(t, func() { e.PhysDeriv(2, in, dx) })
}

func TestMassInverse(t *testing.T) {
	// MultiplyByElmtInvMass undoes IProductWRTBase pointwise.
	e := NewExpList(2, 2, 3)
	var (
		in  = make([]float64, e.GetTotPoints())
		wk  = make([]float64, e.GetTotPoints())
		out = make([]float64, e.GetTotPoints())
	)
	for q := range in {
		in[q] = math.Sin(float64(q))
	}
	e.IProductWRTBase(in, wk)
	e.MultiplyByElmtInvMass(wk, out)
	for q := range in {
		assert.InDelta(t, in[q], out[q], 1e-12)
	}
}

func TestL2(t *testing.T) {
	e := NewExpList(3, 3, 4)
	phys := e.UpdatePhys()
	for q := range phys {
		phys[q] = 2
	}
	// Constant 2 on the unit square.
	assert.InDelta(t, 2.0, e.L2(), 1e-12)
}

func TestHomogeneousRoundTrip(t *testing.T) {
	e := NewExpListHomogeneous(2, 2, 3, 8)
	var (
		np   = e.GetTotPoints()
		np2d = e.np2d()
		in   = make([]float64, np)
		wave = make([]float64, np)
		back = make([]float64, np)
	)
	for q := 0; q < np; q++ {
		z := q / np2d
		in[q] = math.Cos(2*math.Pi*float64(z)/8) + 0.3*float64(q%5)
	}

	e.HomogeneousFwdTrans(in, wave)
	e.HomogeneousBwdTrans(wave, back)
	for q := 0; q < np; q++ {
		assert.InDelta(t, in[q], back[q], 1e-10)
	}
}

func TestCheckpointRoundTripIdempotent(t *testing.T) {
	// The checkpoint choreography: clear the wave-space flag, backward
	// transform coefficients to fully physical values, then restore the
	// flag and forward transform. Wave-space physical values and the
	// flag must come back unchanged.
	e := NewExpListHomogeneous(2, 2, 3, 4)
	var (
		np   = e.GetTotPoints()
		np2d = e.np2d()
	)
	phys := e.UpdatePhys()
	for q := 0; q < np; q++ {
		z := q / np2d
		phys[q] = 1 + 0.5*float64(z) + 0.01*float64(q%11)
	}
	e.HomogeneousFwdTrans(e.GetPhys(), e.UpdatePhys())
	copy(e.UpdateCoeffs(), e.GetPhys())
	e.SetWaveSpace(true)

	before := make([]float64, np)
	copy(before, e.GetPhys())

	e.SetWaveSpace(false)
	e.BwdTrans(e.GetCoeffs(), e.UpdatePhys())
	e.SetWaveSpace(true)
	e.HomogeneousFwdTrans(e.GetPhys(), e.UpdatePhys())

	assert.True(t, e.GetWaveSpace())
	for q := 0; q < np; q++ {
		assert.InDelta(t, before[q], e.GetPhys()[q], 1e-10)
	}
}

func TestHomogeneousEnergy(t *testing.T) {
	// A pure cosine in z puts all its energy in mode 1.
	e := NewExpListHomogeneous(2, 2, 3, 8)
	var (
		np   = e.GetTotPoints()
		np2d = e.np2d()
	)
	phys := e.UpdatePhys()
	for q := 0; q < np; q++ {
		z := q / np2d
		phys[q] = math.Cos(2 * math.Pi * float64(z) / 8)
	}
	e.HomogeneousFwdTrans(e.GetPhys(), e.UpdatePhys())

	energy := e.HomogeneousEnergy()
	assert.Equal(t, 4, len(energy))
	assert.InDelta(t, 0.0, energy[0], 1e-12)
	assert.Greater(t, energy[1], 0.0)
	for m := 2; m < 4; m++ {
		assert.InDelta(t, 0.0, energy[m], 1e-12)
	}
}

func TestTraceExtraction(t *testing.T) {
	e := NewExpList(2, 2, 3)
	var (
		nq  = e.GetTotPoints()
		ntr = e.GetTraceNpoints()
	)
	assert.Equal(t, (2+1)*2*3, ntr)

	phys := make([]float64, nq)
	for el := 0; el < e.GetExpSize(); el++ {
		off := e.GetPhysOffset(el)
		for q := 0; q < 9; q++ {
			phys[off+q] = float64(el + 1)
		}
	}

	{ // fwd/bwd pick the left/right neighbours, mirrored on boundaries
		fwd := make([]float64, ntr)
		bwd := make([]float64, ntr)
		e.GetFwdBwdTracePhys(phys, fwd, bwd)

		// Interior interface ex=1, row iy=0: elements 0 and 1.
		tr := e.traceIndex(1, 0, 0)
		assert.Equal(t, 1.0, fwd[tr])
		assert.Equal(t, 2.0, bwd[tr])

		// Left boundary mirrors the interior.
		tr = e.traceIndex(0, 0, 0)
		assert.Equal(t, 1.0, fwd[tr])
		assert.Equal(t, 1.0, bwd[tr])
	}
	{ // upwinding follows the sign of the normal velocity
		vn := []float64{1, -1}
		fwd := []float64{10, 10}
		bwd := []float64{20, 20}
		flux := make([]float64, 2)
		e.GetTrace().Upwind(vn, fwd, bwd, flux)
		assert.Equal(t, []float64{10, 20}, flux)
	}
	{ // a continuous field yields equal fwd and bwd everywhere
		for q := range phys {
			phys[q] = 7
		}
		fwd := make([]float64, ntr)
		bwd := make([]float64, ntr)
		e.GetFwdBwdTracePhys(phys, fwd, bwd)
		for q := 0; q < ntr; q++ {
			assert.Equal(t, fwd[q], bwd[q])
		}
	}
}

func TestBoundaryConditionValue(t *testing.T) {
	e := NewExpList(2, 2, 3)
	e.AddBndCondition(&BndCondition{
		UserDefinedTag: "TimeDependent",
		Eval:           func(time float64) float64 { return 5 * time },
	})
	e.EvaluateBoundaryConditions(2)
	assert.Equal(t, 10.0, e.GetBndConditions()[0].Value())

	// The left boundary trace now takes the BC value.
	phys := make([]float64, e.GetTotPoints())
	fwd := make([]float64, e.GetTraceNpoints())
	bwd := make([]float64, e.GetTraceNpoints())
	e.GetFwdBwdTracePhys(phys, fwd, bwd)
	assert.Equal(t, 10.0, fwd[e.traceIndex(0, 0, 0)])
	assert.Equal(t, 0.0, bwd[e.traceIndex(0, 0, 0)])
}

func TestGaussLegendre(t *testing.T) {
	x, w := GaussLegendre(4)
	var sum float64
	for _, wi := range w {
		sum += wi
	}
	assert.InDelta(t, 2.0, sum, 1e-12)
	// Integrate x^2 over [-1,1] exactly.
	var integral float64
	for i := range x {
		integral += w[i] * x[i] * x[i]
	}
	assert.InDelta(t, 2.0/3.0, integral, 1e-12)
}
