package nurbs

import (
	"fmt"

	. "github.com/tianhaichen/nurbs/internal"

	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/vec3"
)

// UV is an ordered parameter pair (u, v).
type UV [2]float64

type NurbsSurface struct {
	// integer degree of surface in u direction
	degreeU int

	// integer degree of surface in v direction
	degreeV int

	// 2d grid of homogeneous control points, indexed [i][j] with i
	// along the u direction and j along the v direction
	controlPoints [][]HomoPoint

	// array of nondecreasing knot values in u direction
	knotsU KnotVec

	// array of nondecreasing knot values in v direction
	knotsV KnotVec
}

func NewNurbsSurfaceUnchecked(degreeU, degreeV int, controlPoints [][]vec3.T, weights [][]float64, knotsU, knotsV []float64) *NurbsSurface {
	return &NurbsSurface{
		degreeU, degreeV,
		Homogenize2d(controlPoints, weights),
		KnotVec(knotsU).Clone(), KnotVec(knotsV).Clone(),
	}
}

func NewNurbsSurface(degreeU, degreeV int, controlPoints [][]vec3.T, weights [][]float64, knotsU, knotsV []float64) (*NurbsSurface, error) {
	this := NewNurbsSurfaceUnchecked(degreeU, degreeV, controlPoints, weights, knotsU, knotsV)
	if err := this.check(); err != nil {
		return nil, err
	}

	return this, nil
}

func (this *NurbsSurface) DegreeU() int {
	return this.degreeU
}

func (this *NurbsSurface) DegreeV() int {
	return this.degreeV
}

func (this *NurbsSurface) ControlPoints() [][]vec3.T {
	return Dehomogenize2d(this.controlPoints)
}

func (this *NurbsSurface) Weights() [][]float64 {
	return Weight2d(this.controlPoints)
}

func (this *NurbsSurface) KnotsU() []float64 {
	return []float64(this.knotsU.Clone())
}

func (this *NurbsSurface) KnotsV() []float64 {
	return []float64(this.knotsV.Clone())
}

func (this *NurbsSurface) clone() *NurbsSurface {
	return &NurbsSurface{
		this.degreeU, this.degreeV,
		cloneGrid(this.controlPoints),
		this.knotsU.Clone(), this.knotsV.Clone(),
	}
}

func (this *NurbsSurface) check() error {
	if len(this.controlPoints) == 0 || len(this.controlPoints[0]) == 0 {
		return fmt.Errorf("%w: control point grid cannot be empty", ErrInvalidArgument)
	}

	if this.degreeU < 1 || this.degreeV < 1 {
		return fmt.Errorf("%w: degrees must be at least 1", ErrInvalidArgument)
	}

	if len(this.knotsU) != len(this.controlPoints)+this.degreeU+1 {
		return fmt.Errorf("%w: len(knotsU) must equal rows + degreeU + 1", ErrInvalidArgument)
	}
	if len(this.knotsV) != len(this.controlPoints[0])+this.degreeV+1 {
		return fmt.Errorf("%w: len(knotsV) must equal columns + degreeV + 1", ErrInvalidArgument)
	}

	if !this.knotsU.IsValid(this.degreeU) || !this.knotsV.IsValid(this.degreeV) {
		return fmt.Errorf("%w: knot vectors must be clamped and nondecreasing", ErrInvalidArgument)
	}

	for _, row := range this.controlPoints {
		if len(row) != len(this.controlPoints[0]) {
			return fmt.Errorf("%w: control point grid must be rectangular", ErrInvalidArgument)
		}
		for _, cpt := range row {
			if cpt.W < Epsilon {
				return fmt.Errorf("%w: weights must be positive", ErrInvalidArgument)
			}
		}
	}

	return nil
}

// isClosed reports whether the first and last control rows (uDir) or
// columns coincide within tolerance.
func (this *NurbsSurface) isClosed(uDir bool) bool {
	cpts := this.controlPoints
	if !uDir {
		cpts = transposed(cpts)
	}

	for i := range cpts[0] {
		first, last := cpts[0][i], cpts[len(cpts)-1][i]
		if first.Dist(&last) >= Epsilon {
			return false
		}
	}

	return true
}

func (this *NurbsSurface) DomainU() (min, max float64) {
	min = this.knotsU[0]
	max = this.knotsU[len(this.knotsU)-1]
	return
}

func (this *NurbsSurface) DomainV() (min, max float64) {
	min = this.knotsV[0]
	max = this.knotsV[len(this.knotsV)-1]
	return
}

func (this *NurbsSurface) Transform(mat *mat4.T) *NurbsSurface {
	pts := Dehomogenize2d(this.controlPoints)

	for i := range pts {
		for j := range pts[0] {
			pts[i][j] = mat.MulVec3(&pts[i][j])
		}
	}

	return &NurbsSurface{
		this.degreeU,
		this.degreeV,

		Homogenize2d(pts, Weight2d(this.controlPoints)),

		this.knotsU.Clone(),
		this.knotsV.Clone(),
	}
}

// Normal computes the (unnormalized) surface normal Su x Sv at uv.
func (this *NurbsSurface) Normal(uv UV) vec3.T {
	derivs := this.Derivatives(uv, 1)
	return vec3.Cross(&derivs[1][0], &derivs[0][1])
}

// Derivatives computes the rational derivatives of the surface at uv.
// Entry [k][l] holds d^(k+l) S / du^k dv^l; only entries with
// k+l <= numDerivs are defined.
//
// The homogeneous derivatives are converted by the 2d quotient rule,
// in lexicographic (k, then l) order; every reused entry has a smaller
// k, or the same k and a smaller l, so it is already computed.
func (this *NurbsSurface) Derivatives(uv UV, numDerivs int) [][]vec3.T {
	ders := this.nonRationalDerivatives(uv, numDerivs)
	wders := Weight2d(ders)

	skl := make([][]vec3.T, numDerivs+1)
	for k := range skl {
		skl[k] = make([]vec3.T, numDerivs+1)
	}

	for k := 0; k <= numDerivs; k++ {
		for l := 0; l <= numDerivs-k; l++ {
			v := ders[k][l].Vec3

			for j := 1; j <= l; j++ {
				scaled := skl[k][l-j].Scaled(binomial(l, j) * wders[0][j])
				v.Sub(&scaled)
			}

			for i := 1; i <= k; i++ {
				scaled := skl[k-i][l].Scaled(binomial(k, i) * wders[i][0])
				v.Sub(&scaled)

				var v2 vec3.T

				for j := 1; j <= l; j++ {
					scaled := skl[k-i][l-j].Scaled(binomial(l, j) * wders[i][j])
					v2.Add(&scaled)
				}

				scaled = v2.Scaled(binomial(k, i))
				v.Sub(&scaled)
			}

			v.Scale(1 / wders[0][0])
			skl[k][l] = v
		}
	}

	return skl
}

// Point computes a point on the surface at uv.
func (this *NurbsSurface) Point(uv UV) vec3.T {
	homoPt := this.nonRationalPoint(uv)
	return homoPt.Dehomogenized()
}

// nonRationalDerivatives computes the derivatives of the surface on
// its homogeneous grid (corresponds to algorithm 3.6 from The NURBS
// book, Piegl & Tiller 2nd edition). The returned ladder is
// (numDerivs+1)^2 with zero entries beyond the degrees.
func (this *NurbsSurface) nonRationalDerivatives(uv UV, numDerivs int) [][]HomoPoint {
	degreeU := this.degreeU
	degreeV := this.degreeV
	controlPoints := this.controlPoints
	knotsU := this.knotsU
	knotsV := this.knotsV

	n := len(knotsU) - degreeU - 2
	m := len(knotsV) - degreeV - 2

	du := imin(numDerivs, degreeU)
	dv := imin(numDerivs, degreeV)

	skl := make([][]HomoPoint, numDerivs+1)
	for i := range skl {
		skl[i] = make([]HomoPoint, numDerivs+1)
	}

	knotSpanIndexU := knotsU.SpanGivenN(n, degreeU, uv[0])
	knotSpanIndexV := knotsV.SpanGivenN(m, degreeV, uv[1])
	uders := DerivativeBasisFunctionsGivenNI(knotSpanIndexU, uv[0], degreeU, du, knotsU)
	vders := DerivativeBasisFunctionsGivenNI(knotSpanIndexV, uv[1], degreeV, dv, knotsV)
	temp := make([]HomoPoint, degreeV+1)

	for k := 0; k <= du; k++ {
		for s := range temp {
			temp[s] = HomoPoint{}

			for r := 0; r <= degreeU; r++ {
				scaled := controlPoints[knotSpanIndexU-degreeU+r][knotSpanIndexV-degreeV+s]
				scaled.Scale(uders[k][r])
				temp[s].Add(&scaled)
			}
		}

		dd := imin(numDerivs-k, dv)

		for l := 0; l <= dd; l++ {
			skl[k][l] = HomoPoint{}

			for s := 0; s <= degreeV; s++ {
				scaled := temp[s].Scaled(vders[l][s])
				skl[k][l].Add(&scaled)
			}
		}
	}

	return skl
}

// nonRationalPoint computes a point on the surface in homogeneous
// space (corresponds to algorithm 3.5 from The NURBS book, Piegl &
// Tiller 2nd edition).
func (this *NurbsSurface) nonRationalPoint(uv UV) HomoPoint {
	degreeU := this.degreeU
	degreeV := this.degreeV
	controlPoints := this.controlPoints
	knotsU := this.knotsU
	knotsV := this.knotsV

	n := len(knotsU) - degreeU - 2
	m := len(knotsV) - degreeV - 2

	knotSpanIndexU := knotsU.SpanGivenN(n, degreeU, uv[0])
	knotSpanIndexV := knotsV.SpanGivenN(m, degreeV, uv[1])
	uBasisVals := BasisFunctionsGivenKnotSpanIndex(knotSpanIndexU, uv[0], degreeU, knotsU)
	vBasisVals := BasisFunctionsGivenKnotSpanIndex(knotSpanIndexV, uv[1], degreeV, knotsV)
	uind := knotSpanIndexU - degreeU
	var position HomoPoint

	for l := 0; l <= degreeV; l++ {
		temp := HomoPoint{}
		vind := knotSpanIndexV - degreeV + l

		// sample u isoline
		for k := 0; k <= degreeU; k++ {
			scaled := controlPoints[uind+k][vind]
			scaled.Scale(uBasisVals[k])
			temp.Add(&scaled)
		}

		// add point from u isoline
		temp.Scale(vBasisVals[l])
		position.Add(&temp)
	}

	return position
}

// transposed swaps the two grid directions.
func transposed(mat [][]HomoPoint) [][]HomoPoint {
	result := make([][]HomoPoint, len(mat[0]))
	for j := range result {
		result[j] = make([]HomoPoint, len(mat))
		for i := range result[j] {
			result[j][i] = mat[i][j]
		}
	}

	return result
}

func cloneGrid(mat [][]HomoPoint) [][]HomoPoint {
	result := make([][]HomoPoint, len(mat))
	for i := range result {
		result[i] = append([]HomoPoint(nil), mat[i]...)
	}

	return result
}
