package nurbs

import (
	"fmt"
	"math"

	. "github.com/tianhaichen/nurbs/internal"

	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/vec3"
)

type CurvePoint struct {
	U  float64
	Pt vec3.T
}

type NurbsCurve struct {
	// degree of curve
	degree int

	// slice of control points, each a homogeneous coordinate
	controlPoints []HomoPoint

	// slice of nondecreasing knot values
	knots KnotVec
}

func NewNurbsCurve(degree int, controlPoints []vec3.T, weights []float64, knots []float64) (*NurbsCurve, error) {
	this := NewNurbsCurveUnchecked(degree, controlPoints, weights, knots)
	if err := this.check(); err != nil {
		return nil, err
	}

	return this, nil
}

func NewNurbsCurveUnchecked(degree int, controlPoints []vec3.T, weights []float64, knots []float64) *NurbsCurve {
	return &NurbsCurve{degree, Homogenize1d(controlPoints, weights), KnotVec(knots).Clone()}
}

func (this *NurbsCurve) Degree() int {
	return this.degree
}

func (this *NurbsCurve) ControlPoints() []vec3.T {
	return Dehomogenize1d(this.controlPoints)
}

func (this *NurbsCurve) Weights() []float64 {
	return Weight1d(this.controlPoints)
}

func (this *NurbsCurve) Knots() []float64 {
	return []float64(this.knots.Clone())
}

// clone is not exported because NurbsCurve is immutable to the client,
// so there's no point in making a deep copy. Should only be used when
// control points and knots can't be shared.
func (this *NurbsCurve) clone() *NurbsCurve {
	return &NurbsCurve{
		degree:        this.degree,
		controlPoints: append([]HomoPoint(nil), this.controlPoints...),
		knots:         this.knots.Clone(),
	}
}

// Domain determines the valid parameter range of the curve.
func (this *NurbsCurve) Domain() (min, max float64) {
	min = this.knots[0]
	max = this.knots[len(this.knots)-1]
	return
}

func (this *NurbsCurve) check() error {
	if len(this.controlPoints) == 0 {
		return fmt.Errorf("%w: control points cannot be empty", ErrInvalidArgument)
	}

	if this.degree < 1 {
		return fmt.Errorf("%w: degree must be at least 1", ErrInvalidArgument)
	}

	if len(this.knots) == 0 {
		return fmt.Errorf("%w: knots cannot be empty", ErrInvalidArgument)
	}

	if len(this.knots) != len(this.controlPoints)+this.degree+1 {
		return fmt.Errorf("%w: len(controlPoints) + degree + 1 must equal len(knots)", ErrInvalidArgument)
	}

	if !this.knots.IsValid(this.degree) {
		return fmt.Errorf("%w: knot vector must be clamped and nondecreasing", ErrInvalidArgument)
	}

	for _, cpt := range this.controlPoints {
		if cpt.W < Epsilon {
			return fmt.Errorf("%w: weights must be positive", ErrInvalidArgument)
		}
	}

	return nil
}

func (this *NurbsCurve) isClosed() bool {
	first := this.controlPoints[0]
	last := this.controlPoints[len(this.controlPoints)-1]
	return first.Dist(&last) < Epsilon
}

func (this *NurbsCurve) ClosestPoint(p vec3.T) vec3.T {
	u, _ := this.ClosestParam(p)
	return this.Point(u)
}

// ClosestParam finds the parameter whose curve point is closest to p.
// A coarse sample of the curve seeds a Newton iteration on
//
//	f(u) = C'(u) * (C(u) - p) = 0
//
// with the halting conditions of Piegl & Tiller: point coincidence,
// cosine orthogonality, and a vanishing parametric step. The returned
// flag is false when the iteration budget runs out first.
func (this *NurbsCurve) ClosestParam(p vec3.T) (float64, bool) {
	min := math.MaxFloat64
	var u float64

	pts := this.regularSample(len(this.controlPoints) * this.degree)

	for i := 0; i < len(pts)-1; i++ {
		u0, u1 := pts[i].U, pts[i+1].U

		p0 := pts[i].Pt
		p1 := pts[i+1].Pt

		proj := segmentClosestPoint(&p, &p0, &p1, u0, u1)
		dv := vec3.Sub(&p, &proj.Pt)
		d := dv.Length()

		if d < min {
			min = d
			u = proj.U
		}
	}

	maxits := 10
	minu, maxu := this.knots[0], this.knots[len(this.knots)-1]
	closed := this.isClosed()

	cu := u

	for i := 0; i < maxits; i++ {
		e := this.Derivatives(cu, 2)
		dif := vec3.Sub(&e[0], &p)

		// |C(u) - p| < e1
		c1v := dif.Length()

		// C'(u) * (C(u) - p)
		// ------------------ < e2
		// |C'(u)| |C(u) - p|
		c2v := 0.0
		if c2d := e[1].Length() * c1v; c2d > Epsilon {
			c2v = vec3.Dot(&e[1], &dif) / c2d
		}

		if c1v < Tolerance && math.Abs(c2v) < Tolerance {
			return cu, true
		}

		// Newton step: u* = u - f/f' with
		// f' = C''(u) * (C(u) - p) + C'(u) * C'(u)
		f := vec3.Dot(&e[1], &dif)
		df := vec3.Dot(&e[2], &dif) + vec3.Dot(&e[1], &e[1])
		if math.Abs(df) < Epsilon {
			continue
		}

		ct := cu - f/df

		// keep the parameter in range, wrapping when closed
		if ct < minu {
			if closed {
				ct = maxu - (minu - ct)
			} else {
				ct = minu
			}
		} else if ct > maxu {
			if closed {
				ct = minu + (ct - maxu)
			} else {
				ct = maxu
			}
		}

		// |(u* - u) C'(u)| < e1
		c3vv := e[1].Scaled(ct - cu)
		if c3vv.Length() < Tolerance {
			return ct, true
		}

		cu = ct
	}

	return cu, false
}

// regularSample samples the curve at equally spaced parameters.
func (this *NurbsCurve) regularSample(numSamples int) []CurvePoint {
	return this.regularSampleRange(
		this.knots[0], this.knots[len(this.knots)-1],
		numSamples,
	)
}

func (this *NurbsCurve) regularSampleRange(start, end float64, numSamples int) []CurvePoint {
	if numSamples < 2 {
		numSamples = 2
	}

	samples := make([]CurvePoint, numSamples)
	span := (end - start) / float64(numSamples-1)
	var u float64

	for i := range samples {
		u = start + span*float64(i)

		samples[i] = CurvePoint{u, this.Point(u)}
	}

	return samples
}

// Reverse flips the parameter direction of the curve while preserving
// its geometry.
func (this *NurbsCurve) Reverse() *NurbsCurve {
	reversed := NurbsCurve{
		degree:        this.degree,
		controlPoints: make([]HomoPoint, 0, len(this.controlPoints)),
		knots:         this.knots.Reversed(),
	}

	for i := len(this.controlPoints) - 1; i >= 0; i-- {
		reversed.controlPoints = append(reversed.controlPoints, this.controlPoints[i])
	}

	return &reversed
}

func (this *NurbsCurve) Transform(mat *mat4.T) *NurbsCurve {
	pts := Dehomogenize1d(this.controlPoints)

	for i := range pts {
		pts[i] = mat.MulVec3(&pts[i])
	}

	return &NurbsCurve{
		this.degree,
		Homogenize1d(pts, Weight1d(this.controlPoints)),
		this.knots.Clone(),
	}
}

// Tangent computes the first derivative at u.
func (this *NurbsCurve) Tangent(u float64) vec3.T {
	return this.Derivatives(u, 1)[1]
}

// Derivatives determines the derivatives of the curve at u up to the
// given order. Entry k is the kth derivative; entry 0 is the point.
func (this *NurbsCurve) Derivatives(u float64, numDerivs int) []vec3.T {
	ders := this.nonRationalDerivatives(u, numDerivs)
	ck := make([]vec3.T, 0, numDerivs+1)

	for k := 0; k <= numDerivs; k++ {
		v := ders[k].Vec3

		for i := 1; i <= k; i++ {
			scaled := ck[k-i].Scaled(binomial(k, i) * ders[i].W)
			v.Sub(&scaled)
		}
		v.Scale(1 / ders[0].W)
		ck = append(ck, v)
	}

	return ck
}

// Point computes a point on the curve at u.
func (this *NurbsCurve) Point(u float64) vec3.T {
	homoPt := this.nonRationalPoint(u)
	return homoPt.Dehomogenized()
}

// nonRationalDerivatives determines the derivatives of the curve on
// its homogeneous control points (corresponds to algorithm 3.2 from
// The NURBS book, Piegl & Tiller 2nd edition). The returned ladder has
// numDerivs+1 entries; those beyond the degree are zero.
func (this *NurbsCurve) nonRationalDerivatives(u float64, numDerivs int) []HomoPoint {
	degree := this.degree
	controlPoints := this.controlPoints
	knots := this.knots

	n := len(knots) - degree - 2

	du := numDerivs
	if degree < du {
		du = degree
	}

	ck := make([]HomoPoint, numDerivs+1)
	knotSpanIndex := knots.SpanGivenN(n, degree, u)
	nders := DerivativeBasisFunctionsGivenNI(knotSpanIndex, u, degree, du, knots)

	for k := 0; k <= du; k++ {
		for j := 0; j <= degree; j++ {
			scaled := controlPoints[knotSpanIndex-degree+j]
			scaled.Scale(nders[k][j])
			ck[k].Add(&scaled)
		}
	}

	return ck
}

// nonRationalPoint computes a point on the curve in homogeneous space
// (corresponds to algorithm 3.1 from The NURBS book, Piegl & Tiller
// 2nd edition).
func (this *NurbsCurve) nonRationalPoint(u float64) HomoPoint {
	degree := this.degree
	controlPoints := this.controlPoints
	knots := this.knots

	n := len(knots) - degree - 2

	knotSpanIndex := knots.SpanGivenN(n, degree, u)
	basisValues := BasisFunctionsGivenKnotSpanIndex(knotSpanIndex, u, degree, knots)
	var position HomoPoint

	for j := 0; j <= degree; j++ {
		scaled := controlPoints[knotSpanIndex-degree+j]
		scaled.Scale(basisValues[j])
		position.Add(&scaled)
	}

	return position
}
