package nurbs

import (
	"math"

	. "github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
)

// ClosestPoint computes the surface point closest to p.
func (this *NurbsSurface) ClosestPoint(p vec3.T) vec3.T {
	uv, _ := this.ClosestParam(p)
	return this.Point(uv)
}

// ClosestParam finds the parameter pair whose surface point is closest
// to p.
//
// A dense sample grid seeds a Newton iteration on
//
//	f = Su(u,v) * r = 0
//	g = Sv(u,v) * r = 0,  r = S(u,v) - p
//
// with the Piegl & Tiller halting conditions: point coincidence,
// cosine orthogonality in both directions, and a vanishing geometric
// step. Out-of-range parameters are clamped on open directions and
// wrapped on closed ones. The returned flag is false when the
// iteration budget runs out first; the best iterate is still returned.
func (this *NurbsSurface) ClosestParam(p vec3.T) (UV, bool) {
	minu, maxu := this.DomainU()
	minv, maxv := this.DomainV()
	closedU, closedV := this.isClosed(true), this.isClosed(false)

	cuv := this.closestSample(p)

	maxits := 10
	for i := 0; i < maxits; i++ {
		e := this.Derivatives(cuv, 2)
		dif := vec3.Sub(&e[0][0], &p)

		su, sv := e[1][0], e[0][1]
		suu, svv := e[2][0], e[0][2]
		suv := e[1][1]

		// point coincidence: |S(u,v) - p| < e1
		c1v := dif.Length()

		// cosine orthogonality in each direction:
		//
		//   |Su(u,v)*(S(u,v) - p)|
		//   ----------------------  < e2
		//   |Su(u,v)| |S(u,v) - p|
		c2av, c2bv := 0.0, 0.0
		if c2ad := su.Length() * c1v; c2ad > Epsilon {
			c2av = vec3.Dot(&su, &dif) / c2ad
		}
		if c2bd := sv.Length() * c1v; c2bd > Epsilon {
			c2bv = vec3.Dot(&sv, &dif) / c2bd
		}

		if c1v < Tolerance &&
			math.Abs(c2av) < Tolerance &&
			math.Abs(c2bv) < Tolerance {
			return cuv, true
		}

		// newton step on the 2x2 system J d = k
		j00 := vec3.Dot(&su, &su) + vec3.Dot(&dif, &suu)
		j01 := vec3.Dot(&su, &sv) + vec3.Dot(&dif, &suv)
		j11 := vec3.Dot(&sv, &sv) + vec3.Dot(&dif, &svv)

		k0 := -vec3.Dot(&su, &dif)
		k1 := -vec3.Dot(&sv, &dif)

		du, dv, ok := Mat2Solve(j00, j01, j01, j11, k0, k1)
		if !ok {
			// singular jacobian; the iteration still counts
			continue
		}

		ct := UV{cuv[0] + du, cuv[1] + dv}

		// clamp open directions, wrap closed ones
		ct[0] = constrainParam(ct[0], minu, maxu, closedU)
		ct[1] = constrainParam(ct[1], minv, maxv, closedV)

		// |(u* - u) Su| + |(v* - v) Sv| < e1, using the constrained step
		stepU := su.Scaled(ct[0] - cuv[0])
		stepV := sv.Scaled(ct[1] - cuv[1])

		if stepU.Length()+stepV.Length() < Tolerance {
			return ct, true
		}

		cuv = ct
	}

	return cuv, false
}

// closestSample seeds the projection by sampling a dense parameter
// grid and projecting p onto the secant lines between u-adjacent
// samples.
func (this *NurbsSurface) closestSample(p vec3.T) UV {
	minu, maxu := this.DomainU()
	minv, maxv := this.DomainV()

	samplesU := len(this.controlPoints) * this.degreeU
	samplesV := len(this.controlPoints[0]) * this.degreeV
	spanU := (maxu - minu) / float64(samplesU-1)
	spanV := (maxv - minv) / float64(samplesV-1)

	dmin := math.MaxFloat64
	var cuv UV

	for j := 0; j < samplesV; j++ {
		v := minv + spanV*float64(j)

		currentU := minu
		current := this.Point(UV{currentU, v})

		for i := 0; i < samplesU-1; i++ {
			nextU := minu + spanU*float64(i+1)
			next := this.Point(UV{nextU, v})

			proj := segmentClosestPoint(&p, &current, &next, currentU, nextU)
			d := vec3.Distance(&p, &proj.Pt)

			if d < dmin {
				dmin = d
				cuv = UV{proj.U, v}
			}

			currentU, current = nextU, next
		}
	}

	return cuv
}

func constrainParam(t, min, max float64, closed bool) float64 {
	if t < min {
		if closed {
			return max - (min - t)
		}
		return min
	}
	if t > max {
		if closed {
			return min + (t - max)
		}
		return max
	}
	return t
}

// UVTangent decomposes a 3d tangent direction at uv into its (u, v)
// parametric components, solving the symmetric system
//
//	| Su*Su  Su*Sv | |u'|   | Su*T |
//	| Su*Sv  Sv*Sv | |v'| = | Sv*T |
//
// ok is false when Su and Sv are parallel.
func (this *NurbsSurface) UVTangent(uv UV, tangent vec3.T) (UV, bool) {
	derivs := this.Derivatives(uv, 1)
	su, sv := derivs[1][0], derivs[0][1]

	a := vec3.Dot(&su, &su)
	b := vec3.Dot(&su, &sv)
	d := vec3.Dot(&sv, &sv)

	e := vec3.Dot(&su, &tangent)
	f := vec3.Dot(&sv, &tangent)

	du, dv, ok := Mat2Solve(a, b, b, d, e, f)
	if !ok {
		return UV{}, false
	}

	return UV{du, dv}, true
}
