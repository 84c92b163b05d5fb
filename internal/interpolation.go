package internal

import (
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

// SurfaceMeshParams computes chord-length parameters for a rectangular
// grid of points, averaged over the orthogonal direction (The NURBS
// book eq. 9.4-9.5). uk runs along the rows (U), vl along the columns
// (V); both start at 0 and end at 1.
func SurfaceMeshParams(points [][]vec3.T) (uk, vl []float64) {
	rows := len(points)
	cols := len(points[0])

	uk = chordParams(rows, cols, func(k, l int) *vec3.T { return &points[k][l] })
	vl = chordParams(cols, rows, func(l, k int) *vec3.T { return &points[k][l] })
	return
}

func chordParams(n, lines int, at func(along, line int) *vec3.T) []float64 {
	params := make([]float64, n)
	params[n-1] = 1

	nonDegen := lines
	cds := make([]float64, n)

	for line := 0; line < lines; line++ {
		var total float64
		for k := 1; k < n; k++ {
			cds[k] = vec3.Distance(at(k, line), at(k-1, line))
			total += cds[k]
		}

		if total < Epsilon {
			// the whole line collapses to a point
			nonDegen--
			continue
		}

		var d float64
		for k := 1; k < n-1; k++ {
			d += cds[k]
			params[k] += d / total
		}
	}

	for k := 1; k < n-1; k++ {
		params[k] /= float64(nonDegen)
	}

	return params
}

// AveragedKnots builds the clamped knot vector matched to the given
// interpolation parameters by knot averaging (The NURBS book eq. 9.8).
func AveragedKnots(degree int, params []float64) KnotVec {
	n := len(params) - 1
	knots := make(KnotVec, n+degree+2)

	for i := len(knots) - degree - 1; i < len(knots); i++ {
		knots[i] = 1
	}

	for j := 1; j <= n-degree; j++ {
		var sum float64
		for i := j; i <= j+degree-1; i++ {
			sum += params[i]
		}
		knots[j+degree] = sum / float64(degree)
	}

	return knots
}

// ApproxKnots builds the clamped knot vector for least-squares
// approximation of len(params) samples with numCtrl control points
// (The NURBS book eq. 9.68-9.69).
func ApproxKnots(degree, numCtrl int, params []float64) KnotVec {
	n := numCtrl - 1
	knots := make(KnotVec, n+degree+2)

	for i := len(knots) - degree - 1; i < len(knots); i++ {
		knots[i] = 1
	}

	d := float64(len(params)) / float64(n-degree+1)
	for j := 1; j <= n-degree; j++ {
		i := int(float64(j) * d)
		alpha := float64(j)*d - float64(i)
		knots[degree+j] = (1-alpha)*params[i-1] + alpha*params[i]
	}

	return knots
}

// Tangents estimates unit tangent vectors at each point of a polyline
// by the corner-cutting metric (The NURBS book eq. 9.29-9.32). ok is
// false when a tangent direction degenerates.
func Tangents(points []vec3.T) (tangents []vec3.T, ok bool) {
	n := len(points) - 1
	if n < 1 {
		return nil, false
	}

	if n == 1 {
		chord := vec3.Sub(&points[1], &points[0])
		if chord.Length() < Epsilon {
			return nil, false
		}
		chord.Normalize()
		return []vec3.T{chord, chord}, true
	}

	// chords q[k+1] = P[k] - P[k-1], extrapolated two steps past each end
	q := make([]vec3.T, n+4)
	for k := 1; k <= n; k++ {
		q[k+1] = vec3.Sub(&points[k], &points[k-1])
	}

	extrap := func(a, b vec3.T) vec3.T {
		doubled := a.Scaled(2)
		return vec3.Sub(&doubled, &b)
	}
	q[1] = extrap(q[2], q[3])
	q[0] = extrap(q[1], q[2])
	q[n+2] = extrap(q[n+1], q[n])
	q[n+3] = extrap(q[n+2], q[n+1])

	tangents = make([]vec3.T, n+1)
	for k := 0; k <= n; k++ {
		prevCross := vec3.Cross(&q[k], &q[k+1])
		nextCross := vec3.Cross(&q[k+2], &q[k+3])

		denom := prevCross.Length() + nextCross.Length()
		alpha := 0.5
		if denom > Epsilon {
			alpha = prevCross.Length() / denom
		}

		left := q[k+1].Scaled(1 - alpha)
		right := q[k+2].Scaled(alpha)
		v := vec3.Add(&left, &right)

		if v.Length() < Epsilon {
			return nil, false
		}

		v.Normalize()
		tangents[k] = v
	}

	return tangents, true
}

// LocalCubicFit interpolates a polyline with C1 cubic Bezier segments
// (The NURBS book 9.4.1). It returns the segment boundary parameters
// (normalized to [0,1]) and the full Bezier control polygon of
// 3*(len(points)-1)+1 points; interior points of segment k sit at
// indices 3k+1 and 3k+2.
func LocalCubicFit(points []vec3.T) (params []float64, bezier []vec3.T, ok bool) {
	n := len(points) - 1

	tangents, ok := Tangents(points)
	if !ok {
		return nil, nil, false
	}

	params = make([]float64, n+1)
	bezier = make([]vec3.T, 3*n+1)

	for k := 0; k < n; k++ {
		tsum := vec3.Add(&tangents[k], &tangents[k+1])
		chord := vec3.Sub(&points[k+1], &points[k])

		// eq. 9.50: pick the magnitude so the segment has nearly
		// uniform speed
		a := 16 - tsum.LengthSqr()
		b := 12 * vec3.Dot(&chord, &tsum)
		c := -36 * chord.LengthSqr()
		alpha := (-b + math.Sqrt(b*b-4*a*c)) / (2 * a)

		d0 := tangents[k].Scaled(alpha / 3)
		d1 := tangents[k+1].Scaled(alpha / 3)

		bezier[3*k] = points[k]
		bezier[3*k+1] = vec3.Add(&points[k], &d0)
		bezier[3*k+2] = vec3.Sub(&points[k+1], &d1)

		params[k+1] = params[k] + 3*vec3.Distance(&bezier[3*k+1], &points[k])
	}
	bezier[3*n] = points[n]

	total := params[n]
	for k := 1; k <= n; k++ {
		params[k] /= total
	}
	params[n] = 1

	return params, bezier, true
}
