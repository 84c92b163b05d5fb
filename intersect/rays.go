package intersect

import (
	"math"

	"github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
)

// CurveCurveIntersection describes the closest approach of two rays.
type CurveCurveIntersection struct {
	Point0, Point1 vec3.T
	U0, U1         float64
}

// Rays finds the mutual closest points of two rays given by origin and
// direction. ok is false when the rays are parallel. The rays
// intersect when Point0 and Point1 coincide within tolerance; use
// Intersecting to test.
func Rays(origin0, dir0, origin1, dir1 *vec3.T) (result CurveCurveIntersection, ok bool) {
	a := vec3.Dot(dir0, dir0)
	b := vec3.Dot(dir0, dir1)
	c := vec3.Dot(dir1, dir1)

	w := vec3.Sub(origin0, origin1)
	d := vec3.Dot(dir0, &w)
	e := vec3.Dot(dir1, &w)

	den := a*c - b*b
	if math.Abs(den) < internal.Epsilon {
		return result, false
	}

	result.U0 = (b*e - c*d) / den
	result.U1 = (a*e - b*d) / den

	scaled0 := dir0.Scaled(result.U0)
	scaled1 := dir1.Scaled(result.U1)
	result.Point0 = vec3.Add(origin0, &scaled0)
	result.Point1 = vec3.Add(origin1, &scaled1)

	return result, true
}

// Intersecting reports whether the closest approach is an actual
// intersection.
func (this *CurveCurveIntersection) Intersecting() bool {
	return vec3.Distance(&this.Point0, &this.Point1) < internal.Tolerance
}
