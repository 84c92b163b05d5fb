package nurbs

import (
	. "github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
)

// segmentClosestPoint projects pt onto the segment segpt0-segpt1 with
// endpoint parameters u0, u1. The projection parameter is the dot
// product normalized by the squared segment length, clamped to the
// segment.
func segmentClosestPoint(pt, segpt0, segpt1 *vec3.T, u0, u1 float64) CurvePoint {
	dif := vec3.Sub(segpt1, segpt0)
	l := dif.Length()

	if l < Epsilon {
		return CurvePoint{u0, *segpt0}
	}

	o := segpt0
	r := dif.Normalize()
	o2pt := vec3.Sub(pt, o)
	do2ptr := vec3.Dot(&o2pt, r)

	if do2ptr < 0 {
		return CurvePoint{u0, *segpt0}
	} else if do2ptr > l {
		return CurvePoint{u1, *segpt1}
	}

	return CurvePoint{
		u0 + (u1-u0)*do2ptr/l,
		vec3.Add(o, r.Scale(do2ptr)),
	}
}
