package make

import (
	"github.com/tianhaichen/nurbs"
	"github.com/ungerik/go3d/float64/vec3"
)

func Line(first, last *vec3.T) *nurbs.NurbsCurve {
	return Polyline([]vec3.T{*first, *last})
}

// Polyline generates a degree-1 curve through the given points,
// parameterized by normalized chord length.
func Polyline(pts []vec3.T) *nurbs.NurbsCurve {
	knots := make([]float64, len(pts)+2)

	var lsum float64
	for i := 0; i < len(pts)-1; i++ {
		lsum += vec3.Distance(&pts[i], &pts[i+1])
		knots[i+2] = lsum
	}
	knots[len(knots)-1] = lsum

	// normalize the knot array
	for i := range knots {
		knots[i] /= lsum
	}

	weights := make([]float64, len(pts))
	for i := range weights {
		weights[i] = 1
	}

	return nurbs.NewNurbsCurveUnchecked(1, pts, weights, knots)
}
