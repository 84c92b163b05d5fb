package make

import (
	"fmt"
	"math"

	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
)

// RuledSurface generates the surface swept by a straight line between
// two curves sharing a parameter domain. The curves run in the v
// direction; curve0 is the boundary at u=0, curve1 at u=1.
//
// The curves are elevated to a common degree and refined to a common
// knot vector before the two control rows are assembled.
func RuledSurface(curve0, curve1 *nurbs.NurbsCurve) (*nurbs.NurbsSurface, error) {
	min0, max0 := curve0.Domain()
	min1, max1 := curve1.Domain()

	if math.Abs(min0-min1) > internal.Epsilon || math.Abs(max0-max1) > internal.Epsilon {
		return nil, fmt.Errorf("%w: ruled curves must share domain endpoints", nurbs.ErrGeometricFailure)
	}

	unified := nurbs.UnifyCurveKnotVectors([]*nurbs.NurbsCurve{curve0, curve1})
	c0, c1 := unified[0], unified[1]

	controlPoints := [][]vec3.T{c0.ControlPoints(), c1.ControlPoints()}
	weights := [][]float64{c0.Weights(), c1.Weights()}

	return nurbs.NewNurbsSurfaceUnchecked(
		1, c0.Degree(),
		controlPoints, weights,
		[]float64{0, 0, 1, 1}, c0.Knots(),
	), nil
}
