package make

import (
	"github.com/tianhaichen/nurbs"
	"github.com/ungerik/go3d/float64/vec3"
)

// ExtrudedSurface generates a surface by translating a profile curve
// along an axis. The translated end sits at u=0.
func ExtrudedSurface(axis *vec3.T, length float64, profile *nurbs.NurbsCurve) *nurbs.NurbsSurface {
	profControlPoints := profile.ControlPoints()
	profWeights := profile.Weights()

	controlPoints, weights := make([][]vec3.T, 3), make([][]float64, 3)
	for i := range controlPoints {
		controlPoints[i] = make([]vec3.T, len(profControlPoints))
		weights[i] = make([]float64, len(profWeights))
	}

	translation := axis.Scaled(length)
	halfTranslation := translation.Scaled(0.5)

	for j := range profControlPoints {
		controlPoints[2][j] = profControlPoints[j]
		controlPoints[1][j] = vec3.Add(&halfTranslation, &profControlPoints[j])
		controlPoints[0][j] = vec3.Add(&translation, &profControlPoints[j])

		weights[0][j] = profWeights[j]
		weights[1][j] = profWeights[j]
		weights[2][j] = profWeights[j]
	}

	return nurbs.NewNurbsSurfaceUnchecked(
		2, profile.Degree(),
		controlPoints, weights,
		[]float64{0, 0, 0, 1, 1, 1}, profile.Knots(),
	)
}

// CylindricalSurface generates a cylindrical patch by extruding a
// circular arc along the axis x cross y. The arc runs in the v
// direction; u sweeps from the translated end at u=0 down to the base
// arc at u=1.
func CylindricalSurface(origin *vec3.T, xaxis, yaxis *vec3.T, startAngle, endAngle, radius, height float64) (*nurbs.NurbsSurface, error) {
	nX := xaxis.Normalized()
	nY := yaxis.Normalized()

	arc, err := Arc(origin, &nX, &nY, radius, startAngle, endAngle)
	if err != nil {
		return nil, err
	}

	axis := vec3.Cross(&nX, &nY)
	return ExtrudedSurface(&axis, height, arc), nil
}
