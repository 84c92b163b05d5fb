package make

import (
	"fmt"
	"math"

	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/internal"
	"github.com/tianhaichen/nurbs/intersect"
	"github.com/ungerik/go3d/float64/vec3"
)

// RevolvedSurface generates the surface swept by revolving a profile
// curve by theta radians about the axis line through center. The
// revolution runs in the u direction as a chain of rational quadratic
// arcs, each spanning at most a quarter turn; the profile runs in v.
//
// Corresponds to algorithm A8.1 (Piegl & Tiller). Fails when the arc
// tangent rays degenerate.
func RevolvedSurface(profile *nurbs.NurbsCurve, center *vec3.T, axis *vec3.T, theta float64) (*nurbs.NurbsSurface, error) {
	profControlPoints := profile.ControlPoints()
	profWeights := profile.Weights()

	var narcs int
	var knotsU []float64

	switch {
	case theta <= math.Pi/2:
		narcs = 1
		knotsU = make([]float64, 6+2*(narcs-1))
	case theta <= math.Pi:
		narcs = 2
		knotsU = make([]float64, 6+2*(narcs-1))
		knotsU[3], knotsU[4] = 0.5, 0.5
	case theta <= 3*math.Pi/2:
		narcs = 3
		knotsU = make([]float64, 6+2*(narcs-1))
		knotsU[3], knotsU[4] = 1.0/3, 1.0/3
		knotsU[5], knotsU[6] = 2.0/3, 2.0/3
	default:
		narcs = 4
		knotsU = make([]float64, 6+2*(narcs-1))
		knotsU[3], knotsU[4] = 1.0/4, 1.0/4
		knotsU[5], knotsU[6] = 1.0/2, 1.0/2
		knotsU[7], knotsU[8] = 3.0/4, 3.0/4
	}

	dtheta := theta / float64(narcs)
	j := 3 + 2*(narcs-1)

	for i := 0; i < 3; i++ {
		knotsU[j+i] = 1
	}

	wm := math.Cos(dtheta / 2)
	sines, cosines := make([]float64, narcs+1), make([]float64, narcs+1)

	controlPoints := make([][]vec3.T, 2*narcs+1)
	for i := range controlPoints {
		controlPoints[i] = make([]vec3.T, len(profControlPoints))
	}

	weights := make([][]float64, 2*narcs+1)
	for i := range weights {
		weights[i] = make([]float64, len(profControlPoints))
	}

	var angle float64
	for i := 1; i <= narcs; i++ {
		angle += dtheta
		cosines[i] = math.Cos(angle)
		sines[i] = math.Sin(angle)
	}

	axisRay := internal.Ray{Origin: *center, Dir: axis.Normalized()}

	// for each control point of the generatrix, sweep a circle row
	for j := range profControlPoints {
		// footpoint of the generatrix point on the axis
		O := axisRay.ClosestPoint(profControlPoints[j])
		// X points from the axis to the generatrix point
		X := vec3.Sub(&profControlPoints[j], &O)
		// radius at that height
		r := X.Length()
		// Y completes the rotational frame
		Y := vec3.Cross(&axisRay.Dir, &X)

		if r > internal.Epsilon {
			X.Scale(1 / r)
			Y.Scale(1 / r)
		}

		// the first control row is the generatrix itself
		P0 := profControlPoints[j]
		controlPoints[0][j] = P0
		weights[0][j] = profWeights[j]

		T0 := Y
		var index int

		// proceed around the circle
		for i := 1; i <= narcs; i++ {
			// O + r*cos(angle)*X + r*sin(angle)*Y
			var P2 vec3.T
			if r < internal.Epsilon {
				P2 = O
			} else {
				xCompon := X.Scaled(r * cosines[i])
				yCompon := Y.Scaled(r * sines[i])
				offset := vec3.Add(&xCompon, &yCompon)
				P2 = vec3.Add(&O, &offset)
			}

			controlPoints[index+2][j] = P2
			weights[index+2][j] = profWeights[j]

			// tangent of the rotation at P2
			temp0 := Y.Scaled(cosines[i])
			temp1 := X.Scaled(sines[i])
			T2 := vec3.Sub(&temp0, &temp1)

			// the middle control point sits where the end tangents meet
			if r < internal.Epsilon {
				controlPoints[index+1][j] = O
			} else {
				inters, ok := intersect.Rays(&P0, &T0, &P2, &T2)
				if !ok || !inters.Intersecting() {
					return nil, fmt.Errorf("%w: revolution tangents do not intersect", nurbs.ErrGeometricFailure)
				}

				controlPoints[index+1][j] = inters.Point0
			}

			weights[index+1][j] = wm * profWeights[j]

			index += 2

			if i < narcs {
				P0 = P2
				T0 = T2
			}
		}
	}

	return nurbs.NewNurbsSurfaceUnchecked(2, profile.Degree(), controlPoints, weights, knotsU, profile.Knots()), nil
}

// SphericalSurface generates a sphere by revolving a half-circle
// profile about the axis.
func SphericalSurface(center *vec3.T, axis, xaxis *vec3.T, radius float64) (*nurbs.NurbsSurface, error) {
	invAxis := axis.Inverted()
	arc, err := Arc(center, &invAxis, xaxis, radius, 0, math.Pi)
	if err != nil {
		return nil, err
	}

	return RevolvedSurface(arc, center, axis, 2*math.Pi)
}

// ConicalSurface generates a cone with the given base position,
// height and base radius about a normalized axis.
func ConicalSurface(axis, xaxis *vec3.T, base *vec3.T, height, radius float64) (*nurbs.NurbsSurface, error) {
	heightCompon := axis.Scaled(height)
	radiusCompon := xaxis.Scaled(radius)
	profCtrlPts := []vec3.T{vec3.Add(base, &heightCompon), vec3.Add(base, &radiusCompon)}
	profKnots := []float64{0, 0, 1, 1}
	profWeights := []float64{1, 1}
	prof := nurbs.NewNurbsCurveUnchecked(1, profCtrlPts, profWeights, profKnots)

	return RevolvedSurface(prof, base, axis, 2*math.Pi)
}
