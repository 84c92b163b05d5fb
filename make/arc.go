package make

import (
	"fmt"
	"math"

	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/intersect"
	"github.com/ungerik/go3d/float64/vec3"
)

// Arc generates a circular arc about the center, spanning startAngle
// to endAngle on the plane of the orthonormal axes.
//
// Corresponds to algorithm A7.1 (Piegl & Tiller).
func Arc(center *vec3.T, xaxis, yaxis *vec3.T, radius float64, startAngle, endAngle float64) (*nurbs.NurbsCurve, error) {
	xaxisScaled, yaxisScaled := xaxis.Scaled(radius), yaxis.Scaled(radius)
	return EllipseArc(center, &xaxisScaled, &yaxisScaled, startAngle, endAngle)
}

// Circle generates a full circle about the center on the plane of the
// orthonormal axes.
func Circle(center *vec3.T, xaxis, yaxis *vec3.T, radius float64) (*nurbs.NurbsCurve, error) {
	return Arc(center, xaxis, yaxis, radius, 0, 2*math.Pi)
}

// Ellipse generates a full ellipse with the given scaled axes.
func Ellipse(center *vec3.T, xaxis, yaxis *vec3.T) (*nurbs.NurbsCurve, error) {
	return EllipseArc(center, xaxis, yaxis, 0, 2*math.Pi)
}

// EllipseArc generates an elliptical arc with the given scaled axes.
// The arc is pieced from at most four rational quadratic segments,
// each spanning at most a quarter turn.
func EllipseArc(center *vec3.T, xaxis, yaxis *vec3.T, startAngle, endAngle float64) (*nurbs.NurbsCurve, error) {
	xradius, yradius := xaxis.Length(), yaxis.Length()

	xaxisNorm, yaxisNorm := xaxis.Normalized(), yaxis.Normalized()

	// if the end angle is less than the start angle, wrap around
	if endAngle < startAngle {
		endAngle = 2.0*math.Pi + startAngle
	}

	theta := endAngle - startAngle

	var numArcs int
	switch {
	case theta <= math.Pi/2:
		numArcs = 1
	case theta <= math.Pi:
		numArcs = 2
	case theta <= 3*math.Pi/2:
		numArcs = 3
	default:
		numArcs = 4
	}

	dtheta := theta / float64(numArcs)
	w1 := math.Cos(dtheta / 2)

	xCompon := xaxisNorm.Scaled(xradius * math.Cos(startAngle))
	yCompon := yaxisNorm.Scaled(yradius * math.Sin(startAngle))
	offset := vec3.Add(&xCompon, &yCompon)
	P0 := vec3.Add(center, &offset)

	temp0 := yaxisNorm.Scaled(math.Cos(startAngle))
	temp1 := xaxisNorm.Scaled(math.Sin(startAngle))
	T0 := vec3.Sub(&temp0, &temp1)

	controlPoints := make([]vec3.T, 2*numArcs+1)
	weights := make([]float64, 2*numArcs+1)
	knots := make([]float64, 2*numArcs+4)
	index := 0
	angle := startAngle

	controlPoints[0] = P0
	weights[0] = 1.0

	for i := 1; i <= numArcs; i++ {
		angle += dtheta
		xCompon = xaxisNorm.Scaled(xradius * math.Cos(angle))
		yCompon = yaxisNorm.Scaled(yradius * math.Sin(angle))
		offset = vec3.Add(&xCompon, &yCompon)
		P2 := vec3.Add(center, &offset)

		weights[index+2] = 1
		controlPoints[index+2] = P2

		temp0 := yaxisNorm.Scaled(math.Cos(angle))
		temp1 := xaxisNorm.Scaled(math.Sin(angle))
		T2 := vec3.Sub(&temp0, &temp1)

		inters, ok := intersect.Rays(&P0, &T0, &P2, &T2)
		if !ok {
			return nil, fmt.Errorf("%w: arc tangents do not intersect", nurbs.ErrGeometricFailure)
		}

		weights[index+1] = w1
		controlPoints[index+1] = inters.Point0

		index += 2

		if i < numArcs {
			P0 = P2
			T0 = T2
		}
	}

	j := 2*numArcs + 1

	for i := 0; i < 3; i++ {
		knots[i] = 0.0
		knots[i+j] = 1.0
	}

	switch numArcs {
	case 2:
		knots[3] = 0.5
		knots[4] = 0.5
	case 3:
		knots[3] = 1.0 / 3
		knots[4] = 1.0 / 3

		knots[5] = 2.0 / 3
		knots[6] = 2.0 / 3
	case 4:
		knots[3] = 0.25
		knots[4] = 0.25

		knots[5] = 0.5
		knots[6] = 0.5

		knots[7] = 0.75
		knots[8] = 0.75
	}

	return nurbs.NewNurbsCurveUnchecked(2, controlPoints, weights, knots), nil
}

// BezierCurve generates a bezier curve of any degree through its
// control points with uniform weights.
func BezierCurve(controlPoints []vec3.T) *nurbs.NurbsCurve {
	degree := len(controlPoints) - 1

	weights := make([]float64, len(controlPoints))
	for i := range weights {
		weights[i] = 1
	}

	knots := make([]float64, 2*degree+2)
	for i := len(knots) / 2; i < len(knots); i++ {
		knots[i] = 1
	}

	return nurbs.NewNurbsCurveUnchecked(degree, controlPoints, weights, knots)
}
