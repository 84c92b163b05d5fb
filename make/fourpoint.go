package make

import (
	"github.com/tianhaichen/nurbs"
	"github.com/ungerik/go3d/float64/vec3"
)

// BilinearSurface generates a bicubic patch through four corner
// points given in counter-clockwise order. The 4x4 control grid is
// the bilinear blend of the corners at parameters i/3, j/3.
func BilinearSurface(p00, p10, p11, p01 *vec3.T) *nurbs.NurbsSurface {
	return FourPointSurface(p00, p10, p11, p01, 3)
}

// FourPointSurface generates a surface of the given degree defined by
// four corner points in counter-clockwise order.
func FourPointSurface(p1, p2, p3, p4 *vec3.T, degree int) *nurbs.NurbsSurface {
	degreeFloat := float64(degree)

	pts := make([][]vec3.T, degree+1)
	for i := range pts {
		u := float64(i) / degreeFloat

		row := make([]vec3.T, degree+1)
		for j := range row {
			v := float64(j) / degreeFloat

			p1p2 := vec3.Interpolate(p1, p2, u)
			p4p3 := vec3.Interpolate(p4, p3, u)

			row[j] = vec3.Interpolate(&p1p2, &p4p3, v)
		}

		pts[i] = row
	}

	// uniform weights
	weights := make([][]float64, degree+1)
	for i := range weights {
		weightRow := make([]float64, degree+1)
		for j := range weightRow {
			weightRow[j] = 1
		}
		weights[i] = weightRow
	}

	knots := make([]float64, 2*(degree+1))
	for i := degree + 1; i < len(knots); i++ {
		knots[i] = 1
	}

	return nurbs.NewNurbsSurfaceUnchecked(degree, degree, pts, weights, knots, knots)
}
