package nurbs

import (
	. "github.com/tianhaichen/nurbs/internal"
)

// ReverseU flips the u parameter direction of the surface while
// preserving its geometry. Applying it twice restores the original
// patch.
func (this *NurbsSurface) ReverseU() *NurbsSurface {
	cpts := make([][]HomoPoint, len(this.controlPoints))
	for i := range cpts {
		cpts[i] = append([]HomoPoint(nil), this.controlPoints[len(this.controlPoints)-1-i]...)
	}

	return &NurbsSurface{
		this.degreeU, this.degreeV,
		cpts,
		this.knotsU.Reversed(), this.knotsV.Clone(),
	}
}

// ReverseV flips the v parameter direction of the surface while
// preserving its geometry.
func (this *NurbsSurface) ReverseV() *NurbsSurface {
	cpts := make([][]HomoPoint, len(this.controlPoints))
	for i, row := range this.controlPoints {
		reversedRow := make([]HomoPoint, len(row))
		for j := range reversedRow {
			reversedRow[j] = row[len(row)-1-j]
		}
		cpts[i] = reversedRow
	}

	return &NurbsSurface{
		this.degreeU, this.degreeV,
		cpts,
		this.knotsU.Clone(), this.knotsV.Reversed(),
	}
}
