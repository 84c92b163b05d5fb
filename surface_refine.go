package nurbs

import (
	"math"

	. "github.com/tianhaichen/nurbs/internal"
)

// mapRows applies a curve operation to every row of the active
// direction: directly for V, through a transpose for U. The active
// knot vector and degree come from the representative per-row result;
// the inactive direction passes through untouched. The operation must
// produce the same knot vector for every row given identical knots,
// which holds for all the refiners below.
func (this *NurbsSurface) mapRows(useV bool, op func(*NurbsCurve) (*NurbsCurve, error)) (*NurbsSurface, error) {
	ctrlPts := this.controlPoints
	knots := this.knotsV
	degree := this.degreeV

	if !useV {
		ctrlPts = transposed(this.controlPoints)
		knots = this.knotsU
		degree = this.degreeU
	}

	newPts := make([][]HomoPoint, len(ctrlPts))
	baseCurve := NurbsCurve{degree: degree, knots: knots}
	var res *NurbsCurve

	for i, row := range ctrlPts {
		baseCurve.controlPoints = row

		var err error
		res, err = op(&baseCurve)
		if err != nil {
			return nil, err
		}

		newPts[i] = res.controlPoints
	}

	if !useV {
		return &NurbsSurface{
			res.degree, this.degreeV,
			transposed(newPts),
			res.knots, this.knotsV.Clone(),
		}, nil
	}

	return &NurbsSurface{
		this.degreeU, res.degree,
		newPts,
		this.knotsU.Clone(), res.knots,
	}, nil
}

// InsertKnot inserts the knot u up to times times in the chosen
// direction. Insertion at saturated multiplicity is a no-op.
func (this *NurbsSurface) InsertKnot(u float64, times int, useV bool) *NurbsSurface {
	srf, _ := this.mapRows(useV, func(c *NurbsCurve) (*NurbsCurve, error) {
		return c.InsertKnot(u, times), nil
	})
	return srf
}

// RefineKnots inserts a sorted collection of knots in the chosen
// direction.
func (this *NurbsSurface) RefineKnots(knotsToInsert []float64, useV bool) *NurbsSurface {
	srf, _ := this.mapRows(useV, func(c *NurbsCurve) (*NurbsCurve, error) {
		return c.knotRefine(KnotVec(knotsToInsert)), nil
	})
	return srf
}

// RemoveKnot removes the knot u up to times times in the chosen
// direction, as far as tolerance permits on every row.
func (this *NurbsSurface) RemoveKnot(u float64, times int, useV bool) *NurbsSurface {
	ctrlPts := this.controlPoints
	knots := this.knotsV
	degree := this.degreeV

	if !useV {
		ctrlPts = transposed(this.controlPoints)
		knots = this.knotsU
		degree = this.degreeU
	}

	// every row must lose the same number of copies; probe first
	removable := times
	baseCurve := NurbsCurve{degree: degree, knots: knots}
	for _, row := range ctrlPts {
		baseCurve.controlPoints = row
		res := baseCurve.RemoveKnot(u, times)

		if removed := len(row) - len(res.controlPoints); removed < removable {
			removable = removed
		}
		if removable == 0 {
			return this.clone()
		}
	}

	srf, _ := this.mapRows(useV, func(c *NurbsCurve) (*NurbsCurve, error) {
		return c.RemoveKnot(u, removable), nil
	})
	return srf
}

// ElevateDegree raises the degree in the chosen direction by times.
func (this *NurbsSurface) ElevateDegree(times int, useV bool) *NurbsSurface {
	srf, _ := this.mapRows(useV, func(c *NurbsCurve) (*NurbsCurve, error) {
		return c.ElevateDegree(times), nil
	})
	return srf
}

// ReduceDegree lowers the degree in the chosen direction by one. It
// fails when any row exceeds tolerance.
func (this *NurbsSurface) ReduceDegree(useV bool) (*NurbsSurface, error) {
	return this.mapRows(useV, func(c *NurbsCurve) (*NurbsCurve, error) {
		return c.ReduceDegree()
	})
}

// ToBezierPatches decomposes the surface into a grid of bezier
// patches. Patch [i][j] covers u-span i and v-span j and keeps its
// subdomain knot vectors, so it evaluates at the original parameters.
func (this *NurbsSurface) ToBezierPatches() [][]*NurbsSurface {
	degreeU, degreeV := this.degreeU, this.degreeV

	// decompose every v-column into beziers along u
	cols := transposed(this.controlPoints)
	uSegs := make([][]*NurbsCurve, len(cols))
	colCurve := NurbsCurve{degree: degreeU, knots: this.knotsU}
	for j, col := range cols {
		colCurve.controlPoints = col
		uSegs[j] = colCurve.Beziers()
	}

	// then decompose every row of each u-slice along v
	patches := make([][]*NurbsSurface, len(uSegs[0]))
	rowCurve := NurbsCurve{degree: degreeV, knots: this.knotsV}

	for a := range patches {
		vSegs := make([][]*NurbsCurve, degreeU+1)
		for r := 0; r <= degreeU; r++ {
			row := make([]HomoPoint, len(cols))
			for j := range cols {
				row[j] = uSegs[j][a].controlPoints[r]
			}
			rowCurve.controlPoints = row
			vSegs[r] = rowCurve.Beziers()
		}

		patches[a] = make([]*NurbsSurface, len(vSegs[0]))
		for b := range patches[a] {
			grid := make([][]HomoPoint, degreeU+1)
			for r := 0; r <= degreeU; r++ {
				grid[r] = append([]HomoPoint(nil), vSegs[r][b].controlPoints...)
			}

			patches[a][b] = &NurbsSurface{
				degreeU, degreeV,
				grid,
				uSegs[0][a].knots.Clone(), vSegs[0][b].knots.Clone(),
			}
		}
	}

	return patches
}

// Split divides the surface at parameter u of the chosen direction.
func (this *NurbsSurface) Split(u float64, useV bool) (*NurbsSurface, *NurbsSurface) {
	ctrlPts := this.controlPoints
	knots := this.knotsV
	degree := this.degreeV

	if !useV {
		ctrlPts = transposed(this.controlPoints)
		knots = this.knotsU
		degree = this.degreeU
	}

	baseCurve := NurbsCurve{degree: degree, knots: knots}
	newPts0 := make([][]HomoPoint, len(ctrlPts))
	newPts1 := make([][]HomoPoint, len(ctrlPts))
	var knots0, knots1 KnotVec

	for i, row := range ctrlPts {
		baseCurve.controlPoints = row
		c0, c1 := baseCurve.Split(u)

		newPts0[i] = c0.controlPoints
		newPts1[i] = c1.controlPoints
		knots0, knots1 = c0.knots, c1.knots
	}

	if !useV {
		return &NurbsSurface{
				degree, this.degreeV,
				transposed(newPts0),
				knots0, this.knotsV.Clone(),
			}, &NurbsSurface{
				degree, this.degreeV,
				transposed(newPts1),
				knots1, this.knotsV.Clone(),
			}
	}

	return &NurbsSurface{
			this.degreeU, degree,
			newPts0,
			this.knotsU.Clone(), knots0,
		}, &NurbsSurface{
			this.degreeU, degree,
			newPts1,
			this.knotsU.Clone(), knots1,
		}
}

// Isocurve extracts the curve at a fixed parameter. With useV the
// parameter is a v value and the result runs along u; otherwise the
// parameter is a u value and the result runs along v.
func (this *NurbsSurface) Isocurve(u float64, useV bool) *NurbsCurve {
	knots := this.knotsU
	degree := this.degreeU
	if useV {
		knots = this.knotsV
		degree = this.degreeV
	}

	numKnotsToInsert := degree + 1 - knots.Multiplicity(u)

	newSrf := this
	if numKnotsToInsert > 0 {
		newKnots := make([]float64, numKnotsToInsert)
		for i := range newKnots {
			newKnots[i] = u
		}

		newSrf = this.RefineKnots(newKnots, useV)
	}

	// after refinement the on-curve control point sits right before the
	// full-multiplicity band
	refKnots := newSrf.knotsU
	if useV {
		refKnots = newSrf.knotsV
	}

	span := 0
	for i, knot := range refKnots {
		if math.Abs(knot-u) < Epsilon {
			span = i - degree - 1
		}
	}
	if span < 0 {
		span = 0
	}

	if useV {
		controlPoints := make([]HomoPoint, 0, len(newSrf.controlPoints))
		for _, row := range newSrf.controlPoints {
			controlPoints = append(controlPoints, row[span])
		}

		return &NurbsCurve{newSrf.degreeU, controlPoints, newSrf.knotsU.Clone()}
	}

	return &NurbsCurve{
		newSrf.degreeV,
		append([]HomoPoint(nil), newSrf.controlPoints[span]...),
		newSrf.knotsV.Clone(),
	}
}

// Boundaries extracts the four boundary curves: first the two curves
// in the v direction, then the two in the u direction.
func (this *NurbsSurface) Boundaries() []*NurbsCurve {
	return []*NurbsCurve{
		this.Isocurve(this.knotsU[0], false),
		this.Isocurve(this.knotsU[len(this.knotsU)-1], false),
		this.Isocurve(this.knotsV[0], true),
		this.Isocurve(this.knotsV[len(this.knotsV)-1], true),
	}
}
