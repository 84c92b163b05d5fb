package make

import (
	"fmt"

	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// SweptSurface generates a surface by translating a profile curve
// along a rail curve.
func SweptSurface(profile, rail *nurbs.NurbsCurve) (*nurbs.NurbsSurface, error) {
	startu, endu := rail.Domain()
	pt0 := rail.Point(startu)

	numSamples := 2 * len(rail.ControlPoints())
	span := (endu - startu) / float64(numSamples-1)

	crvs := make([]*nurbs.NurbsCurve, numSamples)

	for i := range crvs {
		pt := rail.Point(startu + float64(i)*span)
		pt.Sub(&pt0)

		m := mat4.Ident
		m.SetTranslation(&pt)
		crvs[i] = profile.Transform(&m)
	}

	return LoftedSurface(crvs, 3)
}

// LoftedSurface generates a surface passing through a collection of
// section curves. The sections are unified to a common degree and
// knot vector along u; the net is interpolated across them in v.
func LoftedSurface(curves []*nurbs.NurbsCurve, degreeV int) (*nurbs.NurbsSurface, error) {
	if len(curves) < 2 {
		return nil, fmt.Errorf("%w: lofting needs at least two sections", nurbs.ErrInvalidArgument)
	}

	unified := nurbs.UnifyCurveKnotVectors(curves)

	degreeU := unified[0].Degree()
	if degreeV > len(curves)-1 {
		degreeV = len(curves) - 1
	}

	knotsU := unified[0].Knots()

	crvCtrlPts := make([][]vec3.T, len(unified))
	for j := range crvCtrlPts {
		crvCtrlPts[j] = unified[j].ControlPoints()
	}
	numCtrl := len(crvCtrlPts[0])

	// parameterize the sections by averaged chord length across the
	// control columns
	params, _ := internal.SurfaceMeshParams(crvCtrlPts)
	knotsV := internal.AveragedKnots(degreeV, params)

	lu, err := basisLU(degreeV, knotsV, params)
	if err != nil {
		return nil, err
	}

	controlPoints := make([][]vec3.T, numCtrl)
	weights := make([][]float64, numCtrl)

	rhs := mat.NewDense(len(unified), 3, nil)

	for i := 0; i < numCtrl; i++ {
		var sol mat.Dense
		for j := range unified {
			rhs.SetRow(j, crvCtrlPts[j][i][:])
		}
		if err := lu.SolveTo(&sol, false, rhs); err != nil {
			return nil, fmt.Errorf("%w: singular loft interpolation", nurbs.ErrGeometricFailure)
		}

		controlPoints[i] = make([]vec3.T, len(unified))
		weights[i] = make([]float64, len(unified))
		for j := range unified {
			controlPoints[i][j] = vec3.T{sol.At(j, 0), sol.At(j, 1), sol.At(j, 2)}
			weights[i][j] = 1
		}
	}

	return nurbs.NewNurbsSurfaceUnchecked(degreeU, degreeV, controlPoints, weights, knotsU, knotsV), nil
}
