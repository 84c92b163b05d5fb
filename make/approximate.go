package make

import (
	"fmt"

	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// ApproximatedSurface generates a least-squares fit of a point grid
// with the requested control net size, which must be strictly smaller
// than the grid in both directions. The first and last control rows
// are pinned to the data boundary in each direction; the interior is
// the solution of the normal equations NᵀN X = NᵀR, factored once per
// direction. All weights are 1.
func ApproximatedSurface(points [][]vec3.T, degreeU, degreeV, rows, cols int) (*nurbs.NurbsSurface, error) {
	dataRows := len(points)
	if dataRows == 0 || len(points[0]) == 0 {
		return nil, fmt.Errorf("%w: through points cannot be empty", nurbs.ErrInvalidArgument)
	}
	dataCols := len(points[0])

	if rows <= degreeU+1 || cols <= degreeV+1 {
		return nil, fmt.Errorf("%w: control net too small for the degrees", nurbs.ErrInvalidArgument)
	}
	if rows >= dataRows || cols >= dataCols {
		return nil, fmt.Errorf("%w: control net must be smaller than the data grid", nurbs.ErrInvalidArgument)
	}

	uk, vl := internal.SurfaceMeshParams(points)
	knotsU := internal.ApproxKnots(degreeU, rows, uk)
	knotsV := internal.ApproxKnots(degreeV, cols, vl)

	fitU, err := newLeastSquares(degreeU, rows, knotsU, uk)
	if err != nil {
		return nil, err
	}

	// u direction: fit every data column
	temp := make([][]vec3.T, rows)
	for i := range temp {
		temp[i] = make([]vec3.T, dataCols)
	}

	column := make([]vec3.T, dataRows)
	for j := 0; j < dataCols; j++ {
		for i := 0; i < dataRows; i++ {
			column[i] = points[i][j]
		}

		fitted, err := fitU.fit(column)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			temp[i][j] = fitted[i]
		}
	}

	// v direction: fit every intermediate row
	fitV, err := newLeastSquares(degreeV, cols, knotsV, vl)
	if err != nil {
		return nil, err
	}

	controlPoints := make([][]vec3.T, rows)
	weights := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		fitted, err := fitV.fit(temp[i])
		if err != nil {
			return nil, err
		}

		controlPoints[i] = fitted
		weights[i] = make([]float64, cols)
		for j := range weights[i] {
			weights[i][j] = 1
		}
	}

	return nurbs.NewNurbsSurfaceUnchecked(degreeU, degreeV, controlPoints, weights, knotsU, knotsV), nil
}

// leastSquares fits one direction: sampled basis values plus the LU
// factorization of the interior normal matrix.
type leastSquares struct {
	numCtrl int
	basis   [][]float64 // basis[i][j] = N_j(params[i])
	lu      mat.LU
}

func newLeastSquares(degree, numCtrl int, knots internal.KnotVec, params []float64) (*leastSquares, error) {
	numData := len(params)
	n := numCtrl - 1

	basis := make([][]float64, numData)
	for i, u := range params {
		basis[i] = make([]float64, numCtrl)
		for j := 0; j <= n; j++ {
			basis[i][j] = internal.OneBasisFunction(j, degree, knots, u)
		}
	}

	// interior collocation matrix over the free control points
	interior := mat.NewDense(numData-2, n-1, nil)
	for i := 1; i < numData-1; i++ {
		for j := 1; j < n; j++ {
			interior.Set(i-1, j-1, basis[i][j])
		}
	}

	var ntn mat.Dense
	ntn.Mul(interior.T(), interior)

	fitter := &leastSquares{numCtrl: numCtrl, basis: basis}
	fitter.lu.Factorize(&ntn)

	return fitter, nil
}

// fit solves the pinned-boundary normal equations for one polyline of
// data points.
func (this *leastSquares) fit(data []vec3.T) ([]vec3.T, error) {
	numData := len(data)
	n := this.numCtrl - 1

	q0, qn := data[0], data[numData-1]

	// residuals against the pinned boundary contributions
	rk := make([]vec3.T, numData)
	for i := 1; i < numData-1; i++ {
		first := q0.Scaled(this.basis[i][0])
		last := qn.Scaled(this.basis[i][n])

		rk[i] = data[i]
		rk[i].Sub(&first)
		rk[i].Sub(&last)
	}

	// right-hand side NᵀR
	rhs := mat.NewDense(n-1, 3, nil)
	for j := 1; j < n; j++ {
		var sum vec3.T
		for i := 1; i < numData-1; i++ {
			scaled := rk[i].Scaled(this.basis[i][j])
			sum.Add(&scaled)
		}
		rhs.SetRow(j-1, sum[:])
	}

	var sol mat.Dense
	if err := this.lu.SolveTo(&sol, false, rhs); err != nil {
		return nil, fmt.Errorf("%w: singular normal equations", nurbs.ErrGeometricFailure)
	}

	fitted := make([]vec3.T, this.numCtrl)
	fitted[0] = q0
	fitted[n] = qn
	for j := 1; j < n; j++ {
		fitted[j] = vec3.T{sol.At(j-1, 0), sol.At(j-1, 1), sol.At(j-1, 2)}
	}

	return fitted, nil
}
