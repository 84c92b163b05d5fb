package make

import (
	"fmt"

	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// InterpolatedSurface generates a surface passing through every point
// of a rectangular grid. The grid is parameterized by averaged chord
// length; the control net is solved per v-column in u, then per u-row
// in v, each through an LU factorization of the basis matrix. All
// weights are 1.
func InterpolatedSurface(points [][]vec3.T, degreeU, degreeV int) (*nurbs.NurbsSurface, error) {
	rows := len(points)
	if rows == 0 || len(points[0]) == 0 {
		return nil, fmt.Errorf("%w: through points cannot be empty", nurbs.ErrInvalidArgument)
	}
	cols := len(points[0])

	if degreeU < 1 || degreeV < 1 || rows <= degreeU || cols <= degreeV {
		return nil, fmt.Errorf("%w: need at least degree+1 points per direction", nurbs.ErrInvalidArgument)
	}

	uk, vl := internal.SurfaceMeshParams(points)
	knotsU := internal.AveragedKnots(degreeU, uk)
	knotsV := internal.AveragedKnots(degreeV, vl)

	// u direction: one interpolation per v-column, same matrix for all
	luU, err := basisLU(degreeU, knotsU, uk)
	if err != nil {
		return nil, err
	}

	temp := make([][]vec3.T, rows)
	for i := range temp {
		temp[i] = make([]vec3.T, cols)
	}

	rhs := mat.NewDense(rows, 3, nil)
	for l := 0; l < cols; l++ {
		var sol mat.Dense
		for k := 0; k < rows; k++ {
			rhs.SetRow(k, points[k][l][:])
		}
		if err := luU.SolveTo(&sol, false, rhs); err != nil {
			return nil, fmt.Errorf("%w: singular interpolation system", nurbs.ErrGeometricFailure)
		}
		for k := 0; k < rows; k++ {
			temp[k][l] = vec3.T{sol.At(k, 0), sol.At(k, 1), sol.At(k, 2)}
		}
	}

	// v direction: one interpolation per resulting u-row
	luV, err := basisLU(degreeV, knotsV, vl)
	if err != nil {
		return nil, err
	}

	controlPoints := make([][]vec3.T, rows)
	weights := make([][]float64, rows)

	rhs = mat.NewDense(cols, 3, nil)
	for i := 0; i < rows; i++ {
		var sol mat.Dense
		for l := 0; l < cols; l++ {
			rhs.SetRow(l, temp[i][l][:])
		}
		if err := luV.SolveTo(&sol, false, rhs); err != nil {
			return nil, fmt.Errorf("%w: singular interpolation system", nurbs.ErrGeometricFailure)
		}

		controlPoints[i] = make([]vec3.T, cols)
		weights[i] = make([]float64, cols)
		for l := 0; l < cols; l++ {
			controlPoints[i][l] = vec3.T{sol.At(l, 0), sol.At(l, 1), sol.At(l, 2)}
			weights[i][l] = 1
		}
	}

	return nurbs.NewNurbsSurfaceUnchecked(degreeU, degreeV, controlPoints, weights, knotsU, knotsV), nil
}

// basisLU factors the square collocation matrix A[k][j] = N_j(params[k]).
func basisLU(degree int, knots internal.KnotVec, params []float64) (*mat.LU, error) {
	n := len(params)

	a := mat.NewDense(n, n, nil)
	for k, u := range params {
		span := knots.SpanGivenN(n-1, degree, u)
		vals := internal.BasisFunctionsGivenKnotSpanIndex(span, u, degree, knots)
		for j, val := range vals {
			a.Set(k, span-degree+j, val)
		}
	}

	var lu mat.LU
	lu.Factorize(a)

	return &lu, nil
}

// BicubicSurface generates a bicubic patch interpolating a grid of
// points by the local scheme: per-row and per-column C1 cubic fits
// assemble a piecewise-bezier net, and the interior points of every
// cell are corrected from estimated twist vectors with the Ferguson
// formulas. Knot vectors carry full bezier multiplicity at the
// averaged chord parameters.
func BicubicSurface(points [][]vec3.T) (*nurbs.NurbsSurface, error) {
	rows := len(points)
	if rows < 2 || len(points[0]) < 2 {
		return nil, fmt.Errorf("%w: need at least a 2x2 grid", nurbs.ErrInvalidArgument)
	}
	cols := len(points[0])
	n, m := rows-1, cols-1

	ub, vb := internal.SurfaceMeshParams(points)

	// tangents along u per column, along v per row
	tangentU := make([][]vec3.T, rows)
	for i := range tangentU {
		tangentU[i] = make([]vec3.T, cols)
	}
	tangentV := make([][]vec3.T, rows)

	for l := 0; l < cols; l++ {
		column := make([]vec3.T, rows)
		for k := 0; k < rows; k++ {
			column[k] = points[k][l]
		}

		tans, ok := internal.Tangents(column)
		if !ok {
			return nil, fmt.Errorf("%w: degenerate column tangents", nurbs.ErrGeometricFailure)
		}
		for k := 0; k < rows; k++ {
			tangentU[k][l] = tans[k]
		}
	}
	for k := 0; k < rows; k++ {
		tans, ok := internal.Tangents(points[k])
		if !ok {
			return nil, fmt.Errorf("%w: degenerate row tangents", nurbs.ErrGeometricFailure)
		}
		tangentV[k] = tans
	}

	// local cubic fits: rows first, then the columns of the row net
	rowNet := make([][]vec3.T, rows)
	for k := 0; k < rows; k++ {
		_, bez, ok := internal.LocalCubicFit(points[k])
		if !ok {
			return nil, fmt.Errorf("%w: degenerate row fit", nurbs.ErrGeometricFailure)
		}
		rowNet[k] = bez
	}

	grid := make([][]vec3.T, 3*n+1)
	for i := range grid {
		grid[i] = make([]vec3.T, 3*m+1)
	}

	column := make([]vec3.T, rows)
	for c := 0; c <= 3*m; c++ {
		for k := 0; k < rows; k++ {
			column[k] = rowNet[k][c]
		}

		_, bez, ok := internal.LocalCubicFit(column)
		if !ok {
			return nil, fmt.Errorf("%w: degenerate column fit", nurbs.ErrGeometricFailure)
		}
		for i := 0; i <= 3*n; i++ {
			grid[i][c] = bez[i]
		}
	}

	// twist vectors by weighted mixed differences of the tangents
	twist := make([][]vec3.T, rows)
	for k := 0; k < rows; k++ {
		twist[k] = make([]vec3.T, cols)
		for l := 0; l < cols; l++ {
			twist[k][l] = twistAt(points, tangentU, tangentV, ub, vb, k, l)
		}
	}

	// Ferguson interior corrections per cell
	for k := 0; k < n; k++ {
		for l := 0; l < m; l++ {
			gamma := (ub[k+1] - ub[k]) * (vb[l+1] - vb[l]) / 9
			a, b := 3*k, 3*l

			grid[a+1][b+1] = fergusonPoint(twist[k][l], gamma, grid[a][b+1], grid[a+1][b], grid[a][b])
			grid[a+2][b+1] = fergusonPoint(twist[k+1][l], -gamma, grid[a+3][b+1], grid[a+2][b], grid[a+3][b])
			grid[a+1][b+2] = fergusonPoint(twist[k][l+1], -gamma, grid[a+1][b+3], grid[a][b+2], grid[a][b+3])
			grid[a+2][b+2] = fergusonPoint(twist[k+1][l+1], gamma, grid[a+2][b+3], grid[a+3][b+2], grid[a+3][b+3])
		}
	}

	knotsU := bezierKnots(ub)
	knotsV := bezierKnots(vb)

	weights := make([][]float64, len(grid))
	for i := range weights {
		weights[i] = make([]float64, len(grid[0]))
		for j := range weights[i] {
			weights[i][j] = 1
		}
	}

	return nurbs.NewNurbsSurfaceUnchecked(3, 3, grid, weights, knotsU, knotsV), nil
}

// fergusonPoint assembles an interior bezier point from the two edge
// neighbors, the shared corner, and the scaled twist.
func fergusonPoint(twist vec3.T, gamma float64, edge0, edge1, corner vec3.T) vec3.T {
	pt := twist.Scaled(gamma)
	pt.Add(&edge0)
	pt.Add(&edge1)
	pt.Sub(&corner)
	return pt
}

// twistAt estimates the mixed second derivative at a grid node by a
// weighted average of the one-sided mixed differences; boundary nodes
// fall back to their single available side.
func twistAt(points, tangentU, tangentV [][]vec3.T, ub, vb []float64, k, l int) vec3.T {
	n := len(points) - 1
	m := len(points[0]) - 1

	var ak, bl float64
	if k > 0 && k < n {
		ak = (ub[k] - ub[k-1]) / ((ub[k] - ub[k-1]) + (ub[k+1] - ub[k]))
	} else if k == n {
		ak = 1
	}
	if l > 0 && l < m {
		bl = (vb[l] - vb[l-1]) / ((vb[l] - vb[l-1]) + (vb[l+1] - vb[l]))
	} else if l == m {
		bl = 1
	}

	if ak+bl < internal.Epsilon {
		return vec3.T{}
	}

	// d/du of the v-tangent field
	dvu := sidedDiff(
		k, n, ak,
		func(i int) vec3.T { return tangentV[i][l] },
		ub,
	)

	// d/dv of the u-tangent field
	duv := sidedDiff(
		l, m, bl,
		func(j int) vec3.T { return tangentU[k][j] },
		vb,
	)

	duvScaled := duv.Scaled(ak)
	dvuScaled := dvu.Scaled(bl)
	sum := vec3.Add(&duvScaled, &dvuScaled)
	return sum.Scaled(1 / (ak + bl))
}

// sidedDiff blends the backward and forward difference quotients of a
// vector field along one grid direction.
func sidedDiff(i, last int, alpha float64, field func(int) vec3.T, params []float64) vec3.T {
	var left, right vec3.T

	if i > 0 {
		curr, prev := field(i), field(i-1)
		left = vec3.Sub(&curr, &prev)
		left.Scale(1 / (params[i] - params[i-1]))
	}
	if i < last {
		next, curr := field(i+1), field(i)
		right = vec3.Sub(&next, &curr)
		right.Scale(1 / (params[i+1] - params[i]))
	}

	if i == 0 {
		return right
	}
	if i == last {
		return left
	}

	left.Scale(1 - alpha)
	right.Scale(alpha)
	return vec3.Add(&left, &right)
}

// bezierKnots builds a clamped cubic knot vector with full bezier
// multiplicity at the interior parameters.
func bezierKnots(params []float64) []float64 {
	n := len(params) - 1
	knots := make([]float64, 0, 3*n+5)

	knots = append(knots, 0, 0, 0, 0)
	for k := 1; k < n; k++ {
		knots = append(knots, params[k], params[k], params[k])
	}
	knots = append(knots, 1, 1, 1, 1)

	return knots
}
