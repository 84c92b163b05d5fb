package internal

import "math"

// Mat2Solve solves the 2x2 system
//
//	| a b | |x|   |e|
//	| c d | |y| = |f|
//
// by Cramer's rule. ok is false when the determinant vanishes under
// Epsilon.
func Mat2Solve(a, b, c, d, e, f float64) (x, y float64, ok bool) {
	det := a*d - b*c
	if math.Abs(det) < Epsilon {
		return 0, 0, false
	}

	x = (e*d - b*f) / det
	y = (a*f - e*c) / det
	return x, y, true
}
