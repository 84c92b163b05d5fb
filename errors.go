package nurbs

import "errors"

var (
	// ErrInvalidArgument reports a violated precondition: bad degree,
	// empty or non-monotone knot vector, broken sizing identity, zero
	// weight, empty grid.
	ErrInvalidArgument = errors.New("nurbs: invalid argument")

	// ErrGeometricFailure reports a construction that cannot proceed:
	// non-intersecting revolution tangents, mismatched ruled-surface
	// domains, degree reduction exceeding tolerance.
	ErrGeometricFailure = errors.New("nurbs: geometric failure")

	// ErrDegenerate reports a singular 2x2 system.
	ErrDegenerate = errors.New("nurbs: degenerate system")
)
