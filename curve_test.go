package nurbs

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ungerik/go3d/float64/vec3"
)

func approx(tol float64) cmp.Option {
	return cmpopts.EquateApprox(0, tol)
}

// quarterArc is a rational quadratic quarter circle of radius 1 in the
// xy plane.
func quarterArc() *NurbsCurve {
	w := math.Sqrt2 / 2
	return NewNurbsCurveUnchecked(
		2,
		[]vec3.T{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[]float64{1, w, 1},
		[]float64{0, 0, 0, 1, 1, 1},
	)
}

func cubicBezier() *NurbsCurve {
	return NewNurbsCurveUnchecked(
		3,
		[]vec3.T{{0, 0, 0}, {1, 2, 0}, {2, -1, 1}, {3, 0, 0}},
		[]float64{1, 1, 1, 1},
		[]float64{0, 0, 0, 0, 1, 1, 1, 1},
	)
}

func TestCurvePoint(t *testing.T) {
	arc := quarterArc()

	got := arc.Point(0.5)
	want := vec3.T{math.Sqrt2 / 2, math.Sqrt2 / 2, 0}

	if diff := cmp.Diff(want, got, approx(1e-12)); diff != "" {
		t.Errorf("arc midpoint mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(vec3.T{1, 0, 0}, arc.Point(0), approx(1e-12)); diff != "" {
		t.Errorf("arc start mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(vec3.T{0, 1, 0}, arc.Point(1), approx(1e-12)); diff != "" {
		t.Errorf("arc end mismatch (-want +got):\n%s", diff)
	}
}

func TestCurveDerivatives(t *testing.T) {
	line := NewNurbsCurveUnchecked(
		1,
		[]vec3.T{{0, 0, 0}, {2, 0, 0}},
		[]float64{1, 1},
		[]float64{0, 0, 1, 1},
	)

	derivs := line.Derivatives(0.3, 1)

	if diff := cmp.Diff(vec3.T{0.6, 0, 0}, derivs[0], approx(1e-12)); diff != "" {
		t.Errorf("point mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(vec3.T{2, 0, 0}, derivs[1], approx(1e-12)); diff != "" {
		t.Errorf("tangent mismatch (-want +got):\n%s", diff)
	}
}

func TestCurveDerivativesFiniteDiff(t *testing.T) {
	arc := quarterArc()

	const h = 1e-6
	u := 0.37

	plus, minus := arc.Point(u+h), arc.Point(u-h)
	fd := vec3.Sub(&plus, &minus)
	fd.Scale(1 / (2 * h))

	got := arc.Derivatives(u, 1)[1]

	if diff := cmp.Diff(fd, got, approx(1e-5)); diff != "" {
		t.Errorf("first derivative mismatch (-want +got):\n%s", diff)
	}
}

func TestCurveInsertKnotSizing(t *testing.T) {
	crv := cubicBezier()

	inserted := crv.InsertKnot(0.4, 2)

	if got, want := len(inserted.Knots()), len(crv.Knots())+2; got != want {
		t.Fatalf("knot count = %d, want %d", got, want)
	}
	if got, want := len(inserted.ControlPoints()), len(crv.ControlPoints())+2; got != want {
		t.Fatalf("control point count = %d, want %d", got, want)
	}

	for _, u := range []float64{0, 0.2, 0.4, 0.6, 1} {
		if diff := cmp.Diff(crv.Point(u), inserted.Point(u), approx(1e-12)); diff != "" {
			t.Errorf("point changed at %v (-want +got):\n%s", u, diff)
		}
	}
}

func TestCurveInsertKnotSaturation(t *testing.T) {
	crv := NewNurbsCurveUnchecked(
		2,
		[]vec3.T{{0, 0, 0}, {1, 1, 0}, {2, 0, 0}, {3, 1, 0}, {4, 0, 0}},
		[]float64{1, 1, 1, 1, 1},
		[]float64{0, 0, 0, 0.5, 0.5, 1, 1, 1},
	)

	inserted := crv.InsertKnot(0.5, 1)

	if diff := cmp.Diff(crv.Knots(), inserted.Knots()); diff != "" {
		t.Errorf("saturated insertion changed knots (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(crv.ControlPoints(), inserted.ControlPoints()); diff != "" {
		t.Errorf("saturated insertion changed control points (-want +got):\n%s", diff)
	}
}

func TestCurveInsertRemoveRoundTrip(t *testing.T) {
	crv := cubicBezier()

	inserted := crv.InsertKnot(0.4, 2)
	removed := inserted.RemoveKnot(0.4, 2)

	if diff := cmp.Diff(crv.Knots(), removed.Knots(), approx(1e-9)); diff != "" {
		t.Errorf("knots not restored (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(crv.ControlPoints(), removed.ControlPoints(), approx(1e-9)); diff != "" {
		t.Errorf("control points not restored (-want +got):\n%s", diff)
	}
}

func TestCurveRemoveKnotUnremovable(t *testing.T) {
	// an interior knot of a non-smooth control polygon cannot be
	// removed within tolerance
	crv := NewNurbsCurveUnchecked(
		2,
		[]vec3.T{{0, 0, 0}, {1, 5, 0}, {2, -5, 0}, {3, 0, 0}},
		[]float64{1, 1, 1, 1},
		[]float64{0, 0, 0, 0.5, 1, 1, 1},
	)

	removed := crv.RemoveKnot(0.5, 1)

	if diff := cmp.Diff(crv.Knots(), removed.Knots()); diff != "" {
		t.Errorf("unremovable knot was removed (-want +got):\n%s", diff)
	}
}

func TestCurveKnotRefineEval(t *testing.T) {
	arc := quarterArc()
	refined := arc.RefineKnots([]float64{0.25, 0.5, 0.75})

	if got, want := len(refined.Knots()), len(arc.Knots())+3; got != want {
		t.Fatalf("knot count = %d, want %d", got, want)
	}

	for _, u := range []float64{0, 0.1, 0.25, 0.5, 0.77, 1} {
		if diff := cmp.Diff(arc.Point(u), refined.Point(u), approx(1e-12)); diff != "" {
			t.Errorf("point changed at %v (-want +got):\n%s", u, diff)
		}
	}
}

func TestCurveElevateDegreeEval(t *testing.T) {
	arc := quarterArc()
	elevated := arc.ElevateDegree(1)

	if got, want := elevated.Degree(), 3; got != want {
		t.Fatalf("degree = %d, want %d", got, want)
	}
	if got, want := len(elevated.Knots()), len(elevated.ControlPoints())+3+1; got != want {
		t.Fatalf("sizing: %d knots, want %d", got, want)
	}

	for _, u := range []float64{0, 0.2, 0.5, 0.8, 1} {
		if diff := cmp.Diff(arc.Point(u), elevated.Point(u), approx(1e-9)); diff != "" {
			t.Errorf("point changed at %v (-want +got):\n%s", u, diff)
		}
	}
}

func TestCurveElevateInteriorKnotEval(t *testing.T) {
	crv := NewNurbsCurveUnchecked(
		3,
		[]vec3.T{{0, 0, 0}, {1, 2, 0}, {2, -1, 1}, {3, 0, 0}, {4, 1, 0}},
		[]float64{1, 1, 1, 1, 1},
		[]float64{0, 0, 0, 0, 0.5, 1, 1, 1, 1},
	)

	elevated := crv.ElevateDegree(1)

	if got, want := elevated.Degree(), 4; got != want {
		t.Fatalf("degree = %d, want %d", got, want)
	}

	for _, u := range []float64{0, 0.25, 0.5, 0.6, 1} {
		if diff := cmp.Diff(crv.Point(u), elevated.Point(u), approx(1e-9)); diff != "" {
			t.Errorf("point changed at %v (-want +got):\n%s", u, diff)
		}
	}
}

func TestCurveReduceDegreeRoundTrip(t *testing.T) {
	crv := cubicBezier()

	elevated := crv.ElevateDegree(1)
	reduced, err := elevated.ReduceDegree()
	if err != nil {
		t.Fatalf("ReduceDegree: %v", err)
	}

	if got, want := reduced.Degree(), 3; got != want {
		t.Fatalf("degree = %d, want %d", got, want)
	}

	for _, u := range []float64{0, 0.3, 0.5, 0.9, 1} {
		if diff := cmp.Diff(crv.Point(u), reduced.Point(u), approx(1e-9)); diff != "" {
			t.Errorf("point changed at %v (-want +got):\n%s", u, diff)
		}
	}
}

func TestCurveReduceDegreeFails(t *testing.T) {
	if _, err := cubicBezier().ReduceDegree(); !errors.Is(err, ErrGeometricFailure) {
		t.Fatalf("err = %v, want ErrGeometricFailure", err)
	}
}

func TestCurveReverse(t *testing.T) {
	arc := quarterArc()
	reversed := arc.Reverse()

	for _, u := range []float64{0, 0.25, 0.5, 1} {
		if diff := cmp.Diff(arc.Point(1-u), reversed.Point(u), approx(1e-12)); diff != "" {
			t.Errorf("reverse mismatch at %v (-want +got):\n%s", u, diff)
		}
	}
}

func TestCurveSplit(t *testing.T) {
	arc := quarterArc()
	left, right := arc.Split(0.3)

	if diff := cmp.Diff(arc.Point(0.2), left.Point(0.2), approx(1e-12)); diff != "" {
		t.Errorf("left half mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(arc.Point(0.7), right.Point(0.7), approx(1e-12)); diff != "" {
		t.Errorf("right half mismatch (-want +got):\n%s", diff)
	}
}

func TestCurveBeziers(t *testing.T) {
	arc := quarterArc().RefineKnots([]float64{0.5})

	beziers := arc.Beziers()
	if got, want := len(beziers), 2; got != want {
		t.Fatalf("bezier count = %d, want %d", got, want)
	}

	for _, bez := range beziers {
		min, max := bez.Domain()
		mid := (min + max) / 2

		if diff := cmp.Diff(arc.Point(mid), bez.Point(mid), approx(1e-12)); diff != "" {
			t.Errorf("bezier mismatch at %v (-want +got):\n%s", mid, diff)
		}
	}
}

func TestCurveClosestParam(t *testing.T) {
	arc := quarterArc()

	u, _ := arc.ClosestParam(vec3.T{2, 2, 0})
	got := arc.Point(u)
	want := vec3.T{math.Sqrt2 / 2, math.Sqrt2 / 2, 0}

	if diff := cmp.Diff(want, got, approx(1e-4)); diff != "" {
		t.Errorf("closest point mismatch (-want +got):\n%s", diff)
	}
}

func TestUnifyCurveKnotVectors(t *testing.T) {
	line := NewNurbsCurveUnchecked(
		1,
		[]vec3.T{{0, 0, 1}, {1, 1, 1}},
		[]float64{1, 1},
		[]float64{0, 0, 1, 1},
	)
	arc := quarterArc()

	unified := UnifyCurveKnotVectors([]*NurbsCurve{line, arc})

	if unified[0].Degree() != unified[1].Degree() {
		t.Fatalf("degrees differ: %d vs %d", unified[0].Degree(), unified[1].Degree())
	}
	if diff := cmp.Diff(unified[0].Knots(), unified[1].Knots(), approx(1e-12)); diff != "" {
		t.Fatalf("knot vectors differ (-a +b):\n%s", diff)
	}

	for _, u := range []float64{0, 0.4, 1} {
		if diff := cmp.Diff(line.Point(u), unified[0].Point(u), approx(1e-9)); diff != "" {
			t.Errorf("line geometry changed at %v (-want +got):\n%s", u, diff)
		}
		if diff := cmp.Diff(arc.Point(u), unified[1].Point(u), approx(1e-9)); diff != "" {
			t.Errorf("arc geometry changed at %v (-want +got):\n%s", u, diff)
		}
	}
}
