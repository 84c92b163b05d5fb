package make

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tianhaichen/nurbs"
	"github.com/tianhaichen/nurbs/internal"
	"github.com/ungerik/go3d/float64/vec3"
)

func approx(tol float64) cmp.Option {
	return cmpopts.EquateApprox(0, tol)
}

func TestBilinearSurface(t *testing.T) {
	srf := BilinearSurface(
		&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0},
		&vec3.T{1, 1, 0}, &vec3.T{0, 1, 0},
	)

	if got, want := len(srf.KnotsU()), 8; got != want {
		t.Fatalf("len(knotsU) = %d, want %d", got, want)
	}

	got := srf.Point(nurbs.UV{0.25, 0.75})
	want := vec3.T{0.25, 0.75, 0}

	if diff := cmp.Diff(want, got, approx(1e-12)); diff != "" {
		t.Errorf("point mismatch (-want +got):\n%s", diff)
	}

	corners := []struct {
		uv nurbs.UV
		pt vec3.T
	}{
		{nurbs.UV{0, 0}, vec3.T{0, 0, 0}},
		{nurbs.UV{1, 0}, vec3.T{1, 0, 0}},
		{nurbs.UV{1, 1}, vec3.T{1, 1, 0}},
		{nurbs.UV{0, 1}, vec3.T{0, 1, 0}},
	}
	for _, c := range corners {
		if diff := cmp.Diff(c.pt, srf.Point(c.uv), approx(1e-12)); diff != "" {
			t.Errorf("corner %v mismatch (-want +got):\n%s", c.uv, diff)
		}
	}
}

func TestArc(t *testing.T) {
	arc, err := Arc(&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0}, &vec3.T{0, 1, 0}, 1, 0, math.Pi/2)
	if err != nil {
		t.Fatalf("Arc: %v", err)
	}

	got := arc.Point(0.5)
	want := vec3.T{math.Sqrt2 / 2, math.Sqrt2 / 2, 0}

	if diff := cmp.Diff(want, got, approx(1e-12)); diff != "" {
		t.Errorf("quarter arc midpoint mismatch (-want +got):\n%s", diff)
	}
}

func TestCircle(t *testing.T) {
	circ, err := Circle(&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0}, &vec3.T{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Circle: %v", err)
	}

	for u := 0.0; u <= 1.0; u += 0.125 {
		pt := circ.Point(u)
		if r := pt.Length(); math.Abs(r-1) > 1e-9 {
			t.Errorf("radius at %v = %v, want 1", u, r)
		}
	}

	if diff := cmp.Diff(vec3.T{0, 1, 0}, circ.Point(0.25), approx(1e-9)); diff != "" {
		t.Errorf("quarter point mismatch (-want +got):\n%s", diff)
	}
}

func TestCylindricalSurface(t *testing.T) {
	srf, err := CylindricalSurface(
		&vec3.T{0, 0, 0},
		&vec3.T{1, 0, 0}, &vec3.T{0, 1, 0},
		0, math.Pi/2,
		1, 2,
	)
	if err != nil {
		t.Fatalf("CylindricalSurface: %v", err)
	}

	got := srf.Point(nurbs.UV{0.5, 0.5})
	want := vec3.T{math.Sqrt2 / 2, math.Sqrt2 / 2, 1}

	if diff := cmp.Diff(want, got, approx(1e-9)); diff != "" {
		t.Errorf("point mismatch (-want +got):\n%s", diff)
	}
}

func TestCylinderClosestParamRoundTrip(t *testing.T) {
	srf, err := CylindricalSurface(
		&vec3.T{0, 0, 0},
		&vec3.T{1, 0, 0}, &vec3.T{0, 1, 0},
		0, math.Pi/2,
		1, 2,
	)
	if err != nil {
		t.Fatalf("CylindricalSurface: %v", err)
	}

	target := vec3.T{0, 1, 2}
	uv, converged := srf.ClosestParam(target)
	if !converged {
		t.Error("projection did not converge")
	}

	if math.Abs(uv[0]) > 1e-4 {
		t.Errorf("u = %v, want ~0", uv[0])
	}
	if math.Abs(uv[1]-1) > 1e-4 {
		t.Errorf("v = %v, want ~1", uv[1])
	}

	got := srf.Point(uv)
	if diff := cmp.Diff(target, got, approx(1e-6)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExtrudedSurface(t *testing.T) {
	profile := Line(&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0})
	axis := vec3.T{0, 0, 1}

	srf := ExtrudedSurface(&axis, 3, profile)

	got := srf.Point(nurbs.UV{0.5, 0.5})
	want := vec3.T{0.5, 0, 1.5}

	if diff := cmp.Diff(want, got, approx(1e-12)); diff != "" {
		t.Errorf("point mismatch (-want +got):\n%s", diff)
	}
}

func TestRuledSurfaceBoundaries(t *testing.T) {
	arc, err := Arc(&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0}, &vec3.T{0, 1, 0}, 1, 0, math.Pi/2)
	if err != nil {
		t.Fatalf("Arc: %v", err)
	}
	line := Line(&vec3.T{2, 0, 0}, &vec3.T{0, 2, 0})

	srf, err := RuledSurface(arc, line)
	if err != nil {
		t.Fatalf("RuledSurface: %v", err)
	}

	for _, v := range []float64{0, 0.3, 0.8, 1} {
		if diff := cmp.Diff(arc.Point(v), srf.Point(nurbs.UV{0, v}), approx(1e-9)); diff != "" {
			t.Errorf("u=0 boundary mismatch at v=%v (-want +got):\n%s", v, diff)
		}
		if diff := cmp.Diff(line.Point(v), srf.Point(nurbs.UV{1, v}), approx(1e-9)); diff != "" {
			t.Errorf("u=1 boundary mismatch at v=%v (-want +got):\n%s", v, diff)
		}
	}
}

func TestRuledSurfaceDegenerate(t *testing.T) {
	arc, err := Arc(&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0}, &vec3.T{0, 1, 0}, 1, 0, math.Pi/2)
	if err != nil {
		t.Fatalf("Arc: %v", err)
	}

	srf, err := RuledSurface(arc, arc)
	if err != nil {
		t.Fatalf("RuledSurface: %v", err)
	}

	// every ruling collapses, so any u yields the arc point
	for _, u := range []float64{0, 0.37, 1} {
		for _, v := range []float64{0, 0.5, 1} {
			if diff := cmp.Diff(arc.Point(v), srf.Point(nurbs.UV{u, v}), approx(1e-9)); diff != "" {
				t.Errorf("degenerate ruled mismatch at (%v,%v) (-want +got):\n%s", u, v, diff)
			}
		}
	}
}

func TestRuledSurfaceDomainMismatch(t *testing.T) {
	line0 := Line(&vec3.T{0, 0, 0}, &vec3.T{1, 0, 0})
	line1 := nurbs.NewNurbsCurveUnchecked(
		1,
		[]vec3.T{{0, 1, 0}, {1, 1, 0}},
		[]float64{1, 1},
		[]float64{0, 0, 2, 2},
	)

	if _, err := RuledSurface(line0, line1); !errors.Is(err, nurbs.ErrGeometricFailure) {
		t.Fatalf("err = %v, want ErrGeometricFailure", err)
	}
}

func TestRevolvedSurfaceRadius(t *testing.T) {
	profile := Line(&vec3.T{1, 0, 0}, &vec3.T{1, 0, 1})
	axis := vec3.T{0, 0, 1}

	srf, err := RevolvedSurface(profile, &vec3.T{0, 0, 0}, &axis, 2*math.Pi)
	if err != nil {
		t.Fatalf("RevolvedSurface: %v", err)
	}

	for u := 0.0; u <= 1.0; u += 0.1 {
		for _, v := range []float64{0, 0.5, 1} {
			pt := srf.Point(nurbs.UV{u, v})
			if r := math.Hypot(pt[0], pt[1]); math.Abs(r-1) > 1e-9 {
				t.Errorf("distance to axis at (%v,%v) = %v, want 1", u, v, r)
			}
		}
	}
}

func TestRevolvedSurfaceQuarter(t *testing.T) {
	profile := Line(&vec3.T{1, 0, 0}, &vec3.T{1, 0, 1})
	axis := vec3.T{0, 0, 1}

	srf, err := RevolvedSurface(profile, &vec3.T{0, 0, 0}, &axis, math.Pi/2)
	if err != nil {
		t.Fatalf("RevolvedSurface: %v", err)
	}

	got := srf.Point(nurbs.UV{1, 0})
	want := vec3.T{0, 1, 0}

	if diff := cmp.Diff(want, got, approx(1e-9)); diff != "" {
		t.Errorf("quarter sweep end mismatch (-want +got):\n%s", diff)
	}
}

func TestSphericalSurface(t *testing.T) {
	center := vec3.T{1, 2, 3}
	axis := vec3.T{0, 0, 1}
	xaxis := vec3.T{1, 0, 0}

	srf, err := SphericalSurface(&center, &axis, &xaxis, 2)
	if err != nil {
		t.Fatalf("SphericalSurface: %v", err)
	}

	for _, u := range []float64{0, 0.3, 0.7, 1} {
		for _, v := range []float64{0, 0.25, 0.6, 1} {
			pt := srf.Point(nurbs.UV{u, v})
			if r := vec3.Distance(&pt, &center); math.Abs(r-2) > 1e-9 {
				t.Errorf("radius at (%v,%v) = %v, want 2", u, v, r)
			}
		}
	}
}

func TestInterpolatedSurface(t *testing.T) {
	rows, cols := 5, 5
	points := make([][]vec3.T, rows)
	for i := range points {
		points[i] = make([]vec3.T, cols)
		for j := range points[i] {
			x := float64(i) / float64(rows-1)
			y := float64(j) / float64(cols-1)
			points[i][j] = vec3.T{x, y, math.Sin(x) * math.Cos(y)}
		}
	}

	srf, err := InterpolatedSurface(points, 3, 3)
	if err != nil {
		t.Fatalf("InterpolatedSurface: %v", err)
	}

	uk, vl := internal.SurfaceMeshParams(points)
	for i := range points {
		for j := range points[i] {
			got := srf.Point(nurbs.UV{uk[i], vl[j]})

			if diff := cmp.Diff(points[i][j], got, approx(1e-9)); diff != "" {
				t.Errorf("node (%d,%d) not interpolated (-want +got):\n%s", i, j, diff)
			}
		}
	}
}

func TestBicubicSurface(t *testing.T) {
	rows, cols := 4, 4
	points := make([][]vec3.T, rows)
	for i := range points {
		points[i] = make([]vec3.T, cols)
		for j := range points[i] {
			x := float64(i)
			y := float64(j)
			points[i][j] = vec3.T{x, y, 0.1 * x * y}
		}
	}

	srf, err := BicubicSurface(points)
	if err != nil {
		t.Fatalf("BicubicSurface: %v", err)
	}

	if got, want := srf.DegreeU(), 3; got != want {
		t.Fatalf("degreeU = %d, want %d", got, want)
	}

	ub, vb := internal.SurfaceMeshParams(points)
	for i := range points {
		for j := range points[i] {
			got := srf.Point(nurbs.UV{ub[i], vb[j]})

			if diff := cmp.Diff(points[i][j], got, approx(1e-9)); diff != "" {
				t.Errorf("node (%d,%d) not interpolated (-want +got):\n%s", i, j, diff)
			}
		}
	}
}

func TestApproximatedSurface(t *testing.T) {
	rows, cols := 8, 8
	points := make([][]vec3.T, rows)
	for i := range points {
		points[i] = make([]vec3.T, cols)
		for j := range points[i] {
			x := float64(i) / float64(rows-1)
			y := float64(j) / float64(cols-1)
			points[i][j] = vec3.T{x, y, x + y}
		}
	}

	srf, err := ApproximatedSurface(points, 3, 3, 5, 5)
	if err != nil {
		t.Fatalf("ApproximatedSurface: %v", err)
	}

	// corners are pinned
	if diff := cmp.Diff(points[0][0], srf.Point(nurbs.UV{0, 0}), approx(1e-9)); diff != "" {
		t.Errorf("start corner mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(points[rows-1][cols-1], srf.Point(nurbs.UV{1, 1}), approx(1e-9)); diff != "" {
		t.Errorf("end corner mismatch (-want +got):\n%s", diff)
	}

	// planar data is reproduced exactly
	for _, u := range []float64{0.1, 0.4, 0.9} {
		for _, v := range []float64{0.2, 0.5, 0.8} {
			pt := srf.Point(nurbs.UV{u, v})
			if math.Abs(pt[2]-(pt[0]+pt[1])) > 1e-6 {
				t.Errorf("point at (%v,%v) off the plane: %v", u, v, pt)
			}
		}
	}
}

func TestApproximatedSurfaceValidation(t *testing.T) {
	points := make([][]vec3.T, 4)
	for i := range points {
		points[i] = make([]vec3.T, 4)
	}

	if _, err := ApproximatedSurface(points, 3, 3, 5, 5); !errors.Is(err, nurbs.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoftedSurface(t *testing.T) {
	sections := make([]*nurbs.NurbsCurve, 3)
	for j := range sections {
		z := float64(j)
		sections[j] = BezierCurve([]vec3.T{
			{0, 0, z}, {1, 1 + z/2, z}, {2, 0, z},
		})
	}

	srf, err := LoftedSurface(sections, 2)
	if err != nil {
		t.Fatalf("LoftedSurface: %v", err)
	}

	// the surface passes through the first and last sections
	for _, u := range []float64{0, 0.5, 1} {
		if diff := cmp.Diff(sections[0].Point(u), srf.Point(nurbs.UV{u, 0}), approx(1e-9)); diff != "" {
			t.Errorf("first section mismatch at u=%v (-want +got):\n%s", u, diff)
		}
		if diff := cmp.Diff(sections[2].Point(u), srf.Point(nurbs.UV{u, 1}), approx(1e-9)); diff != "" {
			t.Errorf("last section mismatch at u=%v (-want +got):\n%s", u, diff)
		}
	}
}

func TestSweptSurface(t *testing.T) {
	profile := BezierCurve([]vec3.T{{0, 0, 0}, {1, 1, 0}, {2, 0, 0}})
	rail := Line(&vec3.T{0, 0, 0}, &vec3.T{0, 0, 2})

	srf, err := SweptSurface(profile, rail)
	if err != nil {
		t.Fatalf("SweptSurface: %v", err)
	}

	for _, u := range []float64{0, 0.5, 1} {
		if diff := cmp.Diff(profile.Point(u), srf.Point(nurbs.UV{u, 0}), approx(1e-9)); diff != "" {
			t.Errorf("profile boundary mismatch at u=%v (-want +got):\n%s", u, diff)
		}
	}

	// the far boundary is the profile translated along the rail
	end := profile.Point(0.5)
	end[2] += 2
	if diff := cmp.Diff(end, srf.Point(nurbs.UV{0.5, 1}), approx(1e-9)); diff != "" {
		t.Errorf("far boundary mismatch (-want +got):\n%s", diff)
	}
}
