package internal

import (
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

// HomoPoint is a control point in homogeneous form (w*x, w*y, w*z, w).
type HomoPoint struct {
	Vec3 vec3.T
	W    float64
}

func (this *HomoPoint) Add(pt *HomoPoint) *HomoPoint {
	this.Vec3.Add(&pt.Vec3)
	this.W += pt.W

	return this
}

func (this *HomoPoint) Sub(pt *HomoPoint) *HomoPoint {
	this.Vec3.Sub(&pt.Vec3)
	this.W -= pt.W

	return this
}

func (this *HomoPoint) Scale(scale float64) *HomoPoint {
	this.Vec3.Scale(scale)
	this.W *= scale

	return this
}

func (this *HomoPoint) Scaled(scale float64) HomoPoint {
	return HomoPoint{this.Vec3.Scaled(scale), this.W * scale}
}

// Dist is the 4-dimensional distance between two homogeneous points.
func (this *HomoPoint) Dist(pt *HomoPoint) float64 {
	return math.Sqrt(
		vec3.SquareDistance(&this.Vec3, &pt.Vec3) +
			(this.W-pt.W)*(this.W-pt.W),
	)
}

// Homogenized lifts a Euclidean point with the given weight.
func Homogenized(pt vec3.T, w float64) HomoPoint {
	return HomoPoint{pt.Scaled(w), w}
}

// Homogenize1d lifts a slice of points with matching weights.
func Homogenize1d(pts []vec3.T, weights []float64) []HomoPoint {
	homoPts := make([]HomoPoint, 0, len(pts))
	for i, pt := range pts {
		homoPts = append(homoPts, Homogenized(pt, weights[i]))
	}

	return homoPts
}

// Homogenize2d lifts a grid of points with matching weights.
func Homogenize2d(pts [][]vec3.T, weights [][]float64) [][]HomoPoint {
	homoPts := make([][]HomoPoint, len(pts))
	for i := range homoPts {
		homoPts[i] = Homogenize1d(pts[i], weights[i])
	}

	return homoPts
}

// Dehomogenized drops a homogeneous point back to Euclidean space.
func (this *HomoPoint) Dehomogenized() vec3.T {
	return this.Vec3.Scaled(1 / this.W)
}

func Dehomogenize1d(homoPoints []HomoPoint) []vec3.T {
	result := make([]vec3.T, 0, len(homoPoints))
	for _, homoPt := range homoPoints {
		result = append(result, homoPt.Dehomogenized())
	}

	return result
}

func Dehomogenize2d(homoPoints [][]HomoPoint) [][]vec3.T {
	result := make([][]vec3.T, len(homoPoints))
	for i := range result {
		result[i] = Dehomogenize1d(homoPoints[i])
	}

	return result
}

// Weight1d extracts the weights of a slice of homogeneous points.
func Weight1d(homoPoints []HomoPoint) (weights []float64) {
	weights = make([]float64, len(homoPoints))
	for i := range weights {
		weights[i] = homoPoints[i].W
	}

	return
}

// Weight2d extracts the weights of a grid of homogeneous points.
func Weight2d(homoPoints [][]HomoPoint) (weights [][]float64) {
	weights = make([][]float64, len(homoPoints))
	for i := range weights {
		weights[i] = Weight1d(homoPoints[i])
	}

	return
}

// HomoInterpolated is the full homogeneous blend (1-t)*hpt0 + t*hpt1.
func HomoInterpolated(hpt0, hpt1 *HomoPoint, t float64) HomoPoint {
	return HomoPoint{
		vec3.Interpolate(&hpt0.Vec3, &hpt1.Vec3, t),
		(1-t)*hpt0.W + t*hpt1.W,
	}
}
