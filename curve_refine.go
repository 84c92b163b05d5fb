package nurbs

import (
	"fmt"
	"math"

	. "github.com/tianhaichen/nurbs/internal"
)

// InsertKnot inserts the knot u up to times times. The effective count
// is clamped to degree minus the current multiplicity; at saturated
// multiplicity the curve is returned unchanged.
//
// Corresponds to algorithm A5.1 (Piegl & Tiller).
func (this *NurbsCurve) InsertKnot(u float64, times int) *NurbsCurve {
	degree := this.degree
	knots := this.knots
	controlPoints := this.controlPoints

	s := knots.Multiplicity(u)
	if s >= degree {
		return this.clone()
	}
	if times+s > degree {
		times = degree - s
	}
	if times <= 0 {
		return this.clone()
	}

	n := len(controlPoints) - 1
	k := knots.Span(degree, u)

	knotsPost := make(KnotVec, len(knots)+times)
	copy(knotsPost, knots[:k+1])
	for i := 1; i <= times; i++ {
		knotsPost[k+i] = u
	}
	copy(knotsPost[k+times+1:], knots[k+1:])

	controlPointsPost := make([]HomoPoint, n+1+times)

	// the control points outside the affected band are copied unchanged
	for i := 0; i <= k-degree; i++ {
		controlPointsPost[i] = controlPoints[i]
	}
	for i := k - s; i <= n; i++ {
		controlPointsPost[i+times] = controlPoints[i]
	}

	temp := make([]HomoPoint, degree-s+1)
	for i := 0; i <= degree-s; i++ {
		temp[i] = controlPoints[k-degree+i]
	}

	// insert the knot times times
	var L int
	for j := 1; j <= times; j++ {
		L = k - degree + j

		for i := 0; i <= degree-j-s; i++ {
			alpha := (u - knots[L+i]) / (knots[i+k+1] - knots[L+i])
			temp[i] = HomoInterpolated(&temp[i], &temp[i+1], alpha)
		}

		controlPointsPost[L] = temp[0]
		controlPointsPost[k+times-j-s] = temp[degree-j-s]
	}

	for i := L + 1; i < k-s; i++ {
		controlPointsPost[i] = temp[i-L]
	}

	return &NurbsCurve{degree, controlPointsPost, knotsPost}
}

// RefineKnots inserts a collection of knots, semantically equivalent
// to inserting each element in sequence.
func (this *NurbsCurve) RefineKnots(knotsToInsert []float64) *NurbsCurve {
	return this.knotRefine(KnotVec(knotsToInsert))
}

// knotRefine inserts a sorted collection of knots on the curve.
//
// Corresponds to algorithm A5.4 (Piegl & Tiller).
func (this *NurbsCurve) knotRefine(knotsToInsert KnotVec) *NurbsCurve {
	if len(knotsToInsert) == 0 {
		return this.clone()
	}

	degree := this.degree
	controlPoints := this.controlPoints
	knots := this.knots

	n := len(controlPoints) - 1
	m := n + degree + 1
	r := len(knotsToInsert) - 1
	a := knots.Span(degree, knotsToInsert[0])
	b := knots.Span(degree, knotsToInsert[r]) + 1

	controlPointsPost := make([]HomoPoint, n+r+2)
	knotsPost := make(KnotVec, m+r+2)

	for j := 0; j <= a-degree; j++ {
		controlPointsPost[j] = controlPoints[j]
	}
	for j := b - 1; j <= n; j++ {
		controlPointsPost[j+r+1] = controlPoints[j]
	}

	for j := 0; j <= a; j++ {
		knotsPost[j] = knots[j]
	}
	for j := b + degree; j <= m; j++ {
		knotsPost[j+r+1] = knots[j]
	}

	i := b + degree - 1
	k := b + degree + r

	for j := r; j >= 0; j-- {
		for knotsToInsert[j] <= knots[i] && i > a {
			controlPointsPost[k-degree-1] = controlPoints[i-degree-1]
			knotsPost[k] = knots[i]
			k--
			i--
		}

		controlPointsPost[k-degree-1] = controlPointsPost[k-degree]

		for l := 1; l <= degree; l++ {
			ind := k - degree + l
			alfa := knotsPost[k+l] - knotsToInsert[j]

			if math.Abs(alfa) < Epsilon {
				controlPointsPost[ind-1] = controlPointsPost[ind]
			} else {
				alfa /= knotsPost[k+l] - knots[i-degree+l]
				controlPointsPost[ind-1] = HomoInterpolated(
					&controlPointsPost[ind],
					&controlPointsPost[ind-1],
					alfa,
				)
			}
		}

		knotsPost[k] = knotsToInsert[j]
		k--
	}

	return &NurbsCurve{degree, controlPointsPost, knotsPost}
}

// RemoveKnot removes the knot u up to times times, as long as the
// curve stays within tolerance of its original shape. Fewer copies
// than requested may be removed; none at all leaves the curve
// unchanged.
//
// Corresponds to algorithm A5.8 (Piegl & Tiller).
func (this *NurbsCurve) RemoveKnot(u float64, times int) *NurbsCurve {
	degree := this.degree
	knots := this.knots.Clone()
	controlPoints := append([]HomoPoint(nil), this.controlPoints...)

	s := knots.Multiplicity(u)
	if s == 0 ||
		u-knots[0] < Epsilon ||
		knots[len(knots)-1]-u < Epsilon {
		return this.clone()
	}
	if times > s {
		times = s
	}

	n := len(controlPoints) - 1
	m := n + degree + 1
	ord := degree + 1
	r := knots.Span(degree, u)
	fout := (2*r - s - degree) / 2
	first := r - degree
	last := r - s

	temp := make([]HomoPoint, 2*degree+1)

	var t int
	for t = 0; t < times; t++ {
		off := first - 1
		temp[0] = controlPoints[off]
		temp[last+1-off] = controlPoints[last+1]

		i, j := first, last
		ii, jj := 1, last-off
		remflag := false

		for j-i > t {
			alfi := (u - knots[i]) / (knots[i+ord+t] - knots[i])
			alfj := (u - knots[j-t]) / (knots[j+ord] - knots[j-t])

			temp[ii] = homoPeelLeft(&controlPoints[i], &temp[ii-1], alfi)
			temp[jj] = homoPeelRight(&controlPoints[j], &temp[jj+1], alfj)

			i++
			ii++
			j--
			jj--
		}

		// is the knot removable within tolerance?
		if j-i < t {
			if temp[ii-1].Dist(&temp[jj+1]) < Tolerance {
				remflag = true
			}
		} else {
			alfi := (u - knots[i]) / (knots[i+ord+t] - knots[i])
			blend := HomoInterpolated(&temp[ii-1], &temp[ii+t+1], alfi)
			if controlPoints[i].Dist(&blend) < Tolerance {
				remflag = true
			}
		}

		if !remflag {
			break
		}

		i, j = first, last
		for j-i > t {
			controlPoints[i] = temp[i-off]
			controlPoints[j] = temp[j-off]
			i++
			j--
		}

		first--
		last++
	}

	if t == 0 {
		return this.clone()
	}

	for k := r + 1; k <= m; k++ {
		knots[k-t] = knots[k]
	}

	j := fout
	i := j
	for k := 1; k < t; k++ {
		if k%2 == 1 {
			i++
		} else {
			j--
		}
	}
	for k := i + 1; k <= n; k++ {
		controlPoints[j] = controlPoints[k]
		j++
	}

	return &NurbsCurve{degree, controlPoints[:n+1-t], knots[:m+1-t]}
}

// ElevateDegree raises the degree of the curve by times.
func (this *NurbsCurve) ElevateDegree(times int) *NurbsCurve {
	return this.elevateDegree(this.degree + times)
}

// elevateDegree raises the curve to finalDegree.
//
// Corresponds to algorithm A5.9 (Piegl & Tiller).
func (this *NurbsCurve) elevateDegree(finalDegree int) *NurbsCurve {
	if finalDegree <= this.degree {
		return this.clone()
	}

	p := this.degree
	t := finalDegree - p
	knots := this.knots
	controlPoints := this.controlPoints

	n := len(controlPoints) - 1
	m := n + p + 1
	ph := finalDegree
	ph2 := ph / 2

	// every distinct knot value gains multiplicity t
	distinct := len(knots.Multiplicities())
	Uh := make(KnotVec, len(knots)+t*distinct)
	Qw := make([]HomoPoint, len(Uh)-ph-1)

	// bezier degree elevation coefficients
	bezalfs := Zeros2d(ph+1, p+1)
	bezalfs[0][0] = 1
	bezalfs[ph][p] = 1

	for i := 1; i <= ph2; i++ {
		inv := 1 / binomial(ph, i)
		mpi := imin(p, i)
		for j := imax(0, i-t); j <= mpi; j++ {
			bezalfs[i][j] = inv * binomial(p, j) * binomial(t, i-j)
		}
	}
	for i := ph2 + 1; i < ph; i++ {
		mpi := imin(p, i)
		for j := imax(0, i-t); j <= mpi; j++ {
			bezalfs[i][j] = bezalfs[ph-i][p-j]
		}
	}

	bpts := make([]HomoPoint, p+1)
	ebpts := make([]HomoPoint, ph+1)
	nextbpts := make([]HomoPoint, imax(p-1, 0))
	alfs := make([]float64, imax(p-1, 0))

	kind := ph + 1
	r := -1
	a := p
	b := p + 1
	cind := 1
	ua := knots[0]

	Qw[0] = controlPoints[0]
	for i := 0; i <= ph; i++ {
		Uh[i] = ua
	}
	for i := 0; i <= p; i++ {
		bpts[i] = controlPoints[i]
	}

	for b < m {
		i := b
		for b < m && knots[b] == knots[b+1] {
			b++
		}
		mul := b - i + 1
		ub := knots[b]
		oldr := r
		r = p - mul

		var lbz, rbz int
		if oldr > 0 {
			lbz = (oldr + 2) / 2
		} else {
			lbz = 1
		}
		if r > 0 {
			rbz = ph - (r+1)/2
		} else {
			rbz = ph
		}

		if r > 0 {
			// insert ub r times to extract the bezier segment
			numer := ub - ua
			for k := p; k > mul; k-- {
				alfs[k-mul-1] = numer / (knots[a+k] - ua)
			}
			for j := 1; j <= r; j++ {
				save := r - j
				s := mul + j
				for k := p; k >= s; k-- {
					bpts[k] = HomoInterpolated(&bpts[k-1], &bpts[k], alfs[k-s])
				}
				nextbpts[save] = bpts[p]
			}
		}

		// elevate the bezier segment
		for i := lbz; i <= ph; i++ {
			ebpts[i] = HomoPoint{}
			mpi := imin(p, i)
			for j := imax(0, i-t); j <= mpi; j++ {
				scaled := bpts[j].Scaled(bezalfs[i][j])
				ebpts[i].Add(&scaled)
			}
		}

		if oldr > 1 {
			// remove the knot ua oldr-1 times
			first := kind - 2
			last := kind
			den := ub - ua
			bet := (ub - Uh[kind-1]) / den

			for tr := 1; tr < oldr; tr++ {
				i := first
				j := last
				kj := j - kind + 1

				for j-i > tr {
					if i < cind {
						alf := (ub - Uh[i]) / (ua - Uh[i])
						Qw[i] = HomoInterpolated(&Qw[i-1], &Qw[i], alf)
					}
					if j >= lbz {
						if j-tr <= kind-ph+oldr {
							gam := (ub - Uh[j-tr]) / den
							ebpts[kj] = HomoInterpolated(&ebpts[kj+1], &ebpts[kj], gam)
						} else {
							ebpts[kj] = HomoInterpolated(&ebpts[kj+1], &ebpts[kj], bet)
						}
					}
					i++
					j--
					kj--
				}

				first--
				last++
			}
		}

		if a != p {
			for i := 0; i < ph-oldr; i++ {
				Uh[kind] = ua
				kind++
			}
		}
		for j := lbz; j <= rbz; j++ {
			Qw[cind] = ebpts[j]
			cind++
		}

		if b < m {
			for j := 0; j < r; j++ {
				bpts[j] = nextbpts[j]
			}
			for j := r; j <= p; j++ {
				bpts[j] = controlPoints[b-p+j]
			}
			a = b
			b++
			ua = ub
		} else {
			for i := 0; i <= ph; i++ {
				Uh[kind+i] = ub
			}
		}
	}

	return &NurbsCurve{finalDegree, Qw, Uh}
}

// ReduceDegree lowers the degree of the curve by one. It fails when
// the reduction error exceeds tolerance anywhere along the curve.
//
// Corresponds to algorithm A5.11 (Piegl & Tiller).
func (this *NurbsCurve) ReduceDegree() (*NurbsCurve, error) {
	p := this.degree
	if p < 2 {
		return nil, fmt.Errorf("%w: cannot reduce degree below 1", ErrInvalidArgument)
	}

	knots := this.knots
	controlPoints := this.controlPoints

	n := len(controlPoints) - 1
	m := n + p + 1
	ph := p - 1

	// every distinct knot value loses one multiplicity
	distinct := len(knots.Multiplicities())
	Uh := make(KnotVec, len(knots)-distinct)
	Qw := make([]HomoPoint, len(Uh)-ph-1)

	bpts := make([]HomoPoint, p+1)
	nextbpts := make([]HomoPoint, imax(p-1, 0))
	rbpts := make([]HomoPoint, p)
	alfs := make([]float64, imax(p-1, 0))

	kind := ph + 1
	r := -1
	a := p
	b := p + 1
	cind := 1

	Qw[0] = controlPoints[0]
	for i := 0; i <= ph; i++ {
		Uh[i] = knots[0]
	}
	for i := 0; i <= p; i++ {
		bpts[i] = controlPoints[i]
	}

	for b < m {
		i := b
		for b < m && knots[b] == knots[b+1] {
			b++
		}
		mult := b - i + 1
		oldr := r
		r = p - mult

		var lbz int
		if oldr > 0 {
			lbz = (oldr + 2) / 2
		} else {
			lbz = 1
		}

		if r > 0 {
			// insert knots[b] r times to extract the bezier segment
			numer := knots[b] - knots[a]
			for k := p; k > mult; k-- {
				alfs[k-mult-1] = numer / (knots[a+k] - knots[a])
			}
			for j := 1; j <= r; j++ {
				save := r - j
				s := mult + j
				for k := p; k >= s; k-- {
					bpts[k] = HomoInterpolated(&bpts[k-1], &bpts[k], alfs[k-s])
				}
				nextbpts[save] = bpts[p]
			}
		}

		// reduce the bezier segment
		maxErr := bezDegreeReduce(bpts, rbpts)
		if maxErr > Tolerance {
			return nil, fmt.Errorf("%w: degree reduction exceeds tolerance", ErrGeometricFailure)
		}

		if oldr > 0 {
			// remove the knot knots[a] oldr times
			first := kind
			last := kind

			var i, j int
			for k := 0; k < oldr; k++ {
				i = first
				j = last
				kj := j - kind

				for j-i > k {
					alfa := (knots[a] - Uh[i-1]) / (knots[b] - Uh[i-1])
					alfb := (knots[a] - Uh[j-k-1]) / (knots[b] - Uh[j-k-1])
					Qw[i-1] = homoPeelLeft(&Qw[i-1], &Qw[i-2], alfa)
					rbpts[kj] = homoPeelRight(&rbpts[kj], &rbpts[kj+1], alfb)
					i++
					j--
					kj--
				}

				// removal error bound
				var br float64
				if j-i < k {
					br = Qw[i-2].Dist(&rbpts[kj+1])
				} else {
					delta := (knots[a] - Uh[i-1]) / (knots[b] - Uh[i-1])
					blend := HomoInterpolated(&Qw[i-2], &rbpts[kj+1], delta)
					br = Qw[i-1].Dist(&blend)
				}
				if br > Tolerance {
					return nil, fmt.Errorf("%w: degree reduction exceeds tolerance", ErrGeometricFailure)
				}

				first--
				last++
			}

			cind = i - 1
		}

		if a != p {
			for i := 0; i < ph-oldr; i++ {
				Uh[kind] = knots[a]
				kind++
			}
		}
		for i := lbz; i <= ph; i++ {
			Qw[cind] = rbpts[i]
			cind++
		}

		if b < m {
			for i := 0; i < r; i++ {
				bpts[i] = nextbpts[i]
			}
			for i := r; i <= p; i++ {
				bpts[i] = controlPoints[b-p+i]
			}
			a = b
			b++
		} else {
			for i := 0; i <= ph; i++ {
				Uh[kind+i] = knots[b]
			}
		}
	}

	return &NurbsCurve{ph, Qw, Uh}, nil
}

// bezDegreeReduce reduces a bezier segment of degree len(bpts)-1 by
// one, writing the result into rbpts and returning the maximum
// deviation (eq. 5.40-5.42, Piegl & Tiller).
func bezDegreeReduce(bpts, rbpts []HomoPoint) float64 {
	p := len(bpts) - 1
	r := (p - 1) / 2

	rbpts[0] = bpts[0]
	rbpts[p-1] = bpts[p]

	if p%2 == 0 {
		for i := 1; i <= r; i++ {
			alf := float64(i) / float64(p)
			rbpts[i] = homoPeelRight(&bpts[i], &rbpts[i-1], alf)
		}
		for i := p - 2; i >= r+1; i-- {
			alf := float64(i+1) / float64(p)
			rbpts[i] = homoPeelLeft(&bpts[i+1], &rbpts[i+1], alf)
		}

		mid := HomoInterpolated(&rbpts[r], &rbpts[r+1], 0.5)
		return bpts[r+1].Dist(&mid)
	}

	for i := 1; i <= r-1; i++ {
		alf := float64(i) / float64(p)
		rbpts[i] = homoPeelRight(&bpts[i], &rbpts[i-1], alf)
	}
	for i := p - 2; i >= r+1; i-- {
		alf := float64(i+1) / float64(p)
		rbpts[i] = homoPeelLeft(&bpts[i+1], &rbpts[i+1], alf)
	}

	alfr := float64(r) / float64(p)
	left := homoPeelRight(&bpts[r], &rbpts[r-1], alfr)
	alfr1 := float64(r+1) / float64(p)
	right := homoPeelLeft(&bpts[r+1], &rbpts[r+1], alfr1)

	rbpts[r] = HomoInterpolated(&left, &right, 0.5)
	return left.Dist(&right)
}

// Beziers decomposes the curve into bezier segments. Useful as each
// bezier fits into its convex hull.
func (this *NurbsCurve) Beziers() []*NurbsCurve {
	degree := this.degree
	controlPoints := this.controlPoints
	knots := this.knots

	// raise every knot value to full multiplicity
	knotmults := knots.Multiplicities()
	reqMult := degree + 1

	baseCurve := NurbsCurve{degree: degree}
	for _, knotmult := range knotmults {
		if knotmult.Mult < reqMult {
			knotsToInsert := make(KnotVec, reqMult-knotmult.Mult)
			for i := range knotsToInsert {
				knotsToInsert[i] = knotmult.Knot
			}
			baseCurve.knots = knots
			baseCurve.controlPoints = controlPoints
			res := baseCurve.knotRefine(knotsToInsert)

			knots = res.knots
			controlPoints = res.controlPoints
		}
	}

	crvKnotLength := reqMult * 2

	crvs := make([]*NurbsCurve, 0, len(controlPoints)/reqMult)

	for i := 0; i < len(controlPoints); i += reqMult {
		kts := knots[i : i+crvKnotLength : i+crvKnotLength]
		pts := controlPoints[i : i+reqMult : i+reqMult]

		crvs = append(crvs, &NurbsCurve{degree, pts, kts})
	}

	return crvs
}

// Split divides the curve at u into two curves covering [min, u] and
// [u, max] of the domain.
func (this *NurbsCurve) Split(u float64) (*NurbsCurve, *NurbsCurve) {
	degree := this.degree

	mult := this.knots.Multiplicity(u)
	knotsToInsert := make(KnotVec, degree+1-mult)
	for i := range knotsToInsert {
		knotsToInsert[i] = u
	}
	res := this.knotRefine(knotsToInsert)

	// slice around the full-multiplicity band
	first := -1
	var last int
	for i, knot := range res.knots {
		if math.Abs(knot-u) < Epsilon {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	knots0 := res.knots[:last+1:last+1]
	knots1 := res.knots[first:]

	cpts0 := res.controlPoints[:last-degree:last-degree]
	cpts1 := res.controlPoints[first:]

	return &NurbsCurve{degree, cpts0, knots0}, &NurbsCurve{degree, cpts1, knots1}
}

// UnifyCurveKnotVectors elevates all curves to a common degree and
// refines them to a common knot vector over a common domain.
func UnifyCurveKnotVectors(curves []*NurbsCurve) (unified []*NurbsCurve) {
	var maxDegree int
	for _, curve := range curves {
		if curve.degree > maxDegree {
			maxDegree = curve.degree
		}
	}

	// elevate all curves to the same degree
	unified = make([]*NurbsCurve, len(curves))
	for i, curve := range curves {
		if curve.degree < maxDegree {
			unified[i] = curve.elevateDegree(maxDegree)
		} else {
			unified[i] = curve.clone()
		}
	}

	var maxSpan float64
	for _, curve := range unified {
		min, max := curve.knots[0], curve.knots[len(curve.knots)-1]

		// shift all knot vectors to start at 0.0
		for iKnot, knot := range curve.knots {
			curve.knots[iKnot] = knot - min
		}

		// find the max knot span
		maxSpan = math.Max(maxSpan, max-min)
	}

	// scale all of the knot vectors to match
	for _, curve := range unified {
		scale := maxSpan / (curve.knots[len(curve.knots)-1] - curve.knots[0])
		for iKnot := range curve.knots {
			curve.knots[iKnot] *= scale
		}
	}

	// merge all of the knot vectors
	mergedKnotSet := Set(unified[0].knots)
	for _, curve := range unified[1:] {
		mergedKnotSet = mergedKnotSet.SortedUnion(Set(curve.knots))
	}

	// knot refinement on each curve
	for i, curve := range unified {
		rem := KnotVec(mergedKnotSet.SortedSub(Set(curve.knots)))
		unified[i] = curve.knotRefine(rem)
	}

	return
}

// homoPeelLeft solves p = alf*q + (1-alf)*prev for q given the blend
// result p and the left operand prev.
func homoPeelLeft(p, prev *HomoPoint, alf float64) HomoPoint {
	scaled := prev.Scaled(1 - alf)
	diff := *p
	diff.Sub(&scaled)
	return diff.Scaled(1 / alf)
}

// homoPeelRight solves p = alf*next + (1-alf)*q for q given the blend
// result p and the right operand next.
func homoPeelRight(p, next *HomoPoint, alf float64) HomoPoint {
	scaled := next.Scaled(alf)
	diff := *p
	diff.Sub(&scaled)
	return diff.Scaled(1 / (1 - alf))
}

func imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
