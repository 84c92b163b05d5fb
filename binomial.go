package nurbs

var binomCache map[[2]int]float64

func init() {
	binomCache = make(map[[2]int]float64)
}

func binomial(n, k int) float64 {
	if k == 0 {
		return 1
	}

	if n == 0 || k > n {
		return 0
	}

	if k > n-k {
		k = n - k // optimization
	}

	if result, ok := binomCache[[2]int{n, k}]; ok {
		return result
	}

	r := 1.0
	nn := n
	for d := 1; d <= k; d++ {
		r *= float64(nn) / float64(d)
		nn--
	}

	binomCache[[2]int{n, k}] = r

	return r
}
