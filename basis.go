package nurbs

// basisFuns computes the degree+1 non-vanishing B-spline basis functions
// N_{span-degree},...,N_span at the parameter t. This is algorithm A2.2 from
// The NURBS Book; it avoids the 0/0 cases of the naive Cox–de Boor recursion.
func basisFuns(span int, t float64, degree int, kv KnotVector) []float64 {
	n := make([]float64, degree+1)
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	n[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = t - kv[span+1-j]
		right[j] = kv[span+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			tmp := n[r] / (right[r+1] + left[j-r])
			n[r] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		n[j] = saved
	}
	return n
}

// dersBasisFuns computes the non-vanishing basis functions and their
// derivatives up to and including order nd at the parameter t. The result is
// indexed ders[k][j] = d^k/dt^k N_{span-degree+j}(t). This is algorithm A2.3
// from The NURBS Book.
func dersBasisFuns(span int, t float64, degree, nd int, kv KnotVector) [][]float64 {
	ndu := make([][]float64, degree+1)
	for i := range ndu {
		ndu[i] = make([]float64, degree+1)
	}
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	ndu[0][0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = t - kv[span+1-j]
		right[j] = kv[span+j] - t
		saved := 0.0
		for r := 0; r < j; r++ {
			// Lower triangle: knot differences. Upper triangle: basis values.
			ndu[j][r] = right[r+1] + left[j-r]
			tmp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*tmp
			saved = left[j-r] * tmp
		}
		ndu[j][j] = saved
	}

	ders := make([][]float64, nd+1)
	for k := range ders {
		ders[k] = make([]float64, degree+1)
	}
	for j := 0; j <= degree; j++ {
		ders[0][j] = ndu[j][degree]
	}

	a := [2][]float64{
		make([]float64, degree+1),
		make([]float64, degree+1),
	}
	for r := 0; r <= degree; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for k := 1; k <= nd; k++ {
			d := 0.0
			rk := r - k
			pk := degree - k
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			var j1, j2 int
			if rk >= -1 {
				j1 = 1
			} else {
				j1 = -rk
			}
			if r-1 <= pk {
				j2 = k - 1
			} else {
				j2 = degree - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}
			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}

	// Multiply through by the correct factors p!/(p-k)!.
	f := float64(degree)
	for k := 1; k <= nd; k++ {
		for j := 0; j <= degree; j++ {
			ders[k][j] *= f
		}
		f *= float64(degree - k)
	}
	return ders
}

// binomial returns the binomial coefficient C(n, k) as a float64.
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	out := 1.0
	for i := 0; i < k; i++ {
		out = out * float64(n-i) / float64(i+1)
	}
	return out
}
