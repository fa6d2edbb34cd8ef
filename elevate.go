package nurbs

// ElevateDegree returns the curve with its degree raised by t (t <= 0 returns
// the curve unchanged). The curve's geometry and parametrization are
// preserved exactly; only the representation changes.
func (c Curve) ElevateDegree(t int) Curve {
	if t <= 0 {
		return c
	}
	knots, pw := elevateHPoints(c.degree, c.knots, c.hpoints(), t)
	out := c.withHPoints(knots, pw)
	out.degree = c.degree + t
	return out
}

// elevateHPoints raises the degree of a B-spline in homogeneous form from p
// to p+t. This is algorithm A5.9 from The NURBS Book: decompose into Bézier
// segments by knot insertion, elevate each segment, and remove the extraneous
// knots again, all in a single pass.
func elevateHPoints(p int, knots KnotVector, pw []hpoint, t int) (KnotVector, []hpoint) {
	n := len(pw) - 1
	m := n + p + 1
	ph := p + t
	ph2 := ph / 2

	distinct := len(knots.Multiplicities(0))
	qw := make([]hpoint, n+1+t*(distinct-1))
	uh := make(KnotVector, len(knots)+t*distinct)

	// Coefficients for degree elevating the Bézier segments.
	bezalfs := make([][]float64, ph+1)
	for i := range bezalfs {
		bezalfs[i] = make([]float64, p+1)
	}
	bezalfs[0][0] = 1
	bezalfs[ph][p] = 1
	for i := 1; i <= ph2; i++ {
		inv := 1.0 / binomial(ph, i)
		mpi := min(p, i)
		for j := max(0, i-t); j <= mpi; j++ {
			bezalfs[i][j] = inv * binomial(p, j) * binomial(t, i-j)
		}
	}
	for i := ph2 + 1; i <= ph-1; i++ {
		mpi := min(p, i)
		for j := max(0, i-t); j <= mpi; j++ {
			bezalfs[i][j] = bezalfs[ph-i][p-j]
		}
	}

	mh := ph
	kind := ph + 1
	r := -1
	a := p
	b := p + 1
	cind := 1
	ua := knots[0]

	bpts := make([]hpoint, p+1)        // current Bézier segment
	ebpts := make([]hpoint, ph+1)      // elevated Bézier segment
	nextbpts := make([]hpoint, max(0, p-1)) // leftover points of the next segment
	alfs := make([]float64, max(0, p-1))

	qw[0] = pw[0]
	for i := 0; i <= ph; i++ {
		uh[i] = ua
	}
	copy(bpts, pw[:p+1])

	for b < m {
		i := b
		for b < m && knots[b] == knots[b+1] {
			b++
		}
		mul := b - i + 1
		mh += mul + t
		ub := knots[b]
		oldr := r
		r = p - mul

		lbz := 1
		if oldr > 0 {
			lbz = (oldr + 2) / 2
		}
		rbz := ph
		if r > 0 {
			rbz = ph - (r+1)/2
		}

		if r > 0 {
			// Insert ub r times to extract the Bézier segment.
			numer := ub - ua
			for k := p; k > mul; k-- {
				alfs[k-mul-1] = numer / (knots[a+k] - ua)
			}
			for j := 1; j <= r; j++ {
				save := r - j
				s := mul + j
				for k := p; k >= s; k-- {
					bpts[k] = bpts[k].scale(alfs[k-s]).add(bpts[k-1].scale(1 - alfs[k-s]))
				}
				nextbpts[save] = bpts[p]
			}
		}

		for i := lbz; i <= ph; i++ {
			ebpts[i] = hpoint{}
			mpi := min(p, i)
			for j := max(0, i-t); j <= mpi; j++ {
				ebpts[i] = ebpts[i].add(bpts[j].scale(bezalfs[i][j]))
			}
		}

		if oldr > 1 {
			// Remove the knot ua oldr-1 times.
			first := kind - 2
			last := kind
			den := ub - ua
			bet := (ub - uh[kind-1]) / den
			for tr := 1; tr < oldr; tr++ {
				i := first
				j := last
				kj := j - kind + 1
				for j-i > tr {
					if i < cind {
						alf := (ub - uh[i]) / (ua - uh[i])
						qw[i] = qw[i].scale(alf).add(qw[i-1].scale(1 - alf))
					}
					if j >= lbz {
						if j-tr <= kind-ph+oldr {
							gam := (ub - uh[j-tr]) / den
							ebpts[kj] = ebpts[kj].scale(gam).add(ebpts[kj+1].scale(1 - gam))
						} else {
							ebpts[kj] = ebpts[kj].scale(bet).add(ebpts[kj+1].scale(1 - bet))
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
				uh[kind] = ua
				kind++
			}
		}
		for j := lbz; j <= rbz; j++ {
			qw[cind] = ebpts[j]
			cind++
		}

		if b < m {
			for j := 0; j < r; j++ {
				bpts[j] = nextbpts[j]
			}
			for j := r; j <= p; j++ {
				bpts[j] = pw[b-p+j]
			}
			a = b
			b++
			ua = ub
		} else {
			for i := 0; i <= ph; i++ {
				uh[kind+i] = ub
			}
		}
	}
	return uh, qw
}
