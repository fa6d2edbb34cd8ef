package nurbs

import (
	"math"
	"slices"
	"sort"
)

// knotEqualEps is the tolerance used when matching a parameter against an
// existing knot value exactly, e.g. when counting multiplicities. It is
// deliberately much tighter than any user-facing accuracy setting.
const knotEqualEps = 1e-10

// KnotVector is a non-decreasing sequence of parameter values defining the
// piecewise-polynomial breakpoints of a B-spline curve or surface direction.
// A clamped knot vector for degree p repeats its first and last values p+1
// times; the curve's domain is [kv[p], kv[len(kv)-p-1]].
type KnotVector []float64

// Clone returns a copy of the knot vector.
func (kv KnotVector) Clone() KnotVector {
	return append(KnotVector(nil), kv...)
}

// Bounds returns the parameter domain [kv[degree], kv[len(kv)-degree-1]] of a
// clamped knot vector for the given degree.
func (kv KnotVector) Bounds(degree int) (float64, float64) {
	return kv[degree], kv[len(kv)-degree-1]
}

// Span returns the index of the knot span containing the parameter t, i.e.
// the largest i with kv[i] <= t < kv[i+1], clamped to the valid basis range.
// This is the binary search of algorithm A2.1 from The NURBS Book.
func (kv KnotVector) Span(degree int, t float64) int {
	n := len(kv) - degree - 2
	if t >= kv[n+1] {
		return n
	}
	if t < kv[degree] {
		return degree
	}
	low, high := degree, n+1
	mid := (low + high) / 2
	for t < kv[mid] || t >= kv[mid+1] {
		if t < kv[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// KnotMultiplicity is a distinct knot value together with the number of times
// it occurs in a knot vector.
type KnotMultiplicity struct {
	Knot float64
	Mult int
}

// Multiplicities returns the distinct knot values of kv and their
// multiplicities. Values closer than eps are treated as one knot; eps may be
// zero for exact grouping.
func (kv KnotVector) Multiplicities(eps float64) []KnotMultiplicity {
	if len(kv) == 0 {
		return nil
	}
	mults := []KnotMultiplicity{{kv[0], 0}}
	cur := 0
	for _, knot := range kv {
		if math.Abs(knot-mults[cur].Knot) > eps {
			mults = append(mults, KnotMultiplicity{knot, 0})
			cur++
		}
		mults[cur].Mult++
	}
	return mults
}

// multiplicityOf returns how many times the value t occurs in kv, matching
// within knotEqualEps.
func (kv KnotVector) multiplicityOf(t float64) int {
	n := 0
	for _, knot := range kv {
		if math.Abs(knot-t) <= knotEqualEps {
			n++
		}
	}
	return n
}

// IsNonDecreasing reports whether the knot values never decrease.
func (kv KnotVector) IsNonDecreasing() bool {
	for i := 1; i < len(kv); i++ {
		if kv[i] < kv[i-1] {
			return false
		}
	}
	return true
}

// isClamped reports whether the first and last values are repeated degree+1
// times, within knotEqualEps.
func (kv KnotVector) isClamped(degree int) bool {
	if len(kv) < 2*(degree+1) {
		return false
	}
	for _, knot := range kv[:degree+1] {
		if math.Abs(knot-kv[0]) > knotEqualEps {
			return false
		}
	}
	for _, knot := range kv[len(kv)-degree-1:] {
		if math.Abs(knot-kv[len(kv)-1]) > knotEqualEps {
			return false
		}
	}
	return true
}

// Snap returns the knot value of kv within tolerance of t, preferring the
// nearest smaller knot, or t unchanged if no knot is that close. Snapping
// breakpoints onto existing knots avoids inserting near-duplicate knots that
// would destabilize later unification.
func (kv KnotVector) Snap(t, tolerance float64) float64 {
	i := sort.SearchFloat64s(kv, t)
	if i > 0 {
		if smaller := kv[i-1]; t-smaller < tolerance {
			return smaller
		}
	}
	if i < len(kv) {
		if greater := kv[i]; greater-t < tolerance {
			return greater
		}
	}
	return t
}

// shift returns the knot vector translated by delta.
func (kv KnotVector) shift(delta float64) KnotVector {
	out := make(KnotVector, len(kv))
	for i, knot := range kv {
		out[i] = knot + delta
	}
	return out
}

// remap returns the knot vector affinely mapped onto the domain [lo, hi].
func (kv KnotVector) remap(lo, hi float64) KnotVector {
	a, b := kv[0], kv[len(kv)-1]
	scale := (hi - lo) / (b - a)
	out := make(KnotVector, len(kv))
	for i, knot := range kv {
		out[i] = lo + (knot-a)*scale
	}
	// Guard the ends against roundoff so clamped vectors stay clamped.
	for i := range out {
		if kv[i] == a {
			out[i] = lo
		}
		if kv[i] == b {
			out[i] = hi
		}
	}
	return out
}

// averagedKnots builds the clamped knot vector for global interpolation of
// len(params) points with the given degree, by knot averaging (The NURBS
// Book, eq. 9.8). params must be strictly increasing.
func averagedKnots(params []float64, degree int) KnotVector {
	n := len(params) - 1
	kv := make(KnotVector, n+degree+2)
	for i := 0; i <= degree; i++ {
		kv[i] = params[0]
		kv[len(kv)-1-i] = params[n]
	}
	for j := 1; j <= n-degree; j++ {
		sum := 0.0
		for i := j; i <= j+degree-1; i++ {
			sum += params[i]
		}
		kv[j+degree] = sum / float64(degree)
	}
	return kv
}

// accuracyEps converts a decimal-digit knot accuracy into an absolute
// tolerance for treating two knot values as equal.
func accuracyEps(digits int) float64 {
	return 0.5 * math.Pow(10, -float64(digits))
}

// roundToDigits rounds v to the given number of decimal digits.
func roundToDigits(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

// knotUnion merges the distinct knot values of several knot vectors, taking
// for each value the maximum multiplicity found in any single vector. Values
// within eps of each other are identified; the canonical value is the rounded
// cluster representative.
func knotUnion(kvs []KnotVector, digits int) []KnotMultiplicity {
	eps := accuracyEps(digits)
	var all []KnotMultiplicity
	for _, kv := range kvs {
		all = append(all, kv.Multiplicities(eps)...)
	}
	slices.SortFunc(all, func(a, b KnotMultiplicity) int {
		switch {
		case a.Knot < b.Knot:
			return -1
		case a.Knot > b.Knot:
			return 1
		default:
			return 0
		}
	})
	var union []KnotMultiplicity
	for _, km := range all {
		if len(union) > 0 && math.Abs(km.Knot-union[len(union)-1].Knot) <= eps {
			last := &union[len(union)-1]
			if km.Mult > last.Mult {
				last.Mult = km.Mult
			}
			continue
		}
		union = append(union, KnotMultiplicity{roundToDigits(km.Knot, digits), km.Mult})
	}
	return union
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
