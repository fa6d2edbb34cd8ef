package nurbs

import (
	"fmt"
	"math"
)

// DefaultAccuracy is a default value for methods that take an accuracy
// argument. It is suitable for general-purpose geometric work.
const DefaultAccuracy = 1e-6

// Curve is a clamped B-spline curve in 3D space: a degree, a knot vector of
// length len(controlPoints)+degree+1, control points, and optional per-point
// weights. A curve with nil or uniform weights is polynomial; non-uniform
// weights make it rational.
//
// Curve is an immutable value: all methods return new curves and never mutate
// the receiver.
type Curve struct {
	degree  int
	knots   KnotVector
	points  []Point3
	weights []float64
}

// NewCurve builds a curve from its defining data, validating the
// degree/knot/control-point relation. weights may be nil for a polynomial
// curve; otherwise it must have one positive entry per control point.
func NewCurve(degree int, knots KnotVector, points []Point3, weights []float64) (Curve, error) {
	if degree < 0 {
		return Curve{}, invalidf("negative degree %d", degree)
	}
	if len(points) == 0 {
		return Curve{}, invalidf("no control points")
	}
	if len(knots) != len(points)+degree+1 {
		return Curve{}, invalidf("knot vector length %d does not match %d control points of degree %d",
			len(knots), len(points), degree)
	}
	if !knots.IsNonDecreasing() {
		return Curve{}, invalidf("knot vector is not non-decreasing")
	}
	if !knots.isClamped(degree) {
		return Curve{}, invalidf("knot vector is not clamped for degree %d", degree)
	}
	if weights != nil {
		if len(weights) != len(points) {
			return Curve{}, invalidf("%d weights for %d control points", len(weights), len(points))
		}
		for i, w := range weights {
			if w <= 0 {
				return Curve{}, invalidf("non-positive weight %g at index %d", w, i)
			}
		}
	}
	return Curve{
		degree:  degree,
		knots:   knots.Clone(),
		points:  append([]Point3(nil), points...),
		weights: append([]float64(nil), weights...),
	}, nil
}

// BezierCurve builds the Bézier curve of degree len(points)-1 with the given
// control points, over the domain [0, 1].
func BezierCurve(points []Point3) Curve {
	degree := len(points) - 1
	knots := make(KnotVector, 2*(degree+1))
	for i := range knots[len(knots)/2:] {
		knots[len(knots)/2+i] = 1
	}
	c, err := NewCurve(degree, knots, points, nil)
	if err != nil {
		panic(fmt.Sprintf("unreachable: %v", err))
	}
	return c
}

func (c Curve) String() string {
	kind := "B-spline"
	if c.IsRational() {
		kind = "NURBS"
	}
	lo, hi := c.ParameterBounds()
	return fmt.Sprintf("%s curve of degree %d with %d control points on [%g, %g]",
		kind, c.degree, len(c.points), lo, hi)
}

// Degree returns the curve's polynomial degree.
func (c Curve) Degree() int { return c.degree }

// KnotVector returns a copy of the curve's knot vector.
func (c Curve) KnotVector() KnotVector { return c.knots.Clone() }

// ControlPoints returns a copy of the curve's control points.
func (c Curve) ControlPoints() []Point3 { return append([]Point3(nil), c.points...) }

// Weights returns a copy of the curve's weights, or nil for a polynomial
// curve.
func (c Curve) Weights() []float64 { return append([]float64(nil), c.weights...) }

// NumControlPoints returns the number of control points.
func (c Curve) NumControlPoints() int { return len(c.points) }

// IsRational reports whether the curve has non-uniform weights. Curves with
// nil or constant weights evaluate as polynomials.
func (c Curve) IsRational() bool {
	for _, w := range c.weights {
		if math.Abs(w-c.weights[0]) > knotEqualEps {
			return true
		}
	}
	return false
}

// ParameterBounds returns the curve's parameter domain.
func (c Curve) ParameterBounds() (float64, float64) {
	return c.knots.Bounds(c.degree)
}

// Endpoints returns the curve's start and end points.
func (c Curve) Endpoints() (Point3, Point3) {
	lo, hi := c.ParameterBounds()
	return c.Eval(lo), c.Eval(hi)
}

func (c Curve) clampParam(t float64) float64 {
	lo, hi := c.ParameterBounds()
	return math.Min(math.Max(t, lo), hi)
}

// Eval evaluates the curve at the parameter t, clamped to the curve's domain.
func (c Curve) Eval(t float64) Point3 {
	t = c.clampParam(t)
	span := c.knots.Span(c.degree, t)
	ns := basisFuns(span, t, c.degree, c.knots)
	if c.weights == nil {
		var pt Point3
		for j, n := range ns {
			pt = pt.Add(c.points[span-c.degree+j].Mul(n))
		}
		return pt
	}
	var hp hpoint
	for j, n := range ns {
		i := span - c.degree + j
		hp = hp.add(weighted(c.points[i], c.weights[i]).scale(n))
	}
	pt, _ := hp.project()
	return pt
}

// Derivative evaluates the curve's first derivative at the parameter t,
// clamped to the curve's domain.
func (c Curve) Derivative(t float64) Vec3 {
	t = c.clampParam(t)
	span := c.knots.Span(c.degree, t)
	ders := dersBasisFuns(span, t, c.degree, 1, c.knots)
	if c.weights == nil {
		var d Vec3
		for j, n := range ders[1] {
			d = d.Add(Vec3(c.points[span-c.degree+j]).Mul(n))
		}
		return d
	}
	// Quotient rule: C = A/w, C' = (A' - w'·C) / w.
	var a, ad hpoint
	for j := 0; j <= c.degree; j++ {
		i := span - c.degree + j
		hp := weighted(c.points[i], c.weights[i])
		a = a.add(hp.scale(ders[0][j]))
		ad = ad.add(hp.scale(ders[1][j]))
	}
	pt, w := a.project()
	return Vec3{
		X: (ad[0] - ad[3]*pt.X) / w,
		Y: (ad[1] - ad[3]*pt.Y) / w,
		Z: (ad[2] - ad[3]*pt.Z) / w,
	}
}

// RefineKnots returns the curve with the parameter values xs inserted into
// its knot vector. xs must be sorted, non-decreasing and lie strictly inside
// the curve's domain. The curve's geometry is unchanged.
func (c Curve) RefineKnots(xs []float64) (Curve, error) {
	if len(xs) == 0 {
		return c, nil
	}
	lo, hi := c.ParameterBounds()
	for i, x := range xs {
		if x <= lo || x >= hi {
			return Curve{}, invalidf("knot %g to insert is outside the open domain (%g, %g)", x, lo, hi)
		}
		if i > 0 && x < xs[i-1] {
			return Curve{}, invalidf("knots to insert are not sorted")
		}
	}
	knots, pw := refineHPoints(c.degree, c.knots, c.hpoints(), xs)
	return c.withHPoints(knots, pw), nil
}

// Split splits the curve at the parameter t, which must lie strictly inside
// the curve's domain. Both halves carry their original sub-domain.
func (c Curve) Split(t float64) (Curve, Curve, error) {
	lo, hi := c.ParameterBounds()
	if t <= lo || t >= hi {
		return Curve{}, Curve{}, invalidf("split parameter %g is outside the open domain (%g, %g)", t, lo, hi)
	}
	p := c.degree
	knots, pw := c.knots, c.hpoints()
	if r := p - knots.multiplicityOf(t); r > 0 {
		xs := make([]float64, r)
		for i := range xs {
			xs[i] = t
		}
		knots, pw = refineHPoints(p, knots, pw, xs)
	}
	// First knot index holding t; t now has multiplicity p there.
	i0 := 0
	for math.Abs(knots[i0]-t) > knotEqualEps {
		i0++
	}
	leftKnots := append(knots[:i0+p].Clone(), t)
	rightKnots := append(KnotVector{t}, knots[i0:].Clone()...)
	left := c.withHPoints(leftKnots, pw[:i0])
	right := c.withHPoints(rightKnots, pw[i0-1:])
	return left, right, nil
}

// Cut returns the sub-curve over [t1, t2], which must be a non-empty interval
// inside the curve's domain. If rescale is set, the result is reparametrized
// onto [0, 1]; otherwise it keeps [t1, t2] as its domain. Geometry is
// preserved exactly either way.
func (c Curve) Cut(t1, t2 float64, rescale bool) (Curve, error) {
	lo, hi := c.ParameterBounds()
	if t1 < lo-knotEqualEps || t2 > hi+knotEqualEps || t1 >= t2 {
		return Curve{}, invalidf("cut interval [%g, %g] is not inside the domain [%g, %g]", t1, t2, lo, hi)
	}
	out := c
	if t2 < hi-knotEqualEps {
		left, _, err := out.Split(t2)
		if err != nil {
			return Curve{}, err
		}
		out = left
	}
	if t1 > lo+knotEqualEps {
		_, right, err := out.Split(t1)
		if err != nil {
			return Curve{}, err
		}
		out = right
	}
	if rescale {
		return out.TransformDomain(0, 1), nil
	}
	return out, nil
}

// TransformDomain returns the curve with its knot vector affinely mapped onto
// [lo, hi]. Geometry is unchanged; only the parametrization speed changes.
func (c Curve) TransformDomain(lo, hi float64) Curve {
	out := c.clone()
	out.knots = c.knots.remap(lo, hi)
	return out
}

func (c Curve) shiftDomain(delta float64) Curve {
	out := c.clone()
	out.knots = c.knots.shift(delta)
	return out
}

// Concatenate joins other onto the end of c. The other curve's domain is
// shifted so that it begins where c ends; its end point must coincide with
// c's, within DefaultAccuracy. Curves of different degrees are elevated to
// the higher degree first. The joint knot has multiplicity equal to the
// degree, so the result is C0 at the joint.
func (c Curve) Concatenate(other Curve) (Curve, error) {
	for c.degree < other.degree {
		c = c.ElevateDegree(other.degree - c.degree)
	}
	for other.degree < c.degree {
		other = other.ElevateDegree(c.degree - other.degree)
	}
	_, end := c.Endpoints()
	start, _ := other.Endpoints()
	if end.Distance(start) > DefaultAccuracy {
		return Curve{}, invalidf("curves to concatenate do not share an endpoint: %v vs %v", end, start)
	}
	_, chi := c.ParameterBounds()
	olo, _ := other.ParameterBounds()
	other = other.shiftDomain(chi - olo)

	p := c.degree
	knots := append(c.knots[:len(c.knots)-1].Clone(), other.knots[p+1:]...)
	points := append(c.ControlPoints(), other.points[1:]...)
	var weights []float64
	if c.weights != nil || other.weights != nil {
		cw, ow := c.unitWeights(), other.unitWeights()
		// Scaling all weights of one curve by a constant leaves its geometry
		// unchanged; use that to match the weights at the joint.
		f := cw[len(cw)-1] / ow[0]
		weights = append(weights, cw...)
		for _, w := range ow[1:] {
			weights = append(weights, w*f)
		}
	}
	return Curve{degree: p, knots: knots, points: points, weights: weights}, nil
}

func (c Curve) unitWeights() []float64 {
	if c.weights != nil {
		return c.weights
	}
	ws := make([]float64, len(c.points))
	for i := range ws {
		ws[i] = 1
	}
	return ws
}

func (c Curve) clone() Curve {
	return Curve{
		degree:  c.degree,
		knots:   c.knots.Clone(),
		points:  append([]Point3(nil), c.points...),
		weights: append([]float64(nil), c.weights...),
	}
}

// hpoint is a control point in homogeneous coordinates (wx, wy, wz, w). Knot
// insertion and degree elevation act linearly on these, which keeps rational
// curves exact.
type hpoint [4]float64

func weighted(pt Point3, w float64) hpoint {
	return hpoint{pt.X * w, pt.Y * w, pt.Z * w, w}
}

func (h hpoint) scale(f float64) hpoint {
	return hpoint{h[0] * f, h[1] * f, h[2] * f, h[3] * f}
}

func (h hpoint) add(o hpoint) hpoint {
	return hpoint{h[0] + o[0], h[1] + o[1], h[2] + o[2], h[3] + o[3]}
}

func (h hpoint) project() (Point3, float64) {
	return Point3{X: h[0] / h[3], Y: h[1] / h[3], Z: h[2] / h[3]}, h[3]
}

func (c Curve) hpoints() []hpoint {
	out := make([]hpoint, len(c.points))
	ws := c.unitWeights()
	for i, pt := range c.points {
		out[i] = weighted(pt, ws[i])
	}
	return out
}

// withHPoints builds a curve of c's degree from a knot vector and homogeneous
// control points, keeping the result polynomial when c was.
func (c Curve) withHPoints(knots KnotVector, pw []hpoint) Curve {
	points := make([]Point3, len(pw))
	var weights []float64
	if c.weights != nil {
		weights = make([]float64, len(pw))
	}
	for i, hp := range pw {
		pt, w := hp.project()
		points[i] = pt
		if weights != nil {
			weights[i] = w
		}
	}
	return Curve{degree: c.degree, knots: knots, points: points, weights: weights}
}

// refineHPoints inserts the sorted parameter values xs into the knot vector,
// recomputing the homogeneous control points so that geometry is unchanged.
// This is algorithm A5.4 from The NURBS Book.
func refineHPoints(degree int, knots KnotVector, pw []hpoint, xs []float64) (KnotVector, []hpoint) {
	if len(xs) == 0 {
		return knots.Clone(), append([]hpoint(nil), pw...)
	}
	n := len(pw) - 1
	r := len(xs) - 1
	m := n + degree + 1
	a := knots.Span(degree, xs[0])
	b := knots.Span(degree, xs[r]) + 1

	qw := make([]hpoint, n+r+2)
	ubar := make(KnotVector, m+r+2)

	for j := 0; j <= a-degree; j++ {
		qw[j] = pw[j]
	}
	for j := b - 1; j <= n; j++ {
		qw[j+r+1] = pw[j]
	}
	for j := 0; j <= a; j++ {
		ubar[j] = knots[j]
	}
	for j := b + degree; j <= m; j++ {
		ubar[j+r+1] = knots[j]
	}

	i := b + degree - 1
	k := b + degree + r
	for j := r; j >= 0; j-- {
		for xs[j] <= knots[i] && i > a {
			qw[k-degree-1] = pw[i-degree-1]
			ubar[k] = knots[i]
			k--
			i--
		}
		qw[k-degree-1] = qw[k-degree]
		for l := 1; l <= degree; l++ {
			ind := k - degree + l
			alfa := ubar[k+l] - xs[j]
			if math.Abs(alfa) == 0 {
				qw[ind-1] = qw[ind]
			} else {
				alfa /= ubar[k+l] - knots[i-degree+l]
				qw[ind-1] = qw[ind-1].scale(alfa).add(qw[ind].scale(1 - alfa))
			}
		}
		ubar[k] = xs[j]
		k--
	}
	return ubar, qw
}
