package nurbs

// DefaultReparamTolerance is the default snapping tolerance for
// [Reparametrize]: breakpoints closer than this to an existing knot are moved
// onto that knot.
const DefaultReparamTolerance = 1e-2

// Reparametrize remaps the curve's parametrization so that the given
// breakpoints land on the integer parameters 0, 1, 2, …. The breakpoints must
// be strictly increasing, lie within the curve's domain, and number at least
// two; the curve is trimmed to the interval they span. Breakpoints within
// tolerance of an existing knot are snapped onto it first, which avoids
// near-duplicate knots that would destabilize later knot-vector unification.
//
// The result is geometrically identical to the input: the reparametrization
// is piecewise affine between breakpoints, so evaluating the result at the
// mapped parameter reproduces the input exactly. The map is continuous but
// not smooth, and cutting can introduce additional control points.
func Reparametrize(c Curve, breakpoints []float64, tolerance float64) (Curve, error) {
	if len(breakpoints) < 2 {
		return Curve{}, invalidf("need at least 2 breakpoints, got %d", len(breakpoints))
	}
	lo, hi := c.ParameterBounds()
	for i, bp := range breakpoints {
		if bp < lo-knotEqualEps || bp > hi+knotEqualEps {
			return Curve{}, invalidf("breakpoint %g is outside the domain [%g, %g]", bp, lo, hi)
		}
		if i > 0 && bp <= breakpoints[i-1] {
			return Curve{}, invalidf("breakpoints are not strictly increasing at index %d", i)
		}
	}

	snapped := make([]float64, len(breakpoints))
	for i, bp := range breakpoints {
		snapped[i] = c.knots.Snap(bp, tolerance)
	}

	var result Curve
	for k := 0; k+1 < len(snapped); k++ {
		t1, t2 := snapped[k], snapped[k+1]
		if t2-t1 <= knotEqualEps {
			return Curve{}, numericalf("breakpoints %g and %g collapse to a degenerate segment after snapping", breakpoints[k], breakpoints[k+1])
		}
		segment, err := c.Cut(t1, t2, true)
		if err != nil {
			return Curve{}, err
		}
		if k == 0 {
			result = segment
			continue
		}
		result, err = result.Concatenate(segment)
		if err != nil {
			return Curve{}, err
		}
	}
	return result, nil
}
