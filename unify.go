package nurbs

import "math"

// DefaultKnotAccuracy is the default number of decimal digits used as the
// equality tolerance when merging knot values during unification.
const DefaultKnotAccuracy = 6

// UnifyCurves returns the curves rewritten to share a single degree (the
// maximum present; the others are elevated) and a single knot vector (the
// union of all knot vectors; each curve is refined to it). Knot values that
// agree to the given number of decimal digits are treated as one knot. The
// curves must share a parameter domain; geometry is preserved, and a sampled
// consistency check fails with ErrNumericalFailure if it is not, within a
// tolerance derived from the accuracy.
//
// Unification is the prerequisite for lofting and for the final Boolean-sum
// combination, both of which need control grids of matching shape.
func UnifyCurves(curves []Curve, accuracy int) ([]Curve, error) {
	if len(curves) == 0 {
		return nil, invalidf("no curves to unify")
	}
	if accuracy < 1 {
		return nil, invalidf("knot accuracy %d must be at least 1", accuracy)
	}
	eps := accuracyEps(accuracy)

	lo, hi := curves[0].ParameterBounds()
	maxDegree := 0
	for _, c := range curves {
		clo, chi := c.ParameterBounds()
		if math.Abs(clo-lo) > eps || math.Abs(chi-hi) > eps {
			return nil, invalidf("curves to unify have different domains: [%g, %g] vs [%g, %g]", lo, hi, clo, chi)
		}
		maxDegree = max(maxDegree, c.Degree())
	}

	out := make([]Curve, len(curves))
	for i, c := range curves {
		out[i] = c.ElevateDegree(maxDegree - c.Degree())
	}

	kvs := make([]KnotVector, len(out))
	for i, c := range out {
		kvs[i] = c.knots
	}
	union := knotUnion(kvs, accuracy)

	for i, c := range out {
		canonical, xs := unifyTargets(c.knots, union, eps)
		u := c.clone()
		u.knots = canonical
		u, err := u.RefineKnots(xs)
		if err != nil {
			return nil, err
		}
		if err := verifyGeometry(c, u, eps); err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

// unifyTargets rewrites a knot vector onto the union's canonical values and
// returns it together with the sorted knots that must still be inserted to
// reach the union's multiplicities.
func unifyTargets(kv KnotVector, union []KnotMultiplicity, eps float64) (KnotVector, []float64) {
	canonical := make(KnotVector, len(kv))
	var xs []float64
	i := 0
	for _, km := range union {
		have := 0
		for i < len(kv) && kv[i] <= km.Knot+eps {
			canonical[i] = km.Knot
			have++
			i++
		}
		for j := have; j < km.Mult; j++ {
			xs = append(xs, km.Knot)
		}
	}
	return canonical, xs
}

// verifyGeometry samples two curves that are meant to be geometrically
// identical and reports a numerical failure if they disagree beyond what the
// knot accuracy can explain.
func verifyGeometry(a, b Curve, eps float64) error {
	lo, hi := a.ParameterBounds()
	tol := math.Max(1e-9, 10*eps)
	for _, t := range linspace(lo, hi, 16) {
		if d := a.Eval(t).Distance(b.Eval(t)); d > tol {
			return numericalf("unification failed to preserve geometry: deviation %g at parameter %g", d, t)
		}
	}
	return nil
}

// UnifySurfaces returns the surfaces rewritten to share degrees and knot
// vectors in both parametric directions, analogous to [UnifyCurves]. The
// surfaces must share parameter domains per direction.
func UnifySurfaces(surfaces []Surface, accuracy int) ([]Surface, error) {
	if len(surfaces) == 0 {
		return nil, invalidf("no surfaces to unify")
	}
	if accuracy < 1 {
		return nil, invalidf("knot accuracy %d must be at least 1", accuracy)
	}
	eps := accuracyEps(accuracy)

	ulo, uhi := surfaces[0].ParameterBoundsU()
	vlo, vhi := surfaces[0].ParameterBoundsV()
	maxDU, maxDV := 0, 0
	for _, s := range surfaces {
		sulo, suhi := s.ParameterBoundsU()
		svlo, svhi := s.ParameterBoundsV()
		if math.Abs(sulo-ulo) > eps || math.Abs(suhi-uhi) > eps ||
			math.Abs(svlo-vlo) > eps || math.Abs(svhi-vhi) > eps {
			return nil, invalidf("surfaces to unify have different domains")
		}
		maxDU = max(maxDU, s.DegreeU())
		maxDV = max(maxDV, s.DegreeV())
	}

	out := make([]Surface, len(surfaces))
	for i, s := range surfaces {
		s = s.ElevateDegreeU(maxDU - s.DegreeU())
		s = s.ElevateDegreeV(maxDV - s.DegreeV())
		out[i] = s
	}

	kvsU := make([]KnotVector, len(out))
	kvsV := make([]KnotVector, len(out))
	for i, s := range out {
		kvsU[i] = s.knotsU
		kvsV[i] = s.knotsV
	}
	unionU := knotUnion(kvsU, accuracy)
	unionV := knotUnion(kvsV, accuracy)

	for i, s := range out {
		canonicalU, xsU := unifyTargets(s.knotsU, unionU, eps)
		s.knotsU = canonicalU
		s, err := s.RefineKnotsU(xsU)
		if err != nil {
			return nil, err
		}
		canonicalV, xsV := unifyTargets(s.knotsV, unionV, eps)
		s.knotsV = canonicalV
		s, err = s.RefineKnotsV(xsV)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
