package nurbs

import "math"

// Loft builds a surface that interpolates an ordered family of curves. The
// curves must be polynomial and already unified: identical degree and knot
// vector (see [UnifyCurves]). Each curve is assigned a transverse parameter
// by the metric, applied to corresponding control points across the family
// and averaged; then every control-point column is globally interpolated by a
// curve of the requested transverse degree (clamped to len(curves)-1).
//
// In the resulting surface the u direction runs along the input curves,
// reusing their degree and knot vector verbatim, and the v direction is the
// transverse one: evaluating the surface along u at curve i's transverse
// parameter reproduces curve i exactly.
func Loft(curves []Curve, degreeV int, metric Metric) (Surface, error) {
	if len(curves) < 2 {
		return Surface{}, invalidf("need at least 2 curves to loft, got %d", len(curves))
	}
	columns, err := loftColumns(curves)
	if err != nil {
		return Surface{}, err
	}
	// Average the metric's parameter assignment over all control columns.
	params := make([]float64, len(curves))
	for _, col := range columns {
		ps, err := metric.Params(col)
		if err != nil {
			return Surface{}, err
		}
		for i, p := range ps {
			params[i] += p / float64(len(columns))
		}
	}
	params[0], params[len(params)-1] = 0, 1
	return loftAt(curves, degreeV, params)
}

// loftAt lofts unified curves at explicitly given, strictly increasing
// transverse parameters, one per curve.
func loftAt(curves []Curve, degreeV int, params []float64) (Surface, error) {
	if len(curves) < 2 {
		return Surface{}, invalidf("need at least 2 curves to loft, got %d", len(curves))
	}
	if len(params) != len(curves) {
		return Surface{}, invalidf("%d transverse parameters for %d curves", len(params), len(curves))
	}
	columns, err := loftColumns(curves)
	if err != nil {
		return Surface{}, err
	}
	degreeV = min(degreeV, len(curves)-1)
	if degreeV < 1 {
		degreeV = 1
	}

	points := make([][]Point3, len(columns))
	var knotsV KnotVector
	for l, col := range columns {
		c, err := interpolateCurveAt(degreeV, col, params)
		if err != nil {
			return Surface{}, err
		}
		points[l] = c.points
		knotsV = c.knots
	}
	return Surface{
		degreeU: curves[0].Degree(),
		degreeV: degreeV,
		knotsU:  curves[0].KnotVector(),
		knotsV:  knotsV,
		points:  points,
	}, nil
}

// loftColumns validates that the curves are polynomial and unified, and
// returns their control points grouped by column: columns[l][i] is control
// point l of curve i.
func loftColumns(curves []Curve) ([][]Point3, error) {
	first := curves[0]
	for i, c := range curves {
		if c.IsRational() {
			return nil, unsupportedf("curve %d is rational; lofting needs polynomial curves", i)
		}
		if c.Degree() != first.Degree() || len(c.points) != len(first.points) {
			return nil, invalidf("curves to loft are not unified: curve %d has degree %d with %d control points, want degree %d with %d",
				i, c.Degree(), len(c.points), first.Degree(), len(first.points))
		}
		for k, knot := range c.knots {
			if math.Abs(knot-first.knots[k]) > knotEqualEps {
				return nil, invalidf("curves to loft are not unified: knot vectors of curves 0 and %d differ at index %d", i, k)
			}
		}
	}
	columns := make([][]Point3, len(first.points))
	for l := range columns {
		columns[l] = make([]Point3, len(curves))
		for i, c := range curves {
			columns[l][i] = c.points[l]
		}
	}
	return columns, nil
}
