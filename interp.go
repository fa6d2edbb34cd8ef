package nurbs

import (
	"gonum.org/v1/gonum/mat"
)

// InterpolateCurve builds the polynomial B-spline curve of the given degree
// that passes exactly through every point, at parameters assigned by the
// metric. degree must be at most len(points)-1. This is global curve
// interpolation with averaged knots (The NURBS Book, algorithm A9.1).
func InterpolateCurve(degree int, points []Point3, metric Metric) (Curve, error) {
	params, err := metric.Params(points)
	if err != nil {
		return Curve{}, err
	}
	return interpolateCurveAt(degree, points, params)
}

// interpolateCurveAt interpolates points at explicitly given, strictly
// increasing parameter values.
func interpolateCurveAt(degree int, points []Point3, params []float64) (Curve, error) {
	n := len(points)
	if n != len(params) {
		return Curve{}, invalidf("%d points but %d parameters", n, len(params))
	}
	if degree < 1 || degree > n-1 {
		return Curve{}, invalidf("interpolation degree %d must be in [1, %d]", degree, n-1)
	}
	for i := 1; i < n; i++ {
		if params[i] <= params[i-1] {
			return Curve{}, numericalf("interpolation parameters are not strictly increasing at index %d", i)
		}
	}
	knots := averagedKnots(params, degree)

	a := mat.NewDense(n, n, nil)
	for i, t := range params {
		span := knots.Span(degree, t)
		for j, v := range basisFuns(span, t, degree, knots) {
			a.Set(i, span-degree+j, v)
		}
	}
	ctrl, err := solvePoints(a, points)
	if err != nil {
		return Curve{}, err
	}
	return Curve{degree: degree, knots: knots, points: ctrl}, nil
}

// interpolateWithTangents builds the curve of the given degree that passes
// through every point with the prescribed first derivative, at the given
// strictly increasing parameters. It has twice as many control points as
// plain interpolation; the knot vector is averaged over the doubled parameter
// sequence.
func interpolateWithTangents(degree int, points []Point3, tangents []Vec3, params []float64) (Curve, error) {
	n := len(points)
	if n != len(tangents) || n != len(params) {
		return Curve{}, invalidf("%d points, %d tangents, %d parameters", n, len(tangents), len(params))
	}
	if n < 2 {
		return Curve{}, invalidf("need at least 2 points, got %d", n)
	}
	if degree < 2 || degree > 2*n-1 {
		return Curve{}, invalidf("tangent interpolation degree %d must be in [2, %d]", degree, 2*n-1)
	}
	for i := 1; i < n; i++ {
		if params[i] <= params[i-1] {
			return Curve{}, numericalf("interpolation parameters are not strictly increasing at index %d", i)
		}
	}
	doubled := make([]float64, 0, 2*n)
	for _, t := range params {
		doubled = append(doubled, t, t)
	}
	knots := averagedKnots(doubled, degree)

	k := 2 * n
	a := mat.NewDense(k, k, nil)
	rhsPts := make([]Point3, 0, k)
	for i, t := range params {
		span := knots.Span(degree, t)
		ders := dersBasisFuns(span, t, degree, 1, knots)
		for j := 0; j <= degree; j++ {
			a.Set(2*i, span-degree+j, ders[0][j])
			a.Set(2*i+1, span-degree+j, ders[1][j])
		}
		rhsPts = append(rhsPts, points[i], Point3(tangents[i]))
	}
	ctrl, err := solvePoints(a, rhsPts)
	if err != nil {
		return Curve{}, err
	}
	return Curve{degree: degree, knots: knots, points: ctrl}, nil
}

// InterpolateGrid builds the polynomial B-spline surface that passes exactly
// through every entry of the point grid. Rows of the grid run along the u
// direction: entry grid[i][j] is interpolated at (uParams[j], vParams[i]),
// with parameters assigned by the metric. degreeU must be at most
// len(grid[0])-1 and degreeV at most len(grid)-1. This is global surface
// interpolation by two passes of curve interpolation (The NURBS Book,
// algorithm A9.4).
func InterpolateGrid(grid [][]Point3, degreeU, degreeV int, metric Metric) (Surface, error) {
	if err := validateGrid(grid); err != nil {
		return Surface{}, err
	}
	uParams, vParams, err := gridParams(grid, metric)
	if err != nil {
		return Surface{}, err
	}
	return interpolateGridAt(grid, degreeU, degreeV, uParams, vParams)
}

func validateGrid(grid [][]Point3) error {
	if len(grid) < 2 {
		return invalidf("point grid needs at least 2 rows, got %d", len(grid))
	}
	cols := len(grid[0])
	if cols < 2 {
		return invalidf("point grid needs at least 2 columns, got %d", cols)
	}
	for i, row := range grid {
		if len(row) != cols {
			return invalidf("ragged point grid: row %d has %d points, want %d", i, len(row), cols)
		}
	}
	return nil
}

// interpolateGridAt interpolates the grid at explicitly given parameters:
// uParams for the columns (length len(grid[0])), vParams for the rows.
func interpolateGridAt(grid [][]Point3, degreeU, degreeV int, uParams, vParams []float64) (Surface, error) {
	n := len(grid)     // rows, v direction
	m := len(grid[0])  // columns, u direction
	if degreeU > m-1 {
		return Surface{}, invalidf("u degree %d needs at least %d grid columns, have %d", degreeU, degreeU+1, m)
	}
	if degreeV > n-1 {
		return Surface{}, invalidf("v degree %d needs at least %d grid rows, have %d", degreeV, degreeV+1, n)
	}

	// First pass: interpolate every row along u.
	rowCtrl := make([][]Point3, n)
	var knotsU KnotVector
	for i := 0; i < n; i++ {
		c, err := interpolateCurveAt(degreeU, grid[i], uParams)
		if err != nil {
			return Surface{}, err
		}
		rowCtrl[i] = c.points
		knotsU = c.knots
	}

	// Second pass: interpolate the row curves' control points along v.
	points := make([][]Point3, m)
	var knotsV KnotVector
	col := make([]Point3, n)
	for l := 0; l < m; l++ {
		for i := 0; i < n; i++ {
			col[i] = rowCtrl[i][l]
		}
		c, err := interpolateCurveAt(degreeV, col, vParams)
		if err != nil {
			return Surface{}, err
		}
		points[l] = c.points
		knotsV = c.knots
	}
	return Surface{
		degreeU: degreeU,
		degreeV: degreeV,
		knotsU:  knotsU,
		knotsV:  knotsV,
		points:  points,
	}, nil
}

// solvePoints solves the square linear system a·x = rhs for one unknown
// control point per row. A singular or severely ill-conditioned system is
// reported as ErrNumericalFailure.
func solvePoints(a *mat.Dense, pts []Point3) ([]Point3, error) {
	k := len(pts)
	b := mat.NewDense(k, 3, nil)
	for i, pt := range pts {
		b.Set(i, 0, pt.X)
		b.Set(i, 1, pt.Y)
		b.Set(i, 2, pt.Z)
	}
	var lu mat.LU
	lu.Factorize(a)
	var x mat.Dense
	if err := lu.SolveTo(&x, false, b); err != nil {
		return nil, numericalf("interpolation system is singular or ill-conditioned: %v", err)
	}
	out := make([]Point3, k)
	for i := range out {
		out[i] = Pt(x.At(i, 0), x.At(i, 1), x.At(i, 2))
	}
	return out, nil
}
