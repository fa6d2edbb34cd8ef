package nurbs

import (
	"fmt"
	"math"
)

// Surface is a clamped B-spline surface in 3D space: a degree and knot vector
// per parametric direction, a rectangular grid of control points indexed
// [u][v], and optional per-point weights.
//
// Surface is an immutable value: all methods return new surfaces and never
// mutate the receiver.
type Surface struct {
	degreeU, degreeV int
	knotsU, knotsV   KnotVector
	points           [][]Point3
	weights          [][]float64
}

// NewSurface builds a surface from its defining data, validating the
// degree/knot/control-grid relations in both directions. weights may be nil
// for a polynomial surface; otherwise it must mirror the control grid with
// positive entries.
func NewSurface(degreeU, degreeV int, knotsU, knotsV KnotVector, points [][]Point3, weights [][]float64) (Surface, error) {
	if degreeU < 0 || degreeV < 0 {
		return Surface{}, invalidf("negative degree (%d, %d)", degreeU, degreeV)
	}
	if len(points) == 0 || len(points[0]) == 0 {
		return Surface{}, invalidf("empty control grid")
	}
	cols := len(points[0])
	for i, row := range points {
		if len(row) != cols {
			return Surface{}, invalidf("ragged control grid: row %d has %d points, want %d", i, len(row), cols)
		}
	}
	if len(knotsU) != len(points)+degreeU+1 {
		return Surface{}, invalidf("u knot vector length %d does not match %d control rows of degree %d",
			len(knotsU), len(points), degreeU)
	}
	if len(knotsV) != cols+degreeV+1 {
		return Surface{}, invalidf("v knot vector length %d does not match %d control columns of degree %d",
			len(knotsV), cols, degreeV)
	}
	for dir, kv := range map[string]KnotVector{"u": knotsU, "v": knotsV} {
		deg := degreeU
		if dir == "v" {
			deg = degreeV
		}
		if !kv.IsNonDecreasing() {
			return Surface{}, invalidf("%s knot vector is not non-decreasing", dir)
		}
		if !kv.isClamped(deg) {
			return Surface{}, invalidf("%s knot vector is not clamped for degree %d", dir, deg)
		}
	}
	if weights != nil {
		if len(weights) != len(points) {
			return Surface{}, invalidf("weight grid has %d rows, want %d", len(weights), len(points))
		}
		for i, row := range weights {
			if len(row) != cols {
				return Surface{}, invalidf("ragged weight grid at row %d", i)
			}
			for j, w := range row {
				if w <= 0 {
					return Surface{}, invalidf("non-positive weight %g at (%d, %d)", w, i, j)
				}
			}
		}
	}
	return Surface{
		degreeU: degreeU,
		degreeV: degreeV,
		knotsU:  knotsU.Clone(),
		knotsV:  knotsV.Clone(),
		points:  clonePointGrid(points),
		weights: cloneFloatGrid(weights),
	}, nil
}

func (s Surface) String() string {
	return fmt.Sprintf("B-spline surface of degree (%d, %d) with a %d×%d control grid",
		s.degreeU, s.degreeV, len(s.points), len(s.points[0]))
}

// DegreeU returns the degree in the u direction.
func (s Surface) DegreeU() int { return s.degreeU }

// DegreeV returns the degree in the v direction.
func (s Surface) DegreeV() int { return s.degreeV }

// KnotVectorU returns a copy of the u-direction knot vector.
func (s Surface) KnotVectorU() KnotVector { return s.knotsU.Clone() }

// KnotVectorV returns a copy of the v-direction knot vector.
func (s Surface) KnotVectorV() KnotVector { return s.knotsV.Clone() }

// ControlPoints returns a copy of the control grid, indexed [u][v].
func (s Surface) ControlPoints() [][]Point3 { return clonePointGrid(s.points) }

// Weights returns a copy of the weight grid, or nil for a polynomial surface.
func (s Surface) Weights() [][]float64 { return cloneFloatGrid(s.weights) }

// IsRational reports whether the surface has non-uniform weights.
func (s Surface) IsRational() bool {
	if s.weights == nil {
		return false
	}
	w0 := s.weights[0][0]
	for _, row := range s.weights {
		for _, w := range row {
			if math.Abs(w-w0) > knotEqualEps {
				return true
			}
		}
	}
	return false
}

// ParameterBoundsU returns the parameter domain in the u direction.
func (s Surface) ParameterBoundsU() (float64, float64) { return s.knotsU.Bounds(s.degreeU) }

// ParameterBoundsV returns the parameter domain in the v direction.
func (s Surface) ParameterBoundsV() (float64, float64) { return s.knotsV.Bounds(s.degreeV) }

func (s Surface) weightAt(i, j int) float64 {
	if s.weights == nil {
		return 1
	}
	return s.weights[i][j]
}

// Eval evaluates the surface at the parameter pair (u, v), clamped to the
// surface's domain.
func (s Surface) Eval(u, v float64) Point3 {
	pt, _, _ := s.evalPartials(u, v)
	return pt
}

// evalPartials evaluates the surface point and its first partial derivatives
// with respect to u and v.
func (s Surface) evalPartials(u, v float64) (Point3, Vec3, Vec3) {
	ulo, uhi := s.ParameterBoundsU()
	vlo, vhi := s.ParameterBoundsV()
	u = math.Min(math.Max(u, ulo), uhi)
	v = math.Min(math.Max(v, vlo), vhi)

	spanU := s.knotsU.Span(s.degreeU, u)
	spanV := s.knotsV.Span(s.degreeV, v)
	dersU := dersBasisFuns(spanU, u, s.degreeU, 1, s.knotsU)
	dersV := dersBasisFuns(spanV, v, s.degreeV, 1, s.knotsV)

	var a, au, av hpoint
	for i := 0; i <= s.degreeU; i++ {
		for j := 0; j <= s.degreeV; j++ {
			iu := spanU - s.degreeU + i
			jv := spanV - s.degreeV + j
			hp := weighted(s.points[iu][jv], s.weightAt(iu, jv))
			a = a.add(hp.scale(dersU[0][i] * dersV[0][j]))
			au = au.add(hp.scale(dersU[1][i] * dersV[0][j]))
			av = av.add(hp.scale(dersU[0][i] * dersV[1][j]))
		}
	}
	pt, w := a.project()
	// Quotient rule for the rational case; for polynomial surfaces w == 1 and
	// the derivative weights vanish.
	su := Vec3{
		X: (au[0] - au[3]*pt.X) / w,
		Y: (au[1] - au[3]*pt.Y) / w,
		Z: (au[2] - au[3]*pt.Z) / w,
	}
	sv := Vec3{
		X: (av[0] - av[3]*pt.X) / w,
		Y: (av[1] - av[3]*pt.Y) / w,
		Z: (av[2] - av[3]*pt.Z) / w,
	}
	return pt, su, sv
}

// Normal returns the unit surface normal at (u, v), the normalized cross
// product of the two first partial derivatives.
func (s Surface) Normal(u, v float64) Vec3 {
	_, su, sv := s.evalPartials(u, v)
	return su.Cross(sv).Normalize()
}

// SwapUV returns the surface with its two parametric directions exchanged:
// the control grid transposed and degrees and knot vectors swapped. The image
// of the surface is unchanged; Eval(u, v) of the result equals Eval(v, u) of
// the original.
func (s Surface) SwapUV() Surface {
	rows, cols := len(s.points), len(s.points[0])
	points := make([][]Point3, cols)
	for j := range points {
		points[j] = make([]Point3, rows)
		for i := range points[j] {
			points[j][i] = s.points[i][j]
		}
	}
	var weights [][]float64
	if s.weights != nil {
		weights = make([][]float64, cols)
		for j := range weights {
			weights[j] = make([]float64, rows)
			for i := range weights[j] {
				weights[j][i] = s.weights[i][j]
			}
		}
	}
	return Surface{
		degreeU: s.degreeV,
		degreeV: s.degreeU,
		knotsU:  s.knotsV.Clone(),
		knotsV:  s.knotsU.Clone(),
		points:  points,
		weights: weights,
	}
}

// hGrid returns the control grid in homogeneous coordinates.
func (s Surface) hGrid() [][]hpoint {
	out := make([][]hpoint, len(s.points))
	for i, row := range s.points {
		out[i] = make([]hpoint, len(row))
		for j, pt := range row {
			out[i][j] = weighted(pt, s.weightAt(i, j))
		}
	}
	return out
}

func (s Surface) withHGrid(knotsU, knotsV KnotVector, grid [][]hpoint) Surface {
	points := make([][]Point3, len(grid))
	var weights [][]float64
	if s.weights != nil {
		weights = make([][]float64, len(grid))
	}
	for i, row := range grid {
		points[i] = make([]Point3, len(row))
		if weights != nil {
			weights[i] = make([]float64, len(row))
		}
		for j, hp := range row {
			pt, w := hp.project()
			points[i][j] = pt
			if weights != nil {
				weights[i][j] = w
			}
		}
	}
	return Surface{
		degreeU: s.degreeU,
		degreeV: s.degreeV,
		knotsU:  knotsU,
		knotsV:  knotsV,
		points:  points,
		weights: weights,
	}
}

// RefineKnotsU returns the surface with the sorted parameter values xs
// inserted into its u knot vector. Geometry is unchanged.
func (s Surface) RefineKnotsU(xs []float64) (Surface, error) {
	if len(xs) == 0 {
		return s, nil
	}
	lo, hi := s.ParameterBoundsU()
	if xs[0] <= lo || xs[len(xs)-1] >= hi {
		return Surface{}, invalidf("knots to insert are outside the open u domain (%g, %g)", lo, hi)
	}
	grid := s.hGrid()
	cols := len(grid[0])
	var newKnots KnotVector
	var newGrid [][]hpoint
	for j := 0; j < cols; j++ {
		col := make([]hpoint, len(grid))
		for i := range grid {
			col[i] = grid[i][j]
		}
		kv, refined := refineHPoints(s.degreeU, s.knotsU, col, xs)
		if newGrid == nil {
			newKnots = kv
			newGrid = make([][]hpoint, len(refined))
			for i := range newGrid {
				newGrid[i] = make([]hpoint, cols)
			}
		}
		for i, hp := range refined {
			newGrid[i][j] = hp
		}
	}
	return s.withHGrid(newKnots, s.knotsV.Clone(), newGrid), nil
}

// RefineKnotsV returns the surface with the sorted parameter values xs
// inserted into its v knot vector. Geometry is unchanged.
func (s Surface) RefineKnotsV(xs []float64) (Surface, error) {
	if len(xs) == 0 {
		return s, nil
	}
	lo, hi := s.ParameterBoundsV()
	if xs[0] <= lo || xs[len(xs)-1] >= hi {
		return Surface{}, invalidf("knots to insert are outside the open v domain (%g, %g)", lo, hi)
	}
	grid := s.hGrid()
	var newKnots KnotVector
	newGrid := make([][]hpoint, len(grid))
	for i, row := range grid {
		kv, refined := refineHPoints(s.degreeV, s.knotsV, row, xs)
		newKnots = kv
		newGrid[i] = refined
	}
	return s.withHGrid(s.knotsU.Clone(), newKnots, newGrid), nil
}

// ElevateDegreeU returns the surface with its u degree raised by t. Geometry
// is unchanged.
func (s Surface) ElevateDegreeU(t int) Surface {
	if t <= 0 {
		return s
	}
	grid := s.hGrid()
	cols := len(grid[0])
	var newKnots KnotVector
	var newGrid [][]hpoint
	for j := 0; j < cols; j++ {
		col := make([]hpoint, len(grid))
		for i := range grid {
			col[i] = grid[i][j]
		}
		kv, elevated := elevateHPoints(s.degreeU, s.knotsU, col, t)
		if newGrid == nil {
			newKnots = kv
			newGrid = make([][]hpoint, len(elevated))
			for i := range newGrid {
				newGrid[i] = make([]hpoint, cols)
			}
		}
		for i, hp := range elevated {
			newGrid[i][j] = hp
		}
	}
	out := s.withHGrid(newKnots, s.knotsV.Clone(), newGrid)
	out.degreeU = s.degreeU + t
	return out
}

// ElevateDegreeV returns the surface with its v degree raised by t. Geometry
// is unchanged.
func (s Surface) ElevateDegreeV(t int) Surface {
	if t <= 0 {
		return s
	}
	grid := s.hGrid()
	var newKnots KnotVector
	newGrid := make([][]hpoint, len(grid))
	for i, row := range grid {
		kv, elevated := elevateHPoints(s.degreeV, s.knotsV, row, t)
		newKnots = kv
		newGrid[i] = elevated
	}
	out := s.withHGrid(s.knotsU.Clone(), newKnots, newGrid)
	out.degreeV = s.degreeV + t
	return out
}

func clonePointGrid(grid [][]Point3) [][]Point3 {
	if grid == nil {
		return nil
	}
	out := make([][]Point3, len(grid))
	for i, row := range grid {
		out[i] = append([]Point3(nil), row...)
	}
	return out
}

func cloneFloatGrid(grid [][]float64) [][]float64 {
	if grid == nil {
		return nil
	}
	out := make([][]float64, len(grid))
	for i, row := range grid {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
