package nurbs

import "math"

// Metric selects how parameter values are assigned to an ordered sequence of
// points, for lofting and global interpolation.
type Metric int

const (
	// MetricPoints spaces parameters proportionally to the distance between
	// consecutive points (chord length). This is the default.
	MetricPoints Metric = iota
	// MetricUniform spaces parameters uniformly by index.
	MetricUniform
	// MetricCentripetal spaces parameters proportionally to the square root
	// of the distance between consecutive points.
	MetricCentripetal
)

func (m Metric) String() string {
	switch m {
	case MetricPoints:
		return "points"
	case MetricUniform:
		return "uniform"
	case MetricCentripetal:
		return "centripetal"
	default:
		return "unknown"
	}
}

// Params assigns a strictly increasing parameter value in [0, 1] to each
// point. Coincident consecutive points make the distance-based metrics
// degenerate and fail with ErrNumericalFailure.
func (m Metric) Params(points []Point3) ([]float64, error) {
	n := len(points)
	if n < 2 {
		return nil, invalidf("need at least 2 points to assign parameters, got %d", n)
	}
	if m == MetricUniform {
		return linspace(0, 1, n), nil
	}
	params := make([]float64, n)
	for i := 1; i < n; i++ {
		d := points[i].Distance(points[i-1])
		if d == 0 {
			return nil, numericalf("coincident points at indices %d and %d", i-1, i)
		}
		if m == MetricCentripetal {
			d = math.Sqrt(d)
		}
		params[i] = params[i-1] + d
	}
	total := params[n-1]
	for i := range params {
		params[i] /= total
	}
	params[n-1] = 1
	return params, nil
}

// gridParams assigns parameters to the rows and columns of a point grid by
// averaging the metric's per-row and per-column assignments, so that a single
// consistent parameter pair is associated with every grid entry. The returned
// slices have len(grid[0]) and len(grid) entries respectively.
func gridParams(grid [][]Point3, m Metric) (rowParams, colParams []float64, err error) {
	n := len(grid)
	mm := len(grid[0])

	rowParams = make([]float64, mm)
	for i := 0; i < n; i++ {
		ps, err := m.Params(grid[i])
		if err != nil {
			return nil, nil, err
		}
		for j, p := range ps {
			rowParams[j] += p / float64(n)
		}
	}
	rowParams[0], rowParams[mm-1] = 0, 1

	colParams = make([]float64, n)
	col := make([]Point3, n)
	for j := 0; j < mm; j++ {
		for i := 0; i < n; i++ {
			col[i] = grid[i][j]
		}
		ps, err := m.Params(col)
		if err != nil {
			return nil, nil, err
		}
		for i, p := range ps {
			colParams[i] += p / float64(mm)
		}
	}
	colParams[0], colParams[n-1] = 0, 1
	return rowParams, colParams, nil
}

// scaleParams affinely maps normalized parameters in [0, 1] onto [lo, hi].
func scaleParams(params []float64, lo, hi float64) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = lo + p*(hi-lo)
	}
	out[len(out)-1] = hi
	return out
}
