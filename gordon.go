package nurbs

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options carries the tunable settings of [GordonSurface] and the builders on
// top of it. The zero value (and a nil *Options) selects the defaults.
type Options struct {
	// Metric assigns the grid parameters when no intersection parameters are
	// supplied. Defaults to MetricPoints.
	Metric Metric

	// UKnots and VKnots optionally give, per curve, the curve's own parameter
	// values at its intersections with the transversal family: UKnots[i][j]
	// is u-curve i's parameter at v-curve j, VKnots[j][i] is v-curve j's
	// parameter at u-curve i. Both must be supplied together. When present,
	// every curve is first reparametrized so these land on the integers
	// 0, 1, 2, …, and the grid parameters become those integers.
	UKnots [][]float64
	VKnots [][]float64

	// KnotAccuracy is the number of decimal digits used as the knot equality
	// tolerance during unification. Defaults to DefaultKnotAccuracy.
	KnotAccuracy int

	// ReparamTolerance is the snapping tolerance used when reparametrizing
	// curves to integer breakpoints. Defaults to DefaultReparamTolerance.
	ReparamTolerance float64

	// Logger is an optional diagnostic side channel. It never affects
	// results. Defaults to a no-op logger.
	Logger *zap.Logger

	// Parallel builds the two lofts and the grid interpolation concurrently.
	// They are independent computations; the result is identical either way.
	Parallel bool
}

func (o *Options) metric() Metric {
	if o == nil {
		return MetricPoints
	}
	return o.Metric
}

func (o *Options) knotAccuracy() int {
	if o == nil || o.KnotAccuracy == 0 {
		return DefaultKnotAccuracy
	}
	return o.KnotAccuracy
}

func (o *Options) reparamTolerance() float64 {
	if o == nil || o.ReparamTolerance == 0 {
		return DefaultReparamTolerance
	}
	return o.ReparamTolerance
}

func (o *Options) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// GordonResult holds the three intermediate surfaces of Gordon's construction
// together with the final Boolean sum. Only Surface is the Gordon surface
// proper; the intermediates are returned so callers can inspect partial
// results.
type GordonResult struct {
	// LoftedU is the loft of the v-curves, oriented like Surface.
	LoftedU Surface
	// LoftedV is the loft of the u-curves.
	LoftedV Surface
	// Interpolated is the surface interpolating the intersection grid.
	Interpolated Surface
	// Surface is the Gordon surface: LoftedU + LoftedV − Interpolated,
	// control point by control point, after unification.
	Surface Surface
}

// GordonSurface builds a surface interpolating a rectangular network of
// polynomial B-spline curves by Gordon's algorithm (The NURBS Book, chapter
// 10.5). uCurves and vCurves are the two transversal families; grid[i][j] is
// the point where u-curve i meets v-curve j, so the grid has len(uCurves)
// rows of len(vCurves) points. Every curve must pass through its row or
// column of the grid, within tolerance, at a parametrization consistent with
// the grid parameters; supplying the curves' intersection parameters via
// [Options.UKnots] and [Options.VKnots] enforces this by reparametrization.
//
// The construction lofts each curve family, interpolates the grid, unifies
// the three surfaces, and combines their control points as
// loftedU + loftedV − interpolated. All three constructions share a single
// parameter assignment derived from the grid, so the result interpolates
// every curve of the network.
func GordonSurface(uCurves, vCurves []Curve, grid [][]Point3, opts *Options) (*GordonResult, error) {
	log := opts.logger()
	accuracy := opts.knotAccuracy()

	if len(uCurves) == 0 || len(vCurves) == 0 {
		return nil, invalidf("both curve families must be non-empty, got %d u-curves and %d v-curves", len(uCurves), len(vCurves))
	}
	if len(uCurves) < 2 || len(vCurves) < 2 {
		return nil, invalidf("need at least 2 curves per family, got %d u-curves and %d v-curves", len(uCurves), len(vCurves))
	}
	for i, c := range uCurves {
		if c.IsRational() {
			return nil, unsupportedf("u-curve %d is rational; Gordon's construction needs polynomial curves", i)
		}
	}
	for j, c := range vCurves {
		if c.IsRational() {
			return nil, unsupportedf("v-curve %d is rational; Gordon's construction needs polynomial curves", j)
		}
	}
	n, m := len(uCurves), len(vCurves)
	if len(grid) != n {
		return nil, invalidf("intersection grid has %d rows for %d u-curves", len(grid), n)
	}
	for i, row := range grid {
		if len(row) != m {
			return nil, invalidf("intersection grid row %d has %d points for %d v-curves", i, len(row), m)
		}
	}

	hasUKnots := opts != nil && opts.UKnots != nil
	hasVKnots := opts != nil && opts.VKnots != nil
	if hasUKnots != hasVKnots {
		return nil, invalidf("intersection parameters must be supplied for both directions or neither")
	}

	var err error
	if hasUKnots {
		uCurves, vCurves, err = reparametrizeNetwork(uCurves, vCurves, opts)
		if err != nil {
			return nil, err
		}
	}

	if uCurves, err = UnifyCurves(uCurves, accuracy); err != nil {
		return nil, err
	}
	if vCurves, err = UnifyCurves(vCurves, accuracy); err != nil {
		return nil, err
	}

	// A single parameter assignment drives both lofts and the grid
	// interpolation; re-deriving it per construction would misalign the three
	// control grids and silently corrupt the Boolean sum.
	var uParams, vParams []float64
	if hasUKnots {
		uParams = linspace(0, float64(m-1), m)
		vParams = linspace(0, float64(n-1), n)
	} else {
		normU, normV, err := gridParams(grid, opts.metric())
		if err != nil {
			return nil, err
		}
		ulo, uhi := uCurves[0].ParameterBounds()
		vlo, vhi := vCurves[0].ParameterBounds()
		uParams = scaleParams(normU, ulo, uhi)
		vParams = scaleParams(normV, vlo, vhi)
	}

	uDegree := uCurves[0].Degree()
	vDegree := vCurves[0].Degree()
	log.Debug("assembling Gordon surface",
		zap.Int("uCurves", n), zap.Int("vCurves", m),
		zap.Int("uDegree", uDegree), zap.Int("vDegree", vDegree),
		zap.Bool("reparametrized", hasUKnots))

	var loftedV, loftedU, interpolated Surface
	buildLoftedV := func() error {
		s, err := loftAt(uCurves, min(n-1, vDegree), vParams)
		if err != nil {
			return err
		}
		loftedV = s
		return nil
	}
	buildLoftedU := func() error {
		s, err := loftAt(vCurves, min(m-1, uDegree), uParams)
		if err != nil {
			return err
		}
		loftedU = s.SwapUV()
		return nil
	}
	buildInterpolated := func() error {
		s, err := interpolateGridAt(grid, min(m-1, uDegree), min(n-1, vDegree), uParams, vParams)
		if err != nil {
			return err
		}
		interpolated = s
		return nil
	}
	if opts != nil && opts.Parallel {
		var g errgroup.Group
		g.Go(buildLoftedV)
		g.Go(buildLoftedU)
		g.Go(buildInterpolated)
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, build := range []func() error{buildLoftedV, buildLoftedU, buildInterpolated} {
			if err := build(); err != nil {
				return nil, err
			}
		}
	}

	unified, err := UnifySurfaces([]Surface{loftedU, loftedV, interpolated}, accuracy)
	if err != nil {
		return nil, err
	}
	su, sv, si := unified[0], unified[1], unified[2]

	if err := checkSameShape(su, sv, si); err != nil {
		return nil, err
	}
	points := make([][]Point3, len(si.points))
	for i := range points {
		points[i] = make([]Point3, len(si.points[i]))
		for j := range points[i] {
			points[i][j] = su.points[i][j].Add(sv.points[i][j]).Add(si.points[i][j].Mul(-1))
		}
	}
	result := Surface{
		degreeU: si.degreeU,
		degreeV: si.degreeV,
		knotsU:  si.knotsU.Clone(),
		knotsV:  si.knotsV.Clone(),
		points:  points,
	}
	log.Debug("assembled Gordon surface",
		zap.Int("controlRows", len(points)), zap.Int("controlColumns", len(points[0])),
		zap.Int("degreeU", result.degreeU), zap.Int("degreeV", result.degreeV))

	return &GordonResult{
		LoftedU:      su,
		LoftedV:      sv,
		Interpolated: si,
		Surface:      result,
	}, nil
}

// reparametrizeNetwork maps every curve's intersection parameters onto the
// integers 0, 1, 2, ….
func reparametrizeNetwork(uCurves, vCurves []Curve, opts *Options) ([]Curve, []Curve, error) {
	n, m := len(uCurves), len(vCurves)
	if len(opts.UKnots) != n {
		return nil, nil, invalidf("%d u-curve parameter lists for %d u-curves", len(opts.UKnots), n)
	}
	if len(opts.VKnots) != m {
		return nil, nil, invalidf("%d v-curve parameter lists for %d v-curves", len(opts.VKnots), m)
	}
	tolerance := opts.reparamTolerance()
	outU := make([]Curve, n)
	for i, c := range uCurves {
		if len(opts.UKnots[i]) != m {
			return nil, nil, invalidf("u-curve %d has %d intersection parameters for %d v-curves", i, len(opts.UKnots[i]), m)
		}
		u, err := Reparametrize(c, opts.UKnots[i], tolerance)
		if err != nil {
			return nil, nil, err
		}
		outU[i] = u
	}
	outV := make([]Curve, m)
	for j, c := range vCurves {
		if len(opts.VKnots[j]) != n {
			return nil, nil, invalidf("v-curve %d has %d intersection parameters for %d u-curves", j, len(opts.VKnots[j]), n)
		}
		v, err := Reparametrize(c, opts.VKnots[j], tolerance)
		if err != nil {
			return nil, nil, err
		}
		outV[j] = v
	}
	return outU, outV, nil
}

// checkSameShape guards the Boolean sum: after unification the three control
// grids must correspond entry by entry.
func checkSameShape(surfaces ...Surface) error {
	first := surfaces[0]
	for _, s := range surfaces[1:] {
		if s.degreeU != first.degreeU || s.degreeV != first.degreeV ||
			len(s.points) != len(first.points) || len(s.points[0]) != len(first.points[0]) {
			return numericalf("unified surfaces disagree in shape: degree (%d, %d) grid %d×%d vs degree (%d, %d) grid %d×%d",
				s.degreeU, s.degreeV, len(s.points), len(s.points[0]),
				first.degreeU, first.degreeV, len(first.points), len(first.points[0]))
		}
		for k, knot := range s.knotsU {
			if math.Abs(knot-first.knotsU[k]) > knotEqualEps {
				return numericalf("unified surfaces disagree in u knots at index %d", k)
			}
		}
		for k, knot := range s.knotsV {
			if math.Abs(knot-first.knotsV[k]) > knotEqualEps {
				return numericalf("unified surfaces disagree in v knots at index %d", k)
			}
		}
	}
	return nil
}
