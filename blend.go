package nurbs

// SurfacePoint is a sample of a curve lying on a surface: the 3D position
// together with a local frame. Tangent is the unnormalized derivative of the
// 3D curve, Normal is the unit surface normal, and Binormal is Normal crossed
// with Tangent, pointing sideways off the curve within the tangent plane.
type SurfacePoint struct {
	Point    Point3
	Tangent  Vec3
	Normal   Vec3
	Binormal Vec3
}

// FrameOnSurface samples a curve lying on a surface at parameter t. uvCurve
// lives in the surface's parameter plane: its X coordinate is the u parameter
// and its Y coordinate the v parameter; Z is ignored. The 3D tangent follows
// by the chain rule from the surface's partial derivatives and the uv-curve's
// derivative. A degenerate surface normal at the sample fails with
// ErrNumericalFailure.
func FrameOnSurface(surf Surface, uvCurve Curve, t float64) (SurfacePoint, error) {
	uv := uvCurve.Eval(t)
	d := uvCurve.Derivative(t)
	pt, su, sv := surf.evalPartials(uv.X, uv.Y)

	normal := su.Cross(sv)
	if normal.Hypot() == 0 {
		return SurfacePoint{}, numericalf("degenerate surface normal at uv (%g, %g)", uv.X, uv.Y)
	}
	normal = normal.Normalize()
	tangent := su.Mul(d.X).Add(sv.Mul(d.Y))
	return SurfacePoint{
		Point:    pt,
		Tangent:  tangent,
		Normal:   normal,
		Binormal: normal.Cross(tangent),
	}, nil
}

// BlendSurfaces builds a tangent-continuous fillet between two surfaces along
// a rail curve on each. uv1 and uv2 are curves in the respective surface's
// parameter plane (see [FrameOnSurface]); the fillet runs from the first rail
// to the second. Each rail is sampled at samples uniform parameter steps and
// rebuilt as a curve of the given degree interpolating the samples with their
// tangents; the cross-sections are cubic curves leaving each rail along its
// surface's tangent plane, sideways off the rail. bulge1 and bulge2 scale how
// far the fillet departs from each surface before meeting the other; negative
// values flip the departure to the rail's other side.
//
// The rails become the u direction of the result and the cross-sections the
// v direction. degree must be in [2, 2*samples-1].
func BlendSurfaces(surf1 Surface, uv1 Curve, surf2 Surface, uv2 Curve, bulge1, bulge2 float64, degree, samples int, opts *Options) (Surface, error) {
	if samples < 2 {
		return Surface{}, invalidf("need at least 2 samples per rail, got %d", samples)
	}

	rail1, pts1, off1, err := blendRail(surf1, uv1, bulge1, degree, samples)
	if err != nil {
		return Surface{}, err
	}
	rail2, pts2, off2, err := blendRail(surf2, uv2, bulge2, degree, samples)
	if err != nil {
		return Surface{}, err
	}

	vCurves := make([]Curve, samples)
	for j := 0; j < samples; j++ {
		p1, p2 := pts1[j], pts2[j]
		vCurves[j] = BezierCurve([]Point3{
			p1,
			p1.Translate(off1[j]),
			p2.Translate(off2[j]),
			p2,
		})
	}

	grid := [][]Point3{pts1, pts2}

	gopts := &Options{Metric: MetricUniform}
	if opts != nil {
		gopts.KnotAccuracy = opts.KnotAccuracy
		gopts.Logger = opts.Logger
		gopts.Parallel = opts.Parallel
	}
	res, err := GordonSurface([]Curve{rail1, rail2}, vCurves, grid, gopts)
	if err != nil {
		return Surface{}, err
	}
	return res.Surface, nil
}

// blendRail samples one rail and rebuilds it, normalized to the domain
// [0, 1], as a curve interpolating the sampled points and tangents. It also
// returns the sample points and the bulge-scaled sideways offsets for the
// cross-sections.
func blendRail(surf Surface, uvCurve Curve, bulge float64, degree, samples int) (Curve, []Point3, []Vec3, error) {
	tmin, tmax := uvCurve.ParameterBounds()
	ts := linspace(tmin, tmax, samples)

	points := make([]Point3, samples)
	tangents := make([]Vec3, samples)
	offsets := make([]Vec3, samples)
	for j, t := range ts {
		sp, err := FrameOnSurface(surf, uvCurve, t)
		if err != nil {
			return Curve{}, nil, nil, err
		}
		if sp.Binormal.Hypot() == 0 {
			return Curve{}, nil, nil, numericalf("degenerate rail tangent at parameter %g", t)
		}
		points[j] = sp.Point
		// Normalizing the rail to [0, 1] rescales its derivative.
		tangents[j] = sp.Tangent.Mul(tmax - tmin)
		offsets[j] = sp.Binormal.Normalize().Mul(bulge)
	}

	rail, err := interpolateWithTangents(degree, points, tangents, linspace(0, 1, samples))
	if err != nil {
		return Curve{}, nil, nil, err
	}
	return rail, points, offsets, nil
}
