package nurbs

import (
	"math"

	"go.uber.org/zap"
)

// TangentMode selects which rail tangent orients the cross-section planes of
// a birail sweep.
type TangentMode int

const (
	// TangentPathsAvg orients sections by the average of both rail tangents.
	// This is the default.
	TangentPathsAvg TangentMode = iota
	// TangentPath1 orients sections by the first rail's tangent.
	TangentPath1
	// TangentPath2 orients sections by the second rail's tangent.
	TangentPath2
)

// SectionPreparer derives the family of cross-section curves of a birail
// sweep from the two rails and the profile curves. Each returned section must
// start exactly on rail1 at opts.Ts1[i] and end exactly on rail2 at
// opts.Ts2[i], and the sections must be polynomial. [PrepareBirailSections]
// is the default; a custom preparer replaces the placement policy while
// keeping the Gordon assembly.
type SectionPreparer func(rail1, rail2 Curve, profiles []Curve, opts *BirailOptions) ([]Curve, error)

// BirailOptions carries the tunable settings of [Birail]. The zero value
// (and a nil *BirailOptions) selects the defaults.
type BirailOptions struct {
	// Ts1 and Ts2 are the strictly increasing rail parameters at which the
	// cross-sections are placed, one list per rail, equal in length. When Ts1
	// is nil both are derived uniformly over each rail's domain; when only
	// Ts2 is nil it is derived uniformly with Ts1's length. [Birail] fills in
	// the derived values, so a [SectionPreparer] always sees both.
	Ts1 []float64
	Ts2 []float64

	// MinProfiles is the minimum number of cross-sections when Ts1 is nil.
	// Defaults to 2.
	MinProfiles int

	// DegreeV caps the interpolation degree used to morph between profiles
	// along the rails. Defaults to 3.
	DegreeV int

	// ScaleChordOnly stretches only the chord direction of each placed
	// profile to the rail-to-rail distance, keeping the profile's height.
	// By default the full profile scales uniformly with the distance.
	ScaleChordOnly bool

	// AutoRotate derives each profile's local coordinates from its own chord
	// and best-fit plane. When false, profiles must already be in local
	// coordinates: starting at the origin with their chord along positive X.
	AutoRotate bool

	// Tangents selects the rail tangent orienting the section planes.
	Tangents TangentMode

	// Preparer overrides the cross-section construction. Defaults to
	// [PrepareBirailSections].
	Preparer SectionPreparer

	// KnotAccuracy, Logger and Parallel are passed through to the Gordon
	// assembly, with the same defaults as in [Options].
	KnotAccuracy int
	Logger       *zap.Logger
	Parallel     bool
}

func (o *BirailOptions) minProfiles() int {
	if o == nil || o.MinProfiles < 2 {
		return 2
	}
	return o.MinProfiles
}

func (o *BirailOptions) degreeV() int {
	if o == nil || o.DegreeV == 0 {
		return 3
	}
	return o.DegreeV
}

func (o *BirailOptions) preparer() SectionPreparer {
	if o == nil || o.Preparer == nil {
		return PrepareBirailSections
	}
	return o.Preparer
}

// Birail sweeps one or more profile curves along two rail curves. The
// profiles are placed as cross-sections spanning from rail1 to rail2,
// stretched to the local rail distance and oriented by the rail tangents;
// with several profiles the sections morph gradually from one to the next.
// The prepared sections become one curve family of a Gordon network, the
// rails the other, and the section endpoints the intersection grid, so the
// result interpolates the rails and every section exactly.
//
// All curves must be polynomial. The rails become the v direction of the
// result and the sections the u direction.
func Birail(rail1, rail2 Curve, profiles []Curve, opts *BirailOptions) (Surface, error) {
	if len(profiles) == 0 {
		return Surface{}, invalidf("need at least 1 profile curve, got 0")
	}
	resolved, err := resolveSectionParams(rail1, rail2, opts)
	if err != nil {
		return Surface{}, err
	}
	opts = resolved

	sections, err := opts.preparer()(rail1, rail2, profiles, opts)
	if err != nil {
		return Surface{}, err
	}
	if len(sections) != len(opts.Ts1) {
		return Surface{}, invalidf("preparer returned %d sections for %d placement parameters", len(sections), len(opts.Ts1))
	}

	grid := make([][]Point3, len(sections))
	uKnots := make([][]float64, len(sections))
	for i, s := range sections {
		start, end := s.Endpoints()
		grid[i] = []Point3{start, end}
		lo, hi := s.ParameterBounds()
		uKnots[i] = []float64{lo, hi}
	}
	// Reparametrizing aligns the two rails' section parameters even when Ts1
	// and Ts2 disagree, which a shared metric assignment cannot.
	vKnots := [][]float64{opts.Ts1, opts.Ts2}

	res, err := GordonSurface(sections, []Curve{rail1, rail2}, grid, &Options{
		UKnots:       uKnots,
		VKnots:       vKnots,
		KnotAccuracy: opts.KnotAccuracy,
		Logger:       opts.Logger,
		Parallel:     opts.Parallel,
	})
	if err != nil {
		return Surface{}, err
	}
	return res.Surface, nil
}

// resolveSectionParams fills in Ts1 and Ts2, validating them against the rail
// domains. It returns a copy; the caller's options are not modified.
func resolveSectionParams(rail1, rail2 Curve, opts *BirailOptions) (*BirailOptions, error) {
	out := &BirailOptions{}
	if opts != nil {
		*out = *opts
	}
	if out.Ts1 == nil && out.Ts2 != nil {
		return nil, invalidf("section parameters supplied for the second rail only")
	}
	count := out.minProfiles()
	if out.Ts1 != nil {
		count = len(out.Ts1)
	}
	if count < 2 {
		return nil, invalidf("need at least 2 cross-sections, got %d", count)
	}
	if out.Ts1 == nil {
		lo, hi := rail1.ParameterBounds()
		out.Ts1 = linspace(lo, hi, count)
	}
	if out.Ts2 == nil {
		lo, hi := rail2.ParameterBounds()
		out.Ts2 = linspace(lo, hi, count)
	}
	if len(out.Ts2) != count {
		return nil, invalidf("%d section parameters on the first rail but %d on the second", count, len(out.Ts2))
	}
	for i := 1; i < count; i++ {
		if out.Ts1[i] <= out.Ts1[i-1] {
			return nil, invalidf("section parameters on the first rail are not strictly increasing at index %d", i)
		}
		if out.Ts2[i] <= out.Ts2[i-1] {
			return nil, invalidf("section parameters on the second rail are not strictly increasing at index %d", i)
		}
	}
	return out, nil
}

// PrepareBirailSections is the default [SectionPreparer]. It expresses every
// profile in local coordinates (chord from the origin along positive X),
// unifies the profiles, morphs between them along the rails by interpolating
// corresponding control points, and places each morphed profile into the
// section frame at its rail parameters: X along the rail-to-rail chord,
// stretched to the chord length, Z along the configured rail tangent.
func PrepareBirailSections(rail1, rail2 Curve, profiles []Curve, opts *BirailOptions) ([]Curve, error) {
	if opts == nil || len(opts.Ts1) < 2 || len(opts.Ts2) != len(opts.Ts1) {
		return nil, invalidf("section placement parameters are missing or mismatched")
	}
	for i, p := range profiles {
		if p.IsRational() {
			return nil, unsupportedf("profile %d is rational; birail sweeping needs polynomial curves", i)
		}
	}

	local := make([]Curve, len(profiles))
	for i, p := range profiles {
		lp, err := localizeProfile(p.TransformDomain(0, 1), opts != nil && opts.AutoRotate)
		if err != nil {
			return nil, err
		}
		local[i] = lp
	}
	unified, err := UnifyCurves(local, defaultAccuracyIfZero(opts))
	if err != nil {
		return nil, err
	}

	ts1, ts2 := opts.Ts1, opts.Ts2
	count := len(ts1)

	// Morph fractions follow the first rail's parameter spacing.
	fractions := make([]float64, count)
	span := ts1[count-1] - ts1[0]
	for i, t := range ts1 {
		fractions[i] = (t - ts1[0]) / span
	}

	morphed, err := morphProfiles(unified, fractions, opts.degreeV())
	if err != nil {
		return nil, err
	}

	sections := make([]Curve, count)
	for i := 0; i < count; i++ {
		frame, err := sectionFrameFor(rail1, rail2, ts1[i], ts2[i], opts)
		if err != nil {
			return nil, err
		}
		s, err := placeProfile(morphed[i], frame, !opts.ScaleChordOnly)
		if err != nil {
			return nil, err
		}
		sections[i] = s
	}
	return sections, nil
}

func defaultAccuracyIfZero(opts *BirailOptions) int {
	if opts == nil || opts.KnotAccuracy == 0 {
		return DefaultKnotAccuracy
	}
	return opts.KnotAccuracy
}

// localizeProfile rewrites a profile's control points into local coordinates:
// start at the origin, chord along positive X. With autoRotate the rotation
// is derived from the profile's chord and best-fit plane; otherwise the
// profile must already satisfy the convention and only validation happens.
func localizeProfile(p Curve, autoRotate bool) (Curve, error) {
	start, end := p.Endpoints()
	chord := end.Sub(start)
	length := chord.Hypot()
	if length == 0 {
		return Curve{}, invalidf("profile is closed or degenerate: its endpoints coincide at %v", start)
	}

	if !autoRotate {
		if start.Distance(Pt(0, 0, 0)) > DefaultAccuracy ||
			math.Abs(end.Y) > DefaultAccuracy || math.Abs(end.Z) > DefaultAccuracy || end.X <= 0 {
			return Curve{}, invalidf("profile is not in local coordinates: starts at %v, ends at %v; want origin and positive X axis", start, end)
		}
		return p, nil
	}

	ex := chord.Mul(1 / length)
	ez := profilePlaneNormal(p, start, ex)
	ey := ez.Cross(ex)

	out := p.clone()
	for i, cp := range out.points {
		d := cp.Sub(start)
		out.points[i] = Pt(d.Dot(ex), d.Dot(ey), d.Dot(ez))
	}
	return out, nil
}

// profilePlaneNormal estimates the unit normal of the profile's plane,
// orthogonal to the chord direction. A straight profile has no plane of its
// own; an arbitrary perpendicular is chosen.
func profilePlaneNormal(p Curve, start Point3, ex Vec3) Vec3 {
	var sum Vec3
	for i := 0; i+1 < len(p.points); i++ {
		a := p.points[i].Sub(start)
		b := p.points[i+1].Sub(start)
		sum = sum.Add(a.Cross(b))
	}
	sum = sum.Sub(ex.Mul(sum.Dot(ex)))
	if sum.Hypot() > DefaultAccuracy {
		return sum.Normalize()
	}
	ref := Vec(0, 0, 1)
	if math.Abs(ex.Dot(ref)) > 0.9 {
		ref = Vec(0, 1, 0)
	}
	return ex.Cross(ref).Normalize()
}

// morphProfiles returns one local profile per fraction. A single input
// profile repeats unchanged; several unified profiles are spread uniformly
// over [0, 1] and corresponding control points are interpolated across them.
func morphProfiles(unified []Curve, fractions []float64, degreeV int) ([]Curve, error) {
	out := make([]Curve, len(fractions))
	if len(unified) == 1 {
		for i := range out {
			out[i] = unified[0]
		}
		return out, nil
	}

	degree := min(degreeV, len(unified)-1)
	if degree < 1 {
		degree = 1
	}
	params := linspace(0, 1, len(unified))

	paths := make([]Curve, len(unified[0].points))
	column := make([]Point3, len(unified))
	for l := range paths {
		for p, c := range unified {
			column[p] = c.points[l]
		}
		path, err := interpolateCurveAt(degree, column, params)
		if err != nil {
			return nil, err
		}
		paths[l] = path
	}

	for i, f := range fractions {
		c := unified[0].clone()
		for l, path := range paths {
			c.points[l] = path.Eval(f)
		}
		out[i] = c
	}
	return out, nil
}

// sectionFrame is the placement frame of one cross-section: origin on rail1,
// X along the rail-to-rail chord, Z along the configured rail tangent
// projected off the chord.
type sectionFrame struct {
	origin     Point3
	ex, ey, ez Vec3
	length     float64
}

func buildSectionFrame(rail1, rail2 Curve, t1, t2 float64, mode TangentMode) (sectionFrame, error) {
	a := rail1.Eval(t1)
	b := rail2.Eval(t2)
	chord := b.Sub(a)
	length := chord.Hypot()
	if length == 0 {
		return sectionFrame{}, numericalf("rails touch at parameters %g and %g; section there is degenerate", t1, t2)
	}
	ex := chord.Mul(1 / length)

	var tz Vec3
	switch mode {
	case TangentPath1:
		tz = rail1.Derivative(t1)
	case TangentPath2:
		tz = rail2.Derivative(t2)
	default:
		tz = rail1.Derivative(t1).Normalize().Add(rail2.Derivative(t2).Normalize())
	}
	tz = tz.Sub(ex.Mul(tz.Dot(ex)))
	if tz.Hypot() == 0 {
		return sectionFrame{}, numericalf("rail tangent is parallel to the rail-to-rail chord at parameters %g and %g", t1, t2)
	}
	ez := tz.Normalize()
	return sectionFrame{
		origin: a,
		ex:     ex,
		ey:     ez.Cross(ex),
		ez:     ez,
		length: length,
	}, nil
}

func sectionFrameFor(rail1, rail2 Curve, t1, t2 float64, opts *BirailOptions) (sectionFrame, error) {
	mode := TangentPathsAvg
	if opts != nil {
		mode = opts.Tangents
	}
	return buildSectionFrame(rail1, rail2, t1, t2, mode)
}

// placeProfile maps a local profile into a section frame. The chord is
// stretched to the frame's rail-to-rail length; with uniform scaling the
// profile's height scales along.
func placeProfile(local Curve, f sectionFrame, uniform bool) (Curve, error) {
	_, end := local.Endpoints()
	if end.X <= 0 {
		return Curve{}, numericalf("morphed profile has non-positive chord length %g", end.X)
	}
	sx := f.length / end.X
	sy := sx
	if !uniform {
		sy = 1
	}

	out := local.clone()
	for i, cp := range out.points {
		out.points[i] = f.origin.
			Translate(f.ex.Mul(cp.X * sx)).
			Translate(f.ey.Mul(cp.Y * sy)).
			Translate(f.ez.Mul(cp.Z * sy))
	}
	return out, nil
}
