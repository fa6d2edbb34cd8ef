package nurbs

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestNewCurveValidation(t *testing.T) {
	pts := []Point3{Pt(0, 0, 0), Pt(1, 0, 0), Pt(2, 1, 0)}
	good := KnotVector{0, 0, 0, 1, 1, 1}
	if _, err := NewCurve(2, good, pts, nil); err != nil {
		t.Fatalf("valid curve rejected: %v", err)
	}
	for _, tc := range []struct {
		name    string
		degree  int
		knots   KnotVector
		weights []float64
	}{
		{"knot length mismatch", 2, KnotVector{0, 0, 0, 1, 1}, nil},
		{"decreasing knots", 2, KnotVector{0, 0, 1, 0, 1, 1}, nil},
		{"unclamped knots", 2, KnotVector{0, 0, 0.5, 1, 1, 1}, nil},
		{"negative degree", -1, KnotVector{0, 0}, nil},
		{"weight count mismatch", 2, good, []float64{1, 1}},
		{"non-positive weight", 2, good, []float64{1, 0, 1}},
	} {
		_, err := NewCurve(tc.degree, tc.knots, pts, tc.weights)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: got %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestBezierCurveEval(t *testing.T) {
	// y = x^2
	c := BezierCurve([]Point3{
		Pt(0, 0, 0),
		Pt(1.0/3.0, 0, 0),
		Pt(2.0/3.0, 1.0/3.0, 0),
		Pt(1, 1, 0),
	})
	const n = 20
	for i := 0; i <= n; i++ {
		ts := float64(i) / n
		p := c.Eval(ts)
		if d := p.Distance(Pt(ts, ts*ts, 0)); d > 1e-12 {
			t.Errorf("Eval(%g) = %v, off by %g", ts, p, d)
		}
	}
}

func TestCurveEvalClampsToDomain(t *testing.T) {
	c := line(Pt(1, 2, 3), Pt(4, 5, 6))
	diff(t, c.Eval(0), c.Eval(-10))
	diff(t, c.Eval(1), c.Eval(10))
}

func TestCurveDerivative(t *testing.T) {
	c := BezierCurve([]Point3{
		Pt(0, 0, 0),
		Pt(1.0/3.0, 0, 0),
		Pt(2.0/3.0, 1.0/3.0, 0),
		Pt(1, 1, 0),
	})
	const delta = 1e-6
	for _, ts := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		want := c.Eval(ts + delta).Sub(c.Eval(ts - delta)).Mul(1 / (2 * delta))
		got := c.Derivative(ts)
		if l := got.Sub(want).Hypot(); l > delta*10 {
			t.Errorf("Derivative(%g) = %v, finite difference %v", ts, got, want)
		}
	}
}

func TestRationalArcLiesOnCircle(t *testing.T) {
	c := quarterArc()
	if !c.IsRational() {
		t.Fatal("quarter arc should be rational")
	}
	const n = 30
	for i := 0; i <= n; i++ {
		ts := float64(i) / n
		p := c.Eval(ts)
		if r := math.Hypot(p.X, p.Y); math.Abs(r-1) > 1e-12 {
			t.Errorf("Eval(%g) has radius %g, want 1", ts, r)
		}
		// On a circle around the origin the tangent is perpendicular to the
		// position vector.
		d := c.Derivative(ts)
		if dot := d.X*p.X + d.Y*p.Y; math.Abs(dot) > 1e-9 {
			t.Errorf("tangent at %g is not perpendicular to the radius: dot %g", ts, dot)
		}
	}
	start, end := c.Endpoints()
	diff(t, Pt(1, 0, 0), start)
	diff(t, Pt(0, 1, 0), end)
}

func TestRefineKnotsPreservesGeometry(t *testing.T) {
	c := BezierCurve([]Point3{Pt(0, 0, 0), Pt(1, 2, 0), Pt(3, 2, 1), Pt(4, 0, 0)})
	r, err := c.RefineKnots([]float64{0.25, 0.5, 0.5, 0.75})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := r.NumControlPoints(), c.NumControlPoints()+4; got != want {
		t.Errorf("got %d control points, want %d", got, want)
	}
	sameGeometry(t, c, r, 1e-12)

	if _, err := c.RefineKnots([]float64{1.5}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("inserting outside the domain: got %v, want ErrInvalidInput", err)
	}
	if _, err := c.RefineKnots([]float64{0.5, 0.25}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("inserting unsorted knots: got %v, want ErrInvalidInput", err)
	}
}

func TestRefineKnotsRational(t *testing.T) {
	c := quarterArc()
	r, err := c.RefineKnots([]float64{0.3, 0.6})
	if err != nil {
		t.Fatal(err)
	}
	sameGeometry(t, c, r, 1e-12)
}

func TestSplit(t *testing.T) {
	c := BezierCurve([]Point3{Pt(0, 0, 0), Pt(1, 2, 0), Pt(3, 2, 1), Pt(4, 0, 0)})
	left, right, err := c.Split(0.4)
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := left.ParameterBounds(); lo != 0 || hi != 0.4 {
		t.Errorf("left domain [%g, %g], want [0, 0.4]", lo, hi)
	}
	if lo, hi := right.ParameterBounds(); lo != 0.4 || hi != 1 {
		t.Errorf("right domain [%g, %g], want [0.4, 1]", lo, hi)
	}
	for _, ts := range []float64{0, 0.1, 0.25, 0.4} {
		if d := c.Eval(ts).Distance(left.Eval(ts)); d > 1e-12 {
			t.Errorf("left half deviates by %g at %g", d, ts)
		}
	}
	for _, ts := range []float64{0.4, 0.6, 0.85, 1} {
		if d := c.Eval(ts).Distance(right.Eval(ts)); d > 1e-12 {
			t.Errorf("right half deviates by %g at %g", d, ts)
		}
	}

	if _, _, err := c.Split(0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("splitting at the domain start: got %v, want ErrInvalidInput", err)
	}
}

func TestSplitRationalStaysOnCircle(t *testing.T) {
	left, right, err := quarterArc().Split(0.5)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []Curve{left, right} {
		lo, hi := c.ParameterBounds()
		for _, f := range []float64{0, 0.3, 0.7, 1} {
			p := c.Eval(lo + f*(hi-lo))
			if r := math.Hypot(p.X, p.Y); math.Abs(r-1) > 1e-12 {
				t.Errorf("point %v has radius %g, want 1", p, r)
			}
		}
	}
}

func TestCut(t *testing.T) {
	c := BezierCurve([]Point3{Pt(0, 0, 0), Pt(1, 2, 0), Pt(3, 2, 1), Pt(4, 0, 0)})

	kept, err := c.Cut(0.2, 0.7, false)
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := kept.ParameterBounds(); lo != 0.2 || hi != 0.7 {
		t.Errorf("domain [%g, %g], want [0.2, 0.7]", lo, hi)
	}
	for _, ts := range []float64{0.2, 0.4, 0.55, 0.7} {
		if d := c.Eval(ts).Distance(kept.Eval(ts)); d > 1e-12 {
			t.Errorf("cut deviates by %g at %g", d, ts)
		}
	}

	rescaled, err := c.Cut(0.2, 0.7, true)
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := rescaled.ParameterBounds(); lo != 0 || hi != 1 {
		t.Errorf("rescaled domain [%g, %g], want [0, 1]", lo, hi)
	}
	for _, s := range []float64{0, 0.25, 0.5, 1} {
		if d := c.Eval(0.2 + 0.5*s).Distance(rescaled.Eval(s)); d > 1e-12 {
			t.Errorf("rescaled cut deviates by %g at %g", d, s)
		}
	}

	// Cutting at the domain ends is a no-op on that side.
	whole, err := c.Cut(0, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	sameGeometry(t, c, whole, 1e-12)

	if _, err := c.Cut(0.7, 0.2, false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("inverted interval: got %v, want ErrInvalidInput", err)
	}
	if _, err := c.Cut(-0.5, 0.5, false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("interval outside the domain: got %v, want ErrInvalidInput", err)
	}
}

func TestConcatenateSplitRoundTrip(t *testing.T) {
	c := BezierCurve([]Point3{Pt(0, 0, 0), Pt(1, 2, 0), Pt(3, 2, 1), Pt(4, 0, 0)})
	left, right, err := c.Split(0.4)
	if err != nil {
		t.Fatal(err)
	}
	joined, err := left.Concatenate(right)
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := joined.ParameterBounds(); lo != 0 || hi != 1 {
		t.Errorf("domain [%g, %g], want [0, 1]", lo, hi)
	}
	for _, ts := range []float64{0, 0.2, 0.4, 0.6, 1} {
		if d := c.Eval(ts).Distance(joined.Eval(ts)); d > 1e-12 {
			t.Errorf("joined curve deviates by %g at %g", d, ts)
		}
	}
}

func TestConcatenateShiftsSecondDomain(t *testing.T) {
	a := line(Pt(0, 0, 0), Pt(1, 0, 0))
	b := line(Pt(1, 0, 0), Pt(1, 1, 0))
	joined, err := a.Concatenate(b)
	if err != nil {
		t.Fatal(err)
	}
	if lo, hi := joined.ParameterBounds(); lo != 0 || hi != 2 {
		t.Errorf("domain [%g, %g], want [0, 2]", lo, hi)
	}
	diff(t, Pt(1, 0, 0), joined.Eval(1))
	diff(t, Pt(1, 1, 0), joined.Eval(2))
}

func TestConcatenateElevatesLowerDegree(t *testing.T) {
	a := line(Pt(0, 0, 0), Pt(1, 0, 0))
	b := BezierCurve([]Point3{Pt(1, 0, 0), Pt(2, 1, 0), Pt(3, 0, 0)})
	joined, err := a.Concatenate(b)
	if err != nil {
		t.Fatal(err)
	}
	if joined.Degree() != 2 {
		t.Errorf("got degree %d, want 2", joined.Degree())
	}
	for _, ts := range []float64{0, 0.3, 0.7, 1} {
		if d := a.Eval(ts).Distance(joined.Eval(ts)); d > 1e-12 {
			t.Errorf("first segment deviates by %g at %g", d, ts)
		}
		if d := b.Eval(ts).Distance(joined.Eval(1 + ts)); d > 1e-12 {
			t.Errorf("second segment deviates by %g at %g", d, ts)
		}
	}
}

func TestConcatenateRejectsDisjointCurves(t *testing.T) {
	a := line(Pt(0, 0, 0), Pt(1, 0, 0))
	b := line(Pt(5, 5, 5), Pt(6, 5, 5))
	if _, err := a.Concatenate(b); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestTransformDomain(t *testing.T) {
	c := BezierCurve([]Point3{Pt(0, 0, 0), Pt(1, 2, 0), Pt(2, 0, 0)})
	r := c.TransformDomain(-1, 3)
	if lo, hi := r.ParameterBounds(); lo != -1 || hi != 3 {
		t.Errorf("domain [%g, %g], want [-1, 3]", lo, hi)
	}
	sameGeometry(t, c, r, 1e-12)
}
