package nurbs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func line(a, b Point3) Curve {
	return BezierCurve([]Point3{a, b})
}

// quarterArc is an exact rational quarter circle of radius 1 around the
// origin, from (1, 0, 0) to (0, 1, 0).
func quarterArc() Curve {
	c, err := NewCurve(2,
		KnotVector{0, 0, 0, 1, 1, 1},
		[]Point3{Pt(1, 0, 0), Pt(1, 1, 0), Pt(0, 1, 0)},
		[]float64{1, 0.5 * 1.4142135623730951, 1})
	if err != nil {
		panic(err)
	}
	return c
}

// sameGeometry samples two curves over their domains and reports the largest
// deviation at corresponding normalized parameters.
func sameGeometry(t *testing.T, a, b Curve, tol float64) {
	t.Helper()
	alo, ahi := a.ParameterBounds()
	blo, bhi := b.ParameterBounds()
	const n = 32
	for i := 0; i <= n; i++ {
		f := float64(i) / n
		pa := a.Eval(alo + f*(ahi-alo))
		pb := b.Eval(blo + f*(bhi-blo))
		if d := pa.Distance(pb); d > tol {
			t.Errorf("curves deviate by %g at fraction %g: %v vs %v", d, f, pa, pb)
		}
	}
}
