package nurbs

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestBirailRuledSurface(t *testing.T) {
	rail1 := line(Pt(0, 0, 0), Pt(10, 0, 0))
	rail2 := line(Pt(0, 5, 0), Pt(10, 5, 0))
	profile := line(Pt(0, 0, 0), Pt(1, 0, 0))

	s, err := Birail(rail1, rail2, []Curve{profile}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Straight rails and a straight profile give a flat ruled surface:
	// u runs across the sections, v along the rails.
	ulo, uhi := s.ParameterBoundsU()
	vlo, vhi := s.ParameterBoundsV()
	const n = 8
	for i := 0; i <= n; i++ {
		fu := float64(i) / n
		for j := 0; j <= n; j++ {
			fv := float64(j) / n
			p := s.Eval(ulo+fu*(uhi-ulo), vlo+fv*(vhi-vlo))
			if math.Abs(p.Z) > 1e-6 {
				t.Errorf("Eval at fractions (%g, %g) = %v, want z = 0", fu, fv, p)
			}
			if p.Y < -1e-6 || p.Y > 5+1e-6 || p.X < -1e-6 || p.X > 10+1e-6 {
				t.Errorf("Eval at fractions (%g, %g) = %v outside the ruled region", fu, fv, p)
			}
		}
	}
	// The u = 0 and u = 1 boundaries are the rails.
	for _, fv := range []float64{0, 0.25, 0.7, 1} {
		v := vlo + fv*(vhi-vlo)
		if p := s.Eval(ulo, v); math.Abs(p.Y) > 1e-6 {
			t.Errorf("boundary point %v should lie on the first rail", p)
		}
		if p := s.Eval(uhi, v); math.Abs(p.Y-5) > 1e-6 {
			t.Errorf("boundary point %v should lie on the second rail", p)
		}
	}
	// Corners hit the rail endpoints.
	if d := s.Eval(ulo, vlo).Distance(Pt(0, 0, 0)); d > 1e-6 {
		t.Errorf("corner off by %g", d)
	}
	if d := s.Eval(uhi, vhi).Distance(Pt(10, 5, 0)); d > 1e-6 {
		t.Errorf("corner off by %g", d)
	}
}

func TestBirailMorphsBetweenProfiles(t *testing.T) {
	rail1 := line(Pt(0, 0, 0), Pt(10, 0, 0))
	rail2 := line(Pt(0, 4, 0), Pt(10, 4, 0))
	flat := line(Pt(0, 0, 0), Pt(1, 0, 0))
	// An arch: the bump in local y turns into world z under the section frame.
	arch := BezierCurve([]Point3{Pt(0, 0, 0), Pt(0.5, 1, 0), Pt(1, 0, 0)})

	s, err := Birail(rail1, rail2, []Curve{flat, arch}, &BirailOptions{MinProfiles: 3})
	if err != nil {
		t.Fatal(err)
	}
	ulo, uhi := s.ParameterBoundsU()
	vlo, vhi := s.ParameterBoundsV()
	umid := (ulo + uhi) / 2

	// The first section is flat, the last one arched, and the morph grows
	// gradually in between.
	start := s.Eval(umid, vlo)
	end := s.Eval(umid, vhi)
	if math.Abs(start.Z) > 1e-6 {
		t.Errorf("first section should be flat, got %v", start)
	}
	if end.Z < 0.4 {
		t.Errorf("last section should arch upward, got %v", end)
	}
	mid := s.Eval(umid, (vlo+vhi)/2)
	if mid.Z <= math.Abs(start.Z) || mid.Z >= end.Z+1e-6 {
		t.Errorf("middle section height %g should lie between %g and %g", mid.Z, start.Z, end.Z)
	}
}

func TestBirailScaleUniform(t *testing.T) {
	// Diverging rails: the rail distance grows from 2 to 4 along the sweep.
	rail1 := line(Pt(0, 0, 0), Pt(10, -1, 0))
	rail2 := line(Pt(0, 2, 0), Pt(10, 3, 0))
	arch := BezierCurve([]Point3{Pt(0, 0, 0), Pt(0.5, 1, 0), Pt(1, 0, 0)})

	uniform, err := Birail(rail1, rail2, []Curve{arch}, nil)
	if err != nil {
		t.Fatal(err)
	}
	stretched, err := Birail(rail1, rail2, []Curve{arch}, &BirailOptions{ScaleChordOnly: true})
	if err != nil {
		t.Fatal(err)
	}

	heightAt := func(s Surface, fv float64) float64 {
		ulo, uhi := s.ParameterBoundsU()
		vlo, vhi := s.ParameterBoundsV()
		best := 0.0
		for i := 0; i < 33; i++ {
			u := ulo + float64(i)/32*(uhi-ulo)
			if z := s.Eval(u, vlo+fv*(vhi-vlo)).Z; z > best {
				best = z
			}
		}
		return best
	}
	// With uniform scaling the arch height follows the rail distance; without
	// it the height stays near the profile's own.
	h0, h1 := heightAt(uniform, 0), heightAt(uniform, 1)
	if h1 < h0*1.5 {
		t.Errorf("uniform scaling: end height %g should clearly exceed start height %g", h1, h0)
	}
	g0, g1 := heightAt(stretched, 0), heightAt(stretched, 1)
	if math.Abs(g1-g0) > 0.1 {
		t.Errorf("chord-only scaling: heights %g and %g should stay close", g0, g1)
	}
}

func TestBirailAutoRotate(t *testing.T) {
	rail1 := line(Pt(0, 0, 0), Pt(10, 0, 0))
	rail2 := line(Pt(0, 5, 0), Pt(10, 5, 0))
	// The same straight profile, but placed away from the origin along a
	// skewed direction; AutoRotate derives the local coordinates.
	profile := line(Pt(3, 3, 1), Pt(4, 4, 1))

	s, err := Birail(rail1, rail2, []Curve{profile}, &BirailOptions{AutoRotate: true})
	if err != nil {
		t.Fatal(err)
	}
	ulo, uhi := s.ParameterBoundsU()
	vlo, _ := s.ParameterBoundsV()
	if d := s.Eval(ulo, vlo).Distance(Pt(0, 0, 0)); d > 1e-6 {
		t.Errorf("corner off by %g", d)
	}
	if d := s.Eval(uhi, vlo).Distance(Pt(0, 5, 0)); d > 1e-6 {
		t.Errorf("corner off by %g", d)
	}

	// Without AutoRotate the same profile violates the local-coordinate
	// convention.
	if _, err := Birail(rail1, rail2, []Curve{profile}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestBirailExplicitSectionParameters(t *testing.T) {
	rail1 := line(Pt(0, 0, 0), Pt(10, 0, 0))
	rail2 := line(Pt(0, 5, 0), Pt(10, 5, 0))
	profile := line(Pt(0, 0, 0), Pt(1, 0, 0))

	// Different parameter lists per rail: the sections connect skewed pairs.
	opts := &BirailOptions{
		Ts1: []float64{0, 0.3, 1},
		Ts2: []float64{0, 0.7, 1},
	}
	s, err := Birail(rail1, rail2, []Curve{profile}, opts)
	if err != nil {
		t.Fatal(err)
	}
	ulo, _ := s.ParameterBoundsU()
	vlo, vhi := s.ParameterBoundsV()
	// The middle section starts at rail1's 0.3 and ends at rail2's 0.7.
	vmid := (vlo + vhi) / 2
	if d := s.Eval(ulo, vmid).Distance(Pt(3, 0, 0)); d > 1e-6 {
		t.Errorf("middle section start off by %g", d)
	}

	bad := &BirailOptions{Ts1: []float64{0, 0.5, 1}, Ts2: []float64{0, 1}}
	if _, err := Birail(rail1, rail2, []Curve{profile}, bad); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("mismatched parameter counts: got %v, want ErrInvalidInput", err)
	}
}

func TestBirailErrors(t *testing.T) {
	rail1 := line(Pt(0, 0, 0), Pt(10, 0, 0))
	rail2 := line(Pt(0, 5, 0), Pt(10, 5, 0))

	if _, err := Birail(rail1, rail2, nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("no profiles: got %v, want ErrInvalidInput", err)
	}

	closed := BezierCurve([]Point3{Pt(0, 0, 0), Pt(1, 1, 0), Pt(0, 0, 0)})
	if _, err := Birail(rail1, rail2, []Curve{closed}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("closed profile: got %v, want ErrInvalidInput", err)
	}

	rational := quarterArc()
	if _, err := Birail(rail1, rail2, []Curve{rational}, nil); !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("rational profile: got %v, want ErrUnsupportedInput", err)
	}

	decreasing := &BirailOptions{Ts1: []float64{0, 0.8, 0.5}, Ts2: []float64{0, 0.5, 1}}
	profile := line(Pt(0, 0, 0), Pt(1, 0, 0))
	if _, err := Birail(rail1, rail2, []Curve{profile}, decreasing); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("decreasing parameters: got %v, want ErrInvalidInput", err)
	}
}
