package align

import (
	"math"
	"testing"

	"tryon/internal/imaging"
)

func anchors(neck, left, right imaging.Point) *imaging.GarmentSet {
	s := &imaging.GarmentSet{}
	s.Set(imaging.GarmentNeckline, neck)
	s.Set(imaging.GarmentLeftShoulder, left)
	s.Set(imaging.GarmentRightShoulder, right)
	return s
}

func body(neck, left, right imaging.Point) *imaging.BodySet {
	s := &imaging.BodySet{}
	s.Set(imaging.BodyNeck, neck)
	s.Set(imaging.BodyLeftShoulder, left)
	s.Set(imaging.BodyRightShoulder, right)
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeTransformShoulderScenario(t *testing.T) {
	// Garment shoulders span 200px, person shoulders 180px, both level.
	g := anchors(
		imaging.Point{X: 200, Y: 40},
		imaging.Point{X: 100, Y: 50},
		imaging.Point{X: 300, Y: 50},
	)
	p := body(
		imaging.Point{X: 200, Y: 55},
		imaging.Point{X: 110, Y: 60},
		imaging.Point{X: 290, Y: 60},
	)

	tr := ComputeTransform(g, p)
	if !almostEqual(tr.Scale, 0.9) {
		t.Fatalf("Scale = %v, want 0.9", tr.Scale)
	}
	if !almostEqual(tr.AngleDeg, 0) {
		t.Fatalf("AngleDeg = %v, want 0", tr.AngleDeg)
	}
	if !almostEqual(tr.TranslateX, 0) || !almostEqual(tr.TranslateY, 15) {
		t.Fatalf("Translate = (%v, %v), want (0, 15)", tr.TranslateX, tr.TranslateY)
	}
	if tr.Center != (imaging.Point{X: 200, Y: 40}) {
		t.Fatalf("Center = %v, want garment neckline", tr.Center)
	}
}

func TestComputeTransformRotation(t *testing.T) {
	g := anchors(
		imaging.Point{X: 50, Y: 0},
		imaging.Point{X: 0, Y: 0},
		imaging.Point{X: 100, Y: 0},
	)
	p := body(
		imaging.Point{X: 50, Y: 50},
		imaging.Point{X: 0, Y: 0},
		imaging.Point{X: 100, Y: 100},
	)

	tr := ComputeTransform(g, p)
	if !almostEqual(tr.AngleDeg, 45) {
		t.Fatalf("AngleDeg = %v, want 45", tr.AngleDeg)
	}
	if !almostEqual(tr.Scale, math.Sqrt2) {
		t.Fatalf("Scale = %v, want sqrt(2)", tr.Scale)
	}
}

func TestComputeTransformDegenerateGarmentWidth(t *testing.T) {
	same := imaging.Point{X: 10, Y: 10}
	g := anchors(same, same, same)
	p := body(
		imaging.Point{X: 50, Y: 40},
		imaging.Point{X: 20, Y: 50},
		imaging.Point{X: 80, Y: 50},
	)

	tr := ComputeTransform(g, p)
	if tr.Scale != 1.0 {
		t.Fatalf("Scale = %v, want 1.0 for degenerate garment width", tr.Scale)
	}
}

func TestApplyMapsNecklineOntoNeck(t *testing.T) {
	g := anchors(
		imaging.Point{X: 200, Y: 40},
		imaging.Point{X: 100, Y: 50},
		imaging.Point{X: 300, Y: 50},
	)
	p := body(
		imaging.Point{X: 180, Y: 90},
		imaging.Point{X: 110, Y: 95},
		imaging.Point{X: 250, Y: 110},
	)

	tr := ComputeTransform(g, p)
	got := tr.Apply(imaging.Point{X: 200, Y: 40})
	if math.Abs(got.X-180) > 1e-9 || math.Abs(got.Y-90) > 1e-9 {
		t.Fatalf("Apply(neckline) = %v, want person neck (180, 90)", got)
	}
}

func TestApplyIdentity(t *testing.T) {
	tr := Transform{Scale: 1}
	in := imaging.Point{X: 33, Y: 77}
	if got := tr.Apply(in); got != in {
		t.Fatalf("Apply() identity = %v, want %v", got, in)
	}
}
