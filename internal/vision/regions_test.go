package vision

import (
	"testing"

	"tryon/internal/imaging"
)

func personWithArms(t *testing.T) *imaging.Mask {
	t.Helper()
	m := imaging.NewMask(100, 100)
	// Torso block.
	for y := 20; y < 80; y++ {
		for x := 35; x < 65; x++ {
			m.Set(x, y, true)
		}
	}
	// Arms left and right of the torso, upper body only.
	for y := 22; y < 50; y++ {
		for x := 25; x < 35; x++ {
			m.Set(x, y, true)
		}
		for x := 65; x < 75; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func fullLandmarks() *imaging.BodySet {
	s := &imaging.BodySet{}
	s.Set(imaging.BodyLeftShoulder, imaging.Point{X: 35, Y: 22})
	s.Set(imaging.BodyRightShoulder, imaging.Point{X: 64, Y: 22})
	s.Set(imaging.BodyLeftHip, imaging.Point{X: 37, Y: 78})
	s.Set(imaging.BodyRightHip, imaging.Point{X: 62, Y: 78})
	return s
}

func TestSplitRegionsWithLandmarks(t *testing.T) {
	person := personWithArms(t)
	regions := SplitRegions(person, fullLandmarks())

	if regions.Torso.CountNonZero() == 0 {
		t.Fatalf("SplitRegions() empty torso")
	}
	if !regions.Torso.At(50, 50) {
		t.Fatalf("SplitRegions() torso missing center pixel")
	}
	// The left arm column is outside the shoulder-hip quadrilateral.
	if regions.Torso.At(28, 30) {
		t.Fatalf("SplitRegions() torso includes arm pixel")
	}
	if !regions.Arms.At(28, 30) {
		t.Fatalf("SplitRegions() arms missing arm pixel")
	}
	// Torso and arms never overlap.
	if regions.Torso.IntersectCount(regions.Arms) != 0 {
		t.Fatalf("SplitRegions() torso and arms overlap")
	}
}

func TestSplitRegionsArmsClearedBelowImageMidline(t *testing.T) {
	person := personWithArms(t)
	// Extend the left arm past the image midline.
	for y := 50; y < 60; y++ {
		for x := 25; x < 35; x++ {
			person.Set(x, y, true)
		}
	}

	regions := SplitRegions(person, fullLandmarks())
	if !regions.Arms.At(28, 49) {
		t.Fatalf("SplitRegions() arms missing pixel above the midline")
	}
	if regions.Arms.At(28, 52) {
		t.Fatalf("SplitRegions() arms kept pixel below the image midline")
	}
}

func TestSplitRegionsWithoutHips(t *testing.T) {
	person := personWithArms(t)
	s := &imaging.BodySet{}
	s.Set(imaging.BodyLeftShoulder, imaging.Point{X: 35, Y: 22})
	s.Set(imaging.BodyRightShoulder, imaging.Point{X: 64, Y: 22})

	regions := SplitRegions(person, s)
	if regions.Torso.CountNonZero() == 0 {
		t.Fatalf("SplitRegions() fallback produced empty torso")
	}
	// The fallback keeps the upper portion of the silhouette.
	if !regions.Torso.At(50, 30) {
		t.Fatalf("SplitRegions() fallback torso missing upper pixel")
	}
	if regions.Torso.At(50, 79) {
		t.Fatalf("SplitRegions() fallback torso includes bottom row")
	}
}

func TestSplitRegionsEmptyPerson(t *testing.T) {
	regions := SplitRegions(imaging.NewMask(10, 10), &imaging.BodySet{})
	if regions.Torso.CountNonZero() != 0 || regions.Arms.CountNonZero() != 0 {
		t.Fatalf("SplitRegions() on empty mask produced content")
	}
}

func TestFillPolygonTriangle(t *testing.T) {
	m := fillPolygon(10, 10, []imaging.Point{
		{X: 1, Y: 1},
		{X: 8, Y: 1},
		{X: 4, Y: 8},
	})
	if m.CountNonZero() == 0 {
		t.Fatalf("fillPolygon() empty")
	}
	if !m.At(4, 3) {
		t.Fatalf("fillPolygon() missing interior point")
	}
	if m.At(0, 9) || m.At(9, 9) {
		t.Fatalf("fillPolygon() filled outside the triangle")
	}
}
