package imaging

import (
	"image"
	"testing"
)

// rectMask builds a mask with one filled rectangle.
func rectMask(w, h int, r image.Rectangle) *Mask {
	m := NewMask(w, h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func TestBoundingBox(t *testing.T) {
	m := rectMask(20, 20, image.Rect(3, 5, 10, 12))
	box, ok := m.BoundingBox()
	if !ok {
		t.Fatalf("BoundingBox() reported empty mask")
	}
	if box != image.Rect(3, 5, 10, 12) {
		t.Fatalf("BoundingBox() = %v, want (3,5)-(10,12)", box)
	}

	if _, ok := NewMask(10, 10).BoundingBox(); ok {
		t.Fatalf("BoundingBox() on empty mask reported content")
	}
}

func TestMaskSetOperations(t *testing.T) {
	a := rectMask(10, 10, image.Rect(0, 0, 6, 6))
	b := rectMask(10, 10, image.Rect(4, 4, 10, 10))

	and := a.And(b)
	if got := and.CountNonZero(); got != 4 {
		t.Fatalf("And() count = %d, want 4", got)
	}
	andNot := a.AndNot(b)
	if got := andNot.CountNonZero(); got != 32 {
		t.Fatalf("AndNot() count = %d, want 32", got)
	}
	if got := a.IntersectCount(b); got != 4 {
		t.Fatalf("IntersectCount() = %d, want 4", got)
	}
}

func TestZeroBelow(t *testing.T) {
	m := rectMask(10, 10, image.Rect(0, 0, 10, 10))
	m.ZeroBelow(5)
	if got := m.CountNonZero(); got != 50 {
		t.Fatalf("ZeroBelow(5) left %d pixels, want 50", got)
	}
	for x := 0; x < 10; x++ {
		if m.At(x, 5) {
			t.Fatalf("ZeroBelow(5) kept row 5")
		}
		if !m.At(x, 4) {
			t.Fatalf("ZeroBelow(5) cleared row 4")
		}
	}
}

func TestRemoveSmallComponents(t *testing.T) {
	m := rectMask(30, 30, image.Rect(2, 2, 12, 12))
	// Speck far away from the main blob.
	m.Set(25, 25, true)
	m.Set(26, 25, true)

	cleaned := m.RemoveSmallComponents(10)
	if cleaned.At(25, 25) || cleaned.At(26, 25) {
		t.Fatalf("RemoveSmallComponents() kept small speck")
	}
	if got := cleaned.CountNonZero(); got != 100 {
		t.Fatalf("RemoveSmallComponents() count = %d, want 100", got)
	}
}

func TestMorphologyCloseFillsHole(t *testing.T) {
	m := rectMask(20, 20, image.Rect(2, 2, 18, 18))
	m.Set(10, 10, false)

	closed := m.Close(1)
	if !closed.At(10, 10) {
		t.Fatalf("Close() did not fill interior hole")
	}
}

func TestMorphologyOpenRemovesSpeck(t *testing.T) {
	m := NewMask(20, 20)
	m.Set(10, 10, true)

	opened := m.Open(1)
	if opened.CountNonZero() != 0 {
		t.Fatalf("Open() kept isolated pixel")
	}
}

func TestMaskGrayRoundTrip(t *testing.T) {
	m := rectMask(8, 8, image.Rect(1, 1, 5, 5))
	back := MaskFromGray(m.ToGray())
	if back.CountNonZero() != m.CountNonZero() {
		t.Fatalf("gray round trip count = %d, want %d", back.CountNonZero(), m.CountNonZero())
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if back.At(x, y) != m.At(x, y) {
				t.Fatalf("gray round trip mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestMaskFromAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+3] = 255
		}
	}
	m := MaskFromAlpha(img)
	if got := m.CountNonZero(); got != 8 {
		t.Fatalf("MaskFromAlpha() count = %d, want 8", got)
	}
	if m.At(3, 0) {
		t.Fatalf("MaskFromAlpha() marked transparent pixel")
	}
}

func TestBinarizeSnapsFractionalValues(t *testing.T) {
	m := NewMask(4, 1)
	m.Pix[0] = 10
	m.Pix[1] = 127
	m.Pix[2] = 128
	m.Pix[3] = 200
	m.Binarize()
	want := []uint8{0, 0, MaskOn, MaskOn}
	for i, v := range want {
		if m.Pix[i] != v {
			t.Fatalf("Binarize() pix[%d] = %d, want %d", i, m.Pix[i], v)
		}
	}
}

func TestBoundaryPoints(t *testing.T) {
	m := rectMask(10, 10, image.Rect(2, 2, 8, 8))
	pts := m.BoundaryPoints()
	// A 6x6 square has a 20-pixel perimeter.
	if len(pts) != 20 {
		t.Fatalf("BoundaryPoints() returned %d points, want 20", len(pts))
	}
	for _, p := range pts {
		if !m.At(p.X, p.Y) {
			t.Fatalf("BoundaryPoints() returned background point %v", p)
		}
	}
}
