package align

import (
	"image"
	"image/color"
	"testing"

	"tryon/internal/imaging"
)

func solidGarment(w, h int, c color.NRGBA) (*image.NRGBA, *imaging.Mask) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	mask := imaging.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
			mask.Set(x, y, true)
		}
	}
	return img, mask
}

func TestWarpIdentity(t *testing.T) {
	img, mask := solidGarment(10, 10, color.NRGBA{R: 200, A: 255})
	tr := Transform{Scale: 1}

	warped, warpedMask := Warp(img, mask, tr, 10, 10)
	if got := warped.NRGBAAt(5, 5); got.R != 200 || got.A != 255 {
		t.Fatalf("Warp() identity center pixel = %+v", got)
	}
	if got := warpedMask.CountNonZero(); got != 100 {
		t.Fatalf("Warp() identity mask count = %d, want 100", got)
	}
}

func TestWarpMaskIsBinary(t *testing.T) {
	img, mask := solidGarment(20, 20, color.NRGBA{G: 255, A: 255})
	tr := Transform{Scale: 0.7, AngleDeg: 10, TranslateX: 5, TranslateY: 3}

	_, warpedMask := Warp(img, mask, tr, 40, 40)
	for i, v := range warpedMask.Pix {
		if v != 0 && v != imaging.MaskOn {
			t.Fatalf("Warp() mask pix[%d] = %d, not binary", i, v)
		}
	}
	if warpedMask.CountNonZero() == 0 {
		t.Fatalf("Warp() produced empty mask")
	}
}

func TestWarpTranslationMovesMask(t *testing.T) {
	img, mask := solidGarment(10, 10, color.NRGBA{B: 255, A: 255})
	tr := Transform{Scale: 1, TranslateX: 20, TranslateY: 10}

	_, warpedMask := Warp(img, mask, tr, 40, 40)
	box, ok := warpedMask.BoundingBox()
	if !ok {
		t.Fatalf("Warp() produced empty mask")
	}
	if box.Min.X < 19 || box.Min.Y < 9 {
		t.Fatalf("Warp() mask box = %v, want shifted by (20, 10)", box)
	}
}

func TestCompositeOcclusionOrder(t *testing.T) {
	person := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			person.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	garment, garmentMask := solidGarment(10, 10, color.NRGBA{R: 255, A: 255})

	torso := imaging.NewMask(10, 10)
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			torso.Set(x, y, true)
		}
	}
	arms := imaging.NewMask(10, 10)
	for y := 2; y < 8; y++ {
		arms.Set(2, y, true)
	}

	out := Composite(person, garment, garmentMask, torso, arms)

	// Torso minus arms shows the garment.
	if got := out.NRGBAAt(5, 5); got.R != 255 || got.B != 0 {
		t.Fatalf("torso pixel = %+v, want garment red", got)
	}
	// Arms occlude the garment.
	if got := out.NRGBAAt(2, 5); got.B != 255 || got.R != 0 {
		t.Fatalf("arm pixel = %+v, want person blue", got)
	}
	// Outside the torso the person shows through.
	if got := out.NRGBAAt(0, 0); got.B != 255 || got.R != 0 {
		t.Fatalf("background pixel = %+v, want person blue", got)
	}
}

func TestCompositeBlendsGarmentAlpha(t *testing.T) {
	person := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			person.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	garment, garmentMask := solidGarment(4, 4, color.NRGBA{R: 255, A: 128})

	fullTorso := imaging.NewMask(4, 4)
	for i := range fullTorso.Pix {
		fullTorso.Pix[i] = imaging.MaskOn
	}
	out := Composite(person, garment, garmentMask, fullTorso, imaging.NewMask(4, 4))

	got := out.NRGBAAt(1, 1)
	// 255 * 128/255 rounded.
	if got.R != 128 {
		t.Fatalf("blended R = %d, want 128", got.R)
	}
	if got.A != 255 {
		t.Fatalf("blended A = %d, want 255", got.A)
	}
}
