package align

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"tryon/internal/imaging"
)

// affine builds the forward 2x3 matrix: rotate and scale about t.Center,
// then translate. Positive angles rotate counter-clockwise in the y-down
// pixel coordinate system.
func affine(t Transform) f64.Aff3 {
	theta := t.AngleDeg * math.Pi / 180
	alpha := t.Scale * math.Cos(theta)
	beta := t.Scale * math.Sin(theta)
	cx, cy := t.Center.X, t.Center.Y
	return f64.Aff3{
		alpha, beta, (1-alpha)*cx - beta*cy + t.TranslateX,
		-beta, alpha, beta*cx + (1-alpha)*cy + t.TranslateY,
	}
}

// Warp applies the transform to the garment image and its mask with bilinear
// resampling into a w x h output. Pixels outside the source stay fully
// transparent (image) and background (mask). The warped mask is re-binarized
// at the midpoint: resampling introduces fractional edge values that must
// not leak into mask logic.
func Warp(garment *image.NRGBA, mask *imaging.Mask, t Transform, w, h int) (*image.NRGBA, *imaging.Mask) {
	m := affine(t)

	warped := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Transform(warped, m, garment, garment.Bounds(), draw.Src, nil)

	grayDst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Transform(grayDst, m, mask.ToGray(), image.Rect(0, 0, mask.W, mask.H), draw.Src, nil)
	warpedMask := imaging.MaskFromGray(grayDst)

	return warped, warpedMask
}

// Apply maps a single point through the transform.
func (t Transform) Apply(p imaging.Point) imaging.Point {
	m := affine(t)
	return imaging.Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}
