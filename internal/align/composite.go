package align

import (
	"image"
	"image/color"

	"tryon/internal/imaging"
)

// Composite blends the warped garment onto the person image. The visible
// garment region is garmentMask ∩ torsoMask minus armsMask: the garment
// shows on the torso and is occluded by arms, never the other way round.
// Inside that region the blend weight is the garment's own alpha, so
// semi-transparent garment edges blend smoothly.
func Composite(person, garment *image.NRGBA, garmentMask, torsoMask, armsMask *imaging.Mask) *image.NRGBA {
	visible := garmentMask.And(torsoMask).AndNot(armsMask)

	b := person.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(out.Pix, person.Pix)

	gb := garment.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !visible.At(x, y) {
				continue
			}
			if x >= gb.Dx() || y >= gb.Dy() {
				continue
			}
			g := garment.NRGBAAt(gb.Min.X+x, gb.Min.Y+y)
			p := out.NRGBAAt(x, y)
			a := int(g.A)
			out.SetNRGBA(x, y, color.NRGBA{
				R: blend(g.R, p.R, a),
				G: blend(g.G, p.G, a),
				B: blend(g.B, p.B, a),
				A: 255,
			})
		}
	}
	return out
}

// blend computes g·α + p·(1−α) with α in [0,255], rounded.
func blend(g, p uint8, a int) uint8 {
	return uint8((int(g)*a + int(p)*(255-a) + 127) / 255)
}
