// Package align computes the similarity transform that maps garment space
// onto person space, warps the garment accordingly, and composites it onto
// the person image with occlusion handling.
package align

import (
	"tryon/internal/imaging"
)

// Transform is the similarity transform (scale, rotation, translation)
// mapping garment coordinates onto person coordinates. Center is the pivot
// for scale and rotation.
type Transform struct {
	Scale      float64
	AngleDeg   float64
	TranslateX float64
	TranslateY float64
	Center     imaging.Point
}

// ComputeTransform derives the transform from matched garment anchors and
// body landmarks.
//
// Scale is the ratio of shoulder distances; a degenerate garment shoulder
// distance of zero yields scale 1.0 rather than a division fault. Rotation
// is the difference of the two shoulder-line angles. Translation aligns the
// garment neckline (left shoulder when no neckline was found) with the
// person's neck (left shoulder when no neck was found); the neckline anchor
// is also the pivot.
func ComputeTransform(anchorSet *imaging.GarmentSet, keys *imaging.BodySet) Transform {
	gl, _ := anchorSet.Get(imaging.GarmentLeftShoulder)
	gr, _ := anchorSet.Get(imaging.GarmentRightShoulder)
	pl, _ := keys.Get(imaging.BodyLeftShoulder)
	pr, _ := keys.Get(imaging.BodyRightShoulder)

	garmentWidth := imaging.Distance(gl, gr)
	personWidth := imaging.Distance(pl, pr)

	scale := 1.0
	if garmentWidth > 0 {
		scale = personWidth / garmentWidth
	}

	angle := imaging.AngleDeg(pl, pr) - imaging.AngleDeg(gl, gr)

	garmentNeck, ok := anchorSet.Get(imaging.GarmentNeckline)
	if !ok {
		garmentNeck = gl
	}
	personNeck, ok := keys.Get(imaging.BodyNeck)
	if !ok {
		personNeck = pl
	}

	return Transform{
		Scale:      scale,
		AngleDeg:   angle,
		TranslateX: personNeck.X - garmentNeck.X,
		TranslateY: personNeck.Y - garmentNeck.Y,
		Center:     garmentNeck,
	}
}
