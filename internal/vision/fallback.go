package vision

import (
	"tryon/internal/domain"
	"tryon/internal/imaging"
)

// FallbackKeypoints estimates body landmarks from the person silhouette
// alone, using fixed body proportions relative to the mask bounding box.
// It is the last resort when the pose model yields too few landmarks.
func FallbackKeypoints(mask *imaging.Mask) (*imaging.BodySet, error) {
	box, ok := mask.BoundingBox()
	if !ok {
		return nil, domain.E(domain.KindPoseFailed, "empty person mask, cannot estimate keypoints")
	}
	x0 := float64(box.Min.X)
	y0 := float64(box.Min.Y)
	w := float64(box.Dx())
	h := float64(box.Dy())

	set := &imaging.BodySet{}
	set.Set(imaging.BodyNeck, imaging.Point{X: x0 + w*0.5, Y: y0 + h*0.15})
	set.Set(imaging.BodyLeftShoulder, imaging.Point{X: x0 + w*0.3, Y: y0 + h*0.18})
	set.Set(imaging.BodyRightShoulder, imaging.Point{X: x0 + w*0.7, Y: y0 + h*0.18})
	set.Set(imaging.BodyLeftHip, imaging.Point{X: x0 + w*0.35, Y: y0 + h*0.55})
	set.Set(imaging.BodyRightHip, imaging.Point{X: x0 + w*0.65, Y: y0 + h*0.55})
	return set, nil
}
