package anchors

import (
	"math"

	"tryon/internal/domain"
	"tryon/internal/imaging"
)

// DetectAnchors derives the named garment anchors from a silhouette mask.
// Each anchor is searched for on the silhouette boundary inside a band of
// the bounding box; when a band is empty the anchor falls back to a fixed
// position on the box itself, so every anchor slot is always filled.
func DetectAnchors(mask *imaging.Mask) (*imaging.GarmentSet, error) {
	bbox, ok := mask.BoundingBox()
	if !ok {
		return nil, domain.E(domain.KindWarpFailed, "empty garment mask, cannot detect anchors")
	}
	boundary := mask.BoundaryPoints()
	if len(boundary) == 0 {
		return nil, domain.E(domain.KindWarpFailed, "no garment outline found")
	}

	x0 := float64(bbox.Min.X)
	y0 := float64(bbox.Min.Y)
	w := float64(bbox.Dx())
	h := float64(bbox.Dy())
	centerX := x0 + w/2

	set := &imaging.GarmentSet{}

	// Neckline: boundary point in the top band nearest the horizontal center.
	neckline := imaging.Point{X: centerX, Y: y0}
	bestDX := math.Inf(1)
	for _, p := range boundary {
		if float64(p.Y) >= y0+h*0.2 {
			continue
		}
		if d := math.Abs(float64(p.X) - centerX); d < bestDX {
			bestDX = d
			neckline = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
		}
	}
	set.Set(imaging.GarmentNeckline, neckline)

	// Left shoulder: leftmost boundary point in the top-left window.
	left := imaging.Point{X: x0, Y: y0 + h*0.15}
	bestX := math.Inf(1)
	for _, p := range boundary {
		if float64(p.X) >= x0+w*0.4 || float64(p.Y) >= y0+h*0.3 {
			continue
		}
		if float64(p.X) < bestX {
			bestX = float64(p.X)
			left = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
		}
	}
	set.Set(imaging.GarmentLeftShoulder, left)

	// Right shoulder: rightmost boundary point in the top-right window.
	right := imaging.Point{X: x0 + w, Y: y0 + h*0.15}
	bestX = math.Inf(-1)
	for _, p := range boundary {
		if float64(p.X) <= x0+w*0.6 || float64(p.Y) >= y0+h*0.3 {
			continue
		}
		if float64(p.X) > bestX {
			bestX = float64(p.X)
			right = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
		}
	}
	set.Set(imaging.GarmentRightShoulder, right)

	// Hem: boundary point in the bottom band nearest the horizontal center.
	hem := imaging.Point{X: centerX, Y: y0 + h}
	bestDX = math.Inf(1)
	for _, p := range boundary {
		if float64(p.Y) <= y0+h*0.8 {
			continue
		}
		if d := math.Abs(float64(p.X) - centerX); d < bestDX {
			bestDX = d
			hem = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
		}
	}
	set.Set(imaging.GarmentHemBottom, hem)

	return set, nil
}
