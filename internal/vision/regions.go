package vision

import (
	"sort"

	"tryon/internal/imaging"
)

// Regions partitions the person mask into the areas the compositor treats
// differently: the torso receives the garment, the arms occlude it.
type Regions struct {
	Torso *imaging.Mask
	Arms  *imaging.Mask
}

// SplitRegions derives torso and arm regions from the person mask and the
// detected landmarks. With both shoulders and both hips present the torso
// is the filled shoulder-hip quadrilateral clipped to the person; otherwise
// it falls back to the upper portion of the mask bounding box. Arms are the
// person pixels outside the torso, restricted to the upper image half.
func SplitRegions(person *imaging.Mask, keys *imaging.BodySet) Regions {
	torso := torsoRegion(person, keys)

	arms := person.AndNot(torso)
	arms.ZeroBelow(person.H / 2)
	return Regions{Torso: torso, Arms: arms}
}

func torsoRegion(person *imaging.Mask, keys *imaging.BodySet) *imaging.Mask {
	if keys.Has(imaging.BodyLeftShoulder, imaging.BodyRightShoulder, imaging.BodyLeftHip, imaging.BodyRightHip) {
		ls, _ := keys.Get(imaging.BodyLeftShoulder)
		rs, _ := keys.Get(imaging.BodyRightShoulder)
		lh, _ := keys.Get(imaging.BodyLeftHip)
		rh, _ := keys.Get(imaging.BodyRightHip)
		poly := fillPolygon(person.W, person.H, []imaging.Point{ls, rs, rh, lh})
		torso := poly.And(person)
		if torso.CountNonZero() > 0 {
			return torso
		}
	}

	torso := imaging.NewMask(person.W, person.H)
	box, ok := person.BoundingBox()
	if !ok {
		return torso
	}
	limit := box.Min.Y + box.Dy()*7/10
	for y := box.Min.Y; y < limit && y < person.H; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if person.At(x, y) {
				torso.Set(x, y, true)
			}
		}
	}
	return torso
}

// fillPolygon rasterizes a simple polygon with an even-odd scanline fill.
func fillPolygon(w, h int, pts []imaging.Point) *imaging.Mask {
	mask := imaging.NewMask(w, h)
	n := len(pts)
	if n < 3 {
		return mask
	}
	for y := 0; y < h; y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[(i+1)%n]
			if (a.Y <= fy && b.Y > fy) || (b.Y <= fy && a.Y > fy) {
				t := (fy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			start := int(xs[i] + 0.5)
			end := int(xs[i+1] + 0.5)
			if start < 0 {
				start = 0
			}
			if end >= w {
				end = w - 1
			}
			for x := start; x <= end; x++ {
				mask.Set(x, y, true)
			}
		}
	}
	return mask
}
