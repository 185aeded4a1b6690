package imaging

// BodyPoint is a closed enum of the body landmarks the pipeline understands.
// Fixed slots replace stringly-typed keypoint maps: presence is tracked per
// slot and lookups cannot misspell a name.
type BodyPoint int

const (
	BodyNose BodyPoint = iota
	BodyNeck
	BodyLeftShoulder
	BodyRightShoulder
	BodyLeftElbow
	BodyRightElbow
	BodyLeftWrist
	BodyRightWrist
	BodyLeftHip
	BodyRightHip
	bodyPointCount
)

var bodyPointNames = [bodyPointCount]string{
	"nose",
	"neck",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_hip",
	"right_hip",
}

func (p BodyPoint) String() string {
	if p < 0 || p >= bodyPointCount {
		return "unknown"
	}
	return bodyPointNames[p]
}

// ParseBodyPoint maps a wire-format landmark name onto its slot.
func ParseBodyPoint(name string) (BodyPoint, bool) {
	for i, n := range bodyPointNames {
		if n == name {
			return BodyPoint(i), true
		}
	}
	return 0, false
}

// BodySet holds one optional coordinate per body landmark.
type BodySet struct {
	pts     [bodyPointCount]Point
	present [bodyPointCount]bool
}

// Set records the coordinate for a landmark slot.
func (s *BodySet) Set(p BodyPoint, pt Point) {
	s.pts[p] = pt
	s.present[p] = true
}

// Get returns the coordinate for a slot and whether it is present.
func (s *BodySet) Get(p BodyPoint) (Point, bool) {
	return s.pts[p], s.present[p]
}

// Has reports whether every listed slot is present.
func (s *BodySet) Has(pts ...BodyPoint) bool {
	for _, p := range pts {
		if !s.present[p] {
			return false
		}
	}
	return true
}

// Len returns the number of present landmarks.
func (s *BodySet) Len() int {
	n := 0
	for _, ok := range s.present {
		if ok {
			n++
		}
	}
	return n
}

// Named returns the present landmarks keyed by wire name, for debug artifacts.
func (s *BodySet) Named() map[string]Point {
	out := make(map[string]Point, s.Len())
	for i, ok := range s.present {
		if ok {
			out[bodyPointNames[i]] = s.pts[i]
		}
	}
	return out
}

// GarmentPoint is a closed enum of the garment anchors derived from a
// silhouette mask.
type GarmentPoint int

const (
	GarmentNeckline GarmentPoint = iota
	GarmentLeftShoulder
	GarmentRightShoulder
	GarmentHemBottom
	garmentPointCount
)

var garmentPointNames = [garmentPointCount]string{
	"neckline",
	"left_shoulder",
	"right_shoulder",
	"hem_bottom",
}

func (p GarmentPoint) String() string {
	if p < 0 || p >= garmentPointCount {
		return "unknown"
	}
	return garmentPointNames[p]
}

// GarmentSet holds one optional coordinate per garment anchor.
type GarmentSet struct {
	pts     [garmentPointCount]Point
	present [garmentPointCount]bool
}

// Set records the coordinate for an anchor slot.
func (s *GarmentSet) Set(p GarmentPoint, pt Point) {
	s.pts[p] = pt
	s.present[p] = true
}

// Get returns the coordinate for a slot and whether it is present.
func (s *GarmentSet) Get(p GarmentPoint) (Point, bool) {
	return s.pts[p], s.present[p]
}

// Has reports whether every listed slot is present.
func (s *GarmentSet) Has(pts ...GarmentPoint) bool {
	for _, p := range pts {
		if !s.present[p] {
			return false
		}
	}
	return true
}
