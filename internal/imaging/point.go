package imaging

import "math"

// Point is a 2-D pixel coordinate. Landmarks and anchors are expressed in
// the pixel space of the image they were detected on.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// AngleDeg returns the angle of the line from a to b, measured as
// atan2(dy, dx) in degrees.
func AngleDeg(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
