// Package quality scores an aligned try-on result. Four independent
// geometric checks each produce a pass flag and a score in [0,1]; the
// overall gate is conjunctive, so one badly failing check cannot hide
// behind good scores elsewhere.
package quality

import (
	"math"

	"tryon/internal/align"
	"tryon/internal/imaging"
)

const (
	// MaxNecklineDistance is the neckline misalignment tolerance in pixels.
	MaxNecklineDistance = 50.0
	// MaxShoulderAngle is the rotation tolerance in degrees.
	MaxShoulderAngle = 15.0
	// MaxOverflow is the tolerated fraction of garment pixels outside the
	// person silhouette.
	MaxOverflow = 0.15
	// MinScale and MaxScale bound plausible garment scaling.
	MinScale = 0.5
	MaxScale = 2.0

	// DefaultThreshold is the overall score a result must reach.
	DefaultThreshold = 0.7
)

// Check weights; they sum to 1.0.
const (
	weightNeckline    = 0.3
	weightShoulder    = 0.2
	weightContainment = 0.3
	weightScale       = 0.2
)

// Check is the outcome of one quality check.
type Check struct {
	Passed bool
	Score  float64
}

// Report aggregates the four checks, the weighted overall score, and the
// conjunctive pass decision.
type Report struct {
	Neckline      Check
	ShoulderAngle Check
	Containment   Check
	Scale         Check
	Overall       float64
	Passed        bool
}

// Evaluate runs all checks against the aligned result. threshold <= 0 falls
// back to DefaultThreshold.
func Evaluate(
	anchorSet *imaging.GarmentSet,
	keys *imaging.BodySet,
	warpedGarmentMask, personMask *imaging.Mask,
	t align.Transform,
	threshold float64,
) Report {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	r := Report{
		Neckline:      checkNeckline(anchorSet, keys, t),
		ShoulderAngle: checkShoulderAngle(t),
		Containment:   checkContainment(warpedGarmentMask, personMask),
		Scale:         checkScale(t),
	}
	r.Overall = weightNeckline*r.Neckline.Score +
		weightShoulder*r.ShoulderAngle.Score +
		weightContainment*r.Containment.Score +
		weightScale*r.Scale.Score
	allPassed := r.Neckline.Passed && r.ShoulderAngle.Passed && r.Containment.Passed && r.Scale.Passed
	r.Passed = allPassed && r.Overall >= threshold
	return r
}

// checkNeckline measures how far the translated garment neckline lands from
// the person's neck. When either point is missing the check passes
// vacuously at 1.0: what cannot be measured cannot be penalized.
func checkNeckline(anchorSet *imaging.GarmentSet, keys *imaging.BodySet, t align.Transform) Check {
	garmentNeck, okG := anchorSet.Get(imaging.GarmentNeckline)
	personNeck, okP := keys.Get(imaging.BodyNeck)
	if !okG || !okP {
		return Check{Passed: true, Score: 1.0}
	}
	moved := imaging.Point{X: garmentNeck.X + t.TranslateX, Y: garmentNeck.Y + t.TranslateY}
	dist := imaging.Distance(moved, personNeck)
	return Check{
		Passed: dist < MaxNecklineDistance,
		Score:  math.Max(0, 1-dist/MaxNecklineDistance),
	}
}

// checkShoulderAngle penalizes a large residual rotation: the transform
// already absorbed the shoulder-line mismatch, so its magnitude is the
// mismatch.
func checkShoulderAngle(t align.Transform) Check {
	diff := math.Abs(t.AngleDeg)
	return Check{
		Passed: diff < MaxShoulderAngle,
		Score:  math.Max(0, 1-diff/MaxShoulderAngle),
	}
}

// checkContainment scores the fraction of warped garment pixels that fall
// inside the person silhouette. An empty garment mask fails outright.
func checkContainment(garmentMask, personMask *imaging.Mask) Check {
	total := garmentMask.CountNonZero()
	if total == 0 {
		return Check{Passed: false, Score: 0}
	}
	inside := garmentMask.IntersectCount(personMask)
	fraction := float64(inside) / float64(total)
	overflow := 1 - fraction
	return Check{
		Passed: overflow < MaxOverflow,
		Score:  fraction,
	}
}

// checkScale requires the scale to stay within plausible bounds; the score
// peaks at 1.0 for scale 1.0 and decays linearly to 0 at either bound.
func checkScale(t align.Transform) Check {
	s := t.Scale
	passed := s >= MinScale && s <= MaxScale
	var score float64
	if s < 1.0 {
		score = (s - MinScale) / (1.0 - MinScale)
	} else {
		score = (MaxScale - s) / (MaxScale - 1.0)
	}
	score = math.Max(0, math.Min(1, score))
	return Check{Passed: passed, Score: score}
}
