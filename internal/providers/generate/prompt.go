package generate

import (
	"strings"

	"tryon/internal/domain"
)

// NegativePrompt lists the artifacts the generation model must avoid.
const NegativePrompt = "distorted body, extra limbs, blurry, low quality, " +
	"deformed hands, unnatural pose, floating garment, visible seams"

// realismInstructions maps a 1..5 realism level onto prompt wording.
var realismInstructions = [5]string{
	"stylized illustration look",
	"soft rendered look",
	"balanced realism",
	"photorealistic rendering",
	"hyper-realistic photography, natural skin texture and fabric detail",
}

// BuildPrompt assembles the instruction prompt for the generation gateway
// from the job preferences and the garment type.
func BuildPrompt(prefs domain.Preferences, garmentType string) string {
	if garmentType == "" {
		garmentType = "garment"
	}
	clauses := []string{
		"A person wearing the provided " + garmentType + ", fitted naturally to their body",
		"realistic fabric drape, folds and shadows",
	}
	if prefs.PreserveFace {
		clauses = append(clauses, "keep the person's face and hair exactly as in the original photo")
	}
	if prefs.PreserveBackground {
		clauses = append(clauses, "keep the original background unchanged")
	}

	level := prefs.RealismLevel
	if level < 1 || level > len(realismInstructions) {
		level = domain.DefaultRealismLevel
	}
	clauses = append(clauses, realismInstructions[level-1])

	return strings.Join(clauses, ", ")
}
