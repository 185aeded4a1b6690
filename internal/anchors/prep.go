// Package anchors prepares a garment image for alignment: it separates the
// garment from its background and derives the named anchor points the
// alignment engine matches against body landmarks.
package anchors

import (
	"image"

	"tryon/internal/imaging"
)

const (
	// backgroundThreshold is the luminance above which a pixel counts as
	// white studio background.
	backgroundThreshold = 240
	// minComponentSize filters speckle left over after thresholding.
	minComponentSize = 500
)

// RemoveBackground lifts the garment off a white or uniformly bright
// background. It returns the garment with the silhouette as its alpha
// channel, plus the binary silhouette mask.
func RemoveBackground(img *image.NRGBA) (*image.NRGBA, *imaging.Mask) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := imaging.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			// ITU-R BT.601 luma.
			luma := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
			if luma < backgroundThreshold {
				mask.Set(x, y, true)
			}
		}
	}
	mask = mask.Close(1).Open(1)
	mask = mask.RemoveSmallComponents(minComponentSize)

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if mask.At(x, y) {
				c.A = 255
			} else {
				c.A = 0
			}
			rgba.SetNRGBA(x, y, c)
		}
	}
	return rgba, mask
}

// PrepareGarment runs the full garment preparation: background removal
// followed by anchor detection.
func PrepareGarment(img *image.NRGBA) (*image.NRGBA, *imaging.Mask, *imaging.GarmentSet, error) {
	rgba, mask := RemoveBackground(img)
	set, err := DetectAnchors(mask)
	if err != nil {
		return nil, nil, nil, err
	}
	return rgba, mask, set, nil
}
