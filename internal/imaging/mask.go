package imaging

import "image"

const (
	// MaskOn is the foreground value of a binary mask.
	MaskOn uint8 = 255
	// BinarizeThreshold restores a hard mask after resampling smears edges.
	BinarizeThreshold uint8 = 128
)

// Mask is a single-channel binary field aligned to an image's pixel grid.
// Foreground pixels hold MaskOn, background pixels hold zero.
type Mask struct {
	W, H int
	Pix  []uint8
}

// NewMask returns an all-background mask of the given dimensions.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]uint8, w*h)}
}

// At reports whether the pixel at (x, y) is foreground. Out-of-bounds
// coordinates read as background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Pix[y*m.W+x] >= BinarizeThreshold
}

// Set marks the pixel at (x, y) as foreground or background.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	if on {
		m.Pix[y*m.W+x] = MaskOn
	} else {
		m.Pix[y*m.W+x] = 0
	}
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.W, m.H)
	copy(out.Pix, m.Pix)
	return out
}

// CountNonZero returns the number of foreground pixels.
func (m *Mask) CountNonZero() int {
	n := 0
	for _, v := range m.Pix {
		if v >= BinarizeThreshold {
			n++
		}
	}
	return n
}

// BoundingBox returns the tight bounding rectangle of the foreground, and
// false when the mask is empty.
func (m *Mask) BoundingBox() (image.Rectangle, bool) {
	minX, minY := m.W, m.H
	maxX, maxY := -1, -1
	for y := 0; y < m.H; y++ {
		row := m.Pix[y*m.W : (y+1)*m.W]
		for x, v := range row {
			if v < BinarizeThreshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// And returns the intersection of two same-sized masks.
func (m *Mask) And(other *Mask) *Mask {
	out := NewMask(m.W, m.H)
	for i := range m.Pix {
		if m.Pix[i] >= BinarizeThreshold && other.Pix[i] >= BinarizeThreshold {
			out.Pix[i] = MaskOn
		}
	}
	return out
}

// AndNot returns m with other's foreground removed.
func (m *Mask) AndNot(other *Mask) *Mask {
	out := NewMask(m.W, m.H)
	for i := range m.Pix {
		if m.Pix[i] >= BinarizeThreshold && other.Pix[i] < BinarizeThreshold {
			out.Pix[i] = MaskOn
		}
	}
	return out
}

// IntersectCount returns the number of pixels foreground in both masks.
func (m *Mask) IntersectCount(other *Mask) int {
	n := 0
	for i := range m.Pix {
		if m.Pix[i] >= BinarizeThreshold && other.Pix[i] >= BinarizeThreshold {
			n++
		}
	}
	return n
}

// ZeroBelow clears every row at or below the given y coordinate.
func (m *Mask) ZeroBelow(y int) {
	if y < 0 {
		y = 0
	}
	for i := y * m.W; i < len(m.Pix); i++ {
		m.Pix[i] = 0
	}
}

// Binarize snaps every pixel to a hard 0/MaskOn value in place. Resampling
// introduces fractional edge values that must not survive into mask logic.
func (m *Mask) Binarize() {
	for i, v := range m.Pix {
		if v >= BinarizeThreshold {
			m.Pix[i] = MaskOn
		} else {
			m.Pix[i] = 0
		}
	}
}

// ToGray converts the mask into a grayscale image sharing its dimensions.
func (m *Mask) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	copy(g.Pix, m.Pix)
	return g
}

// MaskFromGray builds a binary mask from a grayscale image.
func MaskFromGray(g *image.Gray) *Mask {
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if g.GrayAt(b.Min.X+x, b.Min.Y+y).Y >= BinarizeThreshold {
				m.Pix[y*m.W+x] = MaskOn
			}
		}
	}
	return m
}

// MaskFromAlpha builds a binary mask from the alpha channel of an image.
func MaskFromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if uint8(a>>8) >= BinarizeThreshold {
				m.Pix[y*m.W+x] = MaskOn
			}
		}
	}
	return m
}

// RemoveSmallComponents drops 8-connected foreground components smaller than
// minSize pixels and returns the cleaned mask.
func (m *Mask) RemoveSmallComponents(minSize int) *Mask {
	out := NewMask(m.W, m.H)
	visited := make([]bool, len(m.Pix))
	var stack []int
	for start := range m.Pix {
		if visited[start] || m.Pix[start] < BinarizeThreshold {
			continue
		}
		component := []int{start}
		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := idx%m.W, idx/m.W
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := cx+dx, cy+dy
					if nx < 0 || ny < 0 || nx >= m.W || ny >= m.H {
						continue
					}
					nidx := ny*m.W + nx
					if visited[nidx] || m.Pix[nidx] < BinarizeThreshold {
						continue
					}
					visited[nidx] = true
					component = append(component, nidx)
					stack = append(stack, nidx)
				}
			}
		}
		if len(component) >= minSize {
			for _, idx := range component {
				out.Pix[idx] = MaskOn
			}
		}
	}
	return out
}

// Dilate grows the foreground by a square kernel of the given radius.
func (m *Mask) Dilate(radius int) *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			on := false
			for dy := -radius; dy <= radius && !on; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if m.At(x+dx, y+dy) {
						on = true
						break
					}
				}
			}
			if on {
				out.Pix[y*m.W+x] = MaskOn
			}
		}
	}
	return out
}

// Erode shrinks the foreground by a square kernel of the given radius.
func (m *Mask) Erode(radius int) *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			on := true
			for dy := -radius; dy <= radius && on; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if !m.At(x+dx, y+dy) {
						on = false
						break
					}
				}
			}
			if on {
				out.Pix[y*m.W+x] = MaskOn
			}
		}
	}
	return out
}

// Close fills small holes: dilate then erode.
func (m *Mask) Close(radius int) *Mask {
	return m.Dilate(radius).Erode(radius)
}

// Open removes small specks: erode then dilate.
func (m *Mask) Open(radius int) *Mask {
	return m.Erode(radius).Dilate(radius)
}

// BoundaryPoints returns every foreground pixel with at least one
// 4-connected background neighbour, which is the silhouette outline.
func (m *Mask) BoundaryPoints() []image.Point {
	var pts []image.Point
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(x, y) {
				continue
			}
			if !m.At(x-1, y) || !m.At(x+1, y) || !m.At(x, y-1) || !m.At(x, y+1) {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}
