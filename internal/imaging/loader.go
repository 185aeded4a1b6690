package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	stddraw "image/draw"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	"tryon/internal/domain"
)

// Loader acquires input images from a local path or a URL and normalizes
// them: EXIF orientation applied, bounded to the working dimension, NRGBA.
type Loader struct {
	httpClient *http.Client
	maxBytes   int64
	workSize   int
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	HTTPClient *http.Client
	MaxBytes   int64
	WorkSize   int
}

// NewLoader builds a Loader with defaults for any unset option.
func NewLoader(opts LoaderOptions) *Loader {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	workSize := opts.WorkSize
	if workSize <= 0 {
		workSize = 1536
	}
	return &Loader{httpClient: client, maxBytes: maxBytes, workSize: workSize}
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Load reads the referenced image and normalizes it. A URL reference wins
// when both fields are somehow set; an empty reference is a storage error.
func (l *Loader) Load(ctx context.Context, ref domain.ImageRef) (*image.NRGBA, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case ref.URL != "":
		data, err = l.download(ctx, ref.URL)
	case ref.Path != "":
		data, err = l.readFile(ref.Path)
	default:
		return nil, domain.E(domain.KindStorage, "no image url or path provided")
	}
	if err != nil {
		return nil, err
	}
	return l.normalize(data)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if !allowedExtensions[strings.ToLower(filepath.Ext(path))] {
		return nil, domain.E(domain.KindInvalidImageFormat, "unsupported image format %q", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.WrapErr(domain.KindStorage, err, "image not found: %s", path)
	}
	if info.Size() > l.maxBytes {
		return nil, domain.E(domain.KindImageTooLarge, "image exceeds %d bytes", l.maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapErr(domain.KindStorage, err, "read image: %s", path)
	}
	return data, nil
}

func (l *Loader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.WrapErr(domain.KindStorage, err, "build download request")
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, domain.WrapErr(domain.KindTimeout, err, "image download timed out")
		}
		return nil, domain.WrapErr(domain.KindStorage, err, "download image")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.E(domain.KindStorage, "download image: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, domain.WrapErr(domain.KindTimeout, err, "image download timed out")
		}
		return nil, domain.WrapErr(domain.KindStorage, err, "read image body")
	}
	if int64(len(data)) > l.maxBytes {
		return nil, domain.E(domain.KindImageTooLarge, "image exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (l *Loader) normalize(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.WrapErr(domain.KindInvalidImageFormat, err, "decode image")
	}
	out := toNRGBA(img)
	out = applyOrientation(out, readOrientation(data))
	return l.fitToWorkSize(out), nil
}

// readOrientation returns the EXIF orientation value, defaulting to 1
// (upright) when no usable EXIF block exists.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

func applyOrientation(img *image.NRGBA, orientation int) *image.NRGBA {
	switch orientation {
	case 3:
		return rotate180(img)
	case 6:
		return rotate90CW(img)
	case 8:
		return rotate90CCW(img)
	default:
		return img
	}
}

func rotate180(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetNRGBA(b.Dx()-1-x, b.Dy()-1-y, src.NRGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate90CW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetNRGBA(b.Dy()-1-y, x, src.NRGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate90CCW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetNRGBA(y, b.Dx()-1-x, src.NRGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// fitToWorkSize downscales so the larger dimension is at most the working
// size, preserving aspect. Smaller images pass through untouched.
func (l *Loader) fitToWorkSize(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= l.workSize {
		return img
	}
	scale := float64(l.workSize) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func toNRGBA(img image.Image) *image.NRGBA {
	if out, ok := img.(*image.NRGBA); ok {
		return out
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(out, out.Bounds(), img, b.Min, stddraw.Src)
	return out
}
