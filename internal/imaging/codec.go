package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"

	"tryon/internal/domain"
)

// EncodePNG serializes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.WrapErr(domain.KindStorage, err, "encode png")
	}
	return buf.Bytes(), nil
}

// EncodeJPEG serializes an image as JPEG bytes at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, domain.WrapErr(domain.KindStorage, err, "encode jpeg")
	}
	return buf.Bytes(), nil
}

// ToBase64JPEG encodes an image as base64 for inline JSON payloads.
func ToBase64JPEG(img image.Image, quality int) (string, error) {
	data, err := EncodeJPEG(img, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// FromBase64 decodes a base64 payload into an NRGBA image.
func FromBase64(encoded string) (*image.NRGBA, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, domain.WrapErr(domain.KindInvalidImageFormat, err, "decode base64 image")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.WrapErr(domain.KindInvalidImageFormat, err, "decode image payload")
	}
	return toNRGBA(img), nil
}
