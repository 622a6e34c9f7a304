package bitmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	// Register the decoders for the formats an image loader meets in
	// practice. Decode handles anything registered with package image.
	_ "image/gif"
	_ "image/jpeg"
)

// ErrMalformed indicates the payload could not be decoded as an image.
var ErrMalformed = errors.New("bitmap: malformed image data")

// Options control decoding and resizing.
type Options struct {
	// TargetWidth and TargetHeight bound the decoded image. The image
	// is scaled to fit within the bounds preserving aspect ratio.
	// Non-positive values disable resizing.
	TargetWidth  int
	TargetHeight int

	// AllowUpsampling permits enlarging images smaller than the
	// target bounds. Default false: small images stay small.
	AllowUpsampling bool

	// AlwaysUseOriginalSize disables resizing entirely.
	AlwaysUseOriginalSize bool
}

// Decode parses data into an image and resizes it per opts.
// Malformed payloads fail with an error wrapping ErrMalformed.
func Decode(data []byte, opts Options) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Resize(img, opts), nil
}

// Resize scales img to fit within the target bounds, preserving the
// aspect ratio. It returns img unchanged when no scaling applies:
// resizing disabled, bounds non-positive, or the image already fits
// and upsampling is off.
func Resize(img image.Image, opts Options) image.Image {
	if opts.AlwaysUseOriginalSize || opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		return img
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return img
	}

	scale := math.Min(
		float64(opts.TargetWidth)/float64(srcW),
		float64(opts.TargetHeight)/float64(srcH),
	)
	if scale == 1 {
		return img
	}
	if scale > 1 && !opts.AllowUpsampling {
		return img
	}

	dstW := int(math.Round(float64(srcW) * scale))
	dstH := int(math.Round(float64(srcH) * scale))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodePNG serializes img as PNG. Used to persist resized variants
// (thumbnails) back to the disk cache.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("bitmap: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ByteSize estimates the in-memory cost of img for cache accounting.
// The estimate assumes 4 bytes per pixel, which is exact for RGBA and
// a conservative upper bound for subsampled formats.
func ByteSize(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}
