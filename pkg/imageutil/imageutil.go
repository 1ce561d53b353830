// Package imageutil provides shared pixel utilities for the panorama stitcher.
//
// It also defines the empty-pixel contract used by warping and compositing:
// a pixel whose R, G and B channels are all zero is treated as "never
// written". Legitimately black content is indistinguishable from empty under
// this convention — a known limitation inherited from the zero-filled canvas
// design, not something callers should try to work around per pixel.
package imageutil

import (
	"image"
	"image/draw"
	"math"
)

// ClampUint8 clamps a floating-point channel value to [0, 255] and rounds
// to the nearest integer intensity. Values clamp, never wrap.
func ClampUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// IsEmpty reports whether the pixel at (x, y) carries the zero sentinel
// (all color channels zero). Alpha is ignored.
func IsEmpty(img *image.RGBA, x, y int) bool {
	i := img.PixOffset(x, y)
	return img.Pix[i] == 0 && img.Pix[i+1] == 0 && img.Pix[i+2] == 0
}

// ToRGBA converts any image.Image to *image.RGBA with origin (0, 0).
// The input is returned unchanged if it is already a zero-origin RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// NewCanvas allocates a zero-filled RGBA canvas. Every pixel starts at the
// empty sentinel.
func NewCanvas(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}
