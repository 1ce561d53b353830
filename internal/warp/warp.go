// Package warp applies homographies to images.
//
// Forward warping maps every source pixel through the homography and writes
// it at the rounded destination location; backward warping visits every
// destination pixel and samples the source through the (inverse) homography.
// Destination cells that receive no contribution keep the zero sentinel
// (see pkg/imageutil), which the panorama composer relies on.
//
// Both mappings come in two strategies behind one interface: a per-pixel
// loop and a vectorized grid form. They use the same rounding rule
// (math.Round) and the same raster write order, so either may be
// substituted without changing output.
package warp

import (
	"image"
	"math"

	"pano-stitcher/pkg/geometry"
)

// Direction selects the warp mapping.
type Direction int

const (
	// Forward maps source pixels to destination coordinates via h.
	Forward Direction = iota
	// Backward samples source coordinates for each destination pixel via h
	// (the caller passes the inverse homography).
	Backward
)

// Warper transforms an image through a homography into an output of the
// given size. Implementations must be interchangeable: same rounding, same
// collision tie-break (raster order, last writer wins).
type Warper interface {
	Forward(src *image.RGBA, h geometry.Homography, width, height int) *image.RGBA
	Backward(src *image.RGBA, h geometry.Homography, width, height int) *image.RGBA
}

// Warp applies h to src using the vectorized grid strategy.
func Warp(src *image.RGBA, h geometry.Homography, width, height int, dir Direction) *image.RGBA {
	var w GridWarper
	if dir == Backward {
		return w.Backward(src, h, width, height)
	}
	return w.Forward(src, h, width, height)
}

// PixelWarper is the straightforward per-pixel strategy.
type PixelWarper struct{}

// Forward maps every source pixel through h and writes it at the rounded
// destination cell. Pixels that map outside the output or to infinity are
// dropped; colliding writes resolve in raster order, last writer wins.
func (PixelWarper) Forward(src *image.RGBA, h geometry.Homography, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p, ok := h.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			u := int(math.Round(p.X))
			v := int(math.Round(p.Y))
			if u < 0 || u >= width || v < 0 || v >= height {
				continue
			}
			copyPixel(out, u, v, src, x, y)
		}
	}
	return out
}

// Backward computes, for every destination pixel, the corresponding source
// location through h and samples it (nearest neighbor). Out-of-bounds and
// degenerate source locations keep the zero sentinel.
func (PixelWarper) Backward(src *image.RGBA, h geometry.Homography, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	b := src.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p, ok := h.Apply(geometry.Point2D{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			sx := int(math.Round(p.X))
			sy := int(math.Round(p.Y))
			if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
				continue
			}
			copyPixel(out, x, y, src, sx, sy)
		}
	}
	return out
}

// copyPixel copies one RGB pixel and marks it written (opaque alpha).
func copyPixel(dst *image.RGBA, dx, dy int, src *image.RGBA, sx, sy int) {
	di := dst.PixOffset(dx, dy)
	si := src.PixOffset(sx, sy)
	dst.Pix[di] = src.Pix[si]
	dst.Pix[di+1] = src.Pix[si+1]
	dst.Pix[di+2] = src.Pix[si+2]
	dst.Pix[di+3] = 0xff
}
