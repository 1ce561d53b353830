package warp

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"pano-stitcher/pkg/geometry"
	"pano-stitcher/pkg/imageutil"
)

// gradientImage builds a small RGBA image with a unique color per pixel.
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x*10 + 1), G: uint8(y*10 + 1), B: 128, A: 255})
		}
	}
	return img
}

// mildProjective has small perspective terms so a 20x20 grid stays finite.
var mildProjective = geometry.Homography{
	{1, 0.02, 4},
	{0.01, 1, 2},
	{0.0004, 0.0002, 1},
}

func TestForwardWarpTranslation(t *testing.T) {
	src := gradientImage(10, 8)
	h := geometry.Translation(5, 3)

	out := PixelWarper{}.Forward(src, h, 20, 15)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			require.Equal(t, src.RGBAAt(x, y), out.RGBAAt(x+5, y+3), "pixel (%d,%d)", x, y)
		}
	}
	// Cells outside the translated footprint keep the zero sentinel.
	require.True(t, imageutil.IsEmpty(out, 0, 0))
	require.True(t, imageutil.IsEmpty(out, 19, 14))
}

func TestBackwardWarpTranslation(t *testing.T) {
	src := gradientImage(10, 8)
	// Backward mapping: destination (x,y) samples source (x-5, y-3).
	h := geometry.Translation(-5, -3)

	out := PixelWarper{}.Backward(src, h, 20, 15)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			require.Equal(t, src.RGBAAt(x, y), out.RGBAAt(x+5, y+3), "pixel (%d,%d)", x, y)
		}
	}
	// Out-of-bounds source lookups resolve to the sentinel, not an error.
	require.True(t, imageutil.IsEmpty(out, 0, 0))
	require.True(t, imageutil.IsEmpty(out, 16, 3))
}

func TestGridMatchesPixelForward(t *testing.T) {
	src := gradientImage(20, 20)
	a := PixelWarper{}.Forward(src, mildProjective, 32, 32)
	b := GridWarper{}.Forward(src, mildProjective, 32, 32)
	require.Equal(t, a.Pix, b.Pix)
}

func TestGridMatchesPixelBackward(t *testing.T) {
	src := gradientImage(20, 20)
	inv, ok := mildProjective.Inverse()
	require.True(t, ok)
	a := PixelWarper{}.Backward(src, inv, 32, 32)
	b := GridWarper{}.Backward(src, inv, 32, 32)
	require.Equal(t, a.Pix, b.Pix)
}

func TestWarpHelperUsesGridStrategy(t *testing.T) {
	src := gradientImage(12, 12)
	require.Equal(t,
		GridWarper{}.Forward(src, mildProjective, 20, 20).Pix,
		Warp(src, mildProjective, 20, 20, Forward).Pix)

	inv, ok := mildProjective.Inverse()
	require.True(t, ok)
	require.Equal(t,
		GridWarper{}.Backward(src, inv, 20, 20).Pix,
		Warp(src, inv, 20, 20, Backward).Pix)
}

func TestForwardBackwardInverseConsistency(t *testing.T) {
	inv, ok := mildProjective.Inverse()
	require.True(t, ok)

	// Push every grid coordinate forward, round to the pixel grid as the
	// warper does, and map back: each must land within one pixel of where
	// it started.
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			p := geometry.Point2D{X: float64(x), Y: float64(y)}
			fwd, ok := mildProjective.Apply(p)
			require.True(t, ok)
			rounded := geometry.Point2D{X: math.Round(fwd.X), Y: math.Round(fwd.Y)}
			back, ok := inv.Apply(rounded)
			require.True(t, ok)
			require.LessOrEqual(t, back.Distance(p), 1.0, "grid point (%d,%d)", x, y)
		}
	}
}

func TestWarpDegeneratePixelsResolveToSentinel(t *testing.T) {
	src := gradientImage(4, 4)
	// w = x + y - 2 vanishes along a line through the image; those pixels
	// must drop out rather than abort the warp.
	h := geometry.Homography{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, -2},
	}
	out := PixelWarper{}.Backward(src, h, 4, 4)
	require.True(t, imageutil.IsEmpty(out, 2, 0)) // on the degenerate line
	require.True(t, imageutil.IsEmpty(out, 0, 2))
}
