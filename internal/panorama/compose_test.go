package panorama

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"pano-stitcher/internal/homography"
	"pano-stitcher/pkg/geometry"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// translationCorrs maps source (x, y) to destination (x-dx, y-dy).
func translationCorrs(dx, dy float64, pts []geometry.Point2D) []homography.Correspondence {
	corrs := make([]homography.Correspondence, len(pts))
	for i, p := range pts {
		corrs[i] = homography.Correspondence{
			Src: p,
			Dst: geometry.Point2D{X: p.X - dx, Y: p.Y - dy},
		}
	}
	return corrs
}

func TestComposePureTranslationPanorama(t *testing.T) {
	srcColor := color.RGBA{R: 200, G: 30, B: 30, A: 255}
	dstColor := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	src := solidImage(100, 100, srcColor)
	dst := solidImage(100, 100, dstColor)

	corrs := translationCorrs(20, 0, []geometry.Point2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100},
		{X: 30, Y: 30}, {X: 90, Y: 20}, {X: 50, Y: 80},
	})

	cfg := homography.DefaultConfig()
	cfg.NumIterations = 200
	cfg.RandomSeed = 3

	result, err := Compose(src, dst, corrs, cfg)
	require.NoError(t, err)

	require.Equal(t, 120, result.Canvas.Width)
	require.Equal(t, 100, result.Canvas.Height)
	require.Equal(t, 20, result.Canvas.OffsetX)
	require.Equal(t, 0, result.Canvas.OffsetY)
	require.Equal(t, Padding{Left: 20}, result.Canvas.Pad)
	require.Equal(t, len(corrs), result.InlierCount())

	pano := result.Panorama
	// Destination content placed at its offset, bit-identical.
	for y := 0; y < 100; y += 7 {
		for x := 20; x < 120; x += 7 {
			require.Equal(t, dstColor, pano.RGBAAt(x, y), "destination pixel (%d,%d)", x, y)
		}
	}
	// Source content fills the strip the destination left empty.
	for y := 0; y < 100; y += 7 {
		for x := 0; x < 20; x += 3 {
			require.Equal(t, srcColor, pano.RGBAAt(x, y), "source pixel (%d,%d)", x, y)
		}
	}
}

func TestComposeDestinationPriorityOnOverlap(t *testing.T) {
	// Identity alignment: the images overlap fully. Every nonzero
	// destination pixel must survive unchanged.
	srcColor := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	dstColor := color.RGBA{R: 9, G: 8, B: 7, A: 255}
	src := solidImage(40, 40, srcColor)
	dst := solidImage(40, 40, dstColor)

	corrs := translationCorrs(0, 0, []geometry.Point2D{
		{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 0, Y: 40}, {X: 40, Y: 40}, {X: 13, Y: 27},
	})

	cfg := homography.DefaultConfig()
	cfg.NumIterations = 100
	cfg.RandomSeed = 1

	result, err := Compose(src, dst, corrs, cfg)
	require.NoError(t, err)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			require.Equal(t, dstColor, result.Panorama.RGBAAt(x+result.Canvas.OffsetX, y+result.Canvas.OffsetY))
		}
	}
}

func TestComposeZeroDestinationPixelsGetOverwritten(t *testing.T) {
	// A black hole in the destination counts as empty and takes source
	// content — the documented sentinel limitation.
	srcColor := color.RGBA{R: 50, G: 60, B: 70, A: 255}
	src := solidImage(40, 40, srcColor)
	dst := solidImage(40, 40, color.RGBA{R: 90, G: 90, B: 90, A: 255})
	dst.SetRGBA(10, 10, color.RGBA{A: 255}) // opaque black

	corrs := translationCorrs(0, 0, []geometry.Point2D{
		{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 0, Y: 40}, {X: 40, Y: 40}, {X: 22, Y: 9},
	})

	result, err := Compose(src, dst, corrs, homography.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, srcColor, result.Panorama.RGBAAt(10, 10))
}

func TestComposePropagatesInsufficientConsensus(t *testing.T) {
	src := solidImage(20, 20, color.RGBA{R: 10, A: 255})
	dst := solidImage(20, 20, color.RGBA{R: 20, A: 255})

	// Mutually inconsistent matches: no candidate reaches the minimum.
	var corrs []homography.Correspondence
	for i := 0; i < 8; i++ {
		corrs = append(corrs, homography.Correspondence{
			Src: geometry.Point2D{X: float64((i * 61) % 100), Y: float64((i * 37) % 100)},
			Dst: geometry.Point2D{X: float64((i * i * 89) % 500), Y: float64((i * i * 151) % 500)},
		})
	}

	cfg := homography.DefaultConfig()
	cfg.NumIterations = 50
	cfg.MinInlierCount = 6

	_, err := Compose(src, dst, corrs, cfg)
	require.ErrorIs(t, err, homography.ErrInsufficientConsensus)
}
