// Package panorama composes two images into a single panorama from point
// correspondences: robust homography estimation, canvas sizing from the
// warped source corners, destination placement, and zero-sentinel
// compositing of the backward-warped source.
package panorama

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"pano-stitcher/internal/homography"
	"pano-stitcher/internal/warp"
	"pano-stitcher/pkg/geometry"
	"pano-stitcher/pkg/imageutil"
)

// Padding holds the per-side pixel padding the canvas adds around the
// destination image to fit the warped source.
type Padding struct {
	Up    int
	Down  int
	Left  int
	Right int
}

// Canvas describes the output geometry: total size plus the translation
// offset that shifts all warped coordinates non-negative. The destination
// image is placed at (OffsetX, OffsetY).
type Canvas struct {
	Width   int
	Height  int
	OffsetX int
	OffsetY int
	Pad     Padding
}

// Result carries the composited panorama together with the estimation
// diagnostics that produced it.
type Result struct {
	Panorama   *image.RGBA
	Homography geometry.Homography // source -> destination, from RANSAC
	Inliers    []bool
	Canvas     Canvas
}

// InlierCount returns the number of correspondences the estimated
// homography agreed with.
func (r *Result) InlierCount() int {
	n := 0
	for _, in := range r.Inliers {
		if in {
			n++
		}
	}
	return n
}

// Compose builds a panorama from a source image, a destination image, and
// their correspondences.
//
// The forward homography comes from RANSAC; the backward homography is its
// matrix inverse rather than a second RANSAC run on swapped correspondences,
// so both directions describe the exact same transform. Where the canvas
// still carries the zero sentinel after the destination is placed, the
// backward-warped source fills in; destination content always wins on
// overlap. Estimation failures (ErrInsufficientConsensus and friends)
// propagate untouched.
func Compose(src, dst image.Image, corrs []homography.Correspondence, cfg homography.Config) (*Result, error) {
	est, err := homography.NewEstimator(cfg)
	if err != nil {
		return nil, fmt.Errorf("estimator config: %w", err)
	}
	h, inliers, err := est.Estimate(corrs)
	if err != nil {
		return nil, fmt.Errorf("homography estimation: %w", err)
	}

	hInv, ok := h.Inverse()
	if !ok {
		return nil, fmt.Errorf("estimated homography not invertible: %w", homography.ErrDegenerateInput)
	}

	srcRGBA := imageutil.ToRGBA(src)
	dstRGBA := imageutil.ToRGBA(dst)
	srcB := srcRGBA.Bounds()
	dstB := dstRGBA.Bounds()

	canvas, err := canvasFor(srcB.Dx(), srcB.Dy(), dstB.Dx(), dstB.Dy(), h)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Compose: canvas %dx%d, offset (%d, %d), pad u=%d d=%d l=%d r=%d\n",
		canvas.Width, canvas.Height, canvas.OffsetX, canvas.OffsetY,
		canvas.Pad.Up, canvas.Pad.Down, canvas.Pad.Left, canvas.Pad.Right)

	// Place the destination image; its pixels are final.
	out := imageutil.NewCanvas(canvas.Width, canvas.Height)
	place := image.Rect(canvas.OffsetX, canvas.OffsetY,
		canvas.OffsetX+dstB.Dx(), canvas.OffsetY+dstB.Dy())
	draw.Draw(out, place, dstRGBA, image.Point{}, draw.Src)

	// Backward-warp the source into canvas coordinates. The translated
	// forward homography is T(offset)·H, so the backward mapping is its
	// inverse, H⁻¹·T(-offset).
	backward := hInv.Compose(geometry.Translation(-float64(canvas.OffsetX), -float64(canvas.OffsetY)))
	warped := warp.Warp(srcRGBA, backward, canvas.Width, canvas.Height, warp.Backward)

	// Composite: only sentinel cells take source content. A legitimately
	// black destination pixel is indistinguishable from empty here.
	for y := 0; y < canvas.Height; y++ {
		for x := 0; x < canvas.Width; x++ {
			if !imageutil.IsEmpty(out, x, y) {
				continue
			}
			di := out.PixOffset(x, y)
			wi := warped.PixOffset(x, y)
			out.Pix[di] = warped.Pix[wi]
			out.Pix[di+1] = warped.Pix[wi+1]
			out.Pix[di+2] = warped.Pix[wi+2]
			out.Pix[di+3] = 0xff
		}
	}

	return &Result{
		Panorama:   out,
		Homography: h,
		Inliers:    inliers,
		Canvas:     canvas,
	}, nil
}

// canvasFor computes the output geometry from the warped source corners and
// the destination bounds at the origin. Padding grows the canvas by the
// amount any warped corner falls outside the destination rectangle; the
// translation offset equals the left/up padding.
func canvasFor(srcW, srcH, dstW, dstH int, h geometry.Homography) (Canvas, error) {
	corners := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: float64(srcW), Y: 0},
		{X: 0, Y: float64(srcH)},
		{X: float64(srcW), Y: float64(srcH)},
	}
	warped := make([]geometry.Point2D, len(corners))
	for i, c := range corners {
		p, err := homography.Project(h, c)
		if err != nil {
			return Canvas{}, fmt.Errorf("source corner %d: %w", i, err)
		}
		warped[i] = p
	}

	box := geometry.BoundingBox(warped).Union(geometry.NewRect(0, 0, float64(dstW), float64(dstH)))

	pad := Padding{
		Up:    int(math.Ceil(math.Max(0, -box.Y))),
		Left:  int(math.Ceil(math.Max(0, -box.X))),
		Down:  int(math.Ceil(math.Max(0, box.Y+box.Height-float64(dstH)))),
		Right: int(math.Ceil(math.Max(0, box.X+box.Width-float64(dstW)))),
	}
	return Canvas{
		Width:   dstW + pad.Left + pad.Right,
		Height:  dstH + pad.Up + pad.Down,
		OffsetX: pad.Left,
		OffsetY: pad.Up,
		Pad:     pad,
	}, nil
}
