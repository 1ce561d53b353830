package warp

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"pano-stitcher/pkg/geometry"
	"pano-stitcher/pkg/imageutil"
)

// GridWarper is the vectorized strategy: it builds a 3x(W·H) matrix of
// homogeneous pixel coordinates, transforms the whole grid with one matrix
// multiplication, and normalizes per column. Numerically equivalent to
// PixelWarper (same rounding rule, same write order).
type GridWarper struct{}

// Forward implements Warper.
func (GridWarper) Forward(src *image.RGBA, h geometry.Homography, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return out
	}

	mapped := transformGrid(h, b.Min.X, b.Min.Y, srcW, srcH)

	// Raster order over source pixels, so colliding writes resolve the
	// same way as the per-pixel strategy.
	for y := 0; y < srcH; y++ {
		for x := 0; x < srcW; x++ {
			c := y*srcW + x
			w := mapped.At(2, c)
			if math.Abs(w) < 1e-12 {
				continue
			}
			u := int(math.Round(mapped.At(0, c) / w))
			v := int(math.Round(mapped.At(1, c) / w))
			if u < 0 || u >= width || v < 0 || v >= height {
				continue
			}
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := out.PixOffset(u, v)
			out.Pix[di] = imageutil.ClampUint8(float64(src.Pix[si]))
			out.Pix[di+1] = imageutil.ClampUint8(float64(src.Pix[si+1]))
			out.Pix[di+2] = imageutil.ClampUint8(float64(src.Pix[si+2]))
			out.Pix[di+3] = 0xff
		}
	}
	return out
}

// Backward implements Warper. The grid spans the destination; sampling is
// parallelized by horizontal stripes, which stays deterministic because
// destination rows are disjoint.
func (GridWarper) Backward(src *image.RGBA, h geometry.Homography, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}
	b := src.Bounds()

	mapped := transformGrid(h, 0, 0, width, height)

	numWorkers := runtime.NumCPU()
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		if startY >= height {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			for y := yStart; y < yEnd; y++ {
				for x := 0; x < width; x++ {
					c := y*width + x
					ww := mapped.At(2, c)
					if math.Abs(ww) < 1e-12 {
						continue
					}
					sx := int(math.Round(mapped.At(0, c) / ww))
					sy := int(math.Round(mapped.At(1, c) / ww))
					if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
						continue
					}
					si := src.PixOffset(sx, sy)
					di := out.PixOffset(x, y)
					out.Pix[di] = imageutil.ClampUint8(float64(src.Pix[si]))
					out.Pix[di+1] = imageutil.ClampUint8(float64(src.Pix[si+1]))
					out.Pix[di+2] = imageutil.ClampUint8(float64(src.Pix[si+2]))
					out.Pix[di+3] = 0xff
				}
			}
		}(startY, endY)
	}
	wg.Wait()
	return out
}

// transformGrid multiplies h against the homogeneous coordinates of a
// width x height pixel grid with the given origin. The result is 3x(W·H) in
// raster order; callers divide by row 2 per column.
func transformGrid(h geometry.Homography, originX, originY, width, height int) *mat.Dense {
	n := width * height
	coords := mat.NewDense(3, n, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := y*width + x
			coords.Set(0, c, float64(originX+x))
			coords.Set(1, c, float64(originY+y))
			coords.Set(2, c, 1)
		}
	}

	hm := mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})

	var out mat.Dense
	out.Mul(hm, coords)
	return &out
}
