package homography

import (
	"fmt"
	"math"
	"math/rand"

	"pano-stitcher/pkg/geometry"
)

// Project applies h to a single point via homogeneous transform.
// Returns ErrDegenerateProjection when the homogeneous w component is
// (near) zero.
func Project(h geometry.Homography, p geometry.Point2D) (geometry.Point2D, error) {
	out, ok := h.Apply(p)
	if !ok {
		return geometry.Point2D{}, fmt.Errorf("point (%g, %g): %w", p.X, p.Y, ErrDegenerateProjection)
	}
	return out, nil
}

// ReprojectionErrors computes, for each correspondence, the Euclidean
// distance between the projected source point and the actual destination
// point. Points that project to infinity get +Inf — the iteration loop in
// RANSAC must treat them as outliers, not abort the whole evaluation.
func ReprojectionErrors(h geometry.Homography, corrs []Correspondence) []float64 {
	errs := make([]float64, len(corrs))
	for i, c := range corrs {
		mapped, ok := h.Apply(c.Src)
		if !ok {
			errs[i] = math.Inf(1)
			continue
		}
		errs[i] = mapped.Distance(c.Dst)
	}
	return errs
}

// AggregateMode selects how per-point errors are reduced to one number.
type AggregateMode int

const (
	// AggregateMeanInliers is the mean error over all inliers.
	AggregateMeanInliers AggregateMode = iota
	// AggregateSampledMSE is the mean squared error over a uniformly
	// sampled subset of the inlier errors.
	AggregateSampledMSE
)

// AggregateError reduces per-point reprojection errors to a single metric
// over the inlier subset. sampleSize and rng are only consulted for
// AggregateSampledMSE.
func AggregateError(errs []float64, inliers []bool, mode AggregateMode, sampleSize int, rng *rand.Rand) (float64, error) {
	switch mode {
	case AggregateMeanInliers:
		return MeanInlierError(errs, inliers), nil
	case AggregateSampledMSE:
		return SampledMSE(errs, inliers, sampleSize, rng)
	default:
		return 0, fmt.Errorf("unknown aggregate mode %d", mode)
	}
}

// MeanInlierError returns the mean reprojection error over the inliers.
// With no inliers the error is +Inf.
func MeanInlierError(errs []float64, inliers []bool) float64 {
	var sum float64
	var n int
	for i, e := range errs {
		if inliers[i] {
			sum += e
			n++
		}
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}

// SampledMSE returns the mean squared error over a uniform
// without-replacement sample of n inlier errors. Returns
// ErrInsufficientPoints when n exceeds the inlier count.
func SampledMSE(errs []float64, inliers []bool, n int, rng *rand.Rand) (float64, error) {
	var pool []float64
	for i, e := range errs {
		if inliers[i] {
			pool = append(pool, e)
		}
	}
	if n > len(pool) {
		return 0, fmt.Errorf("sample of %d from %d inliers: %w", n, len(pool), ErrInsufficientPoints)
	}
	var sum float64
	for _, idx := range rng.Perm(len(pool))[:n] {
		sum += pool[idx] * pool[idx]
	}
	return sum / float64(n), nil
}
