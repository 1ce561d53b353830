package homography

import (
	"fmt"
	"math/rand"

	"pano-stitcher/pkg/geometry"
)

// Estimator fits a homography to a correspondence set while rejecting
// outlier matches via RANSAC. Each Estimate call re-seeds its random source
// from Config.RandomSeed, so identical inputs and seeds produce identical
// results.
type Estimator struct {
	cfg Config
}

// NewEstimator validates the configuration and returns an Estimator.
// A zero MinInlierCount defaults to SampleSize — fewer inliers than the
// minimal sample cannot support a refit.
func NewEstimator(cfg Config) (*Estimator, error) {
	if cfg.SampleSize < MinSampleSize {
		return nil, fmt.Errorf("sample size %d below minimum %d", cfg.SampleSize, MinSampleSize)
	}
	if cfg.DistanceThreshold <= 0 {
		return nil, fmt.Errorf("distance threshold must be positive, got %g", cfg.DistanceThreshold)
	}
	if cfg.NumIterations <= 0 {
		return nil, fmt.Errorf("iteration count must be positive, got %d", cfg.NumIterations)
	}
	if cfg.MinInlierCount == 0 {
		cfg.MinInlierCount = cfg.SampleSize
	}
	return &Estimator{cfg: cfg}, nil
}

// Estimate runs the fixed iteration budget and returns the homography with
// the largest inlier consensus, refit on its full inlier set, together with
// the inlier mask of the winning candidate.
//
// Degenerate minimal samples are skipped, not counted as failures. On equal
// inlier counts the earliest candidate wins, so results are deterministic
// for a given seed. If the best consensus is below MinInlierCount the call
// fails with ErrInsufficientConsensus; no partial result is returned.
func (e *Estimator) Estimate(corrs []Correspondence) (geometry.Homography, []bool, error) {
	n := len(corrs)
	if n < e.cfg.SampleSize {
		return geometry.Homography{}, nil, fmt.Errorf("have %d correspondences, need %d: %w",
			n, e.cfg.SampleSize, ErrDegenerateInput)
	}

	rng := rand.New(rand.NewSource(e.cfg.RandomSeed))
	sample := make([]Correspondence, e.cfg.SampleSize)

	var best geometry.Homography
	var bestMask []bool
	bestCount := 0

	for iter := 0; iter < e.cfg.NumIterations; iter++ {
		for i, idx := range rng.Perm(n)[:e.cfg.SampleSize] {
			sample[i] = corrs[idx]
		}

		candidate, err := Solve(sample)
		if err != nil {
			continue
		}

		errs := ReprojectionErrors(candidate, corrs)
		mask := make([]bool, n)
		count := 0
		for i, d := range errs {
			if d < e.cfg.DistanceThreshold {
				mask[i] = true
				count++
			}
		}

		if count > bestCount {
			best = candidate
			bestMask = mask
			bestCount = count
		}
	}

	if bestCount < e.cfg.MinInlierCount {
		return geometry.Homography{}, nil, fmt.Errorf("best consensus %d below minimum %d: %w",
			bestCount, e.cfg.MinInlierCount, ErrInsufficientConsensus)
	}

	// Refit on the full inlier set for geometric accuracy beyond the
	// minimal-sample fit. If the inlier set itself is degenerate, keep the
	// minimal-sample candidate.
	inlierCorrs := make([]Correspondence, 0, bestCount)
	for i, in := range bestMask {
		if in {
			inlierCorrs = append(inlierCorrs, corrs[i])
		}
	}
	if refit, err := Solve(inlierCorrs); err == nil {
		best = refit
	}

	return best, bestMask, nil
}
