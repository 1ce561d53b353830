// Package homography estimates planar projective transformations from point
// correspondences: a direct linear (SVD null-space) solver, reprojection
// quality metrics, and a RANSAC estimator that rejects outlier matches.
package homography

import (
	"pano-stitcher/pkg/geometry"
)

// Correspondence is a matched pair of points, one per image, believed to
// depict the same scene location.
type Correspondence struct {
	Src geometry.Point2D `json:"src"`
	Dst geometry.Point2D `json:"dst"`
}

// MinSampleSize is the number of correspondences needed to determine a
// homography.
const MinSampleSize = 4

// Config configures the RANSAC estimator.
type Config struct {
	SampleSize        int     // correspondences per minimal sample (>= 4)
	DistanceThreshold float64 // pixel reprojection cutoff for inliers
	NumIterations     int     // fixed iteration budget
	RandomSeed        int64   // seed for the sampling sequence
	MinInlierCount    int     // minimum acceptable consensus size (0 = SampleSize)
}

// DefaultConfig returns the default estimator configuration.
func DefaultConfig() Config {
	return Config{
		SampleSize:        MinSampleSize,
		DistanceThreshold: 3.0,
		NumIterations:     2000,
		RandomSeed:        1,
	}
}
