package homography

import "errors"

// Sentinel errors for the estimation pipeline. Callers classify failures
// with errors.Is; wrapped variants carry call-site context.
var (
	// ErrDegenerateInput indicates too few or collinear correspondences —
	// the linear system is rank-deficient and no unique homography exists.
	ErrDegenerateInput = errors.New("degenerate correspondence set")

	// ErrDegenerateProjection indicates a point whose homogeneous w
	// component is (near) zero: the point maps to infinity.
	ErrDegenerateProjection = errors.New("degenerate projection: point maps to infinity")

	// ErrInsufficientPoints indicates a quality sample larger than the
	// available inlier count.
	ErrInsufficientPoints = errors.New("not enough points for requested sample")

	// ErrInsufficientConsensus indicates RANSAC found no candidate meeting
	// the minimum inlier count.
	ErrInsufficientConsensus = errors.New("insufficient inlier consensus")
)
