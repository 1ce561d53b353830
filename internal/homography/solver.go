package homography

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"pano-stitcher/pkg/geometry"
)

// rankTol is the relative singular-value cutoff for rank estimation of the
// DLT coefficient matrix. A correspondence set whose 8th singular value
// falls below rankTol times the largest is collinear or otherwise
// degenerate: the null space has dimension > 1 and no unique homography
// exists.
const rankTol = 1e-9

// Solve computes the homography mapping source points to destination points
// by direct linear transformation. Each correspondence (x,y) -> (x',y')
// contributes two rows to a 2Nx9 coefficient matrix A such that A·h = 0 for
// the flattened matrix h; the solution is the right singular vector of the
// smallest singular value.
//
// With exactly 4 non-collinear correspondences the fit is exact; with more
// it minimizes the algebraic reprojection error in the least-squares sense.
// Returns ErrDegenerateInput for fewer than 4 correspondences or a
// rank-deficient system.
func Solve(corrs []Correspondence) (geometry.Homography, error) {
	n := len(corrs)
	if n < MinSampleSize {
		return geometry.Homography{}, fmt.Errorf("need at least %d correspondences, got %d: %w",
			MinSampleSize, n, ErrDegenerateInput)
	}

	a := mat.NewDense(2*n, 9, nil)
	for i, c := range corrs {
		x, y := c.Src.X, c.Src.Y
		xp, yp := c.Dst.X, c.Dst.Y
		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, x * xp, y * xp, xp})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, x * yp, y * yp, yp})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return geometry.Homography{}, fmt.Errorf("svd factorization failed: %w", ErrDegenerateInput)
	}

	// Rank check: the system must determine the homography up to one free
	// scale, i.e. rank 8. min(2N, 9) >= 8 always holds for N >= 4.
	values := svd.Values(nil)
	if values[7] < rankTol*values[0] {
		return geometry.Homography{}, fmt.Errorf("rank-deficient system (collinear points?): %w",
			ErrDegenerateInput)
	}

	// The null-space solution is the last column of V.
	var v mat.Dense
	svd.VTo(&v)
	var h geometry.Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h[i][j] = v.At(3*i+j, 8)
		}
	}

	h = h.Normalized()
	if _, ok := h.Inverse(); !ok {
		return geometry.Homography{}, fmt.Errorf("non-invertible homography: %w", ErrDegenerateInput)
	}
	return h, nil
}
