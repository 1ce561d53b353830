package geometry

import "math"

// wEpsilon is the homogeneous-coordinate cutoff below which a projected
// point is considered to be at infinity.
const wEpsilon = 1e-12

// Homography represents a 3x3 projective transformation matrix, defined up
// to nonzero scale. It maps homogeneous coordinates [x, y, 1] to
// [x', y', w']; the final pixel coordinates are (x'/w', y'/w').
type Homography [3][3]float64

// Identity returns the identity homography.
func Identity() Homography {
	return Homography{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Translation returns a pure-translation homography.
func Translation(tx, ty float64) Homography {
	return Homography{
		{1, 0, tx},
		{0, 1, ty},
		{0, 0, 1},
	}
}

// Apply applies the homography to a point via homogeneous division.
// The second return value is false when the point maps to infinity
// (homogeneous w below epsilon); the returned point is then meaningless.
func (h Homography) Apply(p Point2D) (Point2D, bool) {
	w := h[2][0]*p.X + h[2][1]*p.Y + h[2][2]
	if math.Abs(w) < wEpsilon {
		return Point2D{}, false
	}
	return Point2D{
		X: (h[0][0]*p.X + h[0][1]*p.Y + h[0][2]) / w,
		Y: (h[1][0]*p.X + h[1][1]*p.Y + h[1][2]) / w,
	}, true
}

// Compose returns this homography composed with another (this * other),
// i.e. the transform that applies other first, then this.
func (h Homography) Compose(other Homography) Homography {
	var out Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += h[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Det returns the determinant of the matrix.
func (h Homography) Det() float64 {
	return h[0][0]*(h[1][1]*h[2][2]-h[1][2]*h[2][1]) -
		h[0][1]*(h[1][0]*h[2][2]-h[1][2]*h[2][0]) +
		h[0][2]*(h[1][0]*h[2][1]-h[1][1]*h[2][0])
}

// Inverse returns the inverse homography, if it exists.
func (h Homography) Inverse() (Homography, bool) {
	det := h.Det()
	if math.Abs(det) < 1e-12 {
		return Homography{}, false
	}
	invDet := 1.0 / det
	var out Homography
	out[0][0] = (h[1][1]*h[2][2] - h[1][2]*h[2][1]) * invDet
	out[0][1] = (h[0][2]*h[2][1] - h[0][1]*h[2][2]) * invDet
	out[0][2] = (h[0][1]*h[1][2] - h[0][2]*h[1][1]) * invDet
	out[1][0] = (h[1][2]*h[2][0] - h[1][0]*h[2][2]) * invDet
	out[1][1] = (h[0][0]*h[2][2] - h[0][2]*h[2][0]) * invDet
	out[1][2] = (h[0][2]*h[1][0] - h[0][0]*h[1][2]) * invDet
	out[2][0] = (h[1][0]*h[2][1] - h[1][1]*h[2][0]) * invDet
	out[2][1] = (h[0][1]*h[2][0] - h[0][0]*h[2][1]) * invDet
	out[2][2] = (h[0][0]*h[1][1] - h[0][1]*h[1][0]) * invDet
	return out, true
}

// Normalized returns the homography scaled so the bottom-right entry is 1.
// When that entry is (near) zero the matrix is instead scaled to unit
// Frobenius norm with the first nonzero entry positive, so repeated solves
// of the same system compare equal.
func (h Homography) Normalized() Homography {
	if math.Abs(h[2][2]) > 1e-9 {
		s := 1.0 / h[2][2]
		return h.scaled(s)
	}
	var norm float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			norm += h[i][j] * h[i][j]
		}
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return h
	}
	s := 1.0 / norm
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if h[i][j] != 0 {
				if h[i][j] < 0 {
					s = -s
				}
				return h.scaled(s)
			}
		}
	}
	return h
}

func (h Homography) scaled(s float64) Homography {
	var out Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = h[i][j] * s
		}
	}
	return out
}
