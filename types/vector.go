package types

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Values smaller than this are treated as zero when comparing or normalizing.
const floatCmpEpsilon = 1e-9

type Vec3 f64.Vec3
type Mat4 f64.Mat4

// Define a 3 component vector.
func XYZ(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Get 3 component vector length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize 3 component vector. A zero-length vector normalizes to zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < floatCmpEpsilon {
		return Vec3{}
	}
	return v.Mul(1.0 / l)
}

// Calculate dot product of 2 vectors
func (v Vec3) Dot(v2 Vec3) float64 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Check whether two vectors are equal within tolerance eps.
func (v Vec3) ApproxEqual(v2 Vec3, eps float64) bool {
	return math.Abs(v[0]-v2[0]) <= eps &&
		math.Abs(v[1]-v2[1]) <= eps &&
		math.Abs(v[2]-v2[2]) <= eps
}

// Format the vector as a comma separated triplet ("x, y, z").
func (v Vec3) String() string {
	return fmt.Sprintf("%g, %g, %g", v[0], v[1], v[2])
}

// Create a 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Build a camera-to-world look-at transform. The matrix is row-major; its
// columns hold the camera right, up and forward axes followed by the eye
// position, matching the convention of left-handed renderer sensors where
// the camera looks down +Z.
//
// The second return value is false when the transform is degenerate, i.e.
// eye and target coincide or the view direction is parallel to up.
func LookAt(eye, target, up Vec3) (Mat4, bool) {
	dir := target.Sub(eye)
	if dir.Len() < floatCmpEpsilon {
		return Ident4(), false
	}
	dir = dir.Normalize()

	left := up.Normalize().Cross(dir)
	if left.Len() < floatCmpEpsilon {
		return Ident4(), false
	}
	left = left.Normalize()
	newUp := dir.Cross(left)

	return Mat4{
		left[0], newUp[0], dir[0], eye[0],
		left[1], newUp[1], dir[1], eye[1],
		left[2], newUp[2], dir[2], eye[2],
		0, 0, 0, 1,
	}, true
}

// Multiply a 4x4 matrix with a point (w = 1) and return the transformed point.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p[0] + m[1]*p[1] + m[2]*p[2] + m[3],
		m[4]*p[0] + m[5]*p[1] + m[6]*p[2] + m[7],
		m[8]*p[0] + m[9]*p[1] + m[10]*p[2] + m[11],
	}
}

// Multiply a 4x4 matrix with a direction (w = 0).
func (m Mat4) MulDir(d Vec3) Vec3 {
	return Vec3{
		m[0]*d[0] + m[1]*d[1] + m[2]*d[2],
		m[4]*d[0] + m[5]*d[1] + m[6]*d[2],
		m[8]*d[0] + m[9]*d[1] + m[10]*d[2],
	}
}
