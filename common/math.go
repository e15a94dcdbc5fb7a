package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the three component float vector used for camera parameters and shader uniforms.
type Vec3 = mgl32.Vec3

var (
	// Origin is the default camera position.
	Origin = Vec3{0, 0, 0}

	// Forward is the default camera direction, looking down the negative Z axis.
	Forward = Vec3{0, 0, -1}
)

// IsFinite reports whether every component of v is a finite number (neither NaN nor ±Inf).
//
// Parameters:
//   - v: the vector to check
//
// Returns:
//   - bool: true if all three components are finite
func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// NormalizeOr returns v scaled to unit length, or fallback when v is too short to normalize
// or is not finite.
//
// Parameters:
//   - v: the vector to normalize
//   - fallback: the vector returned when v cannot be normalized
//
// Returns:
//   - Vec3: the unit-length vector or the fallback
func NormalizeOr(v, fallback Vec3) Vec3 {
	if !IsFinite(v) {
		return fallback
	}
	l := v.Len()
	if l < 1e-8 {
		return fallback
	}
	return v.Mul(1 / l)
}

// Direction returns the unit vector pointing from one point toward another.
// When the points coincide the default Forward direction is returned.
//
// Parameters:
//   - from: the start point
//   - to: the end point
//
// Returns:
//   - Vec3: normalized direction from -> to
func Direction(from, to Vec3) Vec3 {
	return NormalizeOr(to.Sub(from), Forward)
}

// Clamp restricts v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
