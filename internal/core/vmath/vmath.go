// Package vmath holds the small amount of vector math the bot needs on top of
// mgl64. Vectors are mgl64 value types; everything here is a pure function.
package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unit directions in the arena frame. X points to the right side wall, Y to
// the orange back wall, Z up.
var (
	Right    = mgl64.Vec2{1, 0}
	Forward  = mgl64.Vec2{0, 1}
	Backward = mgl64.Vec2{0, -1}
	Left     = mgl64.Vec2{-1, 0}
	Up       = mgl64.Vec3{0, 0, 1}
)

// Normalize returns v scaled to unit length, or the zero vector for a zero input.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Normalize2 is Normalize for 2-D vectors.
func Normalize2(v mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec2{}
	}
	return v.Mul(1 / l)
}

// IsZero reports whether every component is exactly zero.
func IsZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Flat drops the z component.
func Flat(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v[0], v[1]}
}

// Lift adds a z component to a 2-D vector.
func Lift(v mgl64.Vec2, z float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], z}
}

// Distance is the euclidean distance between two points.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// Angle returns the unsigned angle between a and b in radians. Zero vectors
// yield 0.
func Angle(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	return math.Acos(mgl64.Clamp(a.Dot(b)/(la*lb), -1, 1))
}

// Angle2 returns the unsigned angle between two 2-D vectors in radians.
func Angle2(a, b mgl64.Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	return math.Acos(mgl64.Clamp(a.Dot(b)/(la*lb), -1, 1))
}

// WrapAngle maps an angle in radians onto (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// HeadingVector returns the horizontal unit vector for a yaw in radians.
func HeadingVector(yaw float64) mgl64.Vec2 {
	return mgl64.Vec2{math.Cos(yaw), math.Sin(yaw)}
}

// AngleToPoint returns the signed angle a car at pos with the given yaw must
// turn to face point. Positive means the point is to the left.
func AngleToPoint(pos mgl64.Vec2, yaw float64, point mgl64.Vec2) float64 {
	d := point.Sub(pos)
	if d[0] == 0 && d[1] == 0 {
		return 0
	}
	return WrapAngle(math.Atan2(d[1], d[0]) - yaw)
}

// SmoothSteer converts a turn angle into a steering value in [-1, 1]. The
// logistic curve saturates for large angles and stays soft near zero so the
// car does not wobble around its target.
func SmoothSteer(angle float64) float64 {
	return 2/(1+math.Exp(-5*angle)) - 1
}

// Clamp1 clamps v to [-1, 1].
func Clamp1(v float64) float64 {
	return mgl64.Clamp(v, -1, 1)
}
