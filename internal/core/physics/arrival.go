package physics

import (
	"math"
)

const (
	// rootEpsilon discards roots at or next to t=0 so a body sitting on the
	// boundary it just bounced off does not collide with it again.
	rootEpsilon = 1e-9
	// contactEpsilon is how close to a height a body must be to count as touching it.
	contactEpsilon = 1e-6
	// pinTime is the return time at or below which a body bouncing off a plane
	// it is accelerated into stays on that plane.
	pinTime = 1e-6
)

// Arena describes the axis-aligned box the ball lives in. The origin is the
// centre of the floor. Side walls are at x = ±HalfWidth, back walls at
// y = ±HalfLength, the ceiling at z = Height.
type Arena struct {
	HalfWidth  float64 `json:"half_width" yaml:"half_width" toml:"half-width"`
	HalfLength float64 `json:"half_length" yaml:"half_length" toml:"half-length"`
	Height     float64 `json:"height" yaml:"height" toml:"height"`

	// Bounciness is the fraction of the colliding velocity component kept
	// after a bounce. The component is inverted and scaled by it.
	WallBounciness   float64 `json:"wall_bounciness" yaml:"wall_bounciness" toml:"wall-bounciness"`
	GroundBounciness float64 `json:"ground_bounciness" yaml:"ground_bounciness" toml:"ground-bounciness"`

	// SettleSpeed is the vertical speed below which a floor bounce stops the
	// body bouncing and it starts rolling. With zero the body still rolls once
	// its bounces become too short to resolve.
	SettleSpeed float64 `json:"settle_speed" yaml:"settle_speed" toml:"settle-speed"`
}

// DefaultArena is the standard soccar field.
func DefaultArena() Arena {
	return Arena{
		HalfWidth:        4096,
		HalfLength:       5120,
		Height:           2044,
		WallBounciness:   0.6,
		GroundBounciness: 0.6,
		SettleSpeed:      20,
	}
}

// TimeToAnyWall returns the time until a sphere of the given radius touches
// any of the four walls, or +Inf if it never does under its current motion.
// It is 0 for a sphere touching a wall and moving or accelerating into it.
func (a Arena) TimeToAnyWall(b *RigidBody, radius float64) float64 {
	side, back := a.wallTimes(b, radius)
	return math.Min(side, back)
}

// WillHitSideWallNext reports whether the next wall contact is with a side
// wall (x axis) rather than a back wall (y axis). Ties go to the side wall.
func (a Arena) WillHitSideWallNext(b *RigidBody, radius float64) bool {
	side, back := a.wallTimes(b, radius)
	return side <= back
}

func (a Arena) wallTimes(b *RigidBody, radius float64) (side, back float64) {
	acc := b.EffectiveAcceleration()
	side = timeToPlanes(b.Position[0], b.Velocity[0], acc[0], a.HalfWidth-radius)
	back = timeToPlanes(b.Position[1], b.Velocity[1], acc[1], a.HalfLength-radius)
	return side, back
}

// TimeToHeight returns the time until the body's z coordinate reaches height.
//
// It returns exactly 0 when the body is already at that height and either
// resting on it (no vertical velocity, not accelerating upwards) or moving
// down through it. +Inf means the height is never reached.
func TimeToHeight(b *RigidBody, height float64) float64 {
	az := b.EffectiveAcceleration()[2]
	dz := b.Position[2] - height
	vz := b.Velocity[2]
	if math.Abs(dz) <= contactEpsilon {
		if vz < 0 || (vz == 0 && az <= 0) {
			return 0
		}
	}
	return earliestRoot(0.5*az, vz, dz)
}

// TimeToFloor is TimeToHeight for a sphere of the given radius touching the floor.
func (a Arena) TimeToFloor(b *RigidBody, radius float64) float64 {
	return TimeToHeight(b, radius)
}

// TimeToCeiling returns the time until a sphere touches the ceiling. It is 0
// when the sphere is touching it and still moving or accelerating up.
func (a Arena) TimeToCeiling(b *RigidBody, radius float64) float64 {
	top := a.Height - radius
	az := b.EffectiveAcceleration()[2]
	dz := b.Position[2] - top
	vz := b.Velocity[2]
	if math.Abs(dz) <= contactEpsilon && (vz > 0 || (vz == 0 && az > 0)) {
		return 0
	}
	return earliestRoot(0.5*az, vz, dz)
}

// timeToPlanes returns when a coordinate moving with velocity v and
// acceleration acc first reaches +limit or -limit. A coordinate on a plane
// and moving or accelerating through it reaches it at 0.
func timeToPlanes(p, v, acc, limit float64) float64 {
	switch {
	case math.Abs(p-limit) <= contactEpsilon && (v > 0 || (v == 0 && acc > 0)):
		return 0
	case math.Abs(p+limit) <= contactEpsilon && (v < 0 || (v == 0 && acc < 0)):
		return 0
	}
	pos := earliestRoot(0.5*acc, v, p-limit)
	neg := earliestRoot(0.5*acc, v, p+limit)
	return math.Min(pos, neg)
}

// pinned reports whether a body leaving a plane with velocity v comes back
// to it within pinTime under acc. out is the sign of the plane's outward normal.
func pinned(v, acc, out float64) bool {
	return acc*out > 0 && 2*math.Abs(v) <= pinTime*math.Abs(acc)
}

// earliestRoot returns the smallest root of a*t² + b*t + c = 0 that is
// strictly greater than rootEpsilon, or +Inf.
func earliestRoot(a, b, c float64) float64 {
	inf := math.Inf(1)
	if a == 0 {
		if b == 0 {
			return inf
		}
		if t := -c / b; t > rootEpsilon {
			return t
		}
		return inf
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return inf
	}
	sq := math.Sqrt(disc)

	// Stable form: avoid subtracting nearly equal numbers.
	var q float64
	if b >= 0 {
		q = -0.5 * (b + sq)
	} else {
		q = -0.5 * (b - sq)
	}
	t1 := q / a
	t2 := inf
	if q != 0 {
		t2 = c / q
	}

	best := inf
	if t1 > rootEpsilon {
		best = t1
	}
	if t2 > rootEpsilon && t2 < best {
		best = t2
	}
	return best
}
