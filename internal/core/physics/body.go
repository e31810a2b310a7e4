// Package physics predicts how the ball and cars move through the arena.
//
// All bodies share one motion model: constant acceleration between events,
// with gravity added when the body is affected by it. The integrator (Step)
// and the closed-form arrival predictor (TimeToAnyWall, TimeToHeight) use the
// same kinematics, so stepping a body to a predicted arrival time lands it on
// the boundary.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Gravity is the constant downward acceleration in uu/s².
	Gravity = -650.0
	// BallRadius is the radius of the ball sphere in uu.
	BallRadius = 92.2
)

// RigidBody is a sphere approximation of a simulated object. A RigidBody is
// owned by whoever is simulating it; predictions always work on a Clone.
type RigidBody struct {
	Position     mgl64.Vec3 `json:"position" yaml:"position"`
	Velocity     mgl64.Vec3 `json:"velocity" yaml:"velocity"`
	Acceleration mgl64.Vec3 `json:"acceleration" yaml:"acceleration"`
	// Rotation is pitch, yaw, roll in radians.
	Rotation          mgl64.Vec3 `json:"rotation" yaml:"rotation"`
	AffectedByGravity bool       `json:"affected_by_gravity" yaml:"affected_by_gravity"`
}

// Clone returns an independent copy of b.
func (b *RigidBody) Clone() *RigidBody {
	c := *b
	return &c
}

// EffectiveAcceleration is the body's own acceleration plus gravity if enabled.
func (b *RigidBody) EffectiveAcceleration() mgl64.Vec3 {
	if b.AffectedByGravity {
		return b.Acceleration.Add(mgl64.Vec3{0, 0, Gravity})
	}
	return b.Acceleration
}

// Yaw is the heading around the z axis in radians.
func (b *RigidBody) Yaw() float64 { return b.Rotation[1] }

// Step advances b by dt seconds:
//
//	position += velocity*dt + ½*acceleration*dt²
//	velocity += acceleration*dt
//
// A zero dt leaves b untouched. Step mutates b; clone first to keep the original.
func Step(b *RigidBody, dt float64) error {
	if dt < 0 {
		return ErrNegativeStep
	}
	if dt == 0 {
		return nil
	}
	integrate(b, dt)
	return nil
}

func integrate(b *RigidBody, dt float64) {
	acc := b.EffectiveAcceleration()
	b.Position = b.Position.Add(b.Velocity.Mul(dt)).Add(acc.Mul(0.5 * dt * dt))
	b.Velocity = b.Velocity.Add(acc.Mul(dt))
}
