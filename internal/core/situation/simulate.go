package situation

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/vmath"
)

// Car handling constants in uu/s and uu/s².
const (
	CarGroundOffset   = 17.01
	MaxThrottleSpeed  = 1410.0
	MaxBoostSpeed     = 2300.0
	BoostAcceleration = 991.666
	CoastDeceleration = 525.0
	BoostUsage        = 33.3
	// TurnAccelerationFactor scales acceleration while steering.
	TurnAccelerationFactor = 0.8
)

var ErrNegativeStep = errors.New("situation: simulation step must not be negative")

// TurnRate is the yaw rate in rad/s of a grounded car at full steer.
func TurnRate(c *Car) float64 {
	return 1.325680896 + 0.0002869694124*c.Body.Velocity.Len()
}

// Simulate returns the situation dt seconds later, assuming my car applies out
// and the enemy car coasts. The ball is moved with predictor so it bounces
// off the arena. s is not modified.
func Simulate(s *Situation, dt float64, out ControlOutput, predictor *physics.Predictor) (*Situation, error) {
	if dt < 0 {
		return nil, ErrNegativeStep
	}
	next := s.Clone()

	ball, err := predictor.Advance(&s.Ball, dt)
	if err != nil {
		return nil, fmt.Errorf("advance ball: %w", err)
	}
	next.Ball = *ball

	driveCar(&next.Me, out.Clamped(), dt)
	stepCar(&next.Me, dt)
	stepCar(&next.Enemy, dt)

	for i := range next.Pads {
		pad := &next.Pads[i]
		pickup(pad, &next.Me)
		pickup(pad, &next.Enemy)
		pad.RespawnLeft = max(pad.RespawnLeft-dt, 0)
	}

	next.GameTime += dt
	next.Kickoff = s.Kickoff && vmath.IsZero(next.Ball.Velocity)
	return next, nil
}

// driveCar turns the car and sets its acceleration from the controls. Cars in
// the air keep their current motion.
func driveCar(c *Car, out ControlOutput, dt float64) {
	if c.MidAir {
		return
	}

	c.Body.Rotation[1] = vmath.WrapAngle(c.Body.Rotation[1] + TurnRate(c)*out.Steer*dt)
	front := c.Front()

	var acc mgl64.Vec3
	switch {
	case out.Boost && c.Boost > 0:
		acc = front.Mul(BoostAcceleration)
		c.Boost = max(c.Boost-BoostUsage*dt, 0)
	case out.Throttle != 0:
		acc = front.Mul(throttleAcceleration(c, out.Throttle))
	default:
		speed := c.Body.Velocity.Len()
		if speed <= CoastDeceleration*dt {
			c.Body.Velocity = mgl64.Vec3{}
		} else {
			acc = vmath.Normalize(c.Body.Velocity).Mul(-CoastDeceleration)
		}
	}
	if out.Steer != 0 {
		acc = acc.Mul(TurnAccelerationFactor)
	}
	c.Body.Acceleration = acc
}

// throttleAcceleration pushes the forward speed towards throttle times the
// top throttle speed.
func throttleAcceleration(c *Car, throttle float64) float64 {
	forward := c.Body.Velocity.Dot(c.Front())
	return MaxThrottleSpeed*throttle - forward
}

// stepCar integrates the car and keeps it on top of the floor.
func stepCar(c *Car, dt float64) {
	c.Body.AffectedByGravity = c.MidAir
	_ = physics.Step(&c.Body, dt)

	if v := c.Body.Velocity.Len(); v > MaxBoostSpeed {
		c.Body.Velocity = c.Body.Velocity.Mul(MaxBoostSpeed / v)
	}
	if c.Body.Position[2] < CarGroundOffset {
		c.Body.Position[2] = CarGroundOffset
		c.Body.Velocity[2] = 0
		c.MidAir = false
	}
}

func pickup(pad *BoostPad, c *Car) {
	if !pad.Active() {
		return
	}
	if vmath.Distance(pad.Position, c.Body.Position) < PadRadius {
		pad.RespawnLeft = pad.RespawnTime()
		c.Boost = min(c.Boost+pad.Amount(), MaxBoost)
	}
}
