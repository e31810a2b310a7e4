package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxFloorBounces caps how many times a body may bounce on the floor in one
// prediction before it is forced to roll.
const maxFloorBounces = 64

// Predictor samples the future path of a sphere inside an Arena.
type Predictor struct {
	Arena  Arena
	Radius float64
}

// NewPredictor returns a Predictor for a sphere of the given radius.
func NewPredictor(arena Arena, radius float64) *Predictor {
	return &Predictor{Arena: arena, Radius: radius}
}

// DefaultPredictor predicts the ball in the default arena.
func DefaultPredictor() *Predictor {
	return NewPredictor(DefaultArena(), BallRadius)
}

// Predict samples the motion of body for duration seconds every step seconds,
// resolving wall, floor and ceiling bounces exactly at their arrival times.
// body is never modified.
//
// A body without velocity yields a single sample at its position. Otherwise
// the first sample is at t=0, timestamps never decrease and the last sample is
// at duration.
func (p *Predictor) Predict(body *RigidBody, duration, step float64) (Path, error) {
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return Path{}, ErrInvalidDuration
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return Path{}, ErrInvalidStep
	}

	b := body.Clone()
	path := NewStaticPath(b.Position)
	if b.Velocity == (mgl64.Vec3{}) {
		return path, nil
	}
	p.run(b, duration, step, &path)
	return path, nil
}

// Advance returns the state of body after dt seconds, bouncing it off the
// arena like Predict does. body is never modified.
func (p *Predictor) Advance(body *RigidBody, dt float64) (*RigidBody, error) {
	if dt < 0 || math.IsNaN(dt) {
		return nil, ErrNegativeStep
	}
	b := body.Clone()
	if dt == 0 {
		return b, nil
	}
	var path Path
	p.run(b, dt, dt, &path)
	// Rolling and pinning only switch acceleration off for the duration of the run.
	b.AffectedByGravity = body.AffectedByGravity
	b.Acceleration = body.Acceleration
	return b, nil
}

// run moves b forward by duration, appending samples and bounces to path.
func (p *Predictor) run(b *RigidBody, duration, step float64, path *Path) {
	var (
		timeSpent    float64
		rolling      bool
		floorBounces int
		inf          = math.Inf(1)
	)
	for {
		timeLeft := duration - timeSpent
		if timeLeft <= 0 {
			return
		}

		side, back := p.Arena.wallTimes(b, p.Radius)
		wall := math.Min(side, back)
		ground, ceiling := inf, inf
		if !rolling {
			ground = p.Arena.TimeToFloor(b, p.Radius)
			ceiling = p.Arena.TimeToCeiling(b, p.Radius)
		}

		// Zero-time contacts are resolved in place.
		if ground == 0 {
			if b.Velocity[2] < 0 {
				floorBounces++
				p.bounceFloor(b, path, timeSpent, floorBounces >= maxFloorBounces)
				continue
			}
			rolling = true
			b.AffectedByGravity = false
			b.Velocity[2] = 0
			b.Acceleration[2] = 0
			b.Position[2] = p.Radius
			continue
		}
		if ceiling == 0 {
			p.bounceCeiling(b, path, timeSpent)
			continue
		}
		if wall == 0 {
			p.bounceWalls(b, path, timeSpent, side, back, 0)
			continue
		}

		next := math.Min(wall, math.Min(ground, ceiling))
		if timeLeft < next {
			extend(b, path, timeSpent, timeLeft, step)
			return
		}

		extend(b, path, timeSpent, next, step)
		timeSpent += next

		switch {
		case wall <= ground && wall <= ceiling:
			p.bounceWalls(b, path, timeSpent, side, back, next)
		case ground <= ceiling:
			floorBounces++
			p.bounceFloor(b, path, timeSpent, floorBounces >= maxFloorBounces)
		default:
			p.bounceCeiling(b, path, timeSpent)
		}
	}
}

// Landing returns where body next touches the floor within horizon seconds.
// A body already resting on the floor lands where it is.
func (p *Predictor) Landing(body *RigidBody, horizon float64) (mgl64.Vec3, bool) {
	if p.resting(body) {
		return body.Position, true
	}
	if body.Velocity == (mgl64.Vec3{}) {
		// Predict does not move a body at rest, but it can still be falling.
		if t := p.Arena.TimeToFloor(body, p.Radius); t <= horizon {
			b := body.Clone()
			integrate(b, t)
			return b.Position, true
		}
		return mgl64.Vec3{}, false
	}
	path, err := p.Predict(body, horizon, math.Max(horizon, 1e-3))
	if err != nil {
		return mgl64.Vec3{}, false
	}
	if e, ok := path.FirstEvent(EventFloor); ok {
		return e.Position, true
	}
	return mgl64.Vec3{}, false
}

func (p *Predictor) resting(b *RigidBody) bool {
	return math.Abs(b.Position[2]-p.Radius) <= contactEpsilon && b.Velocity[2] == 0 &&
		b.EffectiveAcceleration()[2] <= 0
}

// bounceWalls reflects b off every wall it reaches at hit. A body that would
// come straight back to a wall it is accelerated into stays on it.
func (p *Predictor) bounceWalls(b *RigidBody, path *Path, at, side, back, hit float64) {
	before := b.Velocity
	tol := rootEpsilon * math.Max(1, hit)
	limits := [2]float64{p.Arena.HalfWidth - p.Radius, p.Arena.HalfLength - p.Radius}
	for axis, t := range [2]float64{side, back} {
		if math.Abs(t-hit) > tol {
			continue
		}
		b.Position[axis] = math.Copysign(limits[axis], b.Position[axis])
		b.Velocity[axis] = -b.Velocity[axis] * p.Arena.WallBounciness
		if pinned(b.Velocity[axis], b.Acceleration[axis], math.Copysign(1, b.Position[axis])) {
			b.Velocity[axis] = 0
			b.Acceleration[axis] = 0
		}
	}
	if b.Velocity == before {
		return
	}
	path.events = append(path.events, Event{
		Kind: EventWall, Time: at, Position: b.Position, Before: before, After: b.Velocity,
	})
}

func (p *Predictor) bounceFloor(b *RigidBody, path *Path, at float64, settle bool) {
	before := b.Velocity
	b.Position[2] = p.Radius
	vz := -b.Velocity[2] * p.Arena.GroundBounciness
	if settle || math.Abs(vz) < p.Arena.SettleSpeed || pinned(vz, b.EffectiveAcceleration()[2], -1) {
		vz = 0
	}
	b.Velocity[2] = vz
	path.events = append(path.events, Event{
		Kind: EventFloor, Time: at, Position: b.Position, Before: before, After: b.Velocity,
	})
}

func (p *Predictor) bounceCeiling(b *RigidBody, path *Path, at float64) {
	before := b.Velocity
	b.Position[2] = p.Arena.Height - p.Radius
	b.Velocity[2] = -b.Velocity[2] * p.Arena.GroundBounciness
	if pinned(b.Velocity[2], b.EffectiveAcceleration()[2], 1) {
		b.Velocity[2] = 0
		b.Acceleration[2] = 0
		b.AffectedByGravity = false
	}
	if b.Velocity == before {
		return
	}
	path.events = append(path.events, Event{
		Kind: EventCeiling, Time: at, Position: b.Position, Before: before, After: b.Velocity,
	})
}

// extend integrates b over span seconds in whole steps plus one partial step,
// appending a sample after each. The last sample lands exactly at start+span.
func extend(b *RigidBody, path *Path, start, span, step float64) {
	if span <= 0 {
		return
	}
	n := int(math.Floor(span / step))
	if float64(n)*step > span {
		n--
	}
	done := 0.0
	for i := 1; i <= n; i++ {
		t := float64(i) * step
		integrate(b, t-done)
		done = t
		path.add(start+t, b.Position)
	}
	if rest := span - done; rest > 0 {
		integrate(b, rest)
		path.add(start+span, b.Position)
	}
}
