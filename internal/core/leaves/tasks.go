package leaves

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
	"github.com/zeusync/arenabot/internal/core/vmath"
)

const (
	// SlideAngle is the turn beyond which a car slides instead of steering.
	SlideAngle = 1.7
	// BoostAngle is the largest turn at which boosting still helps.
	BoostAngle = 0.2

	defaultPrecision = 100.0
)

// Dash timings in seconds from the first tick of the manoeuvre.
const (
	dashJump    = 0.10
	dashRelease = 0.15
	dashFlip    = 0.25
	dashTimeout = 2.0
)

func stateless(fn func(s *situation.Situation) (bt.Status, situation.ControlOutput, error)) bt.TaskFactory {
	task := bt.TaskFunc(fn)
	return func() bt.Task { return task }
}

// drive steers towards point at full throttle.
func drive(s *situation.Situation, point mgl64.Vec3, slide, boost bool) situation.ControlOutput {
	ang := s.Me.AngleTo(point)
	out := situation.ControlOutput{Throttle: 1, Steer: vmath.SmoothSteer(ang)}
	out.Slide = slide && math.Abs(ang) > SlideAngle
	out.Boost = boost && !s.Me.MidAir && math.Abs(ang) < BoostAngle
	return out
}

// TaskGoTowardsPoint <point> [slide] [boost] drives at point. It slides
// through sharp turns and boosts on straights when the flags allow.
func (r Resolver) TaskGoTowardsPoint(args []string) (bt.TaskFactory, error) {
	if err := argCount("TaskGoTowardsPoint", args, 1, 3); err != nil {
		return nil, err
	}
	point, err := r.Vector(args[0])
	if err != nil {
		return nil, err
	}
	var slide, boost bool
	if len(args) > 1 {
		if slide, err = Bool(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) > 2 {
		if boost, err = Bool(args[2]); err != nil {
			return nil, err
		}
	}
	return stateless(func(s *situation.Situation) (bt.Status, situation.ControlOutput, error) {
		return bt.StatusRunning, drive(s, point(s), slide, boost), nil
	}), nil
}

// dashTask jumps and flips forward, then waits to land. Progress is measured
// on the game clock so the manoeuvre survives uneven tick rates.
type dashTask struct {
	started bool
	start   float64
}

func (d *dashTask) Run(s *situation.Situation) (bt.Status, situation.ControlOutput, error) {
	if !d.started || s.GameTime < d.start {
		d.started = true
		d.start = s.GameTime
	}
	elapsed := s.GameTime - d.start
	out := situation.ControlOutput{Throttle: 1}

	switch {
	case elapsed < dashJump:
		out.Jump = true
	case elapsed < dashRelease:
	case elapsed < dashFlip:
		out.Jump = true
		out.Pitch = -1
	case s.Me.MidAir && elapsed < dashTimeout:
	default:
		d.Reset()
		return bt.StatusSuccess, out, nil
	}
	return bt.StatusRunning, out, nil
}

func (d *dashTask) Reset() { *d = dashTask{} }

// TaskDashForward jumps, flips forward and succeeds once the car is back on
// the ground.
func (r Resolver) TaskDashForward(args []string) (bt.TaskFactory, error) {
	if err := argCount("TaskDashForward", args, 0, 0); err != nil {
		return nil, err
	}
	return func() bt.Task { return &dashTask{} }, nil
}

// TaskAdjustAirRotation <point> levels the car in the air and yaws it
// towards point so it lands facing there.
func (r Resolver) TaskAdjustAirRotation(args []string) (bt.TaskFactory, error) {
	if err := argCount("TaskAdjustAirRotation", args, 1, 1); err != nil {
		return nil, err
	}
	point, err := r.Vector(args[0])
	if err != nil {
		return nil, err
	}
	return stateless(func(s *situation.Situation) (bt.Status, situation.ControlOutput, error) {
		rot := s.Me.Body.Rotation
		ang := s.Me.AngleTo(point(s))
		return bt.StatusRunning, situation.ControlOutput{
			Throttle: 1,
			Pitch:    vmath.Clamp1(-vmath.WrapAngle(rot[0])),
			Yaw:      vmath.SmoothSteer(ang),
			Roll:     vmath.Clamp1(-vmath.WrapAngle(rot[2])),
		}, nil
	}), nil
}

// reachSpeed is the speed assumed when estimating when a car gets somewhere.
func reachSpeed(c *situation.Car) float64 {
	return math.Max(c.Body.Velocity.Len(), 800)
}

// intercept is the first predicted ball sample my car can reach in time,
// or the end of the path when none is.
func intercept(s *situation.Situation, path physics.Path) physics.Sample {
	me := vmath.Flat(s.Me.Body.Position)
	speed := reachSpeed(&s.Me)
	hit, ok := path.FirstWhere(func(p physics.Sample) bool {
		return vmath.Flat(p.Position).Sub(me).Len()/speed <= p.Time
	})
	if !ok {
		return path.End()
	}
	return hit
}

// TaskHitTowardsPoint <point> [precision] drives to where the ball can be
// intercepted and strikes it towards point. Precision is the width in
// degrees of the cone the shot must fall in before the car drives through
// the ball; outside it the car lines up behind the ball first.
func (r Resolver) TaskHitTowardsPoint(args []string) (bt.TaskFactory, error) {
	if err := argCount("TaskHitTowardsPoint", args, 1, 2); err != nil {
		return nil, err
	}
	target, err := r.Vector(args[0])
	if err != nil {
		return nil, err
	}
	precision := func(*situation.Situation) float64 { return defaultPrecision }
	if len(args) == 2 {
		if precision, err = r.Number(args[1]); err != nil {
			return nil, err
		}
	}
	return stateless(func(s *situation.Situation) (bt.Status, situation.ControlOutput, error) {
		path, err := r.BallPath(s)
		if err != nil {
			return bt.StatusFailure, situation.Neutral(), err
		}
		hit := intercept(s, path)
		ball := vmath.Flat(hit.Position)
		me := vmath.Flat(s.Me.Body.Position)
		aim := vmath.Normalize2(vmath.Flat(target(s)).Sub(ball))
		if aim.Len() == 0 {
			aim = vmath.Normalize2(ball.Sub(me))
		}

		cone := mgl64.DegToRad(precision(s)) / 2
		lined := vmath.Angle2(ball.Sub(me), aim) < cone
		behind := r.Predictor.Radius
		if !lined {
			behind *= 3
		}
		point := vmath.Lift(ball.Sub(aim.Mul(behind)), 0)

		out := drive(s, point, true, lined)
		return bt.StatusRunning, out, nil
	}), nil
}

// ballLead is the time ahead at which my car meets the ball if the ball
// keeps its current velocity, or 0 when no such time is found within 5s.
func ballLead(s *situation.Situation) float64 {
	const (
		first     = 0.05
		step      = 0.03
		limit     = 5.0
		tolerance = 50.0
		settled   = 0.1
	)
	if s.Ball.Velocity.Len() < 10 {
		return 0
	}
	speed := reachSpeed(&s.Me)
	lead := 0.0
	for t := first; t <= limit-first && lead < settled; t += step {
		ball := s.Ball.Position.Add(s.Ball.Velocity.Mul(t))
		if math.Abs(vmath.Distance(ball, s.Me.Body.Position)-speed*t) < tolerance {
			lead = t
		}
	}
	return lead
}

// TaskBallTowardsGoal drives into the ball so it travels towards the
// middle of the enemy goal. The ball is led by a straight-line estimate.
func (r Resolver) TaskBallTowardsGoal(args []string) (bt.TaskFactory, error) {
	if err := argCount("TaskBallTowardsGoal", args, 0, 0); err != nil {
		return nil, err
	}
	return stateless(func(s *situation.Situation) (bt.Status, situation.ControlOutput, error) {
		ball := s.Ball.Position.Add(s.Ball.Velocity.Mul(ballLead(s)))
		flat := vmath.Flat(ball)
		toGoal := vmath.Normalize2(vmath.Flat(s.EnemyGoal()).Sub(flat))
		point := flat.Sub(toGoal.Mul(80))

		nose := s.Me.Body.Position.Add(s.Me.Front().Mul(70))
		ang := vmath.AngleToPoint(vmath.Flat(nose), s.Me.Body.Yaw(), point)
		return bt.StatusRunning, situation.ControlOutput{Throttle: 1, Steer: vmath.SmoothSteer(ang)}, nil
	}), nil
}
