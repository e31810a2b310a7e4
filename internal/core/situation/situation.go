// Package situation holds the per-tick snapshot the decision tree reads and
// the control output it produces.
package situation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/vmath"
)

type Team uint8

const (
	TeamBlue Team = iota
	TeamOrange
)

func (t Team) String() string {
	if t == TeamOrange {
		return "orange"
	}
	return "blue"
}

// Goal geometry. Blue defends the negative y end of the field.
const (
	GoalLineY    = 5120.0
	GoalHalfSize = 892.755
	// GoalBoxY is the y coordinate of the defensive spot in front of a goal.
	GoalBoxY = 4600.0
)

// Car is a vehicle's rigid body plus its boost state.
type Car struct {
	Body   physics.RigidBody `json:"body" yaml:"body"`
	Boost  float64           `json:"boost" yaml:"boost"`
	MidAir bool              `json:"mid_air" yaml:"mid_air"`
}

// Front is the horizontal unit vector the car is facing.
func (c *Car) Front() mgl64.Vec3 {
	return vmath.Lift(vmath.HeadingVector(c.Body.Yaw()), 0)
}

// AngleTo is the signed turn from the car's heading to point on the floor
// plane. Positive is to the left.
func (c *Car) AngleTo(point mgl64.Vec3) float64 {
	return vmath.AngleToPoint(vmath.Flat(c.Body.Position), c.Body.Yaw(), vmath.Flat(point))
}

// Situation is a read-only snapshot of one tick. Nodes never modify it;
// speculative simulation works on Clone or on cloned bodies.
type Situation struct {
	Me       Car               `json:"me" yaml:"me"`
	Enemy    Car               `json:"enemy" yaml:"enemy"`
	Ball     physics.RigidBody `json:"ball" yaml:"ball"`
	Pads     []BoostPad        `json:"pads" yaml:"pads"`
	Team     Team              `json:"team" yaml:"team"`
	GameTime float64           `json:"game_time" yaml:"game_time"`
	Kickoff  bool              `json:"kickoff" yaml:"kickoff"`
}

// Clone returns a deep copy of s.
func (s *Situation) Clone() *Situation {
	c := *s
	c.Pads = make([]BoostPad, len(s.Pads))
	copy(c.Pads, s.Pads)
	return &c
}

func (s *Situation) side() float64 {
	if s.Team == TeamOrange {
		return 1
	}
	return -1
}

// MyGoal is the centre of the goal line this team defends.
func (s *Situation) MyGoal() mgl64.Vec3 {
	return mgl64.Vec3{0, s.side() * GoalLineY, 0}
}

// EnemyGoal is the centre of the goal line this team attacks.
func (s *Situation) EnemyGoal() mgl64.Vec3 {
	return mgl64.Vec3{0, -s.side() * GoalLineY, 0}
}

// MyGoalBox is the defensive position in front of our own goal.
func (s *Situation) MyGoalBox() mgl64.Vec3 {
	return mgl64.Vec3{0, s.side() * GoalBoxY, 0}
}

// AngleToBall is the signed turn from my heading to the ball.
func (s *Situation) AngleToBall() float64 {
	return s.Me.AngleTo(s.Ball.Position)
}

// DistanceToBall is the distance from my car to the ball.
func (s *Situation) DistanceToBall() float64 {
	return vmath.Distance(s.Me.Body.Position, s.Ball.Position)
}

// IsBallOnMyHalf reports whether the ball is on the defended half of the field.
func (s *Situation) IsBallOnMyHalf() bool {
	return s.Ball.Position[1]*s.side() > 0
}

// IsKickoff reports a kickoff: either flagged by the game or the ball is
// sitting still on the centre spot.
func (s *Situation) IsKickoff() bool {
	if s.Kickoff {
		return true
	}
	const centre = 1.0
	return math.Abs(s.Ball.Position[0]) < centre && math.Abs(s.Ball.Position[1]) < centre &&
		vmath.IsZero(s.Ball.Velocity)
}

// BestBoostPad picks the active pad with the shortest detour on the way from
// my car to the ball. Big pads win ties. ok is false when no pad is active.
func (s *Situation) BestBoostPad() (pad BoostPad, ok bool) {
	best := math.Inf(1)
	for _, p := range s.Pads {
		if !p.Active() {
			continue
		}
		cost := vmath.Distance(s.Me.Body.Position, p.Position) + vmath.Distance(p.Position, s.Ball.Position)
		if cost < best || (cost == best && p.Big && !pad.Big) {
			best, pad, ok = cost, p, true
		}
	}
	return pad, ok
}
