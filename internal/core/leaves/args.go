// Package leaves is the library of guards and tasks the default bot is built
// from, plus the argument names they accept.
package leaves

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/arenabot/internal/core/bt/builder"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
)

// VecFunc reads a point from the situation.
type VecFunc func(s *situation.Situation) mgl64.Vec3

// NumFunc reads a number from the situation.
type NumFunc func(s *situation.Situation) float64

// Resolver turns leaf arguments into accessors once, at build time.
type Resolver struct {
	Predictor *physics.Predictor
	// Horizon is how far ahead ball predictions look, in seconds.
	Horizon float64
	// Step is the sampling interval of ball predictions, in seconds.
	Step float64
}

// DefaultResolver predicts the ball in the default arena.
func DefaultResolver() Resolver {
	return Resolver{Predictor: physics.DefaultPredictor(), Horizon: 5, Step: 1.0 / 60}
}

// LandingPosition is where the ball next touches the floor, or the ball's
// position projected onto the floor when it does not land within the horizon.
func (r Resolver) LandingPosition(s *situation.Situation) mgl64.Vec3 {
	if pos, ok := r.Predictor.Landing(&s.Ball, r.Horizon); ok {
		return pos
	}
	p := s.Ball.Position
	p[2] = r.Predictor.Radius
	return p
}

// BallPath predicts the ball over the resolver's horizon.
func (r Resolver) BallPath(s *situation.Situation) (physics.Path, error) {
	return r.Predictor.Predict(&s.Ball, r.Horizon, r.Step)
}

// Vector resolves a point argument. Known names are ball_pos, ball_land_pos,
// my_pos, enemy_pos, my_goal, my_goal_box, enemy_goal and best_boost; "x,y,z"
// is a literal.
func (r Resolver) Vector(arg string) (VecFunc, error) {
	switch arg {
	case "ball_pos":
		return func(s *situation.Situation) mgl64.Vec3 { return s.Ball.Position }, nil
	case "ball_land_pos":
		return r.LandingPosition, nil
	case "my_pos":
		return func(s *situation.Situation) mgl64.Vec3 { return s.Me.Body.Position }, nil
	case "enemy_pos":
		return func(s *situation.Situation) mgl64.Vec3 { return s.Enemy.Body.Position }, nil
	case "my_goal":
		return (*situation.Situation).MyGoal, nil
	case "my_goal_box":
		return (*situation.Situation).MyGoalBox, nil
	case "enemy_goal":
		return (*situation.Situation).EnemyGoal, nil
	case "best_boost":
		return func(s *situation.Situation) mgl64.Vec3 {
			if pad, ok := s.BestBoostPad(); ok {
				return pad.Position
			}
			return s.MyGoalBox()
		}, nil
	}

	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q is not a point", builder.ErrBadArguments, arg)
	}
	var v mgl64.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a point", builder.ErrBadArguments, arg)
		}
		v[i] = f
	}
	return func(*situation.Situation) mgl64.Vec3 { return v }, nil
}

// Number resolves a numeric argument. Known names are ang_ball, dist_ball,
// my_boost, my_speed and ball_speed; anything else must parse as a float.
func (r Resolver) Number(arg string) (NumFunc, error) {
	switch arg {
	case "ang_ball":
		return (*situation.Situation).AngleToBall, nil
	case "dist_ball":
		return (*situation.Situation).DistanceToBall, nil
	case "my_boost":
		return func(s *situation.Situation) float64 { return s.Me.Boost }, nil
	case "my_speed":
		return func(s *situation.Situation) float64 { return s.Me.Body.Velocity.Len() }, nil
	case "ball_speed":
		return func(s *situation.Situation) float64 { return s.Ball.Velocity.Len() }, nil
	}
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(f) {
		return nil, fmt.Errorf("%w: %q is not a number", builder.ErrBadArguments, arg)
	}
	return func(*situation.Situation) float64 { return f }, nil
}

// Bool parses a boolean flag argument.
func Bool(arg string) (bool, error) {
	v, err := strconv.ParseBool(arg)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", builder.ErrBadArguments, arg)
	}
	return v, nil
}

func argCount(name string, args []string, lo, hi int) error {
	if len(args) >= lo && len(args) <= hi {
		return nil
	}
	if lo == hi {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", builder.ErrBadArguments, name, lo, len(args))
	}
	return fmt.Errorf("%w: %s takes %d to %d arguments, got %d", builder.ErrBadArguments, name, lo, hi, len(args))
}
