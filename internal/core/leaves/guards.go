package leaves

import (
	"math"

	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
	"github.com/zeusync/arenabot/internal/core/vmath"
)

func predicate(fn func(s *situation.Situation) bool) bt.Guard {
	return bt.GuardFunc(func(s *situation.Situation) (bool, error) { return fn(s), nil })
}

// GuardIsKickoff succeeds while a kickoff is pending.
func (r Resolver) GuardIsKickoff(args []string) (bt.Guard, error) {
	if err := argCount("GuardIsKickoff", args, 0, 0); err != nil {
		return nil, err
	}
	return predicate((*situation.Situation).IsKickoff), nil
}

// GuardIsMidAir succeeds while my car is off the ground.
func (r Resolver) GuardIsMidAir(args []string) (bt.Guard, error) {
	if err := argCount("GuardIsMidAir", args, 0, 0); err != nil {
		return nil, err
	}
	return predicate(func(s *situation.Situation) bool { return s.Me.MidAir }), nil
}

// GuardIsBallOnMyHalf succeeds while the ball is on the defended half.
func (r Resolver) GuardIsBallOnMyHalf(args []string) (bt.Guard, error) {
	if err := argCount("GuardIsBallOnMyHalf", args, 0, 0); err != nil {
		return nil, err
	}
	return predicate((*situation.Situation).IsBallOnMyHalf), nil
}

// GuardHasBoost <amount> succeeds when my boost is at least amount.
func (r Resolver) GuardHasBoost(args []string) (bt.Guard, error) {
	if err := argCount("GuardHasBoost", args, 1, 1); err != nil {
		return nil, err
	}
	amount, err := r.Number(args[0])
	if err != nil {
		return nil, err
	}
	return predicate(func(s *situation.Situation) bool { return s.Me.Boost >= amount(s) }), nil
}

// GuardIsDistanceLessThan <a> <b> <distance> succeeds when the points are
// closer than distance.
func (r Resolver) GuardIsDistanceLessThan(args []string) (bt.Guard, error) {
	if err := argCount("GuardIsDistanceLessThan", args, 3, 3); err != nil {
		return nil, err
	}
	a, err := r.Vector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := r.Vector(args[1])
	if err != nil {
		return nil, err
	}
	limit, err := r.Number(args[2])
	if err != nil {
		return nil, err
	}
	return predicate(func(s *situation.Situation) bool {
		return vmath.Distance(a(s), b(s)) < limit(s)
	}), nil
}

// GuardIsDoubleLessThan <a> <b> [abs] succeeds when a < b. With abs set the
// magnitude of a is compared instead.
func (r Resolver) GuardIsDoubleLessThan(args []string) (bt.Guard, error) {
	if err := argCount("GuardIsDoubleLessThan", args, 2, 3); err != nil {
		return nil, err
	}
	a, err := r.Number(args[0])
	if err != nil {
		return nil, err
	}
	b, err := r.Number(args[1])
	if err != nil {
		return nil, err
	}
	abs := false
	if len(args) == 3 {
		if abs, err = Bool(args[2]); err != nil {
			return nil, err
		}
	}
	return predicate(func(s *situation.Situation) bool {
		v := a(s)
		if abs {
			v = math.Abs(v)
		}
		return v < b(s)
	}), nil
}

// GuardBallLandsWithin <seconds> succeeds when the predicted ball touches
// the floor within seconds. A ball already rolling counts as landed.
func (r Resolver) GuardBallLandsWithin(args []string) (bt.Guard, error) {
	if err := argCount("GuardBallLandsWithin", args, 1, 1); err != nil {
		return nil, err
	}
	limit, err := r.Number(args[0])
	if err != nil {
		return nil, err
	}
	return bt.GuardFunc(func(s *situation.Situation) (bool, error) {
		horizon := limit(s)
		if horizon < 0 {
			return false, nil
		}
		_, ok := r.Predictor.Landing(&s.Ball, horizon)
		return ok, nil
	}), nil
}

// GuardIsBallHeadingToMyGoal [seconds] succeeds when the predicted ball path
// crosses the defended goal mouth within seconds, the resolver horizon by
// default.
func (r Resolver) GuardIsBallHeadingToMyGoal(args []string) (bt.Guard, error) {
	if err := argCount("GuardIsBallHeadingToMyGoal", args, 0, 1); err != nil {
		return nil, err
	}
	horizon := func(*situation.Situation) float64 { return r.Horizon }
	if len(args) == 1 {
		n, err := r.Number(args[0])
		if err != nil {
			return nil, err
		}
		horizon = n
	}
	return bt.GuardFunc(func(s *situation.Situation) (bool, error) {
		path, err := r.Predictor.Predict(&s.Ball, math.Max(horizon(s), 0), r.Step)
		if err != nil {
			return false, err
		}
		goal := s.MyGoal()
		// The back wall stops predictions short of the goal line.
		line := math.Abs(goal[1]) - r.Predictor.Radius - 1
		_, ok := path.FirstWhere(func(p physics.Sample) bool {
			return p.Position[1]*goal[1] > 0 && math.Abs(p.Position[1]) >= line &&
				math.Abs(p.Position[0]) < situation.GoalHalfSize
		})
		return ok, nil
	}), nil
}
