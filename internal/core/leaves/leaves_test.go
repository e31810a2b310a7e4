package leaves

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/bt/builder"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
)

// facingBall puts a blue car 2000uu behind the centre spot, facing the ball.
func facingBall() *situation.Situation {
	return &situation.Situation{
		Me: situation.Car{
			Body: physics.RigidBody{
				Position: mgl64.Vec3{0, -2000, situation.CarGroundOffset},
				Rotation: mgl64.Vec3{0, math.Pi / 2, 0},
			},
			Boost: 33,
		},
		Ball: physics.RigidBody{
			Position:          mgl64.Vec3{0, 0, physics.BallRadius},
			AffectedByGravity: true,
		},
		Team: situation.TeamBlue,
	}
}

func TestVector(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()

	cases := map[string]mgl64.Vec3{
		"ball_pos":    s.Ball.Position,
		"my_pos":      s.Me.Body.Position,
		"my_goal":     {0, -situation.GoalLineY, 0},
		"enemy_goal":  {0, situation.GoalLineY, 0},
		"my_goal_box": {0, -situation.GoalBoxY, 0},
		"best_boost":  {0, -situation.GoalBoxY, 0},
		"1, 2.5,-3":   {1, 2.5, -3},
	}
	for arg, want := range cases {
		fn, err := r.Vector(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, want, fn(s), arg)
	}

	for _, arg := range []string{"ball", "1,2", "1,2,z"} {
		_, err := r.Vector(arg)
		assert.ErrorIs(t, err, builder.ErrBadArguments, arg)
	}
}

func TestLandingPosition(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()
	s.Ball.Position = mgl64.Vec3{100, 200, 1000}

	land := r.LandingPosition(s)
	assert.InDelta(t, 100, land[0], 1e-9)
	assert.InDelta(t, 200, land[1], 1e-9)
	assert.InDelta(t, physics.BallRadius, land[2], 1e-6)

	s.Ball.Position = mgl64.Vec3{0, 0, 1000}
	s.Ball.Velocity = mgl64.Vec3{0, 0, 5000}
	r.Horizon = 0.1
	land = r.LandingPosition(s)
	assert.Equal(t, mgl64.Vec3{0, 0, physics.BallRadius}, land)
}

func TestNumber(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()
	s.Ball.Velocity = mgl64.Vec3{3, 4, 0}

	cases := map[string]float64{
		"my_boost":   33,
		"ball_speed": 5,
		"my_speed":   0,
		"ang_ball":   0,
		"-2.5":       -2.5,
	}
	for arg, want := range cases {
		fn, err := r.Number(arg)
		require.NoError(t, err, arg)
		assert.InDelta(t, want, fn(s), 1e-9, arg)
	}

	_, err := r.Number("NaN")
	assert.ErrorIs(t, err, builder.ErrBadArguments)
	_, err = r.Number("fast")
	assert.ErrorIs(t, err, builder.ErrBadArguments)
}

func check(t *testing.T, g bt.Guard, s *situation.Situation) bool {
	t.Helper()
	ok, err := g.Check(s)
	require.NoError(t, err)
	return ok
}

func TestGuards(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()

	t.Run("HasBoost", func(t *testing.T) {
		g, err := r.GuardHasBoost([]string{"33"})
		require.NoError(t, err)
		assert.True(t, check(t, g, s))
		g, err = r.GuardHasBoost([]string{"34"})
		require.NoError(t, err)
		assert.False(t, check(t, g, s))
	})

	t.Run("IsDistanceLessThan", func(t *testing.T) {
		g, err := r.GuardIsDistanceLessThan([]string{"my_pos", "ball_pos", "2001"})
		require.NoError(t, err)
		assert.True(t, check(t, g, s))
		g, err = r.GuardIsDistanceLessThan([]string{"my_pos", "ball_pos", "1999"})
		require.NoError(t, err)
		assert.False(t, check(t, g, s))
	})

	t.Run("IsDoubleLessThan", func(t *testing.T) {
		g, err := r.GuardIsDoubleLessThan([]string{"-3", "2"})
		require.NoError(t, err)
		assert.True(t, check(t, g, s))
		g, err = r.GuardIsDoubleLessThan([]string{"-3", "2", "true"})
		require.NoError(t, err)
		assert.False(t, check(t, g, s))
	})

	t.Run("Kickoff", func(t *testing.T) {
		g, err := r.GuardIsKickoff(nil)
		require.NoError(t, err)
		assert.True(t, check(t, g, s))
		moving := s.Clone()
		moving.Ball.Velocity = mgl64.Vec3{100, 0, 0}
		assert.False(t, check(t, g, moving))
	})

	t.Run("MidAirAndHalf", func(t *testing.T) {
		air, err := r.GuardIsMidAir(nil)
		require.NoError(t, err)
		half, err := r.GuardIsBallOnMyHalf(nil)
		require.NoError(t, err)

		s := s.Clone()
		assert.False(t, check(t, air, s))
		s.Me.MidAir = true
		assert.True(t, check(t, air, s))

		s.Ball.Position[1] = -100
		assert.True(t, check(t, half, s))
		s.Ball.Position[1] = 100
		assert.False(t, check(t, half, s))
	})

	t.Run("BallLandsWithin", func(t *testing.T) {
		g, err := r.GuardBallLandsWithin([]string{"1"})
		require.NoError(t, err)
		s := s.Clone()
		// Falls 500uu from rest in about 1.24s.
		s.Ball.Position[2] = physics.BallRadius + 500
		assert.False(t, check(t, g, s))
		s.Ball.Position[2] = physics.BallRadius + 200
		assert.True(t, check(t, g, s))
	})

	t.Run("IsBallHeadingToMyGoal", func(t *testing.T) {
		g, err := r.GuardIsBallHeadingToMyGoal([]string{"3"})
		require.NoError(t, err)
		s := s.Clone()
		s.Ball.Velocity = mgl64.Vec3{0, -3000, 0}
		assert.True(t, check(t, g, s))
		s.Ball.Velocity = mgl64.Vec3{0, 3000, 0}
		assert.False(t, check(t, g, s))
		s.Ball.Velocity = mgl64.Vec3{3000, -1000, 0}
		assert.False(t, check(t, g, s))
	})

	t.Run("BadArguments", func(t *testing.T) {
		_, err := r.GuardHasBoost(nil)
		assert.ErrorIs(t, err, builder.ErrBadArguments)
		_, err = r.GuardIsKickoff([]string{"x"})
		assert.ErrorIs(t, err, builder.ErrBadArguments)
		_, err = r.GuardIsDoubleLessThan([]string{"1", "2", "maybe"})
		assert.ErrorIs(t, err, builder.ErrBadArguments)
		_, err = r.GuardIsDistanceLessThan([]string{"my_pos", "nowhere", "1"})
		assert.ErrorIs(t, err, builder.ErrBadArguments)
	})
}

func run(t *testing.T, f bt.TaskFactory, s *situation.Situation) (bt.Status, situation.ControlOutput) {
	t.Helper()
	st, out, err := f().Run(s)
	require.NoError(t, err)
	return st, out
}

func TestTaskGoTowardsPoint(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()

	f, err := r.TaskGoTowardsPoint([]string{"ball_pos", "true", "true"})
	require.NoError(t, err)
	st, out := run(t, f, s)
	assert.Equal(t, bt.StatusRunning, st)
	assert.Equal(t, 1.0, out.Throttle)
	assert.InDelta(t, 0, out.Steer, 1e-9)
	assert.True(t, out.Boost)
	assert.False(t, out.Slide)

	// Target behind the car.
	f, err = r.TaskGoTowardsPoint([]string{"0,-4000,0", "true", "true"})
	require.NoError(t, err)
	_, out = run(t, f, s)
	assert.True(t, out.Slide)
	assert.False(t, out.Boost)
	assert.InDelta(t, 1, math.Abs(out.Steer), 0.01)

	// Target to the left.
	f, err = r.TaskGoTowardsPoint([]string{"-1000,-2000,0"})
	require.NoError(t, err)
	_, out = run(t, f, s)
	assert.Greater(t, out.Steer, 0.9)
	assert.False(t, out.Slide)
	assert.False(t, out.Boost)

	_, err = r.TaskGoTowardsPoint(nil)
	assert.ErrorIs(t, err, builder.ErrBadArguments)
}

func TestTaskDashForward(t *testing.T) {
	r := DefaultResolver()
	f, err := r.TaskDashForward(nil)
	require.NoError(t, err)
	task := f()

	s := facingBall()
	s.GameTime = 10
	tickAt := func(dt float64, midAir bool) (bt.Status, situation.ControlOutput) {
		s := s.Clone()
		s.GameTime += dt
		s.Me.MidAir = midAir
		st, out, err := task.Run(s)
		require.NoError(t, err)
		return st, out
	}

	st, out := tickAt(0, false)
	assert.Equal(t, bt.StatusRunning, st)
	assert.True(t, out.Jump)

	_, out = tickAt(0.12, true)
	assert.False(t, out.Jump)

	_, out = tickAt(0.2, true)
	assert.True(t, out.Jump)
	assert.Equal(t, -1.0, out.Pitch)

	st, _ = tickAt(0.5, true)
	assert.Equal(t, bt.StatusRunning, st)

	st, _ = tickAt(1, false)
	assert.Equal(t, bt.StatusSuccess, st)

	// Finished dashes start over.
	_, out = tickAt(1.5, false)
	assert.True(t, out.Jump)

	task.Reset()
	_, out = tickAt(1.65, false)
	assert.True(t, out.Jump)
	assert.Zero(t, out.Pitch, "reset restarts the jump phase")

	// Clones get independent progress.
	other := f()
	assert.NotSame(t, task, other)
}

func TestTaskAdjustAirRotation(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()
	s.Me.MidAir = true
	s.Me.Body.Rotation = mgl64.Vec3{0.5, math.Pi / 2, -0.3}

	f, err := r.TaskAdjustAirRotation([]string{"ball_pos"})
	require.NoError(t, err)
	st, out := run(t, f, s)
	assert.Equal(t, bt.StatusRunning, st)
	assert.InDelta(t, -0.5, out.Pitch, 1e-9)
	assert.InDelta(t, 0.3, out.Roll, 1e-9)
	assert.InDelta(t, 0, out.Yaw, 1e-9)
}

func TestTaskHitTowardsPoint(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()

	f, err := r.TaskHitTowardsPoint([]string{"enemy_goal", "20"})
	require.NoError(t, err)
	st, out := run(t, f, s)
	assert.Equal(t, bt.StatusRunning, st)
	assert.Equal(t, 1.0, out.Throttle)
	assert.InDelta(t, 0, out.Steer, 1e-9, "car, ball and goal are lined up")
	assert.True(t, out.Boost)

	// Shooting sideways: the car has to go around the ball first.
	f, err = r.TaskHitTowardsPoint([]string{"4000,0,0", "20"})
	require.NoError(t, err)
	_, out = run(t, f, s)
	assert.False(t, out.Boost)
	assert.Greater(t, out.Steer, 0.0, "line up to the left of the ball")

	_, err = r.TaskHitTowardsPoint([]string{"enemy_goal", "wide"})
	assert.ErrorIs(t, err, builder.ErrBadArguments)
}

func TestTaskBallTowardsGoal(t *testing.T) {
	r := DefaultResolver()
	s := facingBall()

	f, err := r.TaskBallTowardsGoal(nil)
	require.NoError(t, err)
	st, out := run(t, f, s)
	assert.Equal(t, bt.StatusRunning, st)
	assert.Equal(t, 1.0, out.Throttle)
	assert.InDelta(t, 0, out.Steer, 1e-9)
	assert.False(t, out.Boost)

	s.Ball.Velocity = mgl64.Vec3{-200, -500, 0}
	assert.InDelta(t, 1.55, ballLead(s), 0.1)
	_, out = run(t, f, s)
	assert.Greater(t, out.Steer, 0.0, "lead the ball rolling left")
}

func TestDefaultTree(t *testing.T) {
	reg := NewRegistry(DefaultResolver())
	tree, err := DefaultTree(reg)
	require.NoError(t, err)
	assert.Equal(t, 26, tree.Len())
	assert.Len(t, tree.Children(tree.Root()), 6)
	assert.Equal(t, DefaultTreeSource, tree.String())

	t.Run("KickoffWithBoost", func(t *testing.T) {
		s := facingBall()
		out := tree.Clone().Evaluate(s)
		assert.Equal(t, 1.0, out.Throttle)
		assert.True(t, out.Boost)
		assert.False(t, out.Jump)
	})

	t.Run("KickoffWithoutBoost", func(t *testing.T) {
		s := facingBall()
		s.Me.Boost = 0
		out := tree.Clone().Evaluate(s)
		assert.True(t, out.Jump)
	})

	t.Run("MidAir", func(t *testing.T) {
		s := facingBall()
		s.Ball.Velocity = mgl64.Vec3{0, 100, 0}
		s.Me.MidAir = true
		s.Me.Body.Rotation[2] = 0.4
		out := tree.Clone().Evaluate(s)
		assert.InDelta(t, -0.4, out.Roll, 1e-9)
	})

	t.Run("Defend", func(t *testing.T) {
		s := facingBall()
		s.Ball.Position = mgl64.Vec3{0, 3000, physics.BallRadius}
		s.Ball.Velocity = mgl64.Vec3{0, 100, 0}
		s.Me.Boost = 80
		out := tree.Clone().Evaluate(s)
		// Facing +y, the goal box is straight behind.
		assert.InDelta(t, 1, math.Abs(out.Steer), 0.01)
		assert.False(t, out.Boost)
	})
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry(DefaultResolver())
	names := reg.Names()
	assert.Len(t, names, 13)
	for _, n := range names {
		k, ok := reg.Kind(n)
		require.True(t, ok, n)
		assert.True(t, k.IsLeaf(), n)
	}
}
