package situation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arenabot/internal/core/physics"
)

func grounded(x, y, yaw float64) Car {
	return Car{Body: physics.RigidBody{
		Position: mgl64.Vec3{x, y, CarGroundOffset},
		Rotation: mgl64.Vec3{0, yaw, 0},
	}}
}

func testSituation() *Situation {
	return &Situation{
		Me:    grounded(0, -2000, math.Pi/2),
		Enemy: grounded(0, 2000, -math.Pi/2),
		Ball: physics.RigidBody{
			Position:          mgl64.Vec3{500, 0, physics.BallRadius},
			AffectedByGravity: true,
		},
		Pads: []BoostPad{
			{Position: mgl64.Vec3{0, -1500, 0}},
			{Position: mgl64.Vec3{3000, 0, 0}, Big: true},
			{Position: mgl64.Vec3{100, -1000, 0}, RespawnLeft: 2},
		},
		Team: TeamBlue,
	}
}

func TestGoals(t *testing.T) {
	s := testSituation()
	assert.Equal(t, mgl64.Vec3{0, -GoalLineY, 0}, s.MyGoal())
	assert.Equal(t, mgl64.Vec3{0, GoalLineY, 0}, s.EnemyGoal())
	assert.Equal(t, mgl64.Vec3{0, -GoalBoxY, 0}, s.MyGoalBox())

	s.Team = TeamOrange
	assert.Equal(t, mgl64.Vec3{0, GoalLineY, 0}, s.MyGoal())
	assert.Equal(t, mgl64.Vec3{0, GoalBoxY, 0}, s.MyGoalBox())
}

func TestIsBallOnMyHalf(t *testing.T) {
	s := testSituation()
	s.Ball.Position[1] = -100
	assert.True(t, s.IsBallOnMyHalf())
	s.Team = TeamOrange
	assert.False(t, s.IsBallOnMyHalf())
}

func TestIsKickoff(t *testing.T) {
	s := testSituation()
	assert.False(t, s.IsKickoff())

	s.Ball.Position = mgl64.Vec3{0, 0, physics.BallRadius}
	assert.True(t, s.IsKickoff())

	s.Ball.Velocity = mgl64.Vec3{0, 10, 0}
	assert.False(t, s.IsKickoff())

	s.Kickoff = true
	assert.True(t, s.IsKickoff())
}

func TestAngleToBall(t *testing.T) {
	s := testSituation()
	s.Ball.Position = mgl64.Vec3{0, 0, physics.BallRadius}
	assert.InDelta(t, 0.0, s.AngleToBall(), 1e-12)

	s.Ball.Position = mgl64.Vec3{-500, -2000, physics.BallRadius}
	assert.InDelta(t, math.Pi/2, s.AngleToBall(), 1e-12)
	assert.InDelta(t, math.Hypot(500, physics.BallRadius-CarGroundOffset), s.DistanceToBall(), 1e-9)
}

func TestBestBoostPad(t *testing.T) {
	s := testSituation()
	pad, ok := s.BestBoostPad()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, -1500, 0}, pad.Position)

	for i := range s.Pads {
		s.Pads[i].RespawnLeft = 1
	}
	_, ok = s.BestBoostPad()
	assert.False(t, ok)
}

func TestCloneCopiesPads(t *testing.T) {
	s := testSituation()
	c := s.Clone()
	c.Pads[0].RespawnLeft = 9
	c.Me.Boost = 50
	assert.Equal(t, 0.0, s.Pads[0].RespawnLeft)
	assert.Equal(t, 0.0, s.Me.Boost)
}

func TestControlOutputClamped(t *testing.T) {
	o := ControlOutput{Throttle: 2, Steer: -3, Roll: 0.5, Boost: true}.Clamped()
	assert.Equal(t, 1.0, o.Throttle)
	assert.Equal(t, -1.0, o.Steer)
	assert.Equal(t, 0.5, o.Roll)
	assert.True(t, o.Boost)
	assert.Equal(t, ControlOutput{}, Neutral())
}

func TestTurnRate(t *testing.T) {
	c := grounded(0, 0, 0)
	assert.InDelta(t, 1.325680896, TurnRate(&c), 1e-12)
	c.Body.Velocity = mgl64.Vec3{1000, 0, 0}
	assert.InDelta(t, 1.325680896+0.2869694124, TurnRate(&c), 1e-12)
}

func TestSimulate(t *testing.T) {
	predictor := physics.DefaultPredictor()

	t.Run("negative step", func(t *testing.T) {
		_, err := Simulate(testSituation(), -1, Neutral(), predictor)
		assert.ErrorIs(t, err, ErrNegativeStep)
	})

	t.Run("does not modify the input", func(t *testing.T) {
		s := testSituation()
		before := s.Clone()
		_, err := Simulate(s, 0.5, ControlOutput{Throttle: 1, Steer: 1}, predictor)
		require.NoError(t, err)
		assert.Equal(t, before, s)
	})

	t.Run("throttle accelerates forward", func(t *testing.T) {
		s := testSituation()
		next, err := Simulate(s, 0.1, ControlOutput{Throttle: 1}, predictor)
		require.NoError(t, err)
		assert.Greater(t, next.Me.Body.Velocity[1], 0.0)
		assert.InDelta(t, 0.0, next.Me.Body.Velocity[0], 1e-9)
		assert.Equal(t, CarGroundOffset, next.Me.Body.Position[2])
		assert.InDelta(t, 0.1, next.GameTime, 1e-12)
	})

	t.Run("steering turns the car", func(t *testing.T) {
		s := testSituation()
		next, err := Simulate(s, 0.1, ControlOutput{Steer: 1}, predictor)
		require.NoError(t, err)
		assert.InDelta(t, math.Pi/2+0.1*TurnRate(&s.Me), next.Me.Body.Yaw(), 1e-9)
	})

	t.Run("boost is spent", func(t *testing.T) {
		s := testSituation()
		s.Me.Boost = 50
		next, err := Simulate(s, 1, ControlOutput{Boost: true}, predictor)
		require.NoError(t, err)
		assert.InDelta(t, 50-BoostUsage, next.Me.Boost, 1e-9)
		assert.Greater(t, next.Me.Body.Velocity[1], 0.0)
	})

	t.Run("pad pickup and respawn", func(t *testing.T) {
		s := testSituation()
		s.Me.Body.Position = mgl64.Vec3{0, -1500, CarGroundOffset}
		next, err := Simulate(s, 0.5, Neutral(), predictor)
		require.NoError(t, err)

		assert.Equal(t, SmallPadAmount, next.Me.Boost)
		assert.InDelta(t, SmallPadRespawn-0.5, next.Pads[0].RespawnLeft, 1e-12)
		assert.InDelta(t, 1.5, next.Pads[2].RespawnLeft, 1e-12)
	})

	t.Run("airborne car lands", func(t *testing.T) {
		s := testSituation()
		s.Me.MidAir = true
		s.Me.Body.Position[2] = 30
		next, err := Simulate(s, 1, Neutral(), predictor)
		require.NoError(t, err)
		assert.False(t, next.Me.MidAir)
		assert.Equal(t, CarGroundOffset, next.Me.Body.Position[2])
		assert.Equal(t, 0.0, next.Me.Body.Velocity[2])
	})

	t.Run("ball moves with the predictor", func(t *testing.T) {
		s := testSituation()
		s.Ball.Velocity = mgl64.Vec3{0, 1000, 0}
		next, err := Simulate(s, 0.5, Neutral(), predictor)
		require.NoError(t, err)
		assert.InDelta(t, 500.0, next.Ball.Position[1], 1e-6)
		assert.Equal(t, physics.BallRadius, next.Ball.Position[2])
	})
}
