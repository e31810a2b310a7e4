package agent

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/bt/builder"
	"github.com/zeusync/arenabot/internal/core/leaves"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
)

func singleTask(t *testing.T, fn bt.TaskFunc) *bt.Tree {
	t.Helper()
	tree := bt.New()
	id, err := tree.AddTask("task", func() bt.Task { return fn })
	require.NoError(t, err)
	require.NoError(t, tree.SetRoot(id))
	return tree
}

func fixedClock() func() time.Time {
	now := time.Unix(1700000000, 0)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func TestEvaluateOutput(t *testing.T) {
	tree := singleTask(t, func(*situation.Situation) (bt.Status, situation.ControlOutput, error) {
		return bt.StatusRunning, situation.ControlOutput{Throttle: 3, Steer: -0.5}, nil
	})
	b := New("p0", tree, nil, WithClock(fixedClock()))

	out := b.Evaluate(&situation.Situation{GameTime: 4})
	assert.Equal(t, 1.0, out.Throttle, "outputs are clamped")
	assert.Equal(t, -0.5, out.Steer)

	hist := b.Memory().History()
	require.Len(t, hist, 1)
	assert.Equal(t, "task", hist[0].Node)
	assert.Equal(t, bt.StatusRunning, hist[0].Status)
	assert.Equal(t, 4.0, hist[0].GameTime)
	assert.Equal(t, time.Millisecond, hist[0].Duration)
	assert.Empty(t, hist[0].Err)
}

func TestEvaluateNeutralOnFailure(t *testing.T) {
	cases := map[string]bt.TaskFunc{
		"error": func(*situation.Situation) (bt.Status, situation.ControlOutput, error) {
			return bt.StatusRunning, situation.ControlOutput{Throttle: 1}, errors.New("boom")
		},
		"failure": func(*situation.Situation) (bt.Status, situation.ControlOutput, error) {
			return bt.StatusFailure, situation.ControlOutput{Throttle: 1}, nil
		},
		"panic": func(*situation.Situation) (bt.Status, situation.ControlOutput, error) {
			panic("nil deref")
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			b := New("p0", singleTask(t, fn), nil)
			var out situation.ControlOutput
			require.NotPanics(t, func() { out = b.Evaluate(&situation.Situation{}) })
			assert.Equal(t, situation.Neutral(), out)

			hist := b.Memory().History()
			require.Len(t, hist, 1)
			assert.Equal(t, name == "failure", hist[0].Err == "")
		})
	}

	b := New("p0", singleTask(t, cases["failure"]), nil)
	assert.Equal(t, situation.Neutral(), b.Evaluate(nil))
	assert.Equal(t, situation.Neutral(), New("empty", bt.New(), nil).Evaluate(&situation.Situation{}))
}

func TestMemoryRing(t *testing.T) {
	m := NewMemory(3)
	for i := range 5 {
		m.AppendDecision(DecisionRecord{GameTime: float64(i)})
	}
	hist := m.History()
	require.Len(t, hist, 3)
	assert.Equal(t, []float64{2, 3, 4}, []float64{hist[0].GameTime, hist[1].GameTime, hist[2].GameTime})

	m.Reset()
	assert.Empty(t, m.History())
	m.AppendDecision(DecisionRecord{GameTime: 9})
	assert.Len(t, m.History(), 1)
}

func TestDefaultTreeBot(t *testing.T) {
	reg := leaves.NewRegistry(leaves.DefaultResolver())
	cache := builder.NewCache(reg)
	tree, err := cache.Get("default.bt", []byte(leaves.DefaultTreeSource))
	require.NoError(t, err)

	b := New("p1", tree, nil)
	s := &situation.Situation{Me: situation.Car{Boost: 0}}
	s.Ball.Position[2] = 92.2

	// Kickoff without boost dashes.
	out := b.Evaluate(s)
	assert.True(t, out.Jump)

	b.Reset()
	assert.Empty(t, b.Memory().History())
}

func TestSelfPlay(t *testing.T) {
	reg := leaves.NewRegistry(leaves.DefaultResolver())
	tree, err := leaves.DefaultTree(reg)
	require.NoError(t, err)
	b := New("self", tree, nil)

	start := &situation.Situation{}
	start.Me.Body.Position = mgl64.Vec3{0, -2000, situation.CarGroundOffset}
	start.Me.Body.Rotation = mgl64.Vec3{0, math.Pi / 2, 0}
	start.Me.Boost = 33
	start.Ball.Position = mgl64.Vec3{0, 0, physics.BallRadius}
	start.Ball.AffectedByGravity = true

	end, err := SelfPlay(context.Background(), b, start, physics.DefaultPredictor(), 1.0/60, 60)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, end.GameTime, 1e-9)
	assert.Greater(t, end.Me.Body.Position[1], start.Me.Body.Position[1], "drives at the ball")
	assert.Less(t, end.Me.Boost, start.Me.Boost, "boosts on the kickoff")
	assert.Len(t, b.Memory().History(), 60)

	_, err = SelfPlay(context.Background(), b, start, physics.DefaultPredictor(), 0, 1)
	assert.ErrorIs(t, err, situation.ErrNegativeStep)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SelfPlay(ctx, b, start, physics.DefaultPredictor(), 1.0/60, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
