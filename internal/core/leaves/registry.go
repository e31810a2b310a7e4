package leaves

import (
	"strings"

	"github.com/zeusync/arenabot/internal/core/bt"
	"github.com/zeusync/arenabot/internal/core/bt/builder"
)

// DefaultTreeSource is the tree the bot plays with when no tree file is
// configured.
const DefaultTreeSource = `Selector
	Sequencer
		GuardIsKickoff
		Invert
			Sequencer
				GuardHasBoost 20
				TaskGoTowardsPoint ball_pos false true
		TaskDashForward
	Sequencer
		GuardIsMidAir
		TaskAdjustAirRotation ball_land_pos
	Sequencer
		GuardIsDistanceLessThan my_pos ball_pos 520
		GuardIsDoubleLessThan ang_ball 0.05 true
		TaskDashForward
	Sequencer
		Selector
			GuardIsBallOnMyHalf
			GuardIsDistanceLessThan my_pos ball_pos 1200
			GuardIsDistanceLessThan my_pos ball_land_pos 1800
		TaskGoTowardsPoint ball_land_pos true true
	Sequencer
		Invert
			GuardHasBoost 70
		TaskGoTowardsPoint best_boost true false
	TaskGoTowardsPoint my_goal_box
`

// Register adds every guard and task of the library to reg, resolving
// arguments through r.
func Register(reg *builder.Registry, r Resolver) {
	for name, f := range map[string]builder.GuardFactory{
		"GuardIsKickoff":             r.GuardIsKickoff,
		"GuardIsMidAir":              r.GuardIsMidAir,
		"GuardIsBallOnMyHalf":        r.GuardIsBallOnMyHalf,
		"GuardHasBoost":              r.GuardHasBoost,
		"GuardIsDistanceLessThan":    r.GuardIsDistanceLessThan,
		"GuardIsDoubleLessThan":      r.GuardIsDoubleLessThan,
		"GuardBallLandsWithin":       r.GuardBallLandsWithin,
		"GuardIsBallHeadingToMyGoal": r.GuardIsBallHeadingToMyGoal,
	} {
		reg.RegisterGuard(name, f)
	}
	for name, f := range map[string]builder.TaskFactory{
		"TaskGoTowardsPoint":    r.TaskGoTowardsPoint,
		"TaskDashForward":       r.TaskDashForward,
		"TaskAdjustAirRotation": r.TaskAdjustAirRotation,
		"TaskHitTowardsPoint":   r.TaskHitTowardsPoint,
		"TaskBallTowardsGoal":   r.TaskBallTowardsGoal,
	} {
		reg.RegisterTask(name, f)
	}
}

// NewRegistry returns a registry holding the whole library.
func NewRegistry(r Resolver) *builder.Registry {
	reg := builder.NewRegistry()
	Register(reg, r)
	return reg
}

// DefaultTree builds DefaultTreeSource against reg.
func DefaultTree(reg *builder.Registry) (*bt.Tree, error) {
	return builder.ParseText(strings.NewReader(DefaultTreeSource), reg)
}
