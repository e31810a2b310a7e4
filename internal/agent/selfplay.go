package agent

import (
	"context"
	"fmt"

	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
)

// SelfPlay lets bot drive its own car through ticks steps of dt seconds of
// simulated play from start, feeding each output back through
// situation.Simulate. It returns the final situation.
func SelfPlay(ctx context.Context, bot *Bot, start *situation.Situation, predictor *physics.Predictor, dt float64, ticks int) (*situation.Situation, error) {
	if !(dt > 0) {
		return nil, fmt.Errorf("self play: %w", situation.ErrNegativeStep)
	}
	s := start.Clone()
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		next, err := situation.Simulate(s, dt, bot.Evaluate(s), predictor)
		if err != nil {
			return s, fmt.Errorf("self play tick %d: %w", i, err)
		}
		s = next
	}
	return s, nil
}
