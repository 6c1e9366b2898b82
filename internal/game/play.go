package game

import (
	"context"
	"fmt"
)

// Decider chooses the AI's actions. The engine calls SelectAction once per
// action opportunity and waits for the answer.
type Decider interface {
	SelectAction(obs Observation) Action
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(obs Observation) Action

func (f DeciderFunc) SelectAction(obs Observation) Action { return f(obs) }

// Play runs the game to completion with d choosing every AI action, and
// returns the final state. Cancellation is checked between actions.
func (e *Engine) Play(ctx context.Context, d Decider) (State, error) {
	for steps := 0; !e.state.Over; steps++ {
		if err := ctx.Err(); err != nil {
			return e.state, err
		}
		if steps >= e.cfg.stepLimit {
			return e.state, fmt.Errorf("%w: %d actions", ErrStepLimit, steps)
		}
		if _, err := e.Step(d.SelectAction(e.Observe())); err != nil {
			return e.state, err
		}
	}
	return e.state, nil
}
